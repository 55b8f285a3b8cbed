//go:build linux

package input

import "golang.design/x/hotkey"

// modAlt maps to Mod1 (Alt) under X11
func modAlt() hotkey.Modifier {
	return hotkey.Mod1
}

// modSuper maps to Mod4 (Super) under X11
func modSuper() hotkey.Modifier {
	return hotkey.Mod4
}
