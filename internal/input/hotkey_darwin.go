//go:build darwin

package input

import "golang.design/x/hotkey"

// modAlt maps to Option on macOS
func modAlt() hotkey.Modifier {
	return hotkey.ModOption
}

// modSuper maps to Command on macOS
func modSuper() hotkey.Modifier {
	return hotkey.ModCmd
}
