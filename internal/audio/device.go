package audio

import (
	"fmt"
	"strings"

	"github.com/gen2brain/malgo"
)

// DeviceType distinguishes capture from playback devices.
type DeviceType int

const (
	DeviceTypePlayback DeviceType = iota
	DeviceTypeCapture
	DeviceTypeDuplex
)

// DeviceInfo describes one audio device as reported by the backend.
type DeviceInfo struct {
	ID          string
	Name        string
	Type        DeviceType
	IsDefault   bool
	MaxChannels uint32
}

// String formats the device for list output.
func (d DeviceInfo) String() string {
	marker := ""
	if d.IsDefault {
		marker = " [DEFAULT]"
	}
	return fmt.Sprintf("%s: %s%s (channels: %d)", d.ID, d.Name, marker, d.MaxChannels)
}

func withContext(fn func(ctx *malgo.AllocatedContext) error) error {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return fmt.Errorf("failed to initialize malgo context: %w", err)
	}
	defer func() {
		_ = ctx.Uninit()
		ctx.Free()
	}()
	return fn(ctx)
}

// ListDevices enumerates the available capture devices.
func ListDevices() ([]DeviceInfo, error) {
	var devices []DeviceInfo
	err := withContext(func(ctx *malgo.AllocatedContext) error {
		infos, err := ctx.Devices(malgo.Capture)
		if err != nil {
			return fmt.Errorf("failed to enumerate devices: %w", err)
		}
		devices = make([]DeviceInfo, 0, len(infos))
		for i, info := range infos {
			devices = append(devices, DeviceInfo{
				ID:        fmt.Sprintf("capture-%d", i),
				Name:      info.Name(),
				Type:      DeviceTypeCapture,
				IsDefault: info.IsDefault > 0,
				// malgo does not expose the channel count here
				MaxChannels: 2,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return devices, nil
}

// GetDefaultDevice returns the system default capture device, or the
// first available one when no default is flagged.
func GetDefaultDevice() (*DeviceInfo, error) {
	devices, err := ListDevices()
	if err != nil {
		return nil, err
	}
	for i := range devices {
		if devices[i].IsDefault {
			return &devices[i], nil
		}
	}
	if len(devices) > 0 {
		return &devices[0], nil
	}
	return nil, fmt.Errorf("no capture devices found")
}

// FindDeviceByName matches a capture device by case-insensitive
// substring.
func FindDeviceByName(name string) (*DeviceInfo, error) {
	devices, err := ListDevices()
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(name)
	for i := range devices {
		if strings.Contains(strings.ToLower(devices[i].Name), needle) {
			return &devices[i], nil
		}
	}
	return nil, fmt.Errorf("no device found matching name: %s", name)
}
