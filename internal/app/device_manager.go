package app

import (
	"fmt"
	"os"

	"github.com/lexvoice/lexvoice/internal/audio"
)

// DeviceManager handles audio device selection and listing
type DeviceManager struct{}

// NewDeviceManager creates a new DeviceManager instance
func NewDeviceManager() *DeviceManager {
	return &DeviceManager{}
}

// ListDevices lists all available audio input devices
func (dm *DeviceManager) ListDevices() error {
	devices, err := audio.ListDevices()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to list devices: %v\n", err)
		return err
	}

	if len(devices) == 0 {
		fmt.Println("No audio capture devices found.")
		return fmt.Errorf("no devices found")
	}

	fmt.Printf("Found %d capture device(s):\n\n", len(devices))

	for i, device := range devices {
		marker := ""
		if device.IsDefault {
			marker = " [DEFAULT]"
		}
		fmt.Printf("%d. %s%s\n", i+1, device.Name, marker)
		fmt.Printf("   ID: %s\n", device.ID)
		if device.MaxChannels > 0 {
			fmt.Printf("   Max Channels: %d\n", device.MaxChannels)
		}
		fmt.Println()
	}

	fmt.Println("To use a specific device, run:")
	fmt.Println("  lexvoice --device \"<device-name>\"")

	return nil
}

// SelectDevice selects an audio device by name/ID, or returns default
func (dm *DeviceManager) SelectDevice(deviceName string) (*audio.DeviceInfo, error) {
	devices, err := audio.ListDevices()
	if err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}

	if len(devices) == 0 {
		return nil, fmt.Errorf("no audio capture devices found")
	}

	if deviceName == "" {
		defaultDevice, err := audio.GetDefaultDevice()
		if err != nil {
			return nil, fmt.Errorf("failed to get default device: %w", err)
		}
		return defaultDevice, nil
	}

	for i := range devices {
		if devices[i].Name == deviceName || devices[i].ID == deviceName {
			return &devices[i], nil
		}
	}

	fmt.Fprintf(os.Stderr, "Error: Device '%s' not found\n\n", deviceName)
	fmt.Println("Available devices:")
	for i, device := range devices {
		marker := ""
		if device.IsDefault {
			marker = " [DEFAULT]"
		}
		fmt.Printf("  %d. %s%s\n", i+1, device.Name, marker)
	}
	fmt.Println()
	fmt.Println("Use --list-devices for more details")
	return nil, fmt.Errorf("invalid audio device specified")
}
