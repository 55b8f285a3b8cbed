package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/lexvoice/lexvoice/internal/input"
)

// RunPushToTalk runs the assistant with a global hotkey gating the
// microphone instead of continuous listening. Each press toggles
// capture; the finalized utterance is answered as usual.
func (a *Assistant) RunPushToTalk(ctx context.Context, hotkeyStr string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := a.setup(ctx); err != nil {
		return err
	}
	defer a.teardown()

	// Hotkey mode drives start/stop explicitly, never auto-restart.
	a.controller.SetAutoListen(false)

	toggleChan := make(chan bool, 10)
	hotkeyMgr := input.NewHotkeyManager(func(listening bool) {
		toggleChan <- listening
	})

	if err := hotkeyMgr.Start(ctx, hotkeyStr); err != nil {
		return fmt.Errorf("failed to start hotkey listener: %w", err)
	}
	defer hotkeyMgr.Stop()

	stopInterrupt, err := a.startInterruptHotkey(ctx)
	if err != nil {
		return err
	}
	defer stopInterrupt()

	// Handle Ctrl+C
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	a.console.Info(fmt.Sprintf("Push-to-talk mode. Press %s to toggle the microphone.", hotkeyStr))
	a.console.Info("Press Ctrl+C to exit.")

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-sigChan:
			fmt.Println("\n\nExiting...")
			return nil

		case listening := <-toggleChan:
			if listening {
				a.console.Info("[Listening]")
				a.controller.Reset()
				a.controller.StartListening()
			} else {
				a.console.Info("[Stopped]")
				a.controller.StopListening()
			}
		}
	}
}
