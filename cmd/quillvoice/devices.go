package main

import (
	"fmt"

	"github.com/gen2brain/malgo"
	"github.com/spf13/cobra"
)

// devicesCmd represents the devices command
var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List available audio devices",
	RunE: func(cmd *cobra.Command, args []string) error {
		audioCtx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(string) {})
		if err != nil {
			return fmt.Errorf("failed to initialize audio context: %w", err)
		}
		defer func() {
			_ = audioCtx.Uninit()
			audioCtx.Free()
		}()

		captureDevices, err := audioCtx.Devices(malgo.Capture)
		if err != nil {
			return fmt.Errorf("failed to enumerate capture devices: %w", err)
		}
		fmt.Println("Capture devices:")
		for _, device := range captureDevices {
			fmt.Printf("  %s\n", device.Name())
		}

		playbackDevices, err := audioCtx.Devices(malgo.Playback)
		if err != nil {
			return fmt.Errorf("failed to enumerate playback devices: %w", err)
		}
		fmt.Println("Playback devices:")
		for _, device := range playbackDevices {
			fmt.Printf("  %s\n", device.Name())
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(devicesCmd)
}
