package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/quillchat/voice-core/internal/config"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "quillvoice",
	Short: "Hands-free voice conversations with a QuillChat assistant",
	Long: `quillvoice runs a continuous Listen-Process-Speak loop against a
QuillChat assistant: it captures microphone audio, transcribes it, streams
the assistant's reply, and speaks it back. Interrupt the reply by talking
over it.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default is $HOME/.quillvoice/config.yaml)")
}

func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(home, ".quillvoice", "config.yaml")
	}

	return config.Load(path)
}
