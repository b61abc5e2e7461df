// Package config loads the host configuration for the quillvoice command.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete host configuration.
type Config struct {
	Relay    RelayConfig    `yaml:"relay"`
	Voice    VoiceConfig    `yaml:"voice"`
	Speech   SpeechConfig   `yaml:"speech"`
	Sessions SessionsConfig `yaml:"sessions"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// RelayConfig contains the chat relay connection settings. The API key is
// deliberately not a file setting; it comes from the environment.
type RelayConfig struct {
	BaseURL   string `yaml:"base_url"`
	Assistant string `yaml:"assistant"`
}

// VoiceConfig contains the conversation loop tuning parameters.
type VoiceConfig struct {
	SilenceThresholdMs int     `yaml:"silence_threshold_ms"`
	SilenceFloor       float64 `yaml:"silence_floor"`
	BargeIn            *bool   `yaml:"barge_in"`
	SystemPrompt       string  `yaml:"system_prompt"`
}

// SpeechConfig contains the recognition and synthesis provider settings.
type SpeechConfig struct {
	RecognitionModel    string `yaml:"recognition_model"`
	RecognitionLanguage string `yaml:"recognition_language"`
	Voice               string `yaml:"voice"`
}

// SessionsConfig contains the conversation persistence settings.
type SessionsConfig struct {
	Dir string `yaml:"dir"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	bargeIn := true
	dir, _ := os.UserHomeDir()

	return &Config{
		Relay: RelayConfig{
			BaseURL: "https://relay.quillchat.io",
		},
		Voice: VoiceConfig{
			SilenceThresholdMs: 1000,
			SilenceFloor:       0.015,
			BargeIn:            &bargeIn,
		},
		Speech: SpeechConfig{
			RecognitionModel:    "nova-3",
			RecognitionLanguage: "en-US",
			Voice:               "aura-asteria-en",
		},
		Sessions: SessionsConfig{
			Dir: filepath.Join(dir, ".quillvoice", "sessions"),
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads and parses the configuration file, applying defaults for
// anything the file leaves unset. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	config := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// Validate performs validation of the configuration.
func (c *Config) Validate() error {
	if err := c.Relay.Validate(); err != nil {
		return fmt.Errorf("relay config: %w", err)
	}

	if err := c.Voice.Validate(); err != nil {
		return fmt.Errorf("voice config: %w", err)
	}

	if err := c.Speech.Validate(); err != nil {
		return fmt.Errorf("speech config: %w", err)
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	return nil
}

func (r *RelayConfig) Validate() error {
	if r.BaseURL == "" {
		return fmt.Errorf("base_url cannot be empty")
	}

	return nil
}

func (v *VoiceConfig) Validate() error {
	if v.SilenceThresholdMs < 1 {
		return fmt.Errorf("silence_threshold_ms must be at least 1, got %d", v.SilenceThresholdMs)
	}

	if v.SilenceFloor <= 0 || v.SilenceFloor >= 1 {
		return fmt.Errorf("silence_floor must be between 0 and 1 (exclusive), got %f", v.SilenceFloor)
	}

	return nil
}

func (s *SpeechConfig) Validate() error {
	if s.RecognitionModel == "" {
		return fmt.Errorf("recognition_model cannot be empty")
	}

	if s.RecognitionLanguage == "" {
		return fmt.Errorf("recognition_language cannot be empty")
	}

	if s.Voice == "" {
		return fmt.Errorf("voice cannot be empty")
	}

	return nil
}

func (l *LoggingConfig) Validate() error {
	validLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLevels[l.Level] {
		return fmt.Errorf("level must be one of [debug, info, warn, error], got '%s'", l.Level)
	}

	return nil
}

// SilenceThreshold returns the end-of-utterance threshold as a time.Duration.
func (v *VoiceConfig) SilenceThreshold() time.Duration {
	return time.Duration(v.SilenceThresholdMs) * time.Millisecond
}

// BargeInEnabled reports whether barge-in is on, defaulting to true when the
// file leaves it unset.
func (v *VoiceConfig) BargeInEnabled() bool {
	return v.BargeIn == nil || *v.BargeIn
}
