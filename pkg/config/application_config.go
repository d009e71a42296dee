package config

import (
	"fmt"
	"time"

	"go.uber.org/zap/zapcore"
)

// Default timeouts of RPC client.
const (
	DefaultDialTimeout    = 4 * time.Second
	DefaultRequestTimeout = 20 * time.Second
)

// Application contains settings of the tool itself.
type Application struct {
	// LogLevel is one of zap levels ("debug", "info", ...).
	LogLevel string `yaml:"LogLevel"`
	// LogEncoding is "console" (default) or "json".
	LogEncoding string `yaml:"LogEncoding"`
	// LogPath redirects logs to the file, stderr is used if empty.
	LogPath        string        `yaml:"LogPath"`
	DialTimeout    time.Duration `yaml:"DialTimeout"`
	RequestTimeout time.Duration `yaml:"RequestTimeout"`
	// MaxConnsPerHost limits the number of connections to the RPC node,
	// zero means no limit.
	MaxConnsPerHost int `yaml:"MaxConnsPerHost"`
	// CredentialsPath is the root of credential files, ~/.near-credentials
	// if empty.
	CredentialsPath string `yaml:"CredentialsPath"`
	// JournalPath is the file where indeterminate submissions are recorded,
	// nothing is recorded if empty.
	JournalPath string `yaml:"JournalPath"`
	// Prometheus configures the metrics exporter.
	Prometheus BasicService `yaml:"Prometheus"`
}

// Validate checks log settings and timeouts.
func (a Application) Validate() error {
	if a.LogLevel != "" {
		if _, err := zapcore.ParseLevel(a.LogLevel); err != nil {
			return fmt.Errorf("invalid LogLevel: %w", err)
		}
	}
	if a.LogEncoding != "" && a.LogEncoding != "console" && a.LogEncoding != "json" {
		return fmt.Errorf("invalid LogEncoding %q", a.LogEncoding)
	}
	if a.DialTimeout < 0 || a.RequestTimeout < 0 {
		return fmt.Errorf("negative timeout")
	}
	if a.MaxConnsPerHost < 0 {
		return fmt.Errorf("negative MaxConnsPerHost")
	}
	return a.Prometheus.Validate()
}
