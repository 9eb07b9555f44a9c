// Package config provides a centralized entrypoint for the application parameters.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/creasty/defaults"
	"go.yaml.in/yaml/v3"
)

const (
	// ModeService serves webhooks from a standalone HTTP server.
	ModeService = "service"
	// ModeLambda serves webhooks from AWS Lambda.
	ModeLambda = "lambda"

	// SecretsSourceEnv reads the webhook secret and URL from flags, environment or the configuration file.
	SecretsSourceEnv = "env"
	// SecretsSourceSSM reads the webhook secret and URL from AWS SSM Parameter Store.
	SecretsSourceSSM = "ssm"
)

var (
	// Global is a struct that contains the global configuration.
	Global global
	// GitHub is a struct that contains the configuration for GitHub.
	GitHub github
	// Discord is a struct that contains the configuration for the Discord notification sink.
	Discord discord
	// Notification is a struct that contains the configuration for notification formatting.
	Notification notification
	// Service is a struct that contains the configuration for the service mode.
	Service service
	// Lambda is a struct that contains the configuration for the lambda mode.
	Lambda lambda
)

type global struct {
	// Mode is the runtime mode of the application.
	Mode string `yaml:"mode,omitempty" default:"lambda"`
	// Logging is a struct that contains the logging configuration.
	Logging struct {
		// Verbosity is the verbosity level of the application. It represents slog levels.
		Verbosity int `yaml:"verbosity,omitempty"`
		// CallerTrace is a flag that enables the caller trace in the logger.
		CallerTrace bool `yaml:"callerTrace,omitempty"`
	} `yaml:"logging,omitempty"`
	// SecretsSource selects where the webhook secret and the Discord webhook URL are read from.
	SecretsSource string `yaml:"secretsSource,omitempty" default:"env"`
}

type github struct {
	// WebhookSecret is the shared secret GitHub signs webhook payloads with.
	WebhookSecret string `yaml:"webhookSecret,omitempty"`
	// WebhookSecretSSMKey is the SSM parameter holding WebhookSecret.
	WebhookSecretSSMKey string `yaml:"webhookSecretSSMKey,omitempty"`
}

type discord struct {
	// WebhookURL is the Discord webhook new sponsorships are posted to.
	WebhookURL string `yaml:"webhookURL,omitempty"`
	// WebhookURLSSMKey is the SSM parameter holding WebhookURL.
	WebhookURLSSMKey string `yaml:"webhookURLSSMKey,omitempty"`
	// Timeout bounds a single delivery.
	Timeout time.Duration `yaml:"timeout,omitempty" default:"10s"`
}

type notification struct {
	// DescriptionTemplate is a text/template rendering the notification body. Empty selects the built-in template.
	DescriptionTemplate string `yaml:"descriptionTemplate,omitempty"`
}

type service struct {
	Path            string        `yaml:"path,omitempty" default:"/"`
	Addr            string        `yaml:"addr,omitempty"`
	Port            string        `yaml:"port,omitempty" default:"8080"`
	Timeout         time.Duration `yaml:"timeout,omitempty" default:"15s"`
	MaxPayloadBytes int64         `yaml:"maxPayloadBytes,omitempty" default:"26214400"`
}

type lambda struct {
	PayloadType string `yaml:"payloadType,omitempty" default:"api-gateway-v2"`
}

// SetDefaults sets the default values for the configuration.
func SetDefaults() error {
	return errors.Join(
		defaults.Set(&Global),
		defaults.Set(&GitHub),
		defaults.Set(&Discord),
		defaults.Set(&Notification),
		defaults.Set(&Service),
		defaults.Set(&Lambda),
	)
}

// LoadFromFile loads the configuration from a file.
func LoadFromFile(path string) error {
	if len(path) == 0 {
		return nil
	}
	fstat, err := os.Stat(path)
	if err != nil {
		return nil //nolint:nilerr // If the file does not exist, we ignore it.
	}
	if fstat.IsDir() {
		return fmt.Errorf("configuration file %s is a directory", path)
	}
	if !fstat.Mode().IsRegular() {
		return fmt.Errorf("configuration file %s is not a regular file", path)
	}

	content, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("failed to read configuration file %s: %w", path, err)
	}
	type all struct {
		Global       global       `yaml:"global,omitempty"`
		GitHub       github       `yaml:"github,omitempty"`
		Discord      discord      `yaml:"discord,omitempty"`
		Notification notification `yaml:"notification,omitempty"`
		Service      service      `yaml:"service,omitempty"`
		Lambda       lambda       `yaml:"lambda,omitempty"`
	}
	var a all
	if err = yaml.Unmarshal(content, &a); err != nil {
		return fmt.Errorf("failed to unmarshal configuration file %s: %w", path, err)
	}
	Global = a.Global
	GitHub = a.GitHub
	Discord = a.Discord
	Notification = a.Notification
	Service = a.Service
	Lambda = a.Lambda

	return nil
}
