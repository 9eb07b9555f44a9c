package cmd

import (
	"context"

	"github.com/isometry/gh-sponsor-relay/internal/config"
	"github.com/isometry/gh-sponsor-relay/internal/controllers/aws"
	"github.com/isometry/gh-sponsor-relay/internal/controllers/discord"
	"github.com/isometry/gh-sponsor-relay/internal/handler"
	"github.com/isometry/gh-sponsor-relay/internal/sponsorship"
	"github.com/pkg/errors"
)

// parameterStore is swapped in tests to avoid reaching AWS.
var parameterStore = func(ctx context.Context) (config.ParameterStore, error) {
	return aws.NewController(
		aws.WithContext(ctx),
		aws.WithLogger(logger))
}

// resolveSecrets fetches the secrets from SSM when configured to do so.
func resolveSecrets(ctx context.Context) error {
	var store config.ParameterStore
	if config.Global.SecretsSource == config.SecretsSourceSSM {
		logger.Debug("creating SSM parameter store...")
		s, err := parameterStore(ctx)
		if err != nil {
			return errors.Wrap(err, "failed to create parameter store")
		}
		store = s
	}
	return config.ResolveSecrets(store)
}

// setup resolves the configuration and assembles the sponsorship handler.
func setup(ctx context.Context, opts ...handler.Option) (*handler.Handler, error) {
	if err := resolveSecrets(ctx); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	description, err := sponsorship.NewDescriptionTemplate(config.Notification.DescriptionTemplate)
	if err != nil {
		return nil, err
	}

	logger.Debug("creating discord controller...")
	notifier := discord.NewController(
		discord.WithWebhookURL(config.Discord.WebhookURL),
		discord.WithTimeout(config.Discord.Timeout),
		discord.WithLogger(logger.With("component", "discord")))

	logger.Debug("creating sponsorship handler...")
	hdl, err := handler.NewSponsorshipHandler(append([]handler.Option{
		handler.WithWebhookSecret(config.GitHub.WebhookSecret),
		handler.WithNotifier(notifier),
		handler.WithDescriptionTemplate(description),
		handler.WithLogger(logger.With("component", "sponsorship-handler")),
	}, opts...)...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create sponsorship handler")
	}
	return hdl, nil
}
