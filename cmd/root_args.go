package cmd

import (
	"time"

	"github.com/isometry/gh-sponsor-relay/internal/config"
	"github.com/isometry/gh-sponsor-relay/internal/helpers"
)

var envMapString = map[*string]boundEnvVar[string]{
	&config.Global.Mode: {
		Name:        "mode",
		Description: "The application runtime mode. Possible values are 'lambda' and 'service'",
		Short:       helpers.Ptr("m"),
	},
	&config.Global.SecretsSource: {
		Name:        "secrets-source",
		Description: "Where the webhook secret and Discord webhook URL are read from. Supported values are 'env' and 'ssm'",
	},
	&config.GitHub.WebhookSecret: {
		Name:        "github-secret",
		Description: "The secret used to validate the signature of incoming GitHub webhook payloads",
		Env:         helpers.Ptr("GITHUB_SECRET"),
	},
	&config.GitHub.WebhookSecretSSMKey: {
		Name:        "github-secret-ssm-key",
		Description: "The SSM parameter holding the GitHub webhook secret",
	},
	&config.Discord.WebhookURL: {
		Name:        "discord-webhook-url",
		Description: "The Discord webhook new sponsorships are posted to",
		Env:         helpers.Ptr("DISCORD_WEBHOOK_URL"),
	},
	&config.Discord.WebhookURLSSMKey: {
		Name:        "discord-webhook-url-ssm-key",
		Description: "The SSM parameter holding the Discord webhook URL",
	},
	&config.Notification.DescriptionTemplate: {
		Name:        "notification-template",
		Description: "A text/template for the notification description. Fields: .Login, .ProfileURL, .Amount",
	},
}

var envMapBool = map[*bool]boundEnvVar[bool]{
	&config.Global.Logging.CallerTrace: {
		Name:        "verbosity-caller-trace",
		Description: "Enable caller trace in logs",
		Short:       helpers.Ptr("V"),
	},
}

var envMapCount = map[*int]boundEnvVar[int]{
	&config.Global.Logging.Verbosity: {
		Name:        "verbosity",
		Description: "Increase logger verbosity (default WarnLevel)",
		Short:       helpers.Ptr("v"),
	},
}

var envMapDuration = map[*time.Duration]boundEnvVar[time.Duration]{
	&config.Discord.Timeout: {
		Name:        "discord-timeout",
		Description: "The timeout for a single Discord delivery",
	},
}
