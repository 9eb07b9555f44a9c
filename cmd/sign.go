package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/isometry/gh-sponsor-relay/internal/config"
	"github.com/isometry/gh-sponsor-relay/internal/sponsorship"
	"github.com/isometry/gh-sponsor-relay/internal/validation"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func cmdSign() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sign [file]",
		Short: "Print the signature header value for a payload read from file or stdin",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := readPayload(cmd, args)
			if err != nil {
				return err
			}
			if err := resolveSecrets(cmd.Context()); err != nil {
				return err
			}
			if config.GitHub.WebhookSecret == "" {
				return sponsorship.NewError(sponsorship.KindMissingSecret, "GITHUB_SECRET is not configured")
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), validation.NewWebhookSecret(config.GitHub.WebhookSecret).Sign(body))
			return err
		},
	}

	return cmd
}

func readPayload(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		body, err := io.ReadAll(cmd.InOrStdin())
		return body, errors.Wrap(err, "failed to read payload from stdin")
	}
	body, err := os.ReadFile(filepath.Clean(args[0]))
	return body, errors.Wrapf(err, "failed to read payload from %s", args[0])
}
