package cmd

import (
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/isometry/gh-sponsor-relay/internal/config"
	"github.com/isometry/gh-sponsor-relay/internal/handler"
	"github.com/isometry/gh-sponsor-relay/internal/runtime"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func cmdLambda() *cobra.Command {
	cmd := &cobra.Command{
		Use: "lambda",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLambda(cmd)
		},
	}

	bindEnvMap(cmd, lambdaEnvMapString)

	return cmd
}

func runLambda(cmd *cobra.Command) error {
	logger = logger.With("mode", config.ModeLambda)

	rt, err := newLambdaRuntime(cmd)
	if err != nil {
		return errors.Wrap(err, "failed to setup lambda")
	}

	logger.Info("lambda starting...", "payloadType", rt.GetLambdaPayloadType())
	lambda.StartWithOptions(rt.HandleEvent,
		lambda.WithContext(cmd.Context()))
	return nil
}

func newLambdaRuntime(cmd *cobra.Command) (*runtime.Runtime, error) {
	hdl, err := setup(cmd.Context(),
		handler.WithLambdaPayloadType(config.Lambda.PayloadType))
	if err != nil {
		return nil, err
	}
	logger.Debug("creating runtime...")
	return runtime.NewRuntime(hdl,
		runtime.WithLogger(logger.With("component", "runtime"))), nil
}
