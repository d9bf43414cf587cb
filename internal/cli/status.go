package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/DanielPopoola/ficmart-card-gateway/internal/application"
	"github.com/DanielPopoola/ficmart-card-gateway/internal/config"
	"github.com/DanielPopoola/ficmart-card-gateway/internal/domain"
	"github.com/DanielPopoola/ficmart-card-gateway/internal/worker"
	"github.com/spf13/cobra"
)

func newStatusCmd(deps Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status <payment-id>",
		Short: "Ask the processor for the status of a payment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd, deps, domain.PaymentID(args[0]))
		},
	}
	cmd.Flags().Bool("wait", false, "Poll until the payment is final or needs a challenge")
	cmd.Flags().Duration("interval", 2*time.Second, "Polling interval with --wait")
	cmd.Flags().Duration("max", 5*time.Minute, "Give up polling after this long with --wait")
	return cmd
}

func runStatus(cmd *cobra.Command, deps Deps, id domain.PaymentID) error {
	client, err := deps.NewClient()
	if err != nil {
		return err
	}

	var resp *domain.PaymentResponse
	if wait, _ := cmd.Flags().GetBool("wait"); wait {
		interval, _ := cmd.Flags().GetDuration("interval")
		maxDuration, _ := cmd.Flags().GetDuration("max")
		poller := worker.NewPoller(client, config.PollerConfig{Interval: interval, MaxDuration: maxDuration}, slog.Default())
		resp, err = poller.Poll(cmd.Context(), id)
		if errors.Is(err, application.ErrPollTimeout) {
			err = nil
		}
	} else {
		resp, err = client.CheckStatus(cmd.Context(), id)
	}
	if resp != nil {
		out, marshalErr := json.MarshalIndent(resp, "", "  ")
		if marshalErr != nil {
			return marshalErr
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
	}
	return err
}
