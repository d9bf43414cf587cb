// Package cli is the operator command line for the card gateway.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/DanielPopoola/ficmart-card-gateway/internal/application"
	"github.com/DanielPopoola/ficmart-card-gateway/internal/config"
	"github.com/DanielPopoola/ficmart-card-gateway/internal/infrastructure/processor"
	"github.com/DanielPopoola/ficmart-card-gateway/internal/infrastructure/signature"
	"github.com/spf13/cobra"
)

// SecretEnv is read when --secret is not given. It matches the key the
// gateway itself loads.
const SecretEnv = "GATEWAY_PROCESSOR__SECRET_KEY"

// Deps lets tests replace the processor connection.
type Deps struct {
	NewClient func() (application.ProcessorClient, error)
}

func NewRootCommand(deps Deps) *cobra.Command {
	root := &cobra.Command{
		Use:           "gatewayctl",
		Short:         "Operator tools for the card gateway",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().String("secret", "", "Processor secret key (default $"+SecretEnv+")")

	root.AddCommand(newSignCmd())
	root.AddCommand(newVerifyCmd())
	root.AddCommand(newCardCmd())
	root.AddCommand(newStatusCmd(deps))
	return root
}

// Execute runs the CLI against the configured processor.
func Execute(version string) error {
	root := NewRootCommand(Deps{NewClient: clientFromConfig})
	root.Version = version
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

func clientFromConfig() (application.ProcessorClient, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	signer, err := signature.NewSigner(cfg.Processor.SecretKey)
	if err != nil {
		return nil, err
	}
	logger := cfg.Logger.NewLogger()
	slog.SetDefault(logger)
	return processor.NewClient(cfg.Processor, signer, logger)
}

func signerFrom(cmd *cobra.Command) (*signature.Signer, error) {
	secret, _ := cmd.Flags().GetString("secret")
	if secret == "" {
		secret = os.Getenv(SecretEnv)
	}
	return signature.NewSigner(secret)
}

// readInput reads the named file, or stdin when the name is empty or "-".
func readInput(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(args[0])
}
