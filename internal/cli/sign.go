package cli

import (
	"errors"
	"fmt"

	"github.com/DanielPopoola/ficmart-card-gateway/internal/domain"
	"github.com/DanielPopoola/ficmart-card-gateway/internal/infrastructure/signature"
	"github.com/spf13/cobra"
)

var errSignatureMismatch = errors.New("signature does not match")

func newSignCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sign [file]",
		Short: "Sign a JSON document the way the processor does",
		Long: `Prints the Base64 HMAC-SHA512 of the document's canonical form.
Signature fields are ignored at every level. Reads stdin when no file is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runSign,
	}
	cmd.Flags().Bool("canonical", false, "Also print the canonical string that is signed")
	return cmd
}

func runSign(cmd *cobra.Command, args []string) error {
	signer, err := signerFrom(cmd)
	if err != nil {
		return err
	}
	body, err := readInput(cmd, args)
	if err != nil {
		return err
	}

	tree, err := signature.Tree(body)
	if err != nil {
		return fmt.Errorf("parse document: %w", err)
	}

	out := cmd.OutOrStdout()
	if canonical, _ := cmd.Flags().GetBool("canonical"); canonical {
		fmt.Fprintln(out, signature.Canonicalize(tree))
	}
	fmt.Fprintln(out, signer.SignTree(tree))
	return nil
}

func newVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify [file]",
		Short: "Check the signature embedded in a processor callback",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runVerify,
	}
}

func runVerify(cmd *cobra.Command, args []string) error {
	signer, err := signerFrom(cmd)
	if err != nil {
		return err
	}
	body, err := readInput(cmd, args)
	if err != nil {
		return err
	}

	cb, err := domain.ParseCallback(body)
	if err != nil {
		return err
	}
	sig := cb.SignatureValue()
	if sig == "" {
		return fmt.Errorf("%w: document carries no signature", errSignatureMismatch)
	}
	if !signer.Verify(cb.Raw, sig) {
		return errSignatureMismatch
	}

	fmt.Fprintf(cmd.OutOrStdout(), "signature ok (payment %s)\n", cb.PaymentID())
	return nil
}
