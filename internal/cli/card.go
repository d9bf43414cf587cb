package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/DanielPopoola/ficmart-card-gateway/internal/domain"
	"github.com/spf13/cobra"
)

func newCardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "card",
		Short: "Run the card checks the gateway applies before initiation",
		Long: `Reads a card number from stdin so it stays out of shell history,
then checks length, digits, Luhn checksum and expiry. Only the masked number is printed.`,
		Args: cobra.NoArgs,
		RunE: runCard,
	}
	cmd.Flags().Int("month", 0, "Expiry month (1-12)")
	cmd.Flags().Int("year", 0, "Expiry year, two or four digits")
	_ = cmd.MarkFlagRequired("month")
	_ = cmd.MarkFlagRequired("year")
	return cmd
}

func runCard(cmd *cobra.Command, _ []string) error {
	month, _ := cmd.Flags().GetInt("month")
	year, _ := cmd.Flags().GetInt("year")

	scanner := bufio.NewScanner(cmd.InOrStdin())
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return err
		}
		return errors.New("no card number on stdin")
	}
	pan := strings.TrimSpace(scanner.Text())

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "card:   %s\n", domain.MaskPAN(pan))
	fmt.Fprintf(out, "brand:  %s\n", domain.DetectBrand(pan))

	card := domain.Card{PAN: pan, ExpiryMonth: month, ExpiryYear: year}
	if err := card.Validate(); err != nil {
		fmt.Fprintln(out, "result: rejected")
		return err
	}
	fmt.Fprintln(out, "result: ok")
	return nil
}
