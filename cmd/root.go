package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "realty-payments",
	Short: "Payment gateway service",
	Long:  "A payment gateway service for membership checkout via VNPay and Stripe, gateway callbacks, and reconciliation jobs.",
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
