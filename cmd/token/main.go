// Command token mints access tokens for local development against an
// InvoiceFlow server running with jwt.enabled.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/invoiceflow/backend/internal/infrastructure/auth"
	"github.com/invoiceflow/backend/internal/infrastructure/config"
	"github.com/spf13/cobra"
)

var email string

var rootCmd = &cobra.Command{
	Use:   "token <user-id>",
	Short: "Mint a development access token",
	Long: `Signs an access token with the configured jwt.secret and prints it as JSON.

Refuses to run when app.env is production.`,
	Example:      `  token user-42 --email owner@example.com`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if cfg.App.IsProduction() {
			return errors.New("refusing to mint tokens in production")
		}

		token, err := auth.NewJWTService(cfg.JWT).GenerateAccessToken(args[0], email)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(token)
	},
}

func init() {
	rootCmd.Flags().StringVar(&email, "email", "", "Email claim")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
