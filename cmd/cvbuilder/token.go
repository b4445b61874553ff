package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/cv-builder/internal/server"
)

var tokenCmd = &cobra.Command{
	Use:   "token <owner>",
	Short: "Mint a bearer token for the development résumé service",
	Long:  "Prints a token signed with jwt_secret whose subject is owner. Set it as api_token (CVB_API_TOKEN) for the other commands.",
	Args:  cobra.ExactArgs(1),
	RunE:  runToken,
}

func init() {
	rootCmd.AddCommand(tokenCmd)
}

func runToken(cmd *cobra.Command, args []string) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	jwtConfig, err := a.cfg.JWT()
	if err != nil {
		return err
	}

	token, err := server.NewJWTService(jwtConfig).GenerateToken(args[0])
	if err != nil {
		return fmt.Errorf("failed to mint token: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), token) //nolint:errcheck
	return nil
}
