package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dentalcare/booking-api/pkg/security"
)

func hashPasskeyCmd() *cobra.Command {
	var cost int
	cmd := &cobra.Command{
		Use:   "hash-passkey <passkey>",
		Short: "Print the bcrypt hash to use as admin.passkey_hash",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := security.NewBcryptHasher(cost).Hash(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
	cmd.Flags().IntVar(&cost, "cost", 12, "bcrypt cost")
	return cmd
}
