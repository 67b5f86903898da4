package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alecgard/fiveplanner/internal/auth"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the admin key",
}

var authKeygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate an admin key and the hash to configure",
	RunE: func(cmd *cobra.Command, args []string) error {
		key, hash, err := auth.GenerateAdminKey()
		if err != nil {
			return err
		}
		fmt.Printf("Admin key:  %s\n", key)
		fmt.Printf("Hash:       %s\n", hash)
		fmt.Printf("\nSet auth.admin_key_hash (or FIVEPLANNER_ADMIN_KEY_HASH) to the hash.\n")
		fmt.Printf("The key is shown only once.\n")
		return nil
	},
}

func init() {
	authCmd.AddCommand(authKeygenCmd)
	rootCmd.AddCommand(authCmd)
}
