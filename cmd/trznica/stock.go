package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/erazemk/trznica/internal/store"
)

var stockCmd = &cobra.Command{
	Use:   "stock",
	Short: "Mark every product in stock",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		database, err := openDatabase(cfg.DB)
		if err != nil {
			return err
		}
		defer database.Close()

		n, err := store.SetAllInStock(cmd.Context(), database, nil)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Marked %d products in stock.\n", n)
		return nil
	},
}
