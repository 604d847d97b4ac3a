package commands

import (
	"github.com/spf13/cobra"
)

func delCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "del <path>",
		Short: "Delete the value at a dot-separated path and save",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Delete(args[0]); err != nil {
				return err
			}
			return store.Save()
		},
	}
}
