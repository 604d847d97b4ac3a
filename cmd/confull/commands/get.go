package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func getCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <path>",
		Short: "Print the value at a dot-separated path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			value, ok := store.Get(args[0])
			if !ok {
				return fmt.Errorf("path not found: %s", args[0])
			}
			switch v := value.(type) {
			case string:
				fmt.Println(v)
			case map[string]any:
				out, err := json.MarshalIndent(v, "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(out))
			default:
				fmt.Println(v)
			}
			return nil
		},
	}
}
