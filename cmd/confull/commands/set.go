package commands

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

func setCmd() *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "set <path> <value>",
		Short: "Set the value at a dot-separated path and save",
		Long: "set stores a value at the given path, creating intermediate tables as\n" +
			"needed. Values are parsed as JSON when possible (numbers, booleans,\n" +
			"objects, arrays), otherwise kept as plain strings.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Set(args[0], parseValue(args[1], raw)); err != nil {
				return err
			}
			return store.Save()
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "store the value as a string without JSON parsing")
	return cmd
}

// parseValue interprets a command-line value. JSON parsing covers numbers,
// booleans, null, arrays and objects; anything that fails to parse is a
// plain string.
func parseValue(arg string, raw bool) any {
	if raw {
		return arg
	}
	var v any
	if err := json.Unmarshal([]byte(arg), &v); err != nil {
		return arg
	}
	return v
}
