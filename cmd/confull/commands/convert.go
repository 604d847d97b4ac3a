package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"confull"
)

func convertCmd() *cobra.Command {
	var toFormat string

	cmd := &cobra.Command{
		Use:   "convert <output-file>",
		Short: "Write the configuration to another file, converting formats",
		Long: "convert re-encodes the configuration into the output file. The target\n" +
			"format is taken from --to, or inferred from the output extension.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			var target confull.Format
			if toFormat != "" {
				target, err = confull.ParseFormat(toFormat)
				if err != nil {
					return err
				}
			}

			if err := store.SaveAs(args[0], target); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringVar(&toFormat, "to", "", "target format (json, toml, yaml, ini, xml)")
	return cmd
}
