package commands

import (
	"github.com/spf13/cobra"

	"confull"
)

var (
	file     string
	format   string
	password string
)

func Execute() error {
	root := &cobra.Command{
		Use:   "confull",
		Short: "Inspect and edit configuration files in any supported format",
		Long: "confull reads and writes configuration files in JSON, TOML, YAML, INI\n" +
			"and XML, addressed by dot-separated paths. Encrypted files are handled\n" +
			"transparently when a password is supplied.",
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVarP(&file, "file", "f", "config", "config file path")
	root.PersistentFlags().StringVar(&format, "format", "", "file format (json, toml, yaml, ini, xml); inferred from extension when unset")
	root.PersistentFlags().StringVarP(&password, "password", "p", "", "password for encrypted files")

	root.AddCommand(getCmd(), setCmd(), delCmd(), showCmd(), convertCmd())
	return root.Execute()
}

// openStore opens the target file with the shared flags applied. Mutating
// commands save explicitly, so auto-save stays off.
func openStore() (*confull.Store, error) {
	return confull.NewBuilder().
		WithFile(file).
		WithFormat(format).
		WithAutoSave(false).
		WithPassword(password).
		Build()
}
