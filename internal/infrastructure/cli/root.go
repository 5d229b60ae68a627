package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/doeshing/installez/internal/app"
	"github.com/doeshing/installez/internal/infrastructure/cli/commands"
)

// Options holds CLI-level configuration.
type Options struct {
	ConfigPath string
	Verbose    bool
}

// NewRootCmd wires the cobra root command. The returned container must be
// closed by the caller once the command has run.
func NewRootCmd(ctx context.Context, opts Options) (*cobra.Command, *app.Container, error) {
	container, err := app.BuildContainer(ctx, app.Options{
		ConfigPath: opts.ConfigPath,
		Verbose:    opts.Verbose,
	})
	if err != nil {
		return nil, nil, err
	}

	root := &cobra.Command{
		Use:   "installez",
		Short: "installez - batch app installer for winget",
		Long: "installez installs applications through winget, one at a time, " +
			"streaming package manager output to the terminal or to a web view bridge.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		commands.NewInstallCommand(container),
		commands.NewBridgeCommand(container),
		commands.NewHistoryCommand(container),
		commands.NewDoctorCommand(container),
		commands.NewConfigCommand(container),
		commands.NewVersionCommand(),
	)
	return root, container, nil
}
