package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/doeshing/installez/internal/app"
	"github.com/doeshing/installez/internal/infrastructure/cli/console"
)

// NewBridgeCommand creates the command that serves a UI shell.
func NewBridgeCommand(container *app.Container) *cobra.Command {
	var (
		addr  string
		stdio bool
	)

	cmd := &cobra.Command{
		Use:   "bridge",
		Short: "Serve install requests from a web view",
		Long: `Serve install requests from an embedded web view.

By default a local HTTP bridge is started. POST a JSON array of identifiers to
/api/v1/batches and read the Server-Sent Events response.

With --stdio, one JSON array is read per stdin line. Every outbound message
is one JSON object per line, {"type":"line|summary|alert","text":"..."};
alerts go to stderr, everything else to stdout.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if container.Installer == nil {
				return fmt.Errorf(ErrInstallerUnavailable)
			}
			if stdio {
				err := container.Installer.Serve(cmd.Context(),
					console.NewStdioSource(cmd.InOrStdin()),
					console.NewStdioShell(cmd.OutOrStdout(), cmd.ErrOrStderr()))
				if errors.Is(err, context.Canceled) {
					return nil
				}
				return err
			}
			if addr == "" {
				addr = container.Config.Bridge.Addr
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "installez bridge listening on http://%s\n", addr)
			return container.Bridge().ListenAndServe(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config)")
	cmd.Flags().BoolVar(&stdio, "stdio", false, "Exchange messages over stdin/stdout instead of HTTP")
	return cmd
}
