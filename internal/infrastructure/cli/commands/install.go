package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/doeshing/installez/internal/app"
	"github.com/doeshing/installez/internal/application/install"
	"github.com/doeshing/installez/internal/domain"
	"github.com/doeshing/installez/internal/infrastructure/cli/console"
)

// NewInstallCommand creates the command that installs a batch from the terminal.
func NewInstallCommand(container *app.Container) *cobra.Command {
	var (
		fromJSON bool
		quiet    bool
		details  bool
	)

	cmd := &cobra.Command{
		Use:   "install [app-id...]",
		Short: "Install applications through the package manager",
		Long: `Install applications one at a time, in the order given.

For each identifier installez searches the package manager, skips apps that
are missing or already installed, and installs the rest. An install is retried
once when its output asks for the Terms of Service to be accepted.

Example:
  installez install Git.Git Mozilla.Firefox
  echo '["Git.Git","7zip.7zip"]' | installez install --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := buildRequest(cmd.InOrStdin(), args, fromJSON)
			if err != nil {
				return err
			}
			return runInstall(cmd, container, req, quiet, details)
		},
	}

	cmd.Flags().BoolVar(&fromJSON, "json", false, "Read a JSON array of identifiers from stdin")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Hide streamed package manager output")
	cmd.Flags().BoolVar(&details, "details", false, "Print attempts and exit codes after the summary")
	return cmd
}

func buildRequest(in io.Reader, args []string, fromJSON bool) (domain.InstallRequest, error) {
	if fromJSON {
		if len(args) > 0 {
			return domain.InstallRequest{}, fmt.Errorf("--json cannot be combined with app-id arguments")
		}
		raw, err := io.ReadAll(in)
		if err != nil {
			return domain.InstallRequest{}, fmt.Errorf("read stdin: %w", err)
		}
		return install.DecodeRequest(raw)
	}
	if len(args) == 0 {
		return domain.InstallRequest{}, fmt.Errorf(ErrNoApps)
	}
	return install.NewRequest(args), nil
}

func runInstall(cmd *cobra.Command, container *app.Container, req domain.InstallRequest, quiet, details bool) error {
	if container.Installer == nil {
		return fmt.Errorf(ErrInstallerUnavailable)
	}

	shell := console.NewTerminalShell(cmd.OutOrStdout(), cmd.ErrOrStderr(), quiet)
	res, err := container.Installer.Process(cmd.Context(), req, shell)
	if err != nil {
		return err
	}
	if details {
		console.PrintResult(cmd.OutOrStdout(), res)
	}

	failed := 0
	for _, r := range res.Results {
		if r.Outcome == domain.OutcomeFailed {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d apps failed to install", failed, len(res.Results))
	}
	return nil
}
