package commands

import (
	"fmt"
	"os/exec"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/edusurvey/edusurvey/internal/notify"
)

// NewOpenCmd creates the open command
func NewOpenCmd(env *Env) *cobra.Command {
	var printOnly bool

	cmd := &cobra.Command{
		Use:   "open",
		Short: "Open the local web UI in a browser",
		Long: `Open the local web UI in a browser.

The web UI must be running (edusurvey-web) on the configured WEB_ADDRESS.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := env.Open(notify.Discard{})
			if err != nil {
				return err
			}
			defer a.Close()

			url := fmt.Sprintf("http://%s", a.Config.Web.Address)
			fmt.Fprintf(env.Out, "URL: %s\n", url)
			if printOnly {
				return nil
			}

			if err := openBrowser(url); err != nil {
				return fmt.Errorf("failed to open browser: %w\nPlease visit: %s", err, url)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&printOnly, "print", false, "Only print the URL")

	return cmd
}

// openBrowser opens the URL in the default browser
func openBrowser(url string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	return cmd.Start()
}
