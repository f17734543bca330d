package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/spf13/cobra"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and change routing and storage settings.

Settings are stored in ~/.routy/config.toml (or $ROUTY_HOME/config.toml).
ROUTY_DB_DRIVER and ROUTY_MYSQL_DSN override the storage settings at startup.`,
	Args: cobra.NoArgs,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	Args:  cobra.NoArgs,
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change one setting",
	Long: `Change one setting. The value is validated together with the other
settings before it is saved.

Examples:
  routy settings set home.name "Home"
  routy settings set routes.tolerance_percent 12.5`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsWizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Interactive setup wizard",
	Long:  `Walk through every setting. Press Enter to keep the current value.`,
	Args:  cobra.NoArgs,
	RunE:  runSettingsWizard,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsWizardCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	for _, key := range settingsService.Keys() {
		value, err := settingsService.Value(key)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", key, err)
		}
		if key == "storage.mysql_dsn" {
			value = maskDSN(value)
		}
		if value == "" {
			value = "(not set)"
		}
		cmd.Printf("  %-31s %s\n", key, value)
	}
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	if err := settingsService.Set(args[0], args[1]); err != nil {
		return fmt.Errorf("failed to save %s: %w", args[0], err)
	}
	cmd.Printf("%s updated.\n", args[0])
	return nil
}

func runSettingsWizard(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	cmd.Println("Routy Setup Wizard")
	cmd.Println("==================")
	cmd.Println("Press Enter to keep the value in brackets.")
	cmd.Println()

	reader := bufio.NewReader(cmd.InOrStdin())
	for _, key := range settingsService.Keys() {
		current, err := settingsService.Value(key)
		if err != nil {
			return err
		}
		shown := current
		if key == "storage.mysql_dsn" {
			shown = maskDSN(current)
		}

		for {
			cmd.Printf("%s [%s]: ", key, shown)
			input, eof := readLine(reader)
			if input == "" || input == current {
				if eof {
					cmd.Println()
					return nil
				}
				break
			}
			if err := settingsService.Set(key, input); err != nil {
				cmd.Printf("  %v\n", err)
				if eof {
					return err
				}
				continue
			}
			break
		}
	}

	cmd.Println()
	cmd.Println("Settings saved.")
	return nil
}

// readLine returns the trimmed next line and whether input is exhausted.
func readLine(reader *bufio.Reader) (string, bool) {
	line, err := reader.ReadString('\n')
	return strings.TrimSpace(line), errors.Is(err, io.EOF)
}

// maskDSN hides the password of a MySQL DSN in either URL or native form.
func maskDSN(dsn string) string {
	if dsn == "" {
		return ""
	}
	if u, err := url.Parse(dsn); err == nil && u.Scheme != "" && u.User != nil {
		if _, ok := u.User.Password(); ok {
			u.User = url.UserPassword(u.User.Username(), "****")
			return strings.Replace(u.String(), "%2A%2A%2A%2A", "****", 1)
		}
		return dsn
	}
	at := strings.LastIndex(dsn, "@")
	colon := strings.Index(dsn, ":")
	if at < 0 || colon < 0 || colon > at {
		return dsn
	}
	return dsn[:colon+1] + "****" + dsn[at:]
}
