package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"flickrcrawler/pkg/auth"
	errs "flickrcrawler/pkg/errors"
	"flickrcrawler/pkg/ui"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the Flickr API key",
	Long: `Manage stored Flickr API keys.

Keys are stored using:
  - System keychain (when available)
  - Encrypted file with PBKDF2 key derivation
  - FLICKRCRAWLER_API_KEY environment variable (read only)`,
}

var authSetCmd = &cobra.Command{
	Use:   "set [profile]",
	Short: "Store a Flickr API key",
	Long: `Store a Flickr API key in the system keychain or encrypted file.

Without --key you are prompted for the key; input is hidden.`,
	Example: `  # Interactive
  flickrcrawler auth set

  # Non-interactive, under a named profile
  flickrcrawler auth set work --key 0123456789abcdef0123456789abcdef`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAuthSet,
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show stored API keys",
	RunE:  runAuthStatus,
}

var authRemoveCmd = &cobra.Command{
	Use:   "remove [profile]",
	Short: "Remove a stored API key",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runAuthRemove,
}

var authGuideCmd = &cobra.Command{
	Use:   "guide",
	Short: "Explain how to get a Flickr API key",
	Run: func(cmd *cobra.Command, args []string) {
		auth.ShowAPIKeyGuide(cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(authSetCmd, authStatusCmd, authRemoveCmd, authGuideCmd)

	authSetCmd.Flags().String("key", "", "API key (skips the prompt)")
	authSetCmd.Flags().String("secret", "", "API secret (optional)")
}

func profileArg(args []string) string {
	if len(args) > 0 && args[0] != "" {
		return args[0]
	}
	return auth.DefaultProfile
}

func runAuthSet(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		return errs.Wrap(errs.ErrorTypeAuth, err, "failed to initialize credential manager")
	}

	profile := profileArg(args)
	key, _ := cmd.Flags().GetString("key")
	secret, _ := cmd.Flags().GetString("secret")

	if key == "" {
		auth.ShowQuickGuide(cmd.OutOrStdout())
		fmt.Fprint(cmd.OutOrStdout(), "\nFlickr API key: ")
		key, err = readSecret()
		if err != nil {
			return errs.Wrap(errs.ErrorTypeInvalidInput, err, "failed to read API key")
		}
	}
	key = strings.TrimSpace(key)

	if err := auth.ValidateKey(key); err != nil {
		return errs.Wrap(errs.ErrorTypeInvalidInput, err, "rejected API key")
	}

	stored := &auth.APIKey{Profile: profile, Key: key, Secret: secret}
	if err := manager.Store(stored); err != nil {
		return errs.Wrap(errs.ErrorTypeAuth, err, "failed to store API key")
	}

	ui.PrintSuccess(fmt.Sprintf("API key saved for profile '%s'", profile))
	ui.PrintInfo("Stored in", stored.Source)
	return nil
}

func runAuthStatus(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		return errs.Wrap(errs.ErrorTypeAuth, err, "failed to initialize credential manager")
	}

	keys, err := manager.List()
	if err != nil {
		return errs.Wrap(errs.ErrorTypeAuth, err, "failed to list API keys")
	}
	if len(keys) == 0 {
		ui.PrintWarning("No API key stored", "run 'flickrcrawler auth set'")
		return nil
	}

	ui.PrintHighlight("Stored API keys")
	out := cmd.OutOrStdout()
	for i, key := range keys {
		masked := auth.Masked(key)
		fmt.Fprintf(out, "%d. Profile: %s\n", i+1, masked.Profile)
		fmt.Fprintf(out, "   Key:     %s\n", masked.Key)
		if masked.Secret != "" {
			fmt.Fprintf(out, "   Secret:  %s\n", masked.Secret)
		}
		fmt.Fprintf(out, "   Source:  %s\n", masked.Source)
		fmt.Fprintf(out, "   Updated: %s\n", masked.LastModified.Format("2006-01-02 15:04:05"))
	}
	return nil
}

func runAuthRemove(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		return errs.Wrap(errs.ErrorTypeAuth, err, "failed to initialize credential manager")
	}

	profile := profileArg(args)
	if err := manager.Delete(profile); err != nil {
		return errs.Wrap(errs.ErrorTypeAuth, err, "failed to remove API key")
	}
	ui.PrintSuccess("API key removed: " + profile)
	return nil
}

// readSecret reads a line from stdin without echo when stdin is a terminal.
func readSecret() (string, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		b, err := term.ReadPassword(fd)
		fmt.Println()
		if err == nil {
			return string(b), nil
		}
	}

	input, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && input == "" {
		return "", err
	}
	return strings.TrimSpace(input), nil
}
