package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"igmonthly/pkg/auth"
	"igmonthly/pkg/config"
	"igmonthly/pkg/ui"
)

// authCmd represents the auth command
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage Instagram credentials and freezes",
	Long: `Manage stored Instagram credentials and account freeze files.

Credentials are stored using:
  - System keychain (when available)
  - Encrypted file with PBKDF2 key derivation
  - Environment variables (IGMONTHLY_USERNAME / IGMONTHLY_PASSWORD)

Freeze files park an account after repeated blocks or challenges so no
further login attempts are made until they expire.

Never share your credentials or config files!`,
}

// loginCmd represents the auth login command
var loginCmd = &cobra.Command{
	Use:   "login [username]",
	Short: "Store Instagram credentials securely",
	Long: `Store Instagram credentials securely in the system keychain or encrypted file.

You will be prompted for:
  - Instagram username (if not provided)
  - Password (hidden as you type)
  - User Agent (optional, press Enter for default)`,
	Example: `  # Interactive login
  igmonthly auth login

  # Login with username
  igmonthly auth login myusername`,
	Args: cobra.MaximumNArgs(1),
	Run:  runLogin,
}

// logoutCmd represents the auth logout command
var logoutCmd = &cobra.Command{
	Use:   "logout [username]",
	Short: "Remove stored credentials",
	Long: `Remove stored Instagram credentials.

If no username is provided, you will be shown a list of stored accounts
to choose from. You can also remove all accounts at once.`,
	Example: `  # Interactive logout
  igmonthly auth logout

  # Logout specific account
  igmonthly auth logout myusername`,
	Args: cobra.MaximumNArgs(1),
	Run:  runLogout,
}

// listCmd represents the auth list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all stored accounts",
	Long:  `List all stored Instagram accounts with sanitized credential information.`,
	Run:   runList,
}

// statusCmd represents the auth status command
var statusCmd = &cobra.Command{
	Use:   "status [username]",
	Short: "Show freeze and session state for stored accounts",
	Long: `Show whether stored accounts are frozen and until when.

A frozen account is skipped by 'igmonthly run' until the freeze expires or
is cleared with 'igmonthly auth unfreeze'.`,
	Args: cobra.MaximumNArgs(1),
	Run:  runStatus,
}

// unfreezeCmd represents the auth unfreeze command
var unfreezeCmd = &cobra.Command{
	Use:   "unfreeze <username>",
	Short: "Clear the freeze file for an account",
	Long: `Clear the freeze file for an account so logins are attempted again.

Only do this once the block or challenge that caused the freeze has been
resolved in the Instagram app or browser.`,
	Args: cobra.ExactArgs(1),
	Run:  runUnfreeze,
}

// guideCmd represents the auth guide command
var guideCmd = &cobra.Command{
	Use:   "guide",
	Short: "Show the login and recovery walkthrough",
	Run: func(cmd *cobra.Command, args []string) {
		auth.ShowLoginGuide()
	},
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(listCmd)
	authCmd.AddCommand(statusCmd)
	authCmd.AddCommand(unfreezeCmd)
	authCmd.AddCommand(guideCmd)
}

func runLogin(cmd *cobra.Command, args []string) {
	manager, err := auth.NewManager()
	if err != nil {
		ui.PrintError("Failed to initialize credential manager", err.Error())
		os.Exit(1)
	}

	var username string
	if len(args) > 0 {
		username = args[0]
	}

	reader := bufio.NewReader(os.Stdin)

	if username == "" {
		fmt.Print("📱 Instagram username: ")
		input, err := reader.ReadString('\n')
		if err != nil {
			ui.PrintError("Failed to read username", err.Error())
			os.Exit(1)
		}
		username = strings.TrimSpace(input)
	}

	if username == "" {
		ui.PrintError("Username is required", "")
		os.Exit(1)
	}

	// Check if account already exists
	if existing, _ := manager.Retrieve(username); existing != nil {
		fmt.Printf("\n⚠️  Account '%s' already exists. Update credentials? (y/N): ", username)
		input, _ := reader.ReadString('\n')
		if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(input)), "y") {
			return
		}
	}

	var password string
	for {
		fmt.Print("🔐 Password (hidden): ")
		password, err = readPassword()
		if err != nil {
			ui.PrintError("Failed to read password", err.Error())
			os.Exit(1)
		}
		if password == "" {
			fmt.Println("\n❌ Password cannot be empty.")
			fmt.Print("Try again? (Y/n): ")
			retry, _ := reader.ReadString('\n')
			if strings.ToLower(strings.TrimSpace(retry)) == "n" {
				os.Exit(1)
			}
			continue
		}
		break
	}

	// Optional: Get user agent
	fmt.Print("\n🌐 User Agent (press Enter to use default): ")
	agent, _ := reader.ReadString('\n')
	agent = strings.TrimSpace(agent)

	account := &auth.Account{
		Username:     username,
		Password:     password,
		UserAgent:    agent,
		LastModified: time.Now(),
	}

	fmt.Println("\n💾 Storing credentials securely...")
	if err := manager.Store(account); err != nil {
		ui.PrintError("Failed to store credentials", err.Error())
		os.Exit(1)
	}

	accounts, _ := manager.List()
	if len(accounts) == 1 {
		fmt.Printf("✅ Set '%s' as default account\n", username)
	}

	fmt.Println("\n🎉 Credentials stored successfully!")
	ui.PrintSuccess(fmt.Sprintf("Account saved: %s", username))

	fmt.Println("\n🔒 Security Information:")
	fmt.Println("   Your credentials are encrypted and stored in:")
	if auth.IsKeyringAvailable() {
		fmt.Println("   • System keychain (primary)")
	}
	fmt.Println("   • Encrypted file (backup)")

	fmt.Println("\n📖 Quick Start Guide:")
	fmt.Println("   Count monthly posts for any public profile:")
	fmt.Printf("   $ igmonthly run <handle> --from 2024-01 --to 2024-03\n")
	fmt.Println("\n   Use specific account:")
	fmt.Printf("   $ igmonthly run <handle> --from 2024-01 --account %s\n", username)
	fmt.Println("\n   Show more options:")
	fmt.Printf("   $ igmonthly run --help\n")
	fmt.Println("\n⚠️  Never share your credentials or config files!")
}

func runLogout(cmd *cobra.Command, args []string) {
	manager, err := auth.NewManager()
	if err != nil {
		ui.PrintError("Failed to initialize credential manager", err.Error())
		os.Exit(1)
	}

	if len(args) == 0 {
		accounts, err := manager.List()
		if err != nil || len(accounts) == 0 {
			ui.PrintError("No stored accounts found", "")
			return
		}

		if len(accounts) == 1 {
			account := accounts[0]
			reader := bufio.NewReader(os.Stdin)
			fmt.Printf("Remove account '%s'? (y/N): ", account.Username)
			input, _ := reader.ReadString('\n')
			if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(input)), "y") {
				return
			}

			if err := manager.Delete(account.Username); err != nil {
				ui.PrintError("Failed to remove account", err.Error())
				os.Exit(1)
			}
			ui.PrintSuccess("Account removed: " + account.Username)
			return
		}

		// Multiple accounts, show menu
		fmt.Println("Select account to remove:")
		for i, account := range accounts {
			fmt.Printf("  %d. %s\n", i+1, account.Username)
		}
		fmt.Printf("  %d. Remove all accounts\n", len(accounts)+1)
		fmt.Printf("  0. Cancel\n\n")

		reader := bufio.NewReader(os.Stdin)
		fmt.Print("Choice: ")
		input, _ := reader.ReadString('\n')

		var choice int
		fmt.Sscanf(strings.TrimSpace(input), "%d", &choice)

		if choice == 0 {
			return
		} else if choice == len(accounts)+1 {
			fmt.Print("Remove ALL accounts? This cannot be undone! (yes/N): ")
			confirm, _ := reader.ReadString('\n')
			if strings.TrimSpace(confirm) != "yes" {
				return
			}

			if err := manager.DeleteAll(); err != nil {
				ui.PrintError("Failed to remove all accounts", err.Error())
				os.Exit(1)
			}
			ui.PrintSuccess("All accounts removed")
			return
		} else if choice > 0 && choice <= len(accounts) {
			account := accounts[choice-1]
			if err := manager.Delete(account.Username); err != nil {
				ui.PrintError("Failed to remove account", err.Error())
				os.Exit(1)
			}
			ui.PrintSuccess("Account removed: " + account.Username)
			return
		} else {
			ui.PrintError("Invalid choice", "")
			os.Exit(1)
		}
	}

	username := args[0]
	if err := manager.Delete(username); err != nil {
		ui.PrintError("Failed to remove account", err.Error())
		os.Exit(1)
	}
	ui.PrintSuccess("Account removed: " + username)
}

func runList(cmd *cobra.Command, args []string) {
	manager, err := auth.NewManager()
	if err != nil {
		ui.PrintError("Failed to initialize credential manager", err.Error())
		os.Exit(1)
	}

	accounts, err := manager.List()
	if err != nil {
		ui.PrintError("Failed to list accounts", err.Error())
		os.Exit(1)
	}

	if len(accounts) == 0 {
		ui.PrintInfo("No stored accounts", "Use 'igmonthly auth login' to add an account")
		return
	}

	ui.PrintHighlight("Stored Accounts")
	fmt.Println()

	for i, account := range accounts {
		sanitized := auth.SanitizeAccount(account)
		fmt.Printf("%d. Username: %s\n", i+1, sanitized.Username)
		fmt.Printf("   Password: %s\n", sanitized.Password)
		if sanitized.UserAgent != "" {
			fmt.Printf("   User Agent: %s\n", sanitized.UserAgent)
		}
		fmt.Printf("   Last Modified: %s\n", sanitized.LastModified.Format("2006-01-02 15:04:05"))
		fmt.Println()
	}
}

func runStatus(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		os.Exit(1)
	}

	freezes, err := auth.NewFreezeStore(&cfg.Session)
	if err != nil {
		ui.PrintError("Failed to open freeze store", err.Error())
		os.Exit(1)
	}

	var usernames []string
	if len(args) > 0 {
		usernames = args
	} else {
		manager, err := auth.NewManager()
		if err != nil {
			ui.PrintError("Failed to initialize credential manager", err.Error())
			os.Exit(1)
		}
		accounts, err := manager.List()
		if err != nil || len(accounts) == 0 {
			ui.PrintInfo("No stored accounts", "Use 'igmonthly auth login' to add an account")
			return
		}
		for _, account := range accounts {
			usernames = append(usernames, account.Username)
		}
	}

	ui.PrintHighlight("Account Status")
	fmt.Println()

	for _, username := range usernames {
		freeze, err := freezes.Get(username)
		if err != nil {
			ui.PrintError("Failed to read freeze state for "+username, err.Error())
			continue
		}

		fmt.Printf("Username: %s\n", username)
		switch {
		case freeze == nil:
			fmt.Println("   Status: active")
		case freeze.Indefinite:
			fmt.Printf("   Status: FROZEN indefinitely (%s)\n", freeze.Reason)
		case freeze.Expired(time.Now()):
			fmt.Printf("   Status: freeze expired %s (%s)\n",
				freeze.Until.Format("2006-01-02 15:04"), freeze.Reason)
		default:
			fmt.Printf("   Status: FROZEN until %s (%s)\n",
				freeze.Until.Format("2006-01-02 15:04"), freeze.Reason)
		}
		fmt.Println()
	}
}

func runUnfreeze(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		os.Exit(1)
	}

	freezes, err := auth.NewFreezeStore(&cfg.Session)
	if err != nil {
		ui.PrintError("Failed to open freeze store", err.Error())
		os.Exit(1)
	}

	username := args[0]
	if err := freezes.Clear(username); err != nil {
		ui.PrintError("Failed to clear freeze", err.Error())
		os.Exit(1)
	}
	ui.PrintSuccess("Freeze cleared: " + username)
}

// readPassword reads a password from stdin without echoing
func readPassword() (string, error) {
	if term.IsTerminal(int(syscall.Stdin)) {
		password, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println() // New line after password
		if err == nil {
			return string(password), nil
		}
	}

	// Fallback to regular input
	reader := bufio.NewReader(os.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(input), nil
}
