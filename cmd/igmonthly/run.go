package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"igmonthly/pkg/auth"
	"igmonthly/pkg/config"
	errs "igmonthly/pkg/errors"
	"igmonthly/pkg/export"
	"igmonthly/pkg/handles"
	"igmonthly/pkg/instagram"
	"igmonthly/pkg/logger"
	"igmonthly/pkg/report"
	"igmonthly/pkg/scan"
	"igmonthly/pkg/session"
	"igmonthly/pkg/ui"
	"igmonthly/pkg/ui/tui"
)

var (
	// Run command flags
	inputFile   string
	fromMonth   string
	toMonth     string
	accountName string
	outputDir   string
	sessionDir  string
	userAgent   string
	keepLogs    bool
	useTUI      bool
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run [handles...]",
	Short: "Count monthly posts for a batch of Instagram accounts",
	Long: `Count how many posts each target account published in every month of the
given range and export the results as CSV.

Targets can be given as arguments, read from a file with --input, or both.
Each line may contain bare usernames, profile URLs or "IG: handle" notes;
anything recognizable is extracted.

This command requires stored credentials (use 'igmonthly auth login') or the
IGMONTHLY_USERNAME and IGMONTHLY_PASSWORD environment variables.`,
	Example: `  # Count January through March 2024 for two accounts
  igmonthly run alice bob --from 2024-01 --to 2024-03

  # Read targets from a file of notes and URLs
  igmonthly run --input targets.txt --from 2024-06 --to 2024-06

  # Use a specific stored account and output directory
  igmonthly run alice --from 2024-01 --to 2024-02 --account myaccount --output ./reports

  # Interactive terminal UI
  igmonthly run --tui`,
	RunE: func(cmd *cobra.Command, args []string) error {
		runBatch(cmd, args)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&inputFile, "input", "i", "", "file with handles, URLs or notes to extract targets from")
	runCmd.Flags().StringVar(&fromMonth, "from", "", "first month of the range (YYYY-MM)")
	runCmd.Flags().StringVar(&toMonth, "to", "", "last month of the range (YYYY-MM, default: same as --from)")
	runCmd.Flags().StringVarP(&accountName, "account", "a", "", "use specific stored account")
	runCmd.Flags().StringVarP(&outputDir, "output", "o", "", "output directory for exports (default: current directory)")
	runCmd.Flags().StringVar(&sessionDir, "session-dir", "", "directory for cached sessions and freeze files")
	runCmd.Flags().StringVar(&userAgent, "user-agent", "", "override the client user agent")
	runCmd.Flags().BoolVar(&keepLogs, "keep-logs", false, "keep the raw run log after exporting the filtered copy")
	runCmd.Flags().BoolVar(&useTUI, "tui", false, "use interactive terminal UI")
}

func runBatch(cmd *cobra.Command, args []string) {
	// Build flags map from command line
	flags := make(map[string]interface{})
	if outputDir != "" {
		flags["output"] = outputDir
	}
	if sessionDir != "" {
		flags["session-dir"] = sessionDir
	}
	if userAgent != "" {
		flags["user-agent"] = userAgent
	}
	if accountName != "" {
		flags["account"] = accountName
	}
	if logLevel != "info" {
		flags["log-level"] = logLevel
	}

	cfg, err := config.Load(configFile, flags)
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		os.Exit(1)
	}

	if useTUI {
		// The interactive UI owns the terminal.
		cfg.Logging.Console = false
		if err := logger.Initialize(&cfg.Logging); err != nil {
			ui.PrintError("Failed to initialize logging", err.Error())
			os.Exit(1)
		}
		if err := runInteractive(cfg); err != nil {
			ui.PrintError("Interactive UI failed", err.Error())
			os.Exit(1)
		}
		return
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		ui.PrintError("Failed to initialize logging", err.Error())
		os.Exit(1)
	}
	logger.WithField("version", version).Info("igmonthly starting")

	targets, err := collectTargets(args)
	if err != nil {
		ui.PrintError("Failed to read targets", err.Error())
		os.Exit(1)
	}
	if len(targets) == 0 {
		ui.PrintError("No targets found", "Pass handles as arguments or with --input")
		os.Exit(1)
	}

	from, to, err := parseRange(fromMonth, toMonth)
	if err != nil {
		ui.PrintError("Invalid month range", err.Error())
		os.Exit(1)
	}

	account := resolveAccount(cfg)

	ui.PrintInfo("Account", account.Username)
	ui.PrintInfo("Range", fmt.Sprintf("%s .. %s", from, to))
	ui.PrintInfo("Targets", fmt.Sprintf("%d", len(targets)))

	ctx := context.Background()

	client := instagram.NewClient(cfg, logger.GetLogger())
	authenticator, err := buildAuthenticator(cfg, client, account, &terminalSolver{})
	if err != nil {
		ui.PrintError("Failed to prepare authentication", err.Error())
		os.Exit(1)
	}

	if err := authenticator.Authenticate(ctx); err != nil {
		reportAuthFailure(err)
		os.Exit(1)
	}

	display := ui.NewScanDisplay(len(targets))
	driver := scan.NewDriver(client, authenticator, &cfg.Scan, display.HandleEvent)
	state := scan.NewRunState(client)

	ui.PrintHighlight("[STARTING BATCH]")

	if err := driver.Run(ctx, state, targets, from, to); err != nil {
		logger.WithError(err).Error("Batch aborted")
		ui.PrintError("BATCH ABORTED", err.Error())
		if notifications {
			ui.NewNotifier().SendError("igmonthly", "Batch aborted: "+err.Error())
		}
		os.Exit(1)
	}

	display.Summary(state.Results)

	if notifications {
		ui.NewNotifier().SendSuccess("igmonthly",
			fmt.Sprintf("Batch complete: %d targets, %d rows", len(targets), len(state.Results)))
	}

	exportResults(cfg, state.Results)

	if err := authenticator.EvictExpiredSession(); err != nil {
		logger.WithError(err).Warn("Failed to evict expired session")
	}

	logger.WithField("rows", len(state.Results)).Info("Batch completed")
	ui.PrintSuccess("[BATCH COMPLETED]")
}

// collectTargets extracts handles from the argument list and the optional
// input file, in that order.
func collectTargets(args []string) ([]string, error) {
	var text strings.Builder
	for _, arg := range args {
		text.WriteString(arg)
		text.WriteString("\n")
	}
	if inputFile != "" {
		data, err := os.ReadFile(inputFile)
		if err != nil {
			return nil, err
		}
		text.Write(data)
		text.WriteString("\n")
	}
	return handles.Extract(text.String()), nil
}

// parseRange parses the --from/--to flags. An empty --to means a single
// month run.
func parseRange(fromStr, toStr string) (scan.Month, scan.Month, error) {
	if fromStr == "" {
		return scan.Month{}, scan.Month{}, fmt.Errorf("--from is required (YYYY-MM)")
	}
	from, err := scan.ParseMonth(fromStr)
	if err != nil {
		return scan.Month{}, scan.Month{}, err
	}
	if toStr == "" {
		return from, from, nil
	}
	to, err := scan.ParseMonth(toStr)
	if err != nil {
		return scan.Month{}, scan.Month{}, err
	}
	return from, to, nil
}

// resolveAccount finds login credentials, preferring a named account, then
// the configured username, then the stored default.
func resolveAccount(cfg *config.Config) *auth.Account {
	manager, err := auth.NewManager()
	if err != nil {
		ui.PrintError("Failed to initialize credential manager", err.Error())
		os.Exit(1)
	}

	if cfg.Instagram.Username != "" {
		account, err := manager.Retrieve(cfg.Instagram.Username)
		if err != nil {
			ui.PrintError("Account not found", cfg.Instagram.Username)
			ui.PrintInfo("Available accounts", "Use 'igmonthly auth list' to see stored accounts")
			os.Exit(1)
		}
		return account
	}

	account, err := manager.RetrieveDefault()
	if err != nil {
		logger.Error("No credentials found")
		ui.PrintError("No Instagram credentials found", "")
		auth.ShowQuickLoginGuide()
		os.Exit(1)
	}
	return account
}

// buildAuthenticator wires the session store, freeze store and account into
// an authenticator for the given client.
func buildAuthenticator(cfg *config.Config, client *instagram.Client, account *auth.Account, solver instagram.ChallengeSolver) (*runAuthenticator, error) {
	sessions, err := session.NewStore(&cfg.Session)
	if err != nil {
		return nil, fmt.Errorf("session store: %w", err)
	}
	freezes, err := auth.NewFreezeStore(&cfg.Session)
	if err != nil {
		return nil, fmt.Errorf("freeze store: %w", err)
	}
	return &runAuthenticator{
		Authenticator: auth.NewAuthenticator(client, sessions, freezes, account, solver),
		sessions:      sessions,
		username:      account.Username,
	}, nil
}

// runAuthenticator bundles the authenticator with the session store so the
// command can evict an expired session at the end of a run.
type runAuthenticator struct {
	*auth.Authenticator
	sessions *session.Store
	username string
}

func (r *runAuthenticator) EvictExpiredSession() error {
	return r.sessions.EvictIfExpired(r.username)
}

// exportResults writes the CSV and the filtered run log.
func exportResults(cfg *config.Config, rows []report.PostCountRow) {
	exporter, err := export.NewExporter(cfg.Output.Directory)
	if err != nil {
		ui.PrintError("Failed to prepare export directory", err.Error())
		return
	}

	csvPath, err := exporter.WriteCSV(rows)
	if err != nil {
		ui.PrintError("Failed to write CSV", err.Error())
	} else {
		ui.PrintSuccess("Results written: " + csvPath)
	}

	if cfg.Logging.File != "" {
		logPath, err := exporter.FilterRunLog(cfg.Logging.File)
		if err != nil {
			logger.WithError(err).Warn("Failed to filter run log")
		} else {
			ui.PrintSuccess("Filtered log written: " + logPath)
			if !keepLogs {
				if err := os.Remove(cfg.Logging.File); err == nil {
					logger.Info("Removed file: " + cfg.Logging.File)
				}
			}
		}
	}
}

// reportAuthFailure prints a freeze-aware explanation for a failed login.
func reportAuthFailure(err error) {
	logger.WithError(err).Error("Authentication failed")
	if errs.IsKind(err, errs.KindFrozen) {
		ui.PrintError("ACCOUNT FROZEN", err.Error())
		fmt.Println("\nThe account is parked after repeated blocks. Inspect it with:")
		fmt.Println("  igmonthly auth status")
		fmt.Println("\nOr clear the freeze once the block is resolved:")
		fmt.Println("  igmonthly auth unfreeze <username>")
		return
	}
	ui.PrintError("AUTHENTICATION FAILED", err.Error())
}

// terminalSolver prompts on stdin for challenge verification codes.
type terminalSolver struct{}

func (terminalSolver) Code(ctx context.Context, username, step string) (string, error) {
	fmt.Printf("\n🔐 Instagram issued a checkpoint for %s (%s).\n", username, step)
	fmt.Print("Enter the 6-digit security code: ")

	reader := bufio.NewReader(os.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(input), nil
}

// runInteractive drives the bubbletea program. The batch runs inside the
// form's submit callback and pumps driver events back into the UI.
func runInteractive(cfg *config.Config) error {
	var (
		terminal *tui.TUI
		lastRows []report.PostCountRow
	)

	exporter, err := export.NewExporter(cfg.Output.Directory)
	if err != nil {
		return fmt.Errorf("export directory: %w", err)
	}

	onExport := func(kind tui.ExportKind) (string, error) {
		switch kind {
		case tui.ExportLog:
			if cfg.Logging.File == "" {
				return "", fmt.Errorf("no run log configured")
			}
			return exporter.FilterRunLog(cfg.Logging.File)
		default:
			return exporter.WriteCSV(lastRows)
		}
	}

	onSubmit := func(values tui.FormValues) {
		targets := handles.Extract(values.Handles)
		if len(targets) == 0 {
			terminal.LogError("No targets recognized in the handle list")
			terminal.Summary(nil)
			return
		}

		from, to, err := parseRange(values.From, values.To)
		if err != nil {
			terminal.LogError("Invalid month range: %v", err)
			terminal.Summary(nil)
			return
		}

		account := &auth.Account{
			Username: values.Username,
			Password: values.Password,
		}

		ctx := context.Background()

		client := instagram.NewClient(cfg, logger.GetLogger())
		authenticator, err := buildAuthenticator(cfg, client, account, &tuiSolver{terminal: terminal})
		if err != nil {
			terminal.LogError("Setup failed: %v", err)
			terminal.Summary(nil)
			return
		}

		terminal.SetTargetsTotal(len(targets))
		terminal.LogInfo("Logging in as %s", account.Username)

		if err := authenticator.Authenticate(ctx); err != nil {
			terminal.LogError("Authentication failed: %v", err)
			terminal.Summary(nil)
			return
		}
		terminal.LogSuccess("Session ready")

		driver := scan.NewDriver(client, authenticator, &cfg.Scan, terminal.HandleEvent)
		state := scan.NewRunState(client)

		if err := driver.Run(ctx, state, targets, from, to); err != nil {
			terminal.LogError("Batch aborted: %v", err)
		}

		lastRows = state.Results
		terminal.Summary(state.Results)

		if err := authenticator.EvictExpiredSession(); err != nil {
			logger.WithError(err).Warn("Failed to evict expired session")
		}
	}

	terminal = tui.New(onSubmit, onExport)
	return terminal.Start()
}

// tuiSolver cannot prompt while the alternate screen is active, so it
// reports the checkpoint and asks the user to finish it on the CLI.
type tuiSolver struct {
	terminal *tui.TUI
}

func (s *tuiSolver) Code(ctx context.Context, username, step string) (string, error) {
	s.terminal.LogWarning("Checkpoint issued for %s (%s)", username, step)
	return "", fmt.Errorf("challenge resolution needs the command line; run 'igmonthly run' without --tui")
}
