package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/chzyer/readline"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/tgienger/focusboard/internal/auth"
	"github.com/tgienger/focusboard/internal/config"
	"github.com/tgienger/focusboard/internal/db"
	"github.com/tgienger/focusboard/internal/logging"
	"github.com/tgienger/focusboard/internal/models"
	"github.com/tgienger/focusboard/internal/store"
	"github.com/tgienger/focusboard/internal/ui"
	"github.com/tgienger/focusboard/internal/video"
)

// Version information set via ldflags
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const usage = `Usage:
  focusboard [--config path]                 start the dashboard
  focusboard [--config path] user add <name> register a user
  focusboard --version
`

func main() {
	// Handle version flag
	if len(os.Args) > 1 && (os.Args[1] == "--version" || os.Args[1] == "-v") {
		fmt.Printf("focusboard %s (commit: %s, built: %s)\n", version, commit, date)
		os.Exit(0)
	}

	flags := flag.NewFlagSet("focusboard", flag.ExitOnError)
	configPath := flags.String("config", "", "path to config.yaml")
	flags.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flags.Parse(os.Args[1:])

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.LogFile())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	users, err := auth.Open(cfg.UsersFile(), auth.Options{Cost: cfg.Auth.BcryptCost, Logger: logger})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening user database: %v\n", err)
		os.Exit(1)
	}

	if args := flags.Args(); len(args) > 0 {
		if err := runCommand(users, args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(cfg, logger, users); err != nil {
		fmt.Fprintf(os.Stderr, "Error running application: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *zap.Logger, users *auth.Store) error {
	projects, err := store.New(cfg.ProjectsDir(), store.Options{
		AttachmentTypes: cfg.Attachments.AllowedExtensions,
		Logger:          logger,
	})
	if err != nil {
		return err
	}

	database, err := db.New(cfg.DatabaseFile())
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer database.Close()

	opts := ui.Options{
		Users:      users,
		Projects:   projects,
		Settings:   database,
		History:    database,
		Runs:       database,
		Categories: cfg.AllCategories(models.DefaultCategories),
		Logger:     logger,
	}
	opts.Videos = &video.Service{
		Fetcher:    video.NewYTDLPFetcher(cfg.Video.YTDLPPath, cfg.Video.CaptionLanguage, logger),
		Summarizer: video.NewGeminiClient(cfg.Summarizer.Endpoint, cfg.Summarizer.Model, cfg.Summarizer.APIKey, cfg.Summarizer.Timeout),
		Projects:   projects,
		Runs:       database,
		Policy:     cfg.Video.Retry.Policy(),
		Logger:     logger,
	}

	logger.Info("starting",
		zap.String("version", version),
		zap.String("projects", projects.Root()),
		zap.Int("users", users.Count()),
	)

	app := ui.NewApp(opts)
	p := tea.NewProgram(app, tea.WithAltScreen())
	_, err = p.Run()
	return err
}

// runCommand handles the non-interactive subcommands
func runCommand(users *auth.Store, args []string) error {
	if len(args) != 3 || args[0] != "user" || args[1] != "add" {
		fmt.Fprint(os.Stderr, usage)
		return errors.New("unknown command")
	}
	username := args[2]
	if users.Exists(username) {
		return auth.ErrDuplicateUser
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "> ",
		InterruptPrompt: "^C",
	})
	if err != nil {
		return fmt.Errorf("initializing readline: %w", err)
	}
	defer rl.Close()

	password, err := rl.ReadPassword("Password: ")
	if err != nil {
		if errors.Is(err, readline.ErrInterrupt) {
			return errors.New("cancelled")
		}
		return err
	}
	confirm, err := rl.ReadPassword("Confirm password: ")
	if err != nil {
		if errors.Is(err, readline.ErrInterrupt) {
			return errors.New("cancelled")
		}
		return err
	}
	if string(password) != string(confirm) {
		return errors.New("passwords do not match")
	}

	if err := users.Register(username, string(password)); err != nil {
		return err
	}
	fmt.Printf("User %q created\n", username)
	return nil
}
