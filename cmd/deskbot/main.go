package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"deskbot/internal/config"
	"deskbot/internal/domain"
	"deskbot/internal/executor"
	"deskbot/internal/registry"
	"deskbot/internal/router"
	"deskbot/internal/sched"
	"deskbot/internal/slackx"
	"deskbot/internal/store"
	"deskbot/internal/timeparse"

	"github.com/spf13/cobra"
)

var (
	version    = "0.1.0"
	logger     *slog.Logger
	configPath string // overridable via --config flag
)

func main() {
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	root := &cobra.Command{
		Use:   "deskbot",
		Short: "deskbot: Slack office assistant",
		Long:  "deskbot is a webhook-driven Slack bot for FAQs, reminders, feedback, and team check-ins.",
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config.json (default: ~/.deskbot/config.json)")

	root.AddCommand(initCmd())
	root.AddCommand(serveCmd())
	root.AddCommand(installCmd())
	root.AddCommand(topicsCmd())
	root.AddCommand(configCmd())
	root.AddCommand(versionCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize config directory and default config",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgDir := config.DefaultConfigDir()
			cfgPath := config.DefaultConfigPath()
			if err := os.MkdirAll(cfgDir, 0o755); err != nil {
				return err
			}
			if _, err := os.Stat(cfgPath); err == nil {
				return fmt.Errorf("config already exists: %s", cfgPath)
			}
			if err := config.Save(cfgPath, config.Defaults()); err != nil {
				return err
			}
			logger.Info("initialized", "config", cfgPath)
			return nil
		},
	}
}

// resolveConfigPath returns the config path from --config flag or default.
func resolveConfigPath() string {
	if configPath != "" {
		return configPath
	}
	return config.DefaultConfigPath()
}

func loadConfig() (*config.Config, error) {
	cfgPath := resolveConfigPath()
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// buildLogger rebuilds the process logger from the configured level and
// optional log file.
func buildLogger(cfg *config.Config) (*slog.Logger, func(), error) {
	var level slog.Level
	switch cfg.General.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	out := io.Writer(os.Stderr)
	closeFn := func() {}
	if cfg.General.LogFile != "" {
		f, err := os.OpenFile(cfg.General.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		out = io.MultiWriter(os.Stderr, f)
		closeFn = func() { f.Close() }
	}

	return slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})), closeFn, nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the webhook server",
		Long:  "Starts the HTTP server handling Slack events, slash commands, and interactions. Press Ctrl+C to stop.",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log, closeLog, err := buildLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := store.Open(cfg.Store.DBPath, log)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	// Seed topics from YAML files when a topics dir is configured.
	if cfg.Store.TopicsDir != "" {
		topics, err := store.LoadTopicsDir(cfg.Store.TopicsDir, log)
		if err != nil {
			log.Warn("topic seed load failed", "dir", cfg.Store.TopicsDir, "err", err)
		} else if len(topics) > 0 {
			if err := db.ImportTopics(ctx, topics); err != nil {
				log.Warn("topic seed import failed", "err", err)
			} else {
				log.Info("topics seeded", "count", len(topics))
			}
		}
	}

	reg := registry.New(registry.Config{
		Store:           db,
		DefaultToken:    cfg.Slack.DefaultBotToken,
		DefaultTeamName: cfg.Slack.DefaultTeamName,
		Logger:          log,
	})

	exec := executor.New(executor.Config{
		Topics:   db,
		Fallback: store.NewStatic(nil),
		Feedback: db,
		Resolver: timeparse.New(cfg.Location()),
		Logger:   log,
	})

	newMessenger := func(botToken string) domain.Messenger {
		return slackx.New(botToken, log)
	}

	rt := router.New(router.Config{
		Host:         cfg.HTTP.Host,
		Port:         cfg.HTTP.Port,
		VerifyToken:  cfg.Slack.VerificationToken,
		WelcomeText:  cfg.Slack.WelcomeText,
		ServeMetrics: cfg.Metrics.Enabled,
		Registry:     reg,
		Executor:     exec,
		Logger:       log,
		NewMessenger: newMessenger,
	})

	if cfg.Slack.VerificationToken == "" {
		log.Warn("verification token empty, inbound request verification disabled")
	}

	if cfg.Checkins.Enabled && len(cfg.Checkins.Tasks) > 0 {
		scheduler := sched.New(reg, newMessenger, log)
		now := time.Now()
		for _, t := range cfg.Checkins.Tasks {
			scheduler.AddTask(sched.Task{
				ID:        t.ID,
				TeamID:    t.TeamID,
				ChannelID: t.ChannelID,
				IntervalS: t.IntervalS,
				Enabled:   t.Enabled,
				NextRun:   now.Add(time.Duration(t.IntervalS) * time.Second),
			})
		}
		go scheduler.Start(ctx)
		defer scheduler.Stop()
		log.Info("check-in scheduler started", "tasks", len(cfg.Checkins.Tasks))
	}

	log.Info("deskbot starting", "version", version, "host", cfg.HTTP.Host, "port", cfg.HTTP.Port)
	return rt.Start(ctx)
}

func installCmd() *cobra.Command {
	var teamName string
	cmd := &cobra.Command{
		Use:   "install [team-id]",
		Short: "Register a workspace credential",
		Long:  "Stores the bot credential for a Slack workspace. The token is read from the SLACK_BOT_TOKEN environment variable and is never echoed.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			token := os.Getenv("SLACK_BOT_TOKEN")
			if token == "" {
				return fmt.Errorf("SLACK_BOT_TOKEN is not set")
			}

			db, err := store.Open(cfg.Store.DBPath, logger)
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer db.Close()

			inst := domain.Installation{
				TeamID:      args[0],
				TeamName:    teamName,
				BotToken:    token,
				InstalledAt: time.Now().UTC(),
			}
			if err := db.Upsert(cmd.Context(), inst); err != nil {
				return fmt.Errorf("store installation: %w", err)
			}
			logger.Info("workspace installed", "teamId", inst.TeamID, "teamName", inst.TeamName)
			return nil
		},
	}
	cmd.Flags().StringVar(&teamName, "name", "", "human-readable workspace name")
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List registered workspaces",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			db, err := store.Open(cfg.Store.DBPath, logger)
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer db.Close()

			installs, err := db.List(cmd.Context())
			if err != nil {
				return err
			}
			for _, inst := range installs {
				fmt.Printf("%s\t%s\t%s\n", inst.TeamID, inst.TeamName, inst.InstalledAt.Format(time.RFC3339))
			}
			return nil
		},
	})
	return cmd
}

func topicsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "topics",
		Short: "Manage FAQ topics",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "import [file]",
		Short: "Import topics from a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			topics, err := store.LoadTopicsFile(args[0])
			if err != nil {
				return fmt.Errorf("load topics: %w", err)
			}
			db, err := store.Open(cfg.Store.DBPath, logger)
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer db.Close()

			if err := db.ImportTopics(cmd.Context(), topics); err != nil {
				return fmt.Errorf("import topics: %w", err)
			}
			logger.Info("topics imported", "file", args[0], "count", len(topics))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List stored topics",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			db, err := store.Open(cfg.Store.DBPath, logger)
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer db.Close()

			topics, err := db.ListAll(cmd.Context())
			if err != nil {
				return err
			}
			for _, t := range topics {
				fmt.Printf("%s\n  %s\n", t.Question, t.Answer)
			}
			return nil
		},
	})

	return cmd
}

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "View and modify configuration",
		Long:  "Get, set, and list configuration values. Changes are saved to the config file.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "get [path]",
		Short: "Get a config value (e.g. http.port)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			val, err := config.GetByPath(config.Sanitize(cfg), args[0])
			if err != nil {
				return err
			}
			data, _ := json.MarshalIndent(val, "", "  ")
			fmt.Println(string(data))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set [path] [value]",
		Short: "Set a config value (e.g. http.port 9090)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath := resolveConfigPath()
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := config.SetByPath(cfg, args[0], args[1]); err != nil {
				return fmt.Errorf("set value: %w", err)
			}
			if err := config.Save(cfgPath, cfg); err != nil {
				return fmt.Errorf("save config: %w", err)
			}
			logger.Info("config updated", "path", args[0], "file", cfgPath)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List all config values (credentials masked)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			data, _ := json.MarshalIndent(config.Sanitize(cfg), "", "  ")
			fmt.Println(string(data))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show config file path",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(resolveConfigPath())
		},
	})

	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("deskbot " + version)
		},
	}
}
