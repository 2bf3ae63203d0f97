package main

import (
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/insuretm/console/internal/api"
	"github.com/insuretm/console/internal/app"
	"github.com/insuretm/console/internal/credential"
	"github.com/insuretm/console/internal/logging"
	"github.com/insuretm/console/internal/model"
	"github.com/insuretm/console/internal/session"
	"github.com/insuretm/console/internal/store"
	"github.com/insuretm/console/internal/theme"
)

var (
	configPath string
	apiURL     string
	debug      bool
)

var rootCmd = &cobra.Command{
	Use:   "insuretm",
	Short: "InsureTM test management console",
	Long: `Terminal console for the InsureTM test management platform.

Sign in once and the session is restored from the system keyring on the
next start. Notifications are polled in the background and can be opened
directly from the popover.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"config file (default "+model.DefaultConfigPath()+")")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "",
		"backend base URL (overrides the config file)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false,
		"verbose logging")
}

func run() error {
	if configPath == "" {
		configPath = model.DefaultConfigPath()
	}
	cfg, err := model.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if apiURL != "" {
		cfg.API.BaseURL = apiURL
	}

	log, err := logging.New(cfg.Storage.LogPath, debug)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer func() { _ = log.Sync() }()

	themes := theme.NewManager(cfg, configPath)

	client := api.NewClient(cfg.API.BaseURL, log)
	sess := session.New(client, credential.NewStore(), log)
	client.SetTokenSource(sess)

	// The local cache is best effort. A broken database file means no
	// instant notification snapshot and no drafts, nothing more.
	var cache *store.SQLiteStore
	cache, err = store.NewSQLiteStore(cfg.Storage.DBPath)
	if err != nil {
		log.Warn("local cache unavailable", zap.Error(err))
		cache = nil
	} else {
		defer func() { _ = cache.Close() }()
	}

	root := app.New(
		client, sess, cache, themes, log,
		time.Duration(cfg.Display.PollIntervalSec)*time.Second,
	)

	program := tea.NewProgram(root, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("run ui: %w", err)
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
