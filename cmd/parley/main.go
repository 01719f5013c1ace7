package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"

	"github.com/xonecas/parley/internal/config"
	"github.com/xonecas/parley/internal/constants"
	"github.com/xonecas/parley/internal/core"
	"github.com/xonecas/parley/internal/logging"
	"github.com/xonecas/parley/internal/remote"
	"github.com/xonecas/parley/internal/store"
	"github.com/xonecas/parley/internal/tui"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	// Parse flags
	var (
		showVersion = flag.Bool("version", false, "Show version and exit")
		configPath  = flag.String("config", "config.toml", "Path to config file")
		debug       = flag.Bool("debug", false, "Enable debug logging")
		serverURL   = flag.String("server", "", "Chat service base URL (overrides config)")
		name        = flag.String("name", "", "Display name; joins immediately when set")
		interval    = flag.Duration("interval", 0, "Poll interval (overrides config)")
		history     = flag.Int("history", 0, "Print the N most recent archived messages and exit")
		search      = flag.String("search", "", "Search archived messages and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("Parley %s\n", Version)
		os.Exit(0)
	}

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *serverURL != "" {
		cfg.Server.URL = *serverURL
	}
	if *name != "" {
		cfg.Chat.Name = *name
	}
	if *interval > 0 {
		cfg.Poll.Interval = config.Duration{Duration: *interval}
	}
	if *debug {
		cfg.Log.Level = "debug"
	}

	if *history > 0 || *search != "" {
		if err := printArchive(cfg, *history, *search); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to read history: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Initialize logging
	logFile, err := logging.InitFile("parley.log", cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logging: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()

	log.Info().Str("version", Version).Str("server", cfg.Server.URL).Msg("Starting Parley")
	log.Debug().Interface("config", cfg).Msg("Configuration loaded")

	// Initialize the transcript archive
	var recorder core.Recorder
	if cfg.History.Enabled {
		s, err := openStore(cfg)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to open history store, continuing without it")
		} else {
			defer s.Close()
			recorder = &recorderAdapter{store: s, serverURL: cfg.Server.URL}
			log.Debug().Msg("History store initialized")
		}
	}

	// Initialize event bus
	bus := core.NewEventBus(1000)
	defer bus.Close()

	svc := remote.NewClient(cfg.Server.URL, cfg.Server.RequestTimeout.Duration,
		remote.NewLimiter(cfg.Server.RateLimit, cfg.Server.RateBurst))
	defer svc.Close()

	client := core.NewClient(svc, bus, core.Options{
		Interval:       cfg.Poll.Interval.Duration,
		RequestTimeout: cfg.Server.RequestTimeout.Duration,
		Recorder:       recorder,
	})

	// Set up signal handling for graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// Subscribe to events for TUI
	eventCh := bus.Subscribe()

	// Create and run TUI
	model := tui.New(client, eventCh, tui.Options{
		ServerURL: cfg.Server.URL,
		Name:      cfg.Chat.Name,
		AutoJoin:  *name != "",
	})
	program := tea.NewProgram(model, tea.WithAltScreen())

	// Handle shutdown in a goroutine
	go func() {
		<-sigCh
		log.Info().Msg("Received shutdown signal")
		program.Quit()
	}()

	// Run the TUI
	if _, err := program.Run(); err != nil {
		log.Error().Err(err).Msg("TUI error")
	}

	// Clean shutdown, leaving the chat if still joined
	client.Close()

	log.Info().Msg("Parley shutdown complete")
}

func openStore(cfg *config.Config) (*store.Store, error) {
	if cfg.History.Path != "" {
		return store.Open(cfg.History.Path)
	}
	return store.New()
}

// printArchive writes archived messages to stdout.
func printArchive(cfg *config.Config, limit int, query string) error {
	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	if limit <= 0 {
		limit = 50
	}

	var msgs []*store.Message
	if query != "" {
		msgs, err = s.SearchMessages(query, limit)
	} else {
		msgs, err = s.RecentMessages(limit)
	}
	if err != nil {
		return err
	}

	if len(msgs) == 0 {
		fmt.Println("No archived messages.")
		return nil
	}
	for _, m := range msgs {
		ts := m.RecordedAt
		if !m.SentAt.IsZero() {
			ts = m.SentAt
		}
		fmt.Printf("%s  %s: %s\n", ts.Local().Format(constants.HistoryDisplayTimeFormat), m.Sender, m.Content)
	}
	return nil
}
