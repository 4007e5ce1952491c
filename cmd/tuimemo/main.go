// Package main provides the CLI entrypoint for tuimemo.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/verte-zerg/tuimemo/internal/config"
	"github.com/verte-zerg/tuimemo/internal/library"
	"github.com/verte-zerg/tuimemo/internal/logging"
	"github.com/verte-zerg/tuimemo/internal/model"
	"github.com/verte-zerg/tuimemo/internal/store"
	"github.com/verte-zerg/tuimemo/internal/tui"
)

const (
	defaultGhostDelayMs = 1500
	defaultGhostWindow  = 10
	defaultFlashMs      = 500
	defaultLogLevel     = "info"
	defaultLogMaxSizeMB = 5
	defaultLogBackups   = 3
)

var (
	practiceCard         string
	practiceDeck         string
	practiceEasy         bool
	practiceShuffle      bool
	practiceGhostDelayMs int
	practiceGhostWindow  int
	practiceFlashMs      int
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "tuimemo",
		Short:         "TUI trainer for memorizing text by typing it",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPracticeCmd,
	}

	rootCmd.Flags().StringVar(&practiceCard, "card", "", "card ID or title to practice")
	rootCmd.Flags().StringVar(&practiceDeck, "deck", "", "deck to practice")
	rootCmd.Flags().BoolVar(&practiceEasy, "easy", false, "ignore case and punctuation while typing")
	rootCmd.Flags().BoolVar(&practiceShuffle, "shuffle", false, "shuffle deck order")
	rootCmd.Flags().IntVar(&practiceGhostDelayMs, "ghost-delay-ms", defaultGhostDelayMs, "idle pause before the next words are hinted")
	rootCmd.Flags().IntVar(&practiceGhostWindow, "ghost-window", defaultGhostWindow, "number of characters hinted")
	rootCmd.Flags().IntVar(&practiceFlashMs, "flash-ms", defaultFlashMs, "mistake flash duration")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newCardCmd())
	rootCmd.AddCommand(newDeckCmd())
	rootCmd.AddCommand(newBestCmd())
	rootCmd.AddCommand(newStatsCmd())

	return rootCmd
}

func runPracticeCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyBoolConfig(cmd, "easy", &practiceEasy, fileCfg.Practice.EasyMode)
	applyBoolConfig(cmd, "shuffle", &practiceShuffle, fileCfg.Practice.Shuffle)
	applyIntConfig(cmd, "ghost-delay-ms", &practiceGhostDelayMs, fileCfg.Practice.GhostDelayMs)
	applyIntConfig(cmd, "ghost-window", &practiceGhostWindow, fileCfg.Practice.GhostWindow)
	applyIntConfig(cmd, "flash-ms", &practiceFlashMs, fileCfg.Practice.FlashMs)

	cfg := model.Config{
		EasyMode:    practiceEasy,
		Shuffle:     practiceShuffle,
		GhostDelay:  time.Duration(practiceGhostDelayMs) * time.Millisecond,
		GhostWindow: practiceGhostWindow,
		FlashDelay:  time.Duration(practiceFlashMs) * time.Millisecond,
	}
	if err := validateConfig(cfg); err != nil {
		return err
	}

	logger, err := logging.New(logConfig(fileCfg.Log))
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	defer func() {
		if serr := logger.Sync(); serr != nil {
			// Best-effort flush of the log file.
			_ = serr
		}
	}()

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	ctx := context.Background()
	lib, err := st.LoadLibrary(ctx)
	if err != nil {
		return fmt.Errorf("failed to load cards: %w", err)
	}
	prefs, err := st.Preferences(ctx)
	if err != nil {
		logger.Warn("failed to load preferences", zap.Error(err))
	}
	if cmd.Flags().Changed("easy") || fileCfg.Practice.EasyMode != nil {
		prefs.EasyMode = cfg.EasyMode
	}

	seq, deckName, err := practiceSequence(lib, prefs, cfg.Shuffle)
	if err != nil {
		return err
	}
	logger.Info("practice started",
		zap.String("deck", deckName),
		zap.Int("cards", seq.Len()),
		zap.Bool("easy_mode", prefs.EasyMode),
	)

	m := tui.NewModel(tui.Options{
		Config: cfg,
		Store:  st,
		Cards:  seq,
		Deck:   deckName,
		Prefs:  prefs,
		Logger: logger,
	})
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

// practiceSequence picks the cards to practice from the flags and the last
// practiced card.
func practiceSequence(lib *library.Library, prefs model.Preferences, shuffle bool) (*library.Sequence, string, error) {
	cards := lib.Cards()
	deckName := ""
	if practiceDeck != "" {
		deck, err := lib.FindDeck(practiceDeck)
		if err != nil {
			return nil, "", err
		}
		cards = lib.DeckCards(deck)
		deckName = deck.Name
		if len(cards) == 0 {
			return nil, "", fmt.Errorf("deck %q has no cards; add one with: tuimemo deck add %q CARD", deck.Name, deck.Name)
		}
	}
	if len(cards) == 0 {
		return nil, "", errors.New("no cards yet; add one with: tuimemo card add --title TITLE TEXT")
	}

	startID := prefs.LastCardID
	if practiceCard != "" {
		card, err := lib.FindCard(practiceCard)
		if err != nil {
			return nil, "", err
		}
		if deckName == "" {
			return library.NewSequence([]model.Card{card}), "", nil
		}
		startID = card.ID
	}
	if shuffle {
		return library.NewShuffledSequence(cards), deckName, nil
	}
	return library.NewSequence(rotateToCard(cards, startID)), deckName, nil
}

// rotateToCard moves the card with id to the front while keeping the cyclic
// order of the rest.
func rotateToCard(cards []model.Card, id string) []model.Card {
	for i, c := range cards {
		if c.ID == id {
			out := make([]model.Card, 0, len(cards))
			out = append(out, cards[i:]...)
			return append(out, cards[:i]...)
		}
	}
	return cards
}

func logConfig(fc config.LogConfig) model.LogConfig {
	cfg := model.LogConfig{
		Level:      defaultLogLevel,
		File:       config.DefaultLogPath(),
		MaxSizeMB:  defaultLogMaxSizeMB,
		MaxBackups: defaultLogBackups,
	}
	if fc.Level != nil {
		cfg.Level = *fc.Level
	}
	if fc.File != nil {
		cfg.File = *fc.File
	}
	if fc.MaxSizeMB != nil {
		cfg.MaxSizeMB = *fc.MaxSizeMB
	}
	if fc.MaxBackups != nil {
		cfg.MaxBackups = *fc.MaxBackups
	}
	return cfg
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# tuimemo configuration
# Uncomment a value to enable it. CLI flags override config values.

[practice]
# easy = false            # Ignore case and punctuation while typing
# shuffle = false         # Shuffle deck order
# ghost-delay-ms = %d   # Idle pause before the next words are hinted
# ghost-window = %d       # Number of characters hinted
# flash-ms = %d          # Mistake flash duration

[log]
# level = %q          # debug, info, warn or error
# file = %q
# max-size-mb = %d         # Rotate the log file after this size
# max-backups = %d         # Rotated files to keep
`,
		defaultGhostDelayMs,
		defaultGhostWindow,
		defaultFlashMs,
		defaultLogLevel,
		config.DefaultLogPath(),
		defaultLogMaxSizeMB,
		defaultLogBackups,
	)
}

func validateConfig(cfg model.Config) error {
	if cfg.GhostDelay <= 0 {
		return fmt.Errorf("--ghost-delay-ms must be > 0")
	}
	if cfg.GhostWindow < 0 {
		return fmt.Errorf("--ghost-window must be >= 0")
	}
	if cfg.FlashDelay < 0 {
		return fmt.Errorf("--flash-ms must be >= 0")
	}
	return nil
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
