package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/tuimemo/internal/cardfile"
	"github.com/verte-zerg/tuimemo/internal/config"
	"github.com/verte-zerg/tuimemo/internal/library"
	"github.com/verte-zerg/tuimemo/internal/stats"
	"github.com/verte-zerg/tuimemo/internal/statsui"
	"github.com/verte-zerg/tuimemo/internal/store"
)

const (
	defaultListWidth = 80
	idColumnWidth    = 8
	titleColumnWidth = 32
	minPreviewWidth  = 10
)

var (
	cardTitle  string
	cardFile   string
	importDeck string
	statsDeck  string
)

// withLibrary opens the store, loads the library and runs fn. The library is
// saved afterwards when fn reports a change.
func withLibrary(fn func(ctx context.Context, st *store.Store, lib *library.Library) (bool, error)) error {
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
	changed, err := fn(ctx, st, lib)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}
	if err := st.SaveLibrary(ctx, lib); err != nil {
		return fmt.Errorf("failed to save cards: %w", err)
	}
	return nil
}

func newCardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "card",
		Short: "Manage cards",
	}

	addCmd := &cobra.Command{
		Use:   "add [TEXT...]",
		Short: "Add a card from arguments, a file or stdin",
		RunE:  runCardAddCmd,
	}
	addCmd.Flags().StringVar(&cardTitle, "title", "", "card title (default: start of the text)")
	addCmd.Flags().StringVar(&cardFile, "file", "", "read the text from a file ('-' for stdin)")

	editCmd := &cobra.Command{
		Use:   "edit CARD [TEXT...]",
		Short: "Change a card's title or text",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runCardEditCmd,
	}
	editCmd.Flags().StringVar(&cardTitle, "title", "", "new title")
	editCmd.Flags().StringVar(&cardFile, "file", "", "read the new text from a file ('-' for stdin)")

	importCmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Import passages separated by blank lines",
		Args:  cobra.ExactArgs(1),
		RunE:  runCardImportCmd,
	}
	importCmd.Flags().StringVar(&importDeck, "deck", "", "also add imported cards to this deck")

	cmd.AddCommand(
		addCmd,
		&cobra.Command{
			Use:   "list",
			Short: "List cards",
			Args:  cobra.NoArgs,
			RunE:  runCardListCmd,
		},
		editCmd,
		&cobra.Command{
			Use:   "rm CARD",
			Short: "Remove a card and its best times",
			Args:  cobra.ExactArgs(1),
			RunE:  runCardRmCmd,
		},
		importCmd,
		&cobra.Command{
			Use:   "prune",
			Short: "Drop best times that no card uses any more",
			Args:  cobra.NoArgs,
			RunE:  runCardPruneCmd,
		},
	)
	return cmd
}

func runCardAddCmd(cmd *cobra.Command, args []string) error {
	text, err := cardText(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}
	return withLibrary(func(_ context.Context, _ *store.Store, lib *library.Library) (bool, error) {
		card, err := lib.AddCard(cardTitle, text, time.Now())
		if err != nil {
			return false, err
		}
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "Added %s %s\n", shortID(card.ID), card.Title); err != nil {
			return false, fmt.Errorf("failed to write output: %w", err)
		}
		return true, nil
	})
}

func runCardEditCmd(cmd *cobra.Command, args []string) error {
	var text string
	if cardFile != "" || len(args) > 1 {
		var err error
		if text, err = cardText(cmd.InOrStdin(), args[1:]); err != nil {
			return err
		}
	}
	if strings.TrimSpace(text) == "" && strings.TrimSpace(cardTitle) == "" {
		return errors.New("nothing to change; pass --title, --file or the new text")
	}
	return withLibrary(func(_ context.Context, _ *store.Store, lib *library.Library) (bool, error) {
		card, err := lib.FindCard(args[0])
		if err != nil {
			return false, err
		}
		updated, err := lib.UpdateCard(card.ID, cardTitle, text)
		if err != nil {
			return false, err
		}
		if store.BestTimesKey(card.Text) != store.BestTimesKey(updated.Text) {
			logErrln("Text changed; personal bests start over. Drop the old ones with: tuimemo card prune")
		}
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "Updated %s %s\n", shortID(updated.ID), updated.Title); err != nil {
			return false, fmt.Errorf("failed to write output: %w", err)
		}
		return true, nil
	})
}

func cardText(stdin io.Reader, args []string) (string, error) {
	switch {
	case cardFile == "-":
		return readAll(stdin)
	case cardFile != "":
		data, err := os.ReadFile(cardFile)
		if err != nil {
			return "", fmt.Errorf("failed to read card file: %w", err)
		}
		return string(data), nil
	case len(args) > 0:
		return strings.Join(args, " "), nil
	}
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return "", errors.New("no card text; pass it as arguments, --file PATH or on stdin")
	}
	return readAll(stdin)
}

func readAll(r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return string(data), nil
}

func runCardListCmd(cmd *cobra.Command, _ []string) error {
	return withLibrary(func(ctx context.Context, st *store.Store, lib *library.Library) (bool, error) {
		cards := lib.Cards()
		out := cmd.OutOrStdout()
		if len(cards) == 0 {
			logErrln("No cards yet. Add one with: tuimemo card add --title TITLE TEXT")
			return false, nil
		}
		rows := make([][]string, 0, len(cards))
		fixed := []int{runewidth.StringWidth("ID"), runewidth.StringWidth("Title"), runewidth.StringWidth("Best")}
		for _, card := range cards {
			best := "-"
			records, err := st.BestTimes(ctx, card.Text)
			if err != nil {
				return false, fmt.Errorf("failed to load best times: %w", err)
			}
			if len(records) > 0 {
				best = stats.FormatSeconds(records[0].Time)
			}
			row := []string{shortID(card.ID), stats.TruncateWidth(card.Title, titleColumnWidth), best}
			for i, cell := range row {
				if w := runewidth.StringWidth(cell); w > fixed[i] {
					fixed[i] = w
				}
			}
			rows = append(rows, append(row, card.Text))
		}
		previewWidth := terminalWidth(out) - fixed[0] - fixed[1] - fixed[2] - len(fixed)
		if previewWidth < minPreviewWidth {
			previewWidth = minPreviewWidth
		}
		for _, row := range rows {
			row[3] = stats.TruncateWidth(strings.Join(strings.Fields(row[3]), " "), previewWidth)
		}
		for _, line := range stats.FormatTable([]string{"ID", "Title", "Best", "Text"}, rows, map[int]bool{2: true}) {
			if _, err := fmt.Fprintln(out, line); err != nil {
				return false, fmt.Errorf("failed to write output: %w", err)
			}
		}
		return false, nil
	})
}

func terminalWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return defaultListWidth
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return defaultListWidth
	}
	return width
}

func runCardRmCmd(cmd *cobra.Command, args []string) error {
	return withLibrary(func(ctx context.Context, st *store.Store, lib *library.Library) (bool, error) {
		card, err := lib.FindCard(args[0])
		if err != nil {
			return false, err
		}
		if _, err := lib.RemoveCard(card.ID); err != nil {
			return false, err
		}
		if err := st.SaveLibrary(ctx, lib); err != nil {
			return false, fmt.Errorf("failed to save cards: %w", err)
		}
		// Cards with the same opening share one best-times list.
		if !lib.SharesReference(card.Text) {
			if err := st.DeleteBestTimes(ctx, card.Text); err != nil {
				return false, fmt.Errorf("failed to delete best times: %w", err)
			}
		}
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "Removed %s %s\n", shortID(card.ID), card.Title); err != nil {
			return false, fmt.Errorf("failed to write output: %w", err)
		}
		return false, nil
	})
}

func runCardPruneCmd(cmd *cobra.Command, _ []string) error {
	return withLibrary(func(ctx context.Context, st *store.Store, lib *library.Library) (bool, error) {
		cards := lib.Cards()
		refs := make([]string, 0, len(cards))
		for _, c := range cards {
			refs = append(refs, c.Text)
		}
		removed, err := st.PruneBestTimes(ctx, refs)
		if err != nil {
			return false, fmt.Errorf("failed to prune best times: %w", err)
		}
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "Removed %d unused best-time lists\n", removed); err != nil {
			return false, fmt.Errorf("failed to write output: %w", err)
		}
		return false, nil
	})
}

func runCardImportCmd(cmd *cobra.Command, args []string) error {
	entries, err := cardfile.Load(args[0])
	if err != nil {
		return fmt.Errorf("failed to load card file: %w", err)
	}
	return withLibrary(func(_ context.Context, _ *store.Store, lib *library.Library) (bool, error) {
		if importDeck != "" {
			if _, err := lib.FindDeck(importDeck); errors.Is(err, library.ErrDeckNotFound) {
				if _, err := lib.CreateDeck(importDeck, time.Now()); err != nil {
					return false, err
				}
				logErrf("Created deck %s\n", importDeck)
			}
		}
		now := time.Now()
		for _, entry := range entries {
			card, err := lib.AddCard(entry.Title, entry.Text, now)
			if err != nil {
				return false, fmt.Errorf("failed to import %q: %w", entry.Title, err)
			}
			if importDeck != "" {
				if _, err := lib.AddToDeck(importDeck, card.ID); err != nil {
					return false, err
				}
			}
		}
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "Imported %d cards\n", len(entries)); err != nil {
			return false, fmt.Errorf("failed to write output: %w", err)
		}
		return true, nil
	})
}

func newDeckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deck",
		Short: "Manage decks",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "create NAME",
			Short: "Create an empty deck",
			Args:  cobra.ExactArgs(1),
			RunE:  runDeckCreateCmd,
		},
		&cobra.Command{
			Use:   "add NAME CARD",
			Short: "Add a card to a deck",
			Args:  cobra.ExactArgs(2),
			RunE:  runDeckAddCmd,
		},
		&cobra.Command{
			Use:   "remove NAME CARD",
			Short: "Remove a card from a deck; the card is kept",
			Args:  cobra.ExactArgs(2),
			RunE:  runDeckRemoveCmd,
		},
		&cobra.Command{
			Use:   "list",
			Short: "List decks",
			Args:  cobra.NoArgs,
			RunE:  runDeckListCmd,
		},
		&cobra.Command{
			Use:   "rm NAME",
			Short: "Remove a deck; its cards are kept",
			Args:  cobra.ExactArgs(1),
			RunE:  runDeckRmCmd,
		},
	)
	return cmd
}

func runDeckCreateCmd(cmd *cobra.Command, args []string) error {
	return withLibrary(func(_ context.Context, _ *store.Store, lib *library.Library) (bool, error) {
		deck, err := lib.CreateDeck(args[0], time.Now())
		if err != nil {
			return false, err
		}
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "Created deck %s\n", deck.Name); err != nil {
			return false, fmt.Errorf("failed to write output: %w", err)
		}
		return true, nil
	})
}

func runDeckAddCmd(cmd *cobra.Command, args []string) error {
	return withLibrary(func(_ context.Context, _ *store.Store, lib *library.Library) (bool, error) {
		card, err := lib.AddToDeck(args[0], args[1])
		if err != nil {
			return false, err
		}
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "Added %s to %s\n", card.Title, args[0]); err != nil {
			return false, fmt.Errorf("failed to write output: %w", err)
		}
		return true, nil
	})
}

func runDeckRemoveCmd(cmd *cobra.Command, args []string) error {
	return withLibrary(func(_ context.Context, _ *store.Store, lib *library.Library) (bool, error) {
		card, err := lib.RemoveFromDeck(args[0], args[1])
		if err != nil {
			return false, err
		}
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "Removed %s from %s\n", card.Title, args[0]); err != nil {
			return false, fmt.Errorf("failed to write output: %w", err)
		}
		return true, nil
	})
}

func runDeckListCmd(cmd *cobra.Command, _ []string) error {
	return withLibrary(func(_ context.Context, _ *store.Store, lib *library.Library) (bool, error) {
		decks := lib.Decks()
		if len(decks) == 0 {
			logErrln("No decks yet. Create one with: tuimemo deck create NAME")
			return false, nil
		}
		rows := make([][]string, 0, len(decks))
		for _, deck := range decks {
			rows = append(rows, []string{
				deck.Name,
				fmt.Sprintf("%d", len(lib.DeckCards(deck))),
				deck.CreatedAt.Local().Format("2006-01-02"),
			})
		}
		for _, line := range stats.FormatTable([]string{"Deck", "Cards", "Created"}, rows, map[int]bool{1: true}) {
			if _, err := fmt.Fprintln(cmd.OutOrStdout(), line); err != nil {
				return false, fmt.Errorf("failed to write output: %w", err)
			}
		}
		return false, nil
	})
}

func runDeckRmCmd(cmd *cobra.Command, args []string) error {
	return withLibrary(func(_ context.Context, _ *store.Store, lib *library.Library) (bool, error) {
		deck, err := lib.RemoveDeck(args[0])
		if err != nil {
			return false, err
		}
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "Removed deck %s\n", deck.Name); err != nil {
			return false, fmt.Errorf("failed to write output: %w", err)
		}
		return true, nil
	})
}

func newBestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "best CARD",
		Short: "Show personal best times for a card",
		Args:  cobra.ExactArgs(1),
		RunE:  runBestCmd,
	}
}

func runBestCmd(cmd *cobra.Command, args []string) error {
	return withLibrary(func(ctx context.Context, st *store.Store, lib *library.Library) (bool, error) {
		card, err := lib.FindCard(args[0])
		if err != nil {
			return false, err
		}
		records, err := st.BestTimes(ctx, card.Text)
		if err != nil {
			return false, fmt.Errorf("failed to load best times: %w", err)
		}
		if err := stats.RenderBestTimes(cmd.OutOrStdout(), card.Title, records); err != nil {
			return false, fmt.Errorf("failed to write output: %w", err)
		}
		return false, nil
	})
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Browse personal best times",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsDeck, "deck", "", "only show cards in this deck")
	return cmd
}

func runStatsCmd(_ *cobra.Command, _ []string) error {
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()
	entries, err := statsui.Load(context.Background(), st, statsDeck)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		logErrln("No cards yet. Add one with: tuimemo card add --title TITLE TEXT")
		return nil
	}
	program := tea.NewProgram(statsui.NewModel(entries), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}

func shortID(id string) string {
	if len(id) <= idColumnWidth {
		return id
	}
	return id[:idColumnWidth]
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
