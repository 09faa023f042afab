package cmd

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/theakshaypant/concertdb/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "ui",
	Short: "Launch the interactive TUI",
	Long: `Launch the interactive terminal interface for browsing and editing
performers, venues and events. Requires ENVIRONMENT (or --environment).`,
	Annotations: map[string]string{tuiAnnotation: "true"},
	RunE:        runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	m := tui.NewModel(store, store.Location())

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithContext(cmd.Context()),
	)

	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	if fm, ok := final.(tui.Model); ok && fm.Err() != nil {
		return fm.Err()
	}
	return nil
}

// openLogFile opens path for appending. Under the TUI it goes through
// bubbletea so the standard logger lands in the same file.
func openLogFile(path string, tui bool) (*os.File, error) {
	if tui {
		return tea.LogToFile(path, "concertdb")
	}
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
}
