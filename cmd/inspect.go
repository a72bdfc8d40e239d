package cmd

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/riverwm/river/internal/config"
	"github.com/riverwm/river/internal/debugui"
)

var inspectCmd = &cobra.Command{
	Use:    "inspect",
	Short:  "Live read-only view of river's output/view tree",
	Hidden: true,
	Long: `inspect polls the control socket's list-outputs and list-views
commands and renders the result as a live tree (spec.md §9). It issues
no mutating commands.`,
	RunE: runInspect,
}

func runInspect(cmd *cobra.Command, args []string) error {
	if err := config.Init(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	path := config.Get().ControlSocketPath
	if path == "" {
		path = defaultSocketPath("river-control.sock")
	}

	p := tea.NewProgram(debugui.New(path), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
