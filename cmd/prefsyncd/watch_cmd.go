package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/prefsync/prefsync/internal/client/cpclient"
	"github.com/prefsync/prefsync/internal/client/ui"
)

const txtWatchHelp = "Press 'q' or 'Ctrl+C' to quit."

var (
	watchTitleStyle  = cyan.Bold(true)
	watchBadgeStyle  = yellow.Bold(true)
	watchPromptStyle = red
	watchHelpStyle   = gray
)

func init() {
	rootCmd.AddCommand(newWatchCmd())
}

func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Watch live sync status, badges and prompts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			cp, err := newCPClient()
			if err != nil {
				return err
			}

			return runWatchTUI(cmd.Context(), cp)
		},
	}
}

// --- Messages ---
type intentMsg struct{ intent *ui.Intent }
type streamClosedMsg struct{}

// watchModel folds the daemon's intent stream into a terminal view: status
// line with a spinner while syncing, the live badge and any open prompts.
type watchModel struct {
	events <-chan *ui.Intent

	spinner spinner.Model
	status  string
	badge   *ui.Badge

	prompts     map[string]*ui.Notification
	promptOrder []string

	closed bool
}

func newWatchModel(events <-chan *ui.Intent) watchModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = cyan

	return watchModel{
		events:  events,
		spinner: s,
		status:  "uninitialized",
		prompts: make(map[string]*ui.Notification),
	}
}

func (m watchModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.waitForIntent())
}

// waitForIntent blocks on the stream and hands the next intent to Update.
func (m watchModel) waitForIntent() tea.Cmd {
	return func() tea.Msg {
		intent, ok := <-m.events
		if !ok {
			return streamClosedMsg{}
		}
		return intentMsg{intent: intent}
	}
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case intentMsg:
		m.apply(msg.intent)
		return m, m.waitForIntent()

	case streamClosedMsg:
		m.closed = true
		return m, tea.Quit
	}

	return m, nil
}

// apply folds one intent into the view state, mirroring the hub's live view.
func (m *watchModel) apply(intent *ui.Intent) {
	switch intent.Kind {
	case ui.IntentStatus:
		m.status = intent.Status
	case ui.IntentBadgeShow:
		m.badge = intent.Badge
	case ui.IntentBadgeClear:
		m.badge = nil
	case ui.IntentPromptShow:
		if intent.Notification == nil {
			return
		}
		id := intent.Notification.ID
		if _, ok := m.prompts[id]; !ok {
			m.promptOrder = append(m.promptOrder, id)
		}
		m.prompts[id] = intent.Notification
	case ui.IntentPromptClear:
		if intent.Notification == nil {
			return
		}
		id := intent.Notification.ID
		if _, ok := m.prompts[id]; !ok {
			return
		}
		delete(m.prompts, id)
		for i, pid := range m.promptOrder {
			if pid == id {
				m.promptOrder = append(m.promptOrder[:i], m.promptOrder[i+1:]...)
				break
			}
		}
	}
}

func (m watchModel) View() string {
	var b strings.Builder

	b.WriteString(watchTitleStyle.Render("PrefSync"))
	b.WriteString("\n\n")

	if m.status == "syncing" {
		b.WriteString(fmt.Sprintf("%s %s\n", m.spinner.View(), styledStatus(m.status)))
	} else {
		b.WriteString(fmt.Sprintf("%s %s\n", gray.Render("●"), styledStatus(m.status)))
	}

	if m.badge != nil {
		label := m.badge.Label
		if m.badge.Count > 0 {
			label = fmt.Sprintf("%s (%d)", label, m.badge.Count)
		}
		b.WriteString(fmt.Sprintf("%s %s\n", watchBadgeStyle.Render("◆"), label))
	}

	for _, id := range m.promptOrder {
		prompt := m.prompts[id]
		b.WriteString(fmt.Sprintf("%s %s", watchPromptStyle.Render("!"), prompt.Message))
		if len(prompt.Actions) > 0 {
			titles := make([]string, 0, len(prompt.Actions))
			for _, action := range prompt.Actions {
				titles = append(titles, action.Title)
			}
			b.WriteString(gray.Render(fmt.Sprintf("  [%s]", strings.Join(titles, " | "))))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(watchHelpStyle.Render(txtWatchHelp))
	b.WriteString("\n")

	return b.String()
}

func runWatchTUI(ctx context.Context, cp *cpclient.Client) error {
	events, err := cp.Events(ctx, 0)
	if err != nil {
		return err
	}

	model := newWatchModel(events)
	if _, err := tea.NewProgram(model, tea.WithContext(ctx)).Run(); err != nil {
		// ctx cancellation (SIGINT) kills the program, that's a clean exit
		if errors.Is(err, tea.ErrProgramKilled) {
			return nil
		}
		return fmt.Errorf("watch TUI error: %w", err)
	}
	return nil
}
