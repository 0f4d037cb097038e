package session

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/bnema/adminkit/internal/domain"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// EventSource is the subscription side of the session event bus.
type EventSource interface {
	Subscribe(fn func(domain.Event)) func()
}

type countdownTickMsg struct {
	remaining int
}

type loggedOutMsg struct {
	reason domain.LogoutReason
}

type countdownModel struct {
	spinner   spinner.Model
	styles    styles
	remaining int
	lastError string
	reason    domain.LogoutReason
	done      bool
}

func newCountdownModel(start int, lastError string) countdownModel {
	s := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("203"))),
	)

	return countdownModel{
		spinner:   s,
		styles:    newStyles(),
		remaining: start,
		lastError: lastError,
	}
}

func (m countdownModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m countdownModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case countdownTickMsg:
		m.remaining = msg.remaining
		return m, nil
	case loggedOutMsg:
		m.done = true
		m.reason = msg.reason
		return m, tea.Quit
	default:
		return m, nil
	}
}

func (m countdownModel) View() string {
	if m.done {
		return m.styles.warning.Render(fmt.Sprintf("Logged out (%s).", m.reason)) + "\n"
	}

	line := fmt.Sprintf("%s %s", m.spinner.View(), m.styles.danger.Render(countdownLabel(m.remaining)))
	if m.lastError != "" {
		line += "\n" + m.styles.label.Render("last error: ") + m.styles.warning.Render(m.lastError)
	}

	return line + "\n"
}

// CountdownOptions configures RunCountdown. OnSubscribed runs once the
// program listens for events, before it starts rendering.
type CountdownOptions struct {
	Start        int
	LastError    string
	OnSubscribed func()
}

// RunCountdown shows the expiring-session countdown until the session is
// logged out. It returns the logout reason, or the context error when ctx
// ends first.
func RunCountdown(ctx context.Context, output io.Writer, events EventSource, opts CountdownOptions) (domain.LogoutReason, error) {
	p := tea.NewProgram(
		newCountdownModel(opts.Start, opts.LastError),
		tea.WithInput(nil),
		tea.WithOutput(output),
		tea.WithContext(ctx),
	)

	unsubscribe := events.Subscribe(func(event domain.Event) {
		switch event.Kind {
		case domain.EventCountdownTick:
			p.Send(countdownTickMsg{remaining: event.Remaining})
		case domain.EventLoggedOut:
			p.Send(loggedOutMsg{reason: event.Reason})
		}
	})
	defer unsubscribe()

	if opts.OnSubscribed != nil {
		opts.OnSubscribed()
	}

	finalModel, err := p.Run()
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", err
	}

	result, ok := finalModel.(countdownModel)
	if !ok {
		return "", ErrUnexpectedRenderModel
	}

	return result.reason, nil
}
