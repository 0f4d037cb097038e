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

// RequestProgress names the request shown while it is in flight.
// Attempt is the retry number, zero for the first try.
type RequestProgress struct {
	Method     string
	URL        string
	Attempt    int
	MaxRetries int
}

type requestDoneMsg struct {
	result domain.Result
	err    error
}

type requestModel struct {
	spinner  spinner.Model
	styles   styles
	progress RequestProgress
	run      tea.Cmd
	result   domain.Result
	err      error
	done     bool
}

func newRequestModel(progress RequestProgress, run tea.Cmd) requestModel {
	s := spinner.New(
		spinner.WithSpinner(spinner.MiniDot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("69"))),
	)

	return requestModel{spinner: s, styles: newStyles(), progress: progress, run: run}
}

func (m requestModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.run)
}

func (m requestModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case requestDoneMsg:
		m.done = true
		m.result = msg.result
		m.err = msg.err
		return m, tea.Quit
	default:
		return m, nil
	}
}

func (m requestModel) View() string {
	if m.done {
		return ""
	}

	line := fmt.Sprintf("%s %s %s", m.spinner.View(), m.styles.label.Render(m.progress.Method), m.styles.detail.Render(m.progress.URL))
	if retry := retryLabel(m.progress); retry != "" {
		line += " " + m.styles.warning.Render(retry)
	}

	return line
}

func retryLabel(progress RequestProgress) string {
	if progress.Attempt <= 0 {
		return ""
	}

	maxRetries := progress.MaxRetries
	if maxRetries <= 0 {
		maxRetries = domain.MaxRetries
	}

	return fmt.Sprintf("(retry %d/%d)", progress.Attempt, maxRetries)
}

// RunRequest shows the method and URL on output while run executes and
// returns what run returned.
func RunRequest(ctx context.Context, output io.Writer, progress RequestProgress, run func(context.Context) (domain.Result, error)) (domain.Result, error) {
	runCmd := func() tea.Msg {
		result, err := run(ctx)
		return requestDoneMsg{result: result, err: err}
	}

	p := tea.NewProgram(
		newRequestModel(progress, runCmd),
		tea.WithInput(nil),
		tea.WithOutput(output),
		tea.WithContext(ctx),
	)

	finalModel, err := p.Run()
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return domain.Result{}, ctx.Err()
		}
		return domain.Result{}, err
	}

	final, ok := finalModel.(requestModel)
	if !ok {
		return domain.Result{}, ErrUnexpectedRenderModel
	}

	return final.result, final.err
}
