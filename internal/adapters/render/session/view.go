package session

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/bnema/adminkit/internal/domain"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var ErrUnexpectedRenderModel = errors.New("unexpected final bubbletea model type")

type RenderOptions struct {
	MaxRetries int
	// Remaining is the countdown value shown while the session is expiring.
	Remaining int
}

// summaryModel holds a session view rendered up front; the program quits on
// start and leaves the view behind.
type summaryModel struct {
	view string
}

func (m summaryModel) Init() tea.Cmd { return tea.Quit }

func (m summaryModel) Update(tea.Msg) (tea.Model, tea.Cmd) { return m, nil }

func (m summaryModel) View() string { return m.view }

// Render draws the session summary and returns it.
func Render(session domain.Session, opts RenderOptions) (string, error) {
	p := tea.NewProgram(
		summaryModel{view: renderView(session, opts, newStyles())},
		tea.WithInput(nil),
		tea.WithOutput(io.Discard),
	)

	finalModel, err := p.Run()
	if err != nil {
		return "", err
	}

	summary, ok := finalModel.(summaryModel)
	if !ok {
		return "", ErrUnexpectedRenderModel
	}

	return summary.view, nil
}

func renderView(session domain.Session, opts RenderOptions, s styles) string {
	lines := []string{
		s.title.Render("Admin Session"),
		lipgloss.JoinHorizontal(lipgloss.Top, s.header.Render("state: "), stateBadge(session.State, s)),
	}

	if !session.IsAuthenticated() {
		lines = append(lines, s.empty.Render("Not signed in."))
		if !session.Remembered.IsZero() {
			lines = append(lines, s.detail.Render(fmt.Sprintf("remembered: %s", rememberedLabel(session.Remembered))))
		}
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	lines = append(lines, s.section.Render(identityBlock(session, s)))
	lines = append(lines, s.section.Render(retryBlock(session, opts, s)))

	if session.State == domain.SessionStateSessionExpiring {
		lines = append(lines, s.section.Render(s.danger.Render(countdownLabel(opts.Remaining))))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func stateBadge(state domain.SessionState, s styles) string {
	switch state {
	case domain.SessionStateAuthenticated:
		return s.ok.Render(string(state))
	case domain.SessionStateSessionExpiring:
		return s.danger.Render(string(state))
	case domain.SessionStateLoggedOut:
		return s.warning.Render(string(state))
	default:
		return s.detail.Render(string(domain.SessionStateAnonymous))
	}
}

func identityBlock(session domain.Session, s styles) string {
	identity := session.Identity
	parts := []string{
		s.label.Render("user: ") + s.detail.Render(valueOrNA(identity.Email)),
		s.label.Render("name: ") + s.detail.Render(valueOrNA(identity.Name)),
		s.label.Render("role: ") + s.detail.Render(valueOrNA(identity.Role)),
	}

	if len(session.AccountMemberships) == 0 {
		parts = append(parts, s.label.Render("accounts: ")+s.empty.Render("none"))
	} else {
		names := make([]string, 0, len(session.AccountMemberships))
		for _, membership := range session.AccountMemberships {
			names = append(names, membershipLabel(membership))
		}
		parts = append(parts, s.label.Render("accounts: ")+s.detail.Render(strings.Join(names, ", ")))
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func retryBlock(session domain.Session, opts RenderOptions, s styles) string {
	maxRetries := opts.MaxRetries
	if maxRetries <= 0 {
		maxRetries = domain.MaxRetries
	}

	line := lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.label.Render("retries: "),
		renderBudgetBar(session.RetryCount, maxRetries, s),
		" ",
		s.detail.Render(fmt.Sprintf("%d/%d", min(session.RetryCount, maxRetries), maxRetries)),
	)

	if session.LastErrorSeen == "" {
		return line
	}

	return lipgloss.JoinVertical(lipgloss.Left, line, s.label.Render("last error: ")+s.warning.Render(session.LastErrorSeen))
}

func renderBudgetBar(used, total int, s styles) string {
	if total <= 0 {
		return ""
	}

	filled := max(0, min(used, total))

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.barBracket.Render("["),
		s.barFill.Render(strings.Repeat("#", filled)),
		s.barEmpty.Render(strings.Repeat("-", total-filled)),
		s.barBracket.Render("]"),
	)
}

func countdownLabel(remaining int) string {
	unit := "seconds"
	if remaining == 1 {
		unit = "second"
	}

	return fmt.Sprintf("Session expiring: logging out in %d %s", remaining, unit)
}

func membershipLabel(membership domain.AccountMembership) string {
	if membership.Name == "" {
		return membership.ID
	}
	if membership.ID == "" {
		return membership.Name
	}

	return fmt.Sprintf("%s (%s)", membership.Name, membership.ID)
}

func rememberedLabel(remembered domain.RememberedLogin) string {
	label := valueOrNA(remembered.Email)
	if remembered.SecretRef != "" {
		label += " [secret stored]"
	}

	return label
}

func valueOrNA(value string) string {
	if strings.TrimSpace(value) == "" {
		return "n/a"
	}

	return value
}
