package cmd

import (
	"encoding/json"
	"fmt"

	sessionrender "github.com/bnema/adminkit/internal/adapters/render/session"
	"github.com/bnema/adminkit/internal/domain"
	"github.com/spf13/cobra"
)

type statusMembership struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

type statusOutput struct {
	State             domain.SessionState `json:"state"`
	Email             string              `json:"email,omitempty"`
	Name              string              `json:"name,omitempty"`
	Role              string              `json:"role,omitempty"`
	Accounts          []statusMembership  `json:"accounts"`
	RetryCount        int                 `json:"retry_count"`
	MaxRetries        int                 `json:"max_retries"`
	LastError         string              `json:"last_error,omitempty"`
	CredentialExpired bool                `json:"credential_expired"`
	SessionExpired    bool                `json:"session_expired"`
	RememberedEmail   string              `json:"remembered_email,omitempty"`
}

func newStatusCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the current session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return writeStatusOutput(cmd, app, asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")

	return cmd
}

func writeStatusOutput(cmd *cobra.Command, app *app, asJSON bool) error {
	session := app.session.Session()

	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(toStatusOutput(session))
	}

	rendered, err := sessionrender.Render(session, sessionrender.RenderOptions{
		MaxRetries: domain.MaxRetries,
		Remaining:  app.session.CountdownRemaining(),
	})
	if err != nil {
		return fmt.Errorf("render status: %w", err)
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
	return err
}

func toStatusOutput(session domain.Session) statusOutput {
	state := session.State
	if state == "" {
		state = domain.SessionStateAnonymous
	}

	out := statusOutput{
		State:             state,
		Email:             session.Identity.Email,
		Name:              session.Identity.Name,
		Role:              session.Identity.Role,
		Accounts:          make([]statusMembership, 0, len(session.AccountMemberships)),
		RetryCount:        session.RetryCount,
		MaxRetries:        domain.MaxRetries,
		LastError:         session.LastErrorSeen,
		CredentialExpired: session.CredentialExpired,
		SessionExpired:    session.SessionExpired,
		RememberedEmail:   session.Remembered.Email,
	}
	for _, membership := range session.AccountMemberships {
		out.Accounts = append(out.Accounts, statusMembership{ID: membership.ID, Name: membership.Name})
	}

	return out
}
