package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	authadapter "github.com/bnema/adminkit/internal/adapters/auth"
	"github.com/bnema/adminkit/internal/application"
	"github.com/bnema/adminkit/internal/domain"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

type loginOptions struct {
	token      string
	email      string
	password   string
	remember   bool
	remembered bool
}

func newLoginCmd(app *app) *cobra.Command {
	var opts loginOptions

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in with a bearer token or email and password",
		Long:  "Log in with --token, or exchange --email and --password for a token. --remember keeps the login (and password, in the local vault) across logouts; --remembered logs in again with it.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLogin(cmd, app, opts)
		},
	}

	cmd.Flags().StringVar(&opts.token, "token", "", "Bearer token issued by the API")
	cmd.Flags().StringVar(&opts.email, "email", "", "Login email")
	cmd.Flags().StringVar(&opts.password, "password", "", "Login password (read from stdin when omitted)")
	cmd.Flags().BoolVar(&opts.remember, "remember", false, "Remember this login across logouts")
	cmd.Flags().BoolVar(&opts.remembered, "remembered", false, "Log in with the remembered email and password")
	cmd.MarkFlagsMutuallyExclusive("token", "email", "remembered")
	cmd.MarkFlagsOneRequired("token", "email", "remembered")

	return cmd
}

func runLogin(cmd *cobra.Command, app *app, opts loginOptions) error {
	ctx := cmd.Context()

	var login application.LoginCommand
	switch {
	case opts.token != "":
		login = application.LoginCommand{Credential: opts.token, Remember: opts.remember}
	case opts.remembered:
		remembered, secret, err := app.session.RememberedSecret(ctx)
		if err != nil {
			return fmt.Errorf("load remembered login: %w", err)
		}
		if remembered.Email == "" {
			return errors.New("no remembered login")
		}
		if secret == "" {
			return fmt.Errorf("no stored password for %s", remembered.Email)
		}
		result, err := app.login.Login(ctx, remembered.Email, secret)
		if err != nil {
			return fmt.Errorf("login %s: %w", remembered.Email, err)
		}
		login = loginCommandFromResult(result)
		login.Remember = true
	default:
		password := opts.password
		if password == "" {
			read, err := readPassword(cmd)
			if err != nil {
				return err
			}
			password = read
		}
		result, err := app.login.Login(ctx, opts.email, password)
		if err != nil {
			return fmt.Errorf("login %s: %w", opts.email, err)
		}
		login = loginCommandFromResult(result)
		if opts.remember {
			login.Remember = true
			login.RememberSecret = password
		}
	}

	if err := app.session.Login(ctx, login); err != nil {
		return fmt.Errorf("save login: %w", err)
	}

	session := app.session.Session()
	who := session.Identity.Email
	if who == "" {
		who = "token"
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", who)
	return nil
}

func loginCommandFromResult(result authadapter.LoginResult) application.LoginCommand {
	return application.LoginCommand{
		Credential:  result.Token,
		Identity:    result.Identity,
		Memberships: result.Memberships,
	}
}

func readPassword(cmd *cobra.Command) (string, error) {
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		_, _ = fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
		data, err := term.ReadPassword(int(f.Fd()))
		_, _ = fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		if len(data) == 0 {
			return "", errors.New("password is required")
		}
		return string(data), nil
	}

	scanner := bufio.NewScanner(cmd.InOrStdin())
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return "", errors.New("password is required")
	}

	password := strings.TrimRight(scanner.Text(), "\r\n")
	if password == "" {
		return "", errors.New("password is required")
	}
	return password, nil
}

func newLogoutCmd(app *app) *cobra.Command {
	var forget bool

	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Log out and clear the stored session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			wasAuthenticated := app.session.Session().IsAuthenticated()
			if err := app.session.Logout(cmd.Context()); err != nil {
				return fmt.Errorf("logout: %w", err)
			}
			if forget {
				if err := app.session.Forget(cmd.Context()); err != nil {
					return fmt.Errorf("forget remembered login: %w", err)
				}
			}

			if !wasAuthenticated {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Not logged in")
				return nil
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}

	cmd.Flags().BoolVar(&forget, "forget", false, "Also drop the remembered login and its stored password")

	return cmd
}

func requireAuthenticated(app *app) error {
	if !app.session.Session().IsAuthenticated() {
		return fmt.Errorf("%w: run adminkit login first", domain.ErrNotAuthenticated)
	}
	return nil
}
