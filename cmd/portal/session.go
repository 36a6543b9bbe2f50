// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/univen/housing-portal/client"
	"github.com/univen/housing-portal/models"
	"github.com/univen/housing-portal/portal"
)

var (
	errNotLoggedIn = errors.New("not logged in, run `portal login` first")
	errExpired     = errors.New("session expired, run `portal login` again")
)

// session is a signed-in client plus the state file that remembers it.
type session struct {
	client *client.Client
	store  *portal.LocalStore
	state  portal.LocalState
}

func stateStore() (*portal.LocalStore, error) {
	path := viper.GetString("state.path")
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(home, ".config", "housing-portal", "state.json")
	}
	return portal.NewLocalStore(path), nil
}

// openSession loads the saved session. A role of "" accepts any principal.
func openSession(role string) (*session, error) {
	store, err := stateStore()
	if err != nil {
		return nil, err
	}
	st, err := store.Load()
	if err != nil {
		return nil, err
	}
	if st.Session == "" {
		return nil, errNotLoggedIn
	}
	if role != "" && st.UserType != role {
		return nil, fmt.Errorf("this command is for %s accounts, you are signed in as %s", role, st.UserType)
	}

	base := st.BaseURL
	if base == "" {
		base = viper.GetString("server.url")
	}
	c, err := client.New(base)
	if err != nil {
		return nil, err
	}
	c.SetSessionToken(st.Session)
	return &session{client: c, store: store, state: st}, nil
}

// check turns a rejected session into a login hint and forgets it.
func (s *session) check(err error) error {
	if !errors.Is(err, client.ErrUnauthenticated) {
		return err
	}
	if clearErr := s.store.Clear(); clearErr != nil {
		slog.Warn("failed to clear session state", "error", clearErr)
	}
	return errExpired
}

func loginCmd() *cobra.Command {
	var (
		student  string
		admin    string
		password string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in as a student or an admin",
		Long: `Sign in with a student number (--student) or an admin email (--admin).
The password is read from --password, HOUSING_PASSWORD or standard input.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req := models.LoginRequest{Username: strings.TrimSpace(student), UserType: models.UserStudent}
			if admin != "" {
				req.Username = strings.TrimSpace(admin)
				req.UserType = models.UserAdmin
			}
			if req.Username == "" {
				return errors.New("either --student or --admin is required")
			}
			if student != "" && admin != "" {
				return errors.New("--student and --admin are mutually exclusive")
			}

			if password == "" {
				password = viper.GetString("password")
			}
			if password == "" {
				var err error
				password, err = promptLine(cmd.InOrStdin(), cmd.ErrOrStderr(), "Password: ")
				if err != nil {
					return err
				}
			}
			req.Password = password

			return login(cmd, req)
		},
	}

	cmd.Flags().StringVar(&student, "student", "", "student number")
	cmd.Flags().StringVar(&admin, "admin", "", "admin email")
	cmd.Flags().StringVar(&password, "password", "", "password")
	return cmd
}

func login(cmd *cobra.Command, req models.LoginRequest) error {
	ctx := cmd.Context()

	store, err := stateStore()
	if err != nil {
		return err
	}
	base := viper.GetString("server.url")
	c, err := client.New(base)
	if err != nil {
		return err
	}

	resp, err := c.Login(ctx, req)
	if err != nil {
		return errors.New(portal.RequestErrorText(err, "Invalid credentials. Please try again."))
	}
	me, err := c.Me(ctx)
	if err != nil {
		return fmt.Errorf("failed to load profile: %w", err)
	}

	st := portal.LocalState{BaseURL: c.BaseURL(), Session: c.SessionToken()}
	st.Mirror(me)
	if err := store.Save(st); err != nil {
		return err
	}

	slog.Debug("signed in", "user_type", me.UserType, "redirect", resp.Redirect)
	name := req.Username
	if st.StudentName != "" {
		name = st.StudentName
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s (%s)\n", name, me.UserType)
	return nil
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the saved session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession("")
			if errors.Is(err, errNotLoggedIn) {
				fmt.Fprintln(cmd.OutOrStdout(), "Not signed in")
				return nil
			}
			if err != nil {
				return err
			}

			if err := s.client.Logout(cmd.Context()); err != nil {
				slog.Warn("server logout failed", "error", err)
			}
			if err := s.store.Clear(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return nil
		},
	}
}

func whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in principal",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession("")
			if err != nil {
				return err
			}
			me, err := s.client.Me(cmd.Context())
			if err != nil {
				return s.check(err)
			}

			// Refresh the mirrored profile
			s.state.Mirror(me)
			if err := s.store.Save(s.state); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s\n", me.UserType, me.UserID)
			if me.Student != nil {
				fmt.Fprintf(out, "%s  %s  %s\n", me.Student.StudentNumber, me.Student.FullName(), me.Student.Gender)
			}
			return nil
		},
	}
}

// promptLine reads one line from in after writing prompt to out.
func promptLine(in io.Reader, out io.Writer, prompt string) (string, error) {
	fmt.Fprint(out, prompt)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
