// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/univen/housing-portal/client"
	"github.com/univen/housing-portal/models"
	"github.com/univen/housing-portal/portal"
	"github.com/univen/housing-portal/selection"
	"github.com/univen/housing-portal/tui"
)

const (
	classifierCatalog = "catalog"
	classifierStatic  = "static"
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("#404040"))).
		Headers(headers...)
}

func residencesCmd() *cobra.Command {
	var (
		residenceType string
		onCampus      string
	)

	cmd := &cobra.Command{
		Use:   "residences",
		Short: "List the residence catalog",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := client.New(viper.GetString("server.url"))
			if err != nil {
				return err
			}

			var flag *bool
			if onCampus != "" {
				v, err := strconv.ParseBool(onCampus)
				if err != nil {
					return fmt.Errorf("invalid --on-campus value %q", onCampus)
				}
				flag = &v
			}

			rows, err := c.Residences(cmd.Context(), residenceType, flag)
			if err != nil {
				return err
			}

			t := newTable("Residence", "Block", "Type", "Campus", "Rooms")
			for _, r := range rows {
				where := "off"
				if r.OnCampus {
					where = "on"
				}
				t.Row(r.ResidenceName, r.Block, r.ResidenceType, where, strconv.Itoa(r.AvailableRooms))
			}
			fmt.Fprintln(cmd.OutOrStdout(), t.Render())
			return nil
		},
	}

	cmd.Flags().StringVar(&residenceType, "type", "", "filter by type (male, female, offcamp)")
	cmd.Flags().StringVar(&onCampus, "on-campus", "", "filter by campus (true or false)")
	return cmd
}

// selectionConfig reads the selection limits and the on-campus rule.
func selectionConfig(residences []portal.Residence) (selection.Config, error) {
	cfg := selection.Config{
		MaxSelections: viper.GetInt("selection.max"),
		MaxOnCampus:   viper.GetInt("selection.max_on_campus"),
		MaxOffCampus:  viper.GetInt("selection.max_off_campus"),
	}
	switch viper.GetString("selection.classifier") {
	case classifierCatalog:
		cfg.Classifier = portal.FlagClassifier(residences)
	case classifierStatic:
		cfg.Classifier = selection.DefaultClassifier()
	default:
		return cfg, fmt.Errorf("invalid selection classifier: %s", viper.GetString("selection.classifier"))
	}
	return cfg, nil
}

// pageResidences loads the cards for a student: on-campus residences of the
// student's type followed by every off-campus residence.
func pageResidences(ctx context.Context, c *client.Client, gender string) ([]portal.Residence, error) {
	var catalog []models.Residence
	switch gender {
	case models.ResidenceMale, models.ResidenceFemale:
		on := true
		rows, err := c.Residences(ctx, gender, &on)
		if err != nil {
			return nil, err
		}
		off, err := c.Residences(ctx, models.ResidenceOffCamp, nil)
		if err != nil {
			return nil, err
		}
		catalog = append(rows, off...)
	default:
		rows, err := c.Residences(ctx, "", nil)
		if err != nil {
			return nil, err
		}
		catalog = rows
	}
	return portal.ResidencesFromCatalog(catalog), nil
}

func applyCmd() *cobra.Command {
	var residenceType string

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Choose residences and submit an application",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession(models.UserStudent)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			if residenceType == "" {
				residenceType = strings.ToLower(s.state.StudentGender)
			}
			residences, err := pageResidences(ctx, s.client, residenceType)
			if err != nil {
				return s.check(err)
			}
			sel, err := selectionConfig(residences)
			if err != nil {
				return err
			}

			err = tui.Run(ctx, s.client, tui.Config{
				Selection:     sel,
				Residences:    residences,
				StudentName:   s.state.StudentName,
				NotifyDelay:   viper.GetDuration("notify.delay"),
				RedirectDelay: viper.GetDuration("redirect.delay"),
			})
			if errors.Is(err, tui.ErrSessionExpired) {
				return s.check(client.ErrUnauthenticated)
			}
			return err
		},
	}

	cmd.Flags().StringVar(&residenceType, "type", "", "on-campus residence type (default: your gender)")
	return cmd
}

func applicationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "applications",
		Short: "List your applications",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession(models.UserStudent)
			if err != nil {
				return err
			}
			apps, err := s.client.MyApplications(cmd.Context())
			if err != nil {
				return s.check(err)
			}
			printApplications(cmd.OutOrStdout(), apps, time.Now())
			return nil
		},
	}

	cmd.AddCommand(offerCmd("accept", "Accept an approved offer"))
	cmd.AddCommand(offerCmd("decline", "Decline an approved offer"))
	return cmd
}

func printApplications(out io.Writer, apps []models.StudentApplication, now time.Time) {
	if len(apps) == 0 {
		fmt.Fprintln(out, "You have not applied to any residence yet.")
		return
	}
	t := newTable("ID", "Residence", "Status", "Applied", "Room")
	for _, r := range portal.ApplicationRows(apps, nil, now) {
		room := r.Room
		if room == "" {
			room = "-"
		}
		t.Row(r.ID, r.Label, r.Status, r.Applied, room)
	}
	fmt.Fprintln(out, t.Render())
}

func offerCmd(action, short string) *cobra.Command {
	return &cobra.Command{
		Use:   action + " <application-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(models.UserStudent)
			if err != nil {
				return err
			}
			ctx, out := cmd.Context(), cmd.OutOrStdout()

			if action == "decline" {
				if err := s.client.RejectOffer(ctx, args[0]); err != nil {
					return apiError(s, err, "Failed to decline offer.")
				}
				fmt.Fprintln(out, "Offer declined.")
				return nil
			}

			room, err := s.client.AcceptOffer(ctx, args[0])
			if err != nil {
				return apiError(s, err, "Failed to accept offer.")
			}
			if room != nil {
				fmt.Fprintf(out, "Offer accepted! Your room number is %s.\n", *room)
				return nil
			}
			fmt.Fprintln(out, "Offer accepted!")
			return nil
		},
	}
}

// apiError maps a failed call to the message the user should see.
func apiError(s *session, err error, fallback string) error {
	if errors.Is(err, client.ErrUnauthenticated) {
		return s.check(err)
	}
	return errors.New(portal.RequestErrorText(err, fallback))
}

func resetCmd() *cobra.Command {
	var admin bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Reset a forgotten password with an emailed code",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := client.New(viper.GetString("server.url"))
			if err != nil {
				return err
			}
			return tui.RunReset(cmd.Context(), c, tui.ResetConfig{
				Admin:         admin,
				StudentDomain: viper.GetString("student.domain"),
				TTL:           viper.GetDuration("otp.ttl"),
			})
		},
	}

	cmd.Flags().BoolVar(&admin, "admin", false, "reset an admin password")
	return cmd
}
