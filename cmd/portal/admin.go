// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/univen/housing-portal/models"
)

func adminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Admin dashboard actions",
		Long:  `Review applications, allocate rooms, and manage off-campus residences.`,
	}

	cmd.AddCommand(adminApplicationsCmd())
	cmd.AddCommand(adminDecisionCmd("approve", "Approve a pending application"))
	cmd.AddCommand(adminDecisionCmd("reject", "Reject a pending application"))
	cmd.AddCommand(adminStudentsCmd())
	cmd.AddCommand(adminStatsCmd())
	cmd.AddCommand(adminProcessCmd())
	cmd.AddCommand(adminSyncCmd())
	cmd.AddCommand(adminExportCmd())
	cmd.AddCommand(adminEmailTestCmd())

	return cmd
}

func adminApplicationsCmd() *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "applications",
		Short: "List all applications",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession(models.UserAdmin)
			if err != nil {
				return err
			}
			apps, err := s.client.AllApplications(cmd.Context())
			if err != nil {
				return s.check(err)
			}

			t := newTable("ID", "Student", "Name", "Residence", "Status", "Applied")
			for _, a := range apps {
				if status != "" && !strings.EqualFold(a.Status, status) {
					continue
				}
				residence := a.ResidenceName
				if a.Block != "" {
					residence += " - " + a.Block
				}
				t.Row(a.ID, a.StudentNumber, a.FirstName+" "+a.LastName, residence, a.Status, humanize.Time(a.ApplyDate))
			}
			fmt.Fprintln(cmd.OutOrStdout(), t.Render())
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "only show this status (Pending, Approved, Rejected, Accepted)")
	return cmd
}

func adminDecisionCmd(action, short string) *cobra.Command {
	return &cobra.Command{
		Use:   action + " <application-id>...",
		Short: short,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(models.UserAdmin)
			if err != nil {
				return err
			}

			decide := s.client.Approve
			if action == "reject" {
				decide = s.client.Reject
			}
			for _, id := range args {
				if err := decide(cmd.Context(), id); err != nil {
					return apiError(s, err, "Failed to update application "+id+".")
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %sd\n", id, action)
			}
			return nil
		},
	}
}

func adminStudentsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "students",
		Short: "List registered students",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession(models.UserAdmin)
			if err != nil {
				return err
			}
			students, err := s.client.Students(cmd.Context())
			if err != nil {
				return s.check(err)
			}

			t := newTable("Number", "Name", "Gender", "GPA", "Distance", "Status", "Room")
			for _, st := range students {
				room := "-"
				if st.RoomNumber != nil {
					room = *st.RoomNumber
				}
				t.Row(st.StudentNumber, st.FullName(), st.Gender,
					strconv.FormatFloat(st.GPA, 'f', 2, 64),
					humanize.FormatFloat("#,###.#", st.Distance)+" km",
					st.Status, room)
			}
			fmt.Fprintln(cmd.OutOrStdout(), t.Render())
			return nil
		},
	}
}

func adminStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Accepted students per residence",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession(models.UserAdmin)
			if err != nil {
				return err
			}
			stats, err := s.client.ResidenceStats(cmd.Context())
			if err != nil {
				return s.check(err)
			}

			t := newTable("ID", "Residence", "Block", "Type", "Rooms", "Accepted")
			for _, r := range stats {
				t.Row(r.ID, r.ResidenceName, r.Block, r.ResidenceType,
					strconv.Itoa(r.AvailableRooms), strconv.Itoa(r.AcceptedCount))
			}
			fmt.Fprintln(cmd.OutOrStdout(), t.Render())
			return nil
		},
	}
}

func adminProcessCmd() *cobra.Command {
	var method string

	cmd := &cobra.Command{
		Use:   "process",
		Short: "Bulk-approve pending applications while capacity remains",
		RunE: func(cmd *cobra.Command, _ []string) error {
			switch method {
			case models.MethodGPA, models.MethodDistance, models.MethodFirstCome:
			default:
				return fmt.Errorf("invalid method %q (gpa, distance, first_come)", method)
			}

			s, err := openSession(models.UserAdmin)
			if err != nil {
				return err
			}
			resp, err := s.client.Process(cmd.Context(), method)
			if err != nil {
				return apiError(s, err, "Failed to process applications.")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Processed by %s: %s approved\n",
				resp.Method, humanize.Comma(int64(resp.AcceptedCount)))
			return nil
		},
	}

	cmd.Flags().StringVar(&method, "method", models.MethodGPA, "allocation order (gpa, distance, first_come)")
	return cmd
}

func adminSyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync <residence-name>...",
		Short: "Add or update off-campus residences",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(models.UserAdmin)
			if err != nil {
				return err
			}
			ids, err := s.client.SyncOffCampus(cmd.Context(), args)
			if err != nil {
				return apiError(s, err, "Failed to sync residences.")
			}
			for i, id := range ids {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", id, args[i])
			}
			return nil
		},
	}
}

func adminExportCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export <residence-id>",
		Short: "Download accepted students of an off-campus residence",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(models.UserAdmin)
			if err != nil {
				return err
			}
			data, err := s.client.ExportAccepted(cmd.Context(), args[0])
			if err != nil {
				return apiError(s, err, "Failed to export accepted students.")
			}

			if output == "" {
				output = "accepted-" + args[0] + ".xlsx"
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", output, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%s)\n", output, humanize.Bytes(uint64(len(data))))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: accepted-<id>.xlsx)")
	return cmd
}

func adminEmailTestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "email-test [to]",
		Short: "Send a test email",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(models.UserAdmin)
			if err != nil {
				return err
			}
			to := ""
			if len(args) == 1 {
				to = args[0]
			}
			resp, err := s.client.EmailTest(cmd.Context(), to)
			if err != nil {
				return apiError(s, err, "Failed to send test email.")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Test email sent to %s\n", resp.To)
			return nil
		},
	}
}
