package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/pathakanu/myCircle/internal/model"
	"github.com/pathakanu/myCircle/internal/reminders"
	"github.com/pathakanu/myCircle/internal/store"
	"github.com/spf13/cobra"
)

func newReminderCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "reminder", Short: "Schedule things to do for someone"}
	cmd.AddCommand(newReminderAddCmd())
	cmd.AddCommand(newReminderListCmd())
	cmd.AddCommand(newReminderSnoozeCmd())
	cmd.AddCommand(newReminderCompleteCmd())
	cmd.AddCommand(newReminderDeleteCmd())
	return cmd
}

func newReminderAddCmd() *cobra.Command {
	var (
		profileID   uint
		title       string
		description string
		at          string
		in          time.Duration
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a reminder and schedule its notification",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
			when, err := resolveWhen(at, in, a.cfg.LocalTimezone, time.Now())
			if err != nil {
				return err
			}
			input := reminders.Input{Title: title, Description: description, At: when}
			if profileID != 0 {
				input.ProfileID = &profileID
			}

			r, err := a.reminders.Create(ctx, input)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Reminder #%d set for %s\n", r.ID, r.RemindAt.In(a.cfg.LocalTimezone).Format(timeLayout))
			return nil
		}),
	}
	cmd.Flags().UintVarP(&profileID, "profile", "p", 0, "Profile the reminder is about")
	cmd.Flags().StringVarP(&title, "title", "t", "", "What to do (required)")
	cmd.Flags().StringVar(&description, "description", "", "Details")
	cmd.Flags().StringVar(&at, "at", "", "When, as YYYY-MM-DD HH:MM or HH:MM")
	cmd.Flags().DurationVar(&in, "in", 0, "When, relative to now (e.g. 90m)")
	cmd.MarkFlagsMutuallyExclusive("at", "in")
	return cmd
}

func newReminderListCmd() *cobra.Command {
	var (
		profileID uint
		all       bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List reminders by due time",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
			f := store.ReminderFilter{IncludeCompleted: all}
			if profileID != 0 {
				f.ProfileID = &profileID
			}
			rems, err := a.store.ListReminders(ctx, f)
			if err != nil {
				return err
			}
			writeReminders(cmd.OutOrStdout(), rems, a.cfg.LocalTimezone)
			return nil
		}),
	}
	cmd.Flags().UintVarP(&profileID, "profile", "p", 0, "Only reminders about this profile")
	cmd.Flags().BoolVarP(&all, "all", "a", false, "Include completed reminders")
	return cmd
}

func newReminderSnoozeCmd() *cobra.Command {
	var (
		until string
		by    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "snooze <id>",
		Short: "Move a reminder later",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			var r *model.Reminder
			if until != "" {
				when, perr := parseWhen(until, a.cfg.LocalTimezone, time.Now())
				if perr != nil {
					return perr
				}
				r, err = a.reminders.Snooze(ctx, id, when)
			} else {
				r, err = a.reminders.SnoozeFor(ctx, id, by)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Reminder #%d snoozed until %s\n", r.ID, r.RemindAt.In(a.cfg.LocalTimezone).Format(timeLayout))
			return nil
		}),
	}
	cmd.Flags().StringVar(&until, "until", "", "New time, as YYYY-MM-DD HH:MM or HH:MM")
	cmd.Flags().DurationVar(&by, "for", time.Hour, "Snooze length")
	cmd.MarkFlagsMutuallyExclusive("until", "for")
	return cmd
}

func newReminderCompleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "complete <id>",
		Short: "Mark a reminder done",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.reminders.Complete(ctx, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Reminder #%d completed\n", id)
			return nil
		}),
	}
}

func newReminderDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a reminder",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.reminders.Delete(ctx, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Reminder #%d deleted\n", id)
			return nil
		}),
	}
}

const timeLayout = "2006-01-02 15:04"

func resolveWhen(at string, in time.Duration, loc *time.Location, now time.Time) (time.Time, error) {
	switch {
	case at != "":
		return parseWhen(at, loc, now)
	case in != 0:
		return now.Add(in), nil
	}
	return time.Time{}, inputErrorf("say when with --at or --in")
}

func writeReminders(out io.Writer, rems []model.Reminder, loc *time.Location) {
	if len(rems) == 0 {
		fmt.Fprintln(out, "  No reminders.")
		return
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, r := range rems {
		status := "pending"
		if r.Completed {
			status = "done"
		}
		fmt.Fprintf(tw, "  #%d\t%s\t%s\t%s\n", r.ID, r.RemindAt.In(loc).Format(timeLayout), status, r.Title)
	}
	_ = tw.Flush()
}
