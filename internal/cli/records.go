package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pathakanu/myCircle/internal/model"
	"github.com/spf13/cobra"
)

func newInteractionCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "interaction", Short: "Log calls, meetings and messages"}

	var (
		profileID uint
		kind      string
		notes     string
		at        string
	)
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Record an interaction with someone",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
			if profileID == 0 {
				return inputErrorf("--profile is required")
			}
			if _, err := a.store.GetProfile(ctx, profileID); err != nil {
				return err
			}
			when := time.Now()
			if at != "" {
				var err error
				if when, err = parseWhen(at, a.cfg.LocalTimezone, when); err != nil {
					return err
				}
			}
			k := strings.ToLower(strings.TrimSpace(kind))
			switch k {
			case model.InteractionCall, model.InteractionMeeting, model.InteractionMessage, model.InteractionOther:
			default:
				return inputErrorf("kind must be call, meeting, message or other")
			}
			in := &model.Interaction{
				ProfileID:  profileID,
				Kind:       k,
				Notes:      strings.TrimSpace(notes),
				OccurredAt: when,
			}
			id, err := a.store.AddInteraction(ctx, in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged interaction #%d\n", id)
			return nil
		}),
	}
	addCmd.Flags().UintVarP(&profileID, "profile", "p", 0, "Profile id (required)")
	addCmd.Flags().StringVarP(&kind, "kind", "k", model.InteractionOther, "call, meeting, message or other")
	addCmd.Flags().StringVarP(&notes, "notes", "n", "", "What happened")
	addCmd.Flags().StringVar(&at, "at", "", "When it happened; defaults to now")
	cmd.AddCommand(addCmd)

	var listProfile uint
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List interactions with someone, newest first",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
			if listProfile == 0 {
				return inputErrorf("--profile is required")
			}
			items, err := a.store.ListInteractions(ctx, listProfile)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(items) == 0 {
				fmt.Fprintln(out, "No interactions yet.")
			}
			for _, in := range items {
				fmt.Fprintf(out, "#%d  %s  %-8s %s\n", in.ID, in.OccurredAt.In(a.cfg.LocalTimezone).Format(timeLayout), in.Kind, in.Notes)
			}
			return nil
		}),
	}
	listCmd.Flags().UintVarP(&listProfile, "profile", "p", 0, "Profile id (required)")
	cmd.AddCommand(listCmd)

	return cmd
}

func newEventCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "event", Short: "Track life events such as moves, weddings and new jobs"}

	var (
		profileID   uint
		title       string
		description string
		date        string
	)
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Record a life event",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
			if profileID == 0 {
				return inputErrorf("--profile is required")
			}
			if strings.TrimSpace(title) == "" {
				return inputErrorf("--title is required")
			}
			if _, err := a.store.GetProfile(ctx, profileID); err != nil {
				return err
			}
			when := time.Now()
			if date != "" {
				var err error
				if when, err = time.ParseInLocation(dateLayout, strings.TrimSpace(date), a.cfg.LocalTimezone); err != nil {
					return inputErrorf("cannot read date %q, use YYYY-MM-DD", date)
				}
			}
			ev := &model.LifeEvent{
				ProfileID:   profileID,
				Title:       strings.TrimSpace(title),
				Description: strings.TrimSpace(description),
				Date:        when,
			}
			id, err := a.store.AddLifeEvent(ctx, ev)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Recorded life event #%d\n", id)
			return nil
		}),
	}
	addCmd.Flags().UintVarP(&profileID, "profile", "p", 0, "Profile id (required)")
	addCmd.Flags().StringVarP(&title, "title", "t", "", "What happened (required)")
	addCmd.Flags().StringVar(&description, "description", "", "Details")
	addCmd.Flags().StringVar(&date, "date", "", "Date as YYYY-MM-DD; defaults to today")
	cmd.AddCommand(addCmd)

	var listProfile uint
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List someone's life events in date order",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
			if listProfile == 0 {
				return inputErrorf("--profile is required")
			}
			events, err := a.store.ListLifeEvents(ctx, listProfile)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(events) == 0 {
				fmt.Fprintln(out, "No life events yet.")
			}
			for _, ev := range events {
				fmt.Fprintf(out, "#%d  %s  %s\n", ev.ID, ev.Date.In(a.cfg.LocalTimezone).Format(dateLayout), ev.Title)
			}
			return nil
		}),
	}
	listCmd.Flags().UintVarP(&listProfile, "profile", "p", 0, "Profile id (required)")
	cmd.AddCommand(listCmd)

	return cmd
}
