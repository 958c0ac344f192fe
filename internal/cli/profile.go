package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/pathakanu/myCircle/internal/model"
	"github.com/pathakanu/myCircle/internal/openai"
	"github.com/pathakanu/myCircle/internal/store"
	"github.com/spf13/cobra"
)

func newProfileCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "profile", Short: "Manage the people you track"}
	cmd.AddCommand(newProfileCreateCmd())
	cmd.AddCommand(newProfileEditCmd())
	cmd.AddCommand(newProfileShowCmd())
	cmd.AddCommand(newProfileListCmd())
	cmd.AddCommand(newProfileDeleteCmd())
	return cmd
}

func newProfileCreateCmd() *cobra.Command {
	var form profileForm
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a profile",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
			p := &model.Profile{}
			if err := form.apply(cmd.Flags(), p); err != nil {
				return err
			}
			id, err := a.store.SaveProfile(ctx, p)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved profile #%d (%s)\n", id, p.Name)
			return nil
		}),
	}
	form.bind(cmd.Flags())
	return cmd
}

func newProfileEditCmd() *cobra.Command {
	var form profileForm
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change fields of a profile; unset flags keep their value",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			p, err := a.store.GetProfile(ctx, id)
			if err != nil {
				return err
			}
			if err := form.apply(cmd.Flags(), p); err != nil {
				return err
			}
			if _, err := a.store.SaveProfile(ctx, p); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved profile #%d (%s)\n", p.ID, p.Name)
			return nil
		}),
	}
	form.bind(cmd.Flags())
	return cmd
}

func newProfileShowCmd() *cobra.Command {
	var summarize bool
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a profile with its reminders, interactions and life events",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			p, err := a.store.GetProfile(ctx, id)
			if err != nil {
				return err
			}
			rems, err := a.store.ListReminders(ctx, store.ReminderFilter{ProfileID: &id, IncludeCompleted: true})
			if err != nil {
				return err
			}
			interactions, err := a.store.ListInteractions(ctx, id)
			if err != nil {
				return err
			}
			events, err := a.store.ListLifeEvents(ctx, id)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			writeProfile(out, p)
			if summarize && p.Notes != "" {
				writeSummary(ctx, out, a.writer, p.Notes)
			}

			fmt.Fprintln(out, "\nReminders:")
			writeReminders(out, rems, a.cfg.LocalTimezone)
			fmt.Fprintln(out, "\nInteractions:")
			for _, in := range interactions {
				fmt.Fprintf(out, "  %s  %-8s %s\n", in.OccurredAt.In(a.cfg.LocalTimezone).Format(dateLayout), in.Kind, in.Notes)
			}
			fmt.Fprintln(out, "\nLife events:")
			for _, ev := range events {
				fmt.Fprintf(out, "  %s  %s", ev.Date.In(a.cfg.LocalTimezone).Format(dateLayout), ev.Title)
				if ev.Description != "" {
					fmt.Fprintf(out, ": %s", ev.Description)
				}
				fmt.Fprintln(out)
			}
			return nil
		}),
	}
	cmd.Flags().BoolVar(&summarize, "summary", false, "Add a one-line summary of the notes")
	return cmd
}

func newProfileListCmd() *cobra.Command {
	var f store.ProfileFilter
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List profiles by name",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
			f.Relationship = strings.ToLower(strings.TrimSpace(f.Relationship))
			profiles, err := a.store.ListProfiles(ctx, f)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(profiles) == 0 {
				fmt.Fprintln(out, "No profiles yet.")
				return nil
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tRELATIONSHIP\tTAGS")
			for _, p := range profiles {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", p.ID, p.Name, p.Relationship, strings.Join(p.Tags.Names(), ", "))
			}
			return tw.Flush()
		}),
	}
	cmd.Flags().StringVar(&f.Relationship, "relationship", "", "Only show this relationship")
	cmd.Flags().StringVarP(&f.Query, "query", "q", "", "Search names, notes and tags")
	return cmd
}

func newProfileDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a profile and everything recorded about them",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if _, err := a.store.GetProfile(ctx, id); err != nil {
				return err
			}
			if err := a.reminders.DeleteProfile(ctx, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted profile #%d\n", id)
			return nil
		}),
	}
}

const dateLayout = "2006-01-02"

func writeProfile(out io.Writer, p *model.Profile) {
	fmt.Fprintf(out, "#%d %s\n", p.ID, p.Name)
	field := func(label, value string) {
		if value != "" {
			fmt.Fprintf(out, "  %-13s %s\n", label+":", value)
		}
	}
	list := func(label string, items []string) {
		if len(items) > 0 {
			field(label, strings.Join(items, ", "))
		}
	}

	if p.Age > 0 {
		field("Age", fmt.Sprint(p.Age))
	}
	field("Relationship", p.Relationship)
	field("Phone", p.Phone)
	field("Email", p.Email)
	field("Job", p.Job)
	field("Birthday", p.Birthday)

	tags := make([]string, 0, len(p.Tags))
	for _, t := range p.Tags {
		if t.Color != "" {
			tags = append(tags, t.Name+" ("+t.Color+")")
			continue
		}
		tags = append(tags, t.Name)
	}
	list("Tags", tags)
	list("Parents", p.Parents)
	list("Kids", p.Kids)
	list("Siblings", p.Siblings)
	list("Likes", p.Likes)
	list("Dislikes", p.Dislikes)
	list("Interests", p.Interests)

	social := make([]string, 0, len(p.SocialMedia))
	for _, h := range p.SocialMedia {
		social = append(social, h.Platform+": "+h.Handle)
	}
	list("Social", social)
	field("Notes", p.Notes)
}

func writeSummary(ctx context.Context, out io.Writer, writer *openai.Client, notes string) {
	summary, err := writer.SummarizeNotes(ctx, notes)
	if err != nil || summary == "" {
		return
	}
	fmt.Fprintf(out, "  %-13s %s\n", "Summary:", summary)
}
