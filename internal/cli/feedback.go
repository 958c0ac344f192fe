package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/pathakanu/myCircle/internal/model"
	"github.com/spf13/cobra"
)

func newFeedbackCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "feedback", Short: "Tell us what to improve"}

	var message, category string
	sendCmd := &cobra.Command{
		Use:   "send",
		Short: "Submit feedback",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(message) == "" {
				return inputErrorf("--message is required")
			}
			id, err := a.store.SubmitFeedback(ctx, &model.Feedback{
				Message:  strings.TrimSpace(message),
				Category: strings.ToLower(strings.TrimSpace(category)),
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Thanks! Feedback #%d received.\n", id)
			return nil
		}),
	}
	sendCmd.Flags().StringVarP(&message, "message", "m", "", "Your feedback (required)")
	sendCmd.Flags().StringVarP(&category, "category", "c", "", "bug, idea or other")
	cmd.AddCommand(sendCmd)

	var status string
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List submitted feedback, newest first",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
			items, err := a.store.ListFeedback(ctx, strings.ToLower(strings.TrimSpace(status)))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(items) == 0 {
				fmt.Fprintln(out, "No feedback.")
			}
			for _, f := range items {
				fmt.Fprintf(out, "#%d  [%s] %s", f.ID, f.Status, f.Message)
				if f.Category != "" {
					fmt.Fprintf(out, " (%s)", f.Category)
				}
				fmt.Fprintln(out)
			}
			return nil
		}),
	}
	listCmd.Flags().StringVarP(&status, "status", "s", "", "Only this status: new, reviewed or resolved")
	cmd.AddCommand(listCmd)

	statusCmd := &cobra.Command{
		Use:   "status <id> <new|reviewed|resolved>",
		Short: "Change the status of a feedback entry",
		Args:  cobra.ExactArgs(2),
		RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			next := strings.ToLower(strings.TrimSpace(args[1]))
			switch next {
			case model.FeedbackNew, model.FeedbackReviewed, model.FeedbackResolved:
			default:
				return inputErrorf("status must be new, reviewed or resolved")
			}
			if err := a.store.SetFeedbackStatus(ctx, id, next); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Feedback #%d is now %s\n", id, next)
			return nil
		}),
	}
	cmd.AddCommand(statusCmd)

	return cmd
}
