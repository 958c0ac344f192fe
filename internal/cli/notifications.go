package cli

import (
	"fmt"
	"net/http"
	"os"
	"text/tabwriter"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pathakanu/myCircle/internal/notify"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// notificationView is the wire form of a scheduled notification.
type notificationView struct {
	ID         string    `json:"id"`
	ReminderID uint      `json:"reminder_id,omitempty"`
	Title      string    `json:"title"`
	Body       string    `json:"body,omitempty"`
	FireAt     time.Time `json:"fire_at"`
}

func newNotificationView(n notify.Notification) notificationView {
	return notificationView{ID: n.ID, ReminderID: n.ReminderID, Title: n.Title, Body: n.Body, FireAt: n.FireAt}
}

func newNotificationsCmd() *cobra.Command {
	var daemonURL string

	cmd := &cobra.Command{Use: "notifications", Short: "Inspect and cancel notifications held by the running daemon"}
	defaultURL := os.Getenv("MYCIRCLE_DAEMON_URL")
	if defaultURL == "" {
		defaultURL = "http://localhost:8080"
	}
	cmd.PersistentFlags().StringVar(&daemonURL, "daemon-url", defaultURL, "Base URL of the serve daemon")

	client := func() *resty.Client {
		return resty.New().SetBaseURL(daemonURL).SetTimeout(10 * time.Second)
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List scheduled notifications by fire time",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var list []notificationView
			resp, err := client().R().SetContext(cmd.Context()).SetResult(&list).Get("/notifications")
			if err := daemonError(resp, err); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(list) == 0 {
				fmt.Fprintln(out, "No scheduled notifications.")
				return nil
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tREMINDER\tFIRES\tTITLE")
			for _, n := range list {
				fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", n.ID, n.ReminderID, n.FireAt.Local().Format(timeLayout), n.Title)
			}
			return tw.Flush()
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "cancel <id>",
		Short: "Cancel one scheduled notification",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := client().R().SetContext(cmd.Context()).SetPathParam("id", args[0]).Delete("/notifications/{id}")
			if err == nil && resp.StatusCode() == http.StatusNotFound {
				return inputErrorf("No scheduled notification %s.", args[0])
			}
			if err := daemonError(resp, err); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cancelled notification %s\n", args[0])
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "cancel-all",
		Short: "Cancel every scheduled notification",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var result struct {
				Cancelled int `json:"cancelled"`
			}
			resp, err := client().R().SetContext(cmd.Context()).SetResult(&result).Delete("/notifications")
			if err := daemonError(resp, err); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cancelled %d notifications\n", result.Cancelled)
			return nil
		},
	})

	return cmd
}

func daemonError(resp *resty.Response, err error) error {
	if err != nil {
		return errors.Wrap(err, "contact daemon")
	}
	if resp.IsError() {
		return errors.Errorf("daemon returned %s", resp.Status())
	}
	return nil
}
