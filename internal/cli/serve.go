package cli

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/pathakanu/myCircle/internal/bot"
	"github.com/pathakanu/myCircle/internal/logger"
	"github.com/pathakanu/myCircle/internal/notify"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

const reconcileSpec = "@every 1m"

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the notification daemon and the reply webhook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			log := logger.New(serviceName)
			return runApp(cmd, args, cfg, log, serve)
		},
	}
}

func serve(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
	if p := a.scheduler.RequestPermission(ctx); p != notify.PermissionGranted {
		a.log.Warn().Str("permission", p.String()).Msg("notifications are not allowed; reminders will be stored but not delivered")
	}

	reconcile := func() {
		rctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if _, err := a.reminders.Reconcile(rctx); err != nil {
			a.log.Error().Err(err).Msg("reconcile reminders")
		}
	}
	reconcile()
	if err := a.scheduler.Every(reconcileSpec, reconcile); err != nil {
		return err
	}
	a.scheduler.Start()

	replies := bot.New(a.store, a.reminders, a.cfg.NotifyTo, a.cfg.LocalTimezone, a.log)
	server := &http.Server{
		Addr:              ":" + a.cfg.Port,
		Handler:           newRouter(a, replies),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		a.log.Info().Str("port", a.cfg.Port).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Fatal().Err(err).Msg("server error")
		}
	}()

	waitForShutdown(ctx, server, a.scheduler, a.log)
	return nil
}

func newRouter(a *app, replies *bot.Bot) *mux.Router {
	r := mux.NewRouter()
	r.Handle("/twilio/webhook", replies.Handler()).Methods(http.MethodPost)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status":     "ok",
			"permission": a.scheduler.PermissionStatus().String(),
			"fallback":   a.fallback,
		})
	}).Methods(http.MethodGet)

	r.HandleFunc("/notifications", func(w http.ResponseWriter, _ *http.Request) {
		list := a.scheduler.List()
		out := make([]notificationView, 0, len(list))
		for _, n := range list {
			out = append(out, newNotificationView(n))
		}
		writeJSON(w, http.StatusOK, out)
	}).Methods(http.MethodGet)

	r.HandleFunc("/notifications", func(w http.ResponseWriter, req *http.Request) {
		n, err := a.reminders.CancelAllNotifications(req.Context())
		if err != nil {
			a.log.Error().Err(err).Msg("cancel all notifications")
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": GenericAlert})
			return
		}
		writeJSON(w, http.StatusOK, map[string]int{"cancelled": n})
	}).Methods(http.MethodDelete)

	r.HandleFunc("/notifications/{id}", func(w http.ResponseWriter, req *http.Request) {
		id := mux.Vars(req)["id"]
		err := a.reminders.CancelNotification(req.Context(), id)
		switch {
		case errors.Is(err, notify.ErrNotFound):
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "notification not found"})
		case err != nil:
			a.log.Error().Err(err).Str("notification_id", id).Msg("cancel notification")
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": GenericAlert})
		default:
			w.WriteHeader(http.StatusNoContent)
		}
	}).Methods(http.MethodDelete)

	return r
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func waitForShutdown(ctx context.Context, server *http.Server, scheduler *notify.Scheduler, log zerolog.Logger) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	select {
	case <-stop:
	case <-ctx.Done():
	}
	log.Info().Msg("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown error")
	}
	scheduler.Stop()
}
