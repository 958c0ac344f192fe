package cli

import (
	"github.com/pathakanu/myCircle/internal/config"
	"github.com/pathakanu/myCircle/internal/database"
	"github.com/pathakanu/myCircle/internal/notify"
	"github.com/pathakanu/myCircle/internal/openai"
	"github.com/pathakanu/myCircle/internal/reminders"
	"github.com/pathakanu/myCircle/internal/remote"
	"github.com/pathakanu/myCircle/internal/store"
	"github.com/pathakanu/myCircle/internal/twilio"
	"github.com/rs/zerolog"
)

// app holds everything a screen needs.
type app struct {
	cfg       *config.Config
	log       zerolog.Logger
	store     *store.Store
	scheduler *notify.Scheduler
	reminders *reminders.Service
	writer    *openai.Client
	fallback  bool
}

func newApp(cfg *config.Config, log zerolog.Logger) (*app, error) {
	db, fallback, err := database.NewWithFallback(cfg.DBPath, cfg.AllowMemoryFallback, log)
	if err != nil {
		return nil, err
	}

	st := store.New(db,
		store.WithLogger(log),
		store.WithMirror(buildMirror(cfg, log), remote.Session{UserID: cfg.SessionUserID, Token: cfg.SessionToken}),
		store.WithMirrorTimeout(cfg.RemoteTimeout),
	)

	writer := openai.New(cfg.OpenAIAPIKey)
	svc, scheduler := reminders.NewScheduled(st, buildDeliverer(cfg, log), writer, log,
		notify.WithMinLead(cfg.NotifyMinLead),
		notify.WithLocation(cfg.LocalTimezone),
		notify.WithLogger(log),
	)

	return &app{
		cfg:       cfg,
		log:       log,
		store:     st,
		scheduler: scheduler,
		reminders: svc,
		writer:    writer,
		fallback:  fallback,
	}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}

// buildMirror picks the remote backend. A backend that cannot be reached at
// startup leaves the app local-only.
func buildMirror(cfg *config.Config, log zerolog.Logger) remote.Mirror {
	switch cfg.RemoteMode {
	case config.RemoteHTTP:
		return remote.NewHTTP(cfg.RemoteURL, cfg.RemoteTimeout)
	case config.RemotePostgres:
		db, err := database.NewRemote(cfg.RemoteDatabaseURL, log)
		if err != nil {
			log.Warn().Err(err).Msg("remote: postgres unavailable, continuing local-only")
			return remote.Nop{}
		}
		m, err := remote.NewDB(db)
		if err != nil {
			log.Warn().Err(err).Msg("remote: mirror tables unavailable, continuing local-only")
			return remote.Nop{}
		}
		return m
	default:
		return remote.Nop{}
	}
}

func buildDeliverer(cfg *config.Config, log zerolog.Logger) notify.Deliverer {
	switch cfg.NotifyChannel {
	case config.ChannelSMS, config.ChannelWhatsApp:
		return notify.Twilio{
			Sender:   twilio.New(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFrom, log),
			To:       cfg.NotifyTo,
			WhatsApp: cfg.NotifyChannel == config.ChannelWhatsApp,
		}
	default:
		return notify.Console{Log: log}
	}
}
