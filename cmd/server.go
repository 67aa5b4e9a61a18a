package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/getsentry/sentry-go"
	sentryhttp "github.com/getsentry/sentry-go/http"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/sells-group/booking-sync/internal/booking"
	"github.com/sells-group/booking-sync/internal/config"
)

const maxPayloadBytes = 1 << 20

// healthcheckTransaction is the sentry transaction name of the liveness
// probe.
const healthcheckTransaction = "GET /"

// newRouter returns the webhook handler: GET / for liveness and
// POST /{mailbox} for booking notifications.
func newRouter(app *syncApp, withSentry bool) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	if withSentry {
		r.Use(sentryhttp.New(sentryhttp.Options{Repanic: true}).Handle)
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSONError(w, http.StatusNotFound, "resource not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeOK(w)
	})
	r.Post("/{mailbox}", app.handleWebhook)

	return r
}

func (a *syncApp) handleWebhook(w http.ResponseWriter, r *http.Request) {
	log := zap.L().With(zap.String("request_id", middleware.GetReqID(r.Context())))

	mailbox, err := url.PathUnescape(chi.URLParam(r, "mailbox"))
	if err != nil {
		writeJSONError(w, http.StatusNotFound, "resource not found")
		return
	}
	route, syncer, ok := a.syncerFor(mailbox)
	if !ok {
		log.Warn("webhook for unknown mailbox", zap.String("mailbox", mailbox))
		writeJSONError(w, http.StatusNotFound, "resource not found")
		return
	}
	log = log.With(zap.String("mailbox", route.Mailbox))

	b, err := booking.Decode(http.MaxBytesReader(w, r.Body, maxPayloadBytes))
	if err != nil {
		msg := "invalid payload"
		if errors.Is(err, booking.ErrEmptyPayload) {
			msg = "empty payload"
		}
		log.Warn("rejected webhook payload", zap.Error(err))
		writeJSONError(w, http.StatusBadRequest, msg)
		return
	}
	b.Mailbox = route.Mailbox

	res, err := syncer.Process(r.Context(), b, route.OwnerEmail)
	if err != nil {
		log.Error("booking sync failed",
			zap.String("email", b.Invitee.Email),
			zap.String("booking_uuid", b.UUID),
			zap.Error(err),
		)
		reportError(r, route, err)
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}

	log.Info("webhook processed",
		zap.String("booking_uuid", b.UUID),
		zap.String("contact_id", res.ContactID),
		zap.String("meeting_id", res.MeetingID),
	)
	writeOK(w)
}

func reportError(r *http.Request, route config.Route, err error) {
	hub := sentry.GetHubFromContext(r.Context())
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("mailbox", route.Mailbox)
		hub.CaptureException(err)
	})
}

func writeOK(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// initSentry enables error reporting when a DSN is configured. Healthcheck
// transactions are sampled at the configured rate, everything else fully.
func initSentry(c config.SentryConfig) (bool, error) {
	if c.DSN == "" {
		return false, nil
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:              c.DSN,
		Release:          c.Release,
		Environment:      c.Environment,
		EnableTracing:    true,
		AttachStacktrace: true,
		TracesSampler: func(ctx sentry.SamplingContext) float64 {
			if ctx.Span == nil {
				return 1.0
			}
			return tracesSampleRate(ctx.Span.Name, c.HealthcheckSampleRate)
		},
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

func tracesSampleRate(transaction string, healthcheckRate float64) float64 {
	if transaction == healthcheckTransaction {
		return healthcheckRate
	}
	return 1.0
}
