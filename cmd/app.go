package main

import (
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/booking-sync/internal/booking"
	"github.com/sells-group/booking-sync/internal/config"
	"github.com/sells-group/booking-sync/internal/crmsync"
	"github.com/sells-group/booking-sync/pkg/hubspot"
)

// syncApp holds the routing table and one syncer per mailbox. It is built
// once at startup and shared by every request.
type syncApp struct {
	routes  config.Routes
	syncers map[string]*crmsync.Syncer
}

// syncerFor returns the route and syncer for a mailbox path segment.
func (a *syncApp) syncerFor(mailbox string) (config.Route, *crmsync.Syncer, bool) {
	route, ok := a.routes.Lookup(mailbox)
	if !ok {
		return config.Route{}, nil, false
	}
	s, ok := a.syncers[route.Mailbox]
	return route, s, ok
}

// newSyncApp builds the app from configuration, talking to HubSpot over
// REST.
func newSyncApp(c *config.Config) (*syncApp, error) {
	routes, err := c.Routes()
	if err != nil {
		return nil, err
	}
	clientFor := func(token string) hubspot.Client {
		return newHubSpotClient(c, token)
	}
	return buildSyncApp(routes, settingsFromConfig(c), clientFor), nil
}

// buildSyncApp creates a syncer per route. Routes sharing a token share a
// client and so its rate limit.
func buildSyncApp(routes config.Routes, settings crmsync.Settings, clientFor func(token string) hubspot.Client, opts ...crmsync.Option) *syncApp {
	clients := make(map[string]hubspot.Client)
	app := &syncApp{routes: routes, syncers: make(map[string]*crmsync.Syncer, len(routes))}
	for _, route := range routes {
		crm, ok := clients[route.Token]
		if !ok {
			crm = clientFor(route.Token)
			clients[route.Token] = crm
		}
		app.syncers[route.Mailbox] = crmsync.NewSyncer(crm, settings, opts...)
	}
	zap.L().Debug("routes loaded",
		zap.Strings("mailboxes", routes.Mailboxes()),
		zap.Int("hubspot_accounts", len(clients)),
	)
	return app
}

func newHubSpotClient(c *config.Config, token string) hubspot.Client {
	crm := hubspot.NewClient(token,
		hubspot.WithBaseURL(c.HubSpot.BaseURL),
		hubspot.WithRateLimit(c.HubSpot.RateLimit),
		hubspot.WithTimeout(time.Duration(c.HubSpot.TimeoutSecs)*time.Second),
	)
	if c.DryRun {
		crm = hubspot.NewDryRunClient(crm, zap.L())
	}
	return crm
}

func settingsFromConfig(c *config.Config) crmsync.Settings {
	return crmsync.Settings{
		Honorifics: c.Names.Honorifics,
		Answers: crmsync.AnswerKeywords{
			Phone:   booking.Keywords(c.Answers.Phone),
			Title:   booking.Keywords(c.Answers.Title),
			Comment: booking.Keywords(c.Answers.Comment),
		},
		Deal: crmsync.DealPolicy{
			Stage:             c.Deal.Stage,
			Pipeline:          c.Deal.Pipeline,
			ClosedStagePrefix: c.Deal.ClosedStagePrefix,
		},
		Meeting: crmsync.MeetingPolicy{
			LocationLabel: c.Meeting.LocationLabel,
			Outcome:       c.Meeting.Outcome,
		},
	}
}
