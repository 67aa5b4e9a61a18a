package config

import (
	"sort"
	"strings"

	"github.com/rotisserie/eris"
)

// Route is where a webhook posted to a mailbox is synchronised.
type Route struct {
	Mailbox    string
	OwnerEmail string
	Token      string
}

// Routes is the read-only routing table keyed by lower-cased mailbox.
type Routes map[string]Route

// Lookup returns the route for a mailbox path segment, ignoring case.
func (r Routes) Lookup(mailbox string) (Route, bool) {
	route, ok := r[routeKey(mailbox)]
	return route, ok
}

// Mailboxes returns the configured mailboxes in sorted order.
func (r Routes) Mailboxes() []string {
	out := make([]string, 0, len(r))
	for _, route := range r {
		out = append(out, route.Mailbox)
	}
	sort.Strings(out)
	return out
}

// Routes builds the routing table. Allow-list entries route to the owner
// with the same email; explicit mailboxes override them. Every route must
// end up with a token.
func (c *Config) Routes() (Routes, error) {
	routes := make(Routes)
	for _, email := range c.Routing.Emails {
		email = strings.TrimSpace(email)
		if email == "" {
			continue
		}
		routes[routeKey(email)] = Route{
			Mailbox:    email,
			OwnerEmail: email,
			Token:      c.HubSpot.Token,
		}
	}
	for _, mb := range c.Routing.Mailboxes {
		mailbox := strings.TrimSpace(mb.Mailbox)
		if mailbox == "" {
			return nil, eris.New("config: routing mailbox without address")
		}
		route := Route{
			Mailbox:    mailbox,
			OwnerEmail: strings.TrimSpace(mb.OwnerEmail),
			Token:      mb.Token,
		}
		if route.OwnerEmail == "" {
			route.OwnerEmail = mailbox
		}
		if route.Token == "" {
			route.Token = c.HubSpot.Token
		}
		routes[routeKey(mailbox)] = route
	}

	if len(routes) == 0 {
		return nil, eris.New("config: no routing mailboxes configured")
	}
	for _, route := range routes {
		if route.Token == "" {
			return nil, eris.Errorf("config: no hubspot token for mailbox %s", route.Mailbox)
		}
	}
	return routes, nil
}

func routeKey(mailbox string) string {
	return strings.ToLower(strings.TrimSpace(mailbox))
}
