package hubspot

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
)

const ownersPageSize = "100"

type ownersPage struct {
	Results []Owner `json:"results"`
	Paging  *struct {
		Next *struct {
			After string `json:"after"`
		} `json:"next"`
	} `json:"paging"`
}

func (c *restClient) ListOwners(ctx context.Context) ([]Owner, error) {
	var owners []Owner
	after := ""
	for {
		req, err := c.request(ctx)
		if err != nil {
			return nil, err
		}
		req.SetQueryParam("limit", ownersPageSize)
		if after != "" {
			req.SetQueryParam("after", after)
		}

		var page ownersPage
		resp, err := req.SetResult(&page).Get("/crm/v3/owners")
		if err != nil {
			return nil, eris.Wrap(err, "hubspot: list owners")
		}
		if err := checkResponse(resp, "hubspot: list owners"); err != nil {
			return nil, err
		}
		owners = append(owners, page.Results...)

		if page.Paging == nil || page.Paging.Next == nil || page.Paging.Next.After == "" {
			return owners, nil
		}
		after = page.Paging.Next.After
	}
}

// FindOwnerByEmail returns the owner whose email matches (case-insensitive).
// Returns nil if no owner matches.
func FindOwnerByEmail(owners []Owner, email string) *Owner {
	for i := range owners {
		if strings.EqualFold(owners[i].Email, email) {
			return &owners[i]
		}
	}
	return nil
}
