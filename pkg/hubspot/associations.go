package hubspot

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
)

// Association type labels for the default HubSpot association definitions.
const (
	ContactToDeal         = "contact_to_deal"
	CompanyToDeal         = "company_to_deal"
	ContactToMeetingEvent = "contact_to_meeting_event"
	CompanyToMeetingEvent = "company_to_meeting_event"
	DealToMeetingEvent    = "deal_to_meeting_event"
)

// AssociationInput is one directed edge in a batch association request.
type AssociationInput struct {
	From ObjectRef `json:"from"`
	To   ObjectRef `json:"to"`
	Type string    `json:"type"`
}

// ObjectRef references an object by id.
type ObjectRef struct {
	ID string `json:"id"`
}

type associationBatch struct {
	Inputs []AssociationInput `json:"inputs"`
}

type associationBatchResult struct {
	Status    string             `json:"status"`
	NumErrors int                `json:"numErrors"`
	Errors    []associationError `json:"errors"`
}

type associationError struct {
	Status   string `json:"status"`
	Category string `json:"category"`
	Message  string `json:"message"`
}

// NewAssociation builds a single edge from one object id to another.
func NewAssociation(fromID, toID, typ string) AssociationInput {
	return AssociationInput{From: ObjectRef{ID: fromID}, To: ObjectRef{ID: toID}, Type: typ}
}

func (c *restClient) CreateAssociations(ctx context.Context, fromType, toType string, inputs []AssociationInput) error {
	if len(inputs) == 0 {
		return nil
	}
	req, err := c.request(ctx)
	if err != nil {
		return err
	}

	op := fmt.Sprintf("hubspot: associate %s to %s", fromType, toType)
	var result associationBatchResult
	resp, err := req.
		SetPathParams(map[string]string{"from": fromType, "to": toType}).
		SetBody(associationBatch{Inputs: inputs}).
		SetResult(&result).
		Post("/crm/v3/associations/{from}/{to}/batch/create")
	if err != nil {
		return eris.Wrap(err, op)
	}
	if err := checkResponse(resp, op); err != nil {
		return err
	}

	// A 207 multi-status response reports per-input failures in the body.
	if len(result.Errors) > 0 {
		msgs := make([]string, len(result.Errors))
		for i, e := range result.Errors {
			msgs[i] = e.Message
		}
		return eris.Errorf("%s: %d of %d failed: %s", op, len(result.Errors), len(inputs), strings.Join(msgs, "; "))
	}
	return nil
}
