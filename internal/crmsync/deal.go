package crmsync

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/booking-sync/pkg/hubspot"
)

// Deal property names.
const (
	propDealName  = "dealname"
	propDealStage = "dealstage"
	propPipeline  = "pipeline"
	propAmount    = "amount"
	propCloseDate = "closedate"
)

// Deal is the open deal a meeting is attached to.
type Deal struct {
	ID    string
	Name  string
	Stage string
	// Created is true when the deal was created by this sync.
	Created bool
	// Links are the associations created together with the deal.
	Links []Association
}

// DealParams describes the deal to create when a contact has none.
type DealParams struct {
	Name      string
	CloseDate string
	OwnerID   string
}

// DealSelector ensures a contact has a deal to attach meetings to.
type DealSelector struct {
	crm    hubspot.Client
	linker *Linker
	policy DealPolicy
}

// NewDealSelector creates a DealSelector.
func NewDealSelector(crm hubspot.Client, linker *Linker, policy DealPolicy) *DealSelector {
	return &DealSelector{crm: crm, linker: linker, policy: policy}
}

// EnsureOpenDeal returns a deal for contact.
//
// A contact without deals gets a new one, linked to the contact and to the
// contact's first company. Otherwise the first associated deal that is not
// closed is returned; deals that cannot be fetched are skipped. When every
// deal is closed or unreadable the first associated deal is returned as is
// and no new deal is created.
func (s *DealSelector) EnsureOpenDeal(ctx context.Context, contact *Contact, params DealParams) (*Deal, error) {
	if len(contact.DealIDs) == 0 {
		return s.create(ctx, contact, params)
	}

	log := zap.L().With(zap.String("contact_id", contact.ID))
	for _, id := range contact.DealIDs {
		obj, err := s.crm.GetObject(ctx, hubspot.ObjectDeals, id, hubspot.GetQuery{
			Properties: []string{propDealName, propDealStage, propPipeline},
		})
		if err != nil {
			log.Warn("skipping unreadable deal", zap.String("deal_id", id), zap.Error(err))
			continue
		}
		stage := obj.Property(propDealStage)
		if s.IsClosed(stage) {
			log.Debug("skipping closed deal", zap.String("deal_id", id), zap.String("stage", stage))
			continue
		}
		return &Deal{ID: obj.ID, Name: obj.Property(propDealName), Stage: stage}, nil
	}

	// TODO: create a new deal here once sales confirms closed deals should
	// not collect new meetings.
	log.Warn("no open deal found, using first associated deal", zap.String("deal_id", contact.DealIDs[0]))
	return &Deal{ID: contact.DealIDs[0]}, nil
}

// IsClosed reports whether stage belongs to the closed family.
func (s *DealSelector) IsClosed(stage string) bool {
	prefix := strings.ToLower(s.policy.ClosedStagePrefix)
	return prefix != "" && strings.HasPrefix(strings.ToLower(stage), prefix)
}

func (s *DealSelector) create(ctx context.Context, contact *Contact, params DealParams) (*Deal, error) {
	props := hubspot.Properties{
		propAmount:    "",
		propCloseDate: params.CloseDate,
		propDealName:  params.Name,
		propDealStage: s.policy.Stage,
		propOwnerID:   params.OwnerID,
		propPipeline:  s.policy.Pipeline,
	}
	obj, err := s.crm.CreateObject(ctx, hubspot.ObjectDeals, props)
	if err != nil {
		return nil, eris.Wrapf(err, "crmsync: create deal for contact %s", contact.ID)
	}
	deal := &Deal{ID: obj.ID, Name: params.Name, Stage: s.policy.Stage, Created: true}
	zap.L().Info("created deal",
		zap.String("contact_id", contact.ID),
		zap.String("deal_id", deal.ID),
		zap.String("deal_name", deal.Name),
	)

	link, err := s.linker.Link(ctx, hubspot.ObjectContacts, hubspot.ObjectDeals, contact.ID, deal.ID, hubspot.ContactToDeal)
	if err != nil {
		return nil, err
	}
	deal.Links = append(deal.Links, link)

	if companyID := contact.CompanyID(); companyID != "" {
		link, err := s.linker.Link(ctx, hubspot.ObjectCompanies, hubspot.ObjectDeals, companyID, deal.ID, hubspot.CompanyToDeal)
		if err != nil {
			return nil, err
		}
		deal.Links = append(deal.Links, link)
	}

	contact.DealIDs = append(contact.DealIDs, deal.ID)
	return deal, nil
}
