// Package crmsync mirrors scheduling bookings into the HubSpot CRM: it
// reconciles the invitee's contact, makes sure an open deal exists, records
// the meeting and links contact, company, deal and meeting together.
package crmsync

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/booking-sync/internal/booking"
	"github.com/sells-group/booking-sync/internal/normalize"
	"github.com/sells-group/booking-sync/pkg/hubspot"
)

// Result summarizes what a sync did in the CRM.
type Result struct {
	OwnerID        string        `json:"owner_id"`
	ContactID      string        `json:"contact_id"`
	ContactCreated bool          `json:"contact_created"`
	CompanyID      string        `json:"company_id,omitempty"`
	DealID         string        `json:"deal_id"`
	DealCreated    bool          `json:"deal_created"`
	MeetingID      string        `json:"meeting_id"`
	Associations   []Association `json:"associations"`
}

// Syncer processes bookings for one CRM account. It holds no per-request
// state and is safe for concurrent use.
type Syncer struct {
	crm      hubspot.Client
	settings Settings
	names    *normalize.NameParser
	contacts *Reconciler
	deals    *DealSelector
	meetings *MeetingBuilder
}

// Option configures a Syncer.
type Option func(*syncerOpts)

type syncerOpts struct {
	now func() time.Time
}

// WithClock sets the clock used for meeting timestamps (for testing).
func WithClock(now func() time.Time) Option {
	return func(o *syncerOpts) {
		o.now = now
	}
}

// NewSyncer creates a Syncer writing to crm.
func NewSyncer(crm hubspot.Client, settings Settings, opts ...Option) *Syncer {
	o := syncerOpts{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	linker := NewLinker(crm)
	return &Syncer{
		crm:      crm,
		settings: settings,
		names:    normalize.NewNameParser(settings.Honorifics),
		contacts: NewReconciler(crm),
		deals:    NewDealSelector(crm, linker, settings.Deal),
		meetings: NewMeetingBuilder(crm, linker, settings.Meeting, settings.Answers, o.now),
	}
}

// Process synchronises one booking routed to ownerEmail. The steps run in
// order: owner, contact, deal, meeting with its associations. A failure
// aborts the remaining steps; objects already created stay in the CRM.
func (s *Syncer) Process(ctx context.Context, b *booking.Booking, ownerEmail string) (*Result, error) {
	log := zap.L().With(
		zap.String("mailbox", b.Mailbox),
		zap.String("email", b.Invitee.Email),
	)

	ownerID, err := ResolveOwner(ctx, s.crm, ownerEmail)
	if err != nil {
		return nil, err
	}

	cand := s.Candidate(b, ownerID)
	log.Debug("parsed invitee",
		zap.String("first_name", cand.FirstName),
		zap.String("last_name", cand.LastName),
		zap.String("phone", cand.Phone),
	)

	contact, err := s.contacts.Reconcile(ctx, cand)
	if err != nil {
		return nil, err
	}

	deal, err := s.deals.EnsureOpenDeal(ctx, contact, DealParams{
		Name:      DealName(cand.FirstName, cand.LastName, b.EventType.Name),
		CloseDate: b.StartUTC(),
		OwnerID:   ownerID,
	})
	if err != nil {
		return nil, err
	}

	meeting, err := s.meetings.BuildAndLink(ctx, b, contact, ownerID, deal)
	if err != nil {
		return nil, err
	}

	res := &Result{
		OwnerID:        ownerID,
		ContactID:      contact.ID,
		ContactCreated: contact.Created,
		CompanyID:      contact.CompanyID(),
		DealID:         deal.ID,
		DealCreated:    deal.Created,
		MeetingID:      meeting.ID,
	}
	res.Associations = append(res.Associations, deal.Links...)
	res.Associations = append(res.Associations, meeting.Links...)

	log.Info("booking synced",
		zap.String("contact_id", res.ContactID),
		zap.String("deal_id", res.DealID),
		zap.String("meeting_id", res.MeetingID),
		zap.Int("associations", len(res.Associations)),
	)
	return res, nil
}

// Candidate derives the contact values from a booking. The phone comes from
// the first phone-labelled answer, falling back to the invitee's phone field.
func (s *Syncer) Candidate(b *booking.Booking, ownerID string) Candidate {
	fullName := b.Invitee.FullName
	if strings.TrimSpace(fullName) == "" {
		fullName = b.Invitee.FirstName
	}
	first, last := s.names.Parse(fullName)

	phone := normalize.CandidatePhone(b.Answers, s.settings.Answers.Phone)
	if phone == "" {
		phone = normalize.FormatPhone(b.Invitee.PhoneNumber)
	}

	return Candidate{
		Email:     strings.TrimSpace(b.Invitee.Email),
		FirstName: first,
		LastName:  last,
		Phone:     phone,
		OwnerID:   ownerID,
	}
}

// DealName is the name given to deals created for a booking.
func DealName(first, last, eventType string) string {
	name := strings.TrimSpace(first + " " + last)
	return "Meeting " + name + ": " + eventType
}
