package crmsync

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/booking-sync/internal/booking"
	"github.com/sells-group/booking-sync/pkg/hubspot"
)

// Meeting property names.
const (
	propTimestamp   = "hs_timestamp"
	propTitle       = "hs_meeting_title"
	propBody        = "hs_meeting_body"
	propExternalURL = "hs_meeting_external_url"
	propLocation    = "hs_meeting_location"
	propStartTime   = "hs_meeting_start_time"
	propEndTime     = "hs_meeting_end_time"
	propOutcome     = "hs_meeting_outcome"
)

// Meeting is the meeting record created for a booking.
type Meeting struct {
	ID         string
	Properties hubspot.Properties
	Links      []Association
}

// MeetingBuilder creates meeting records and attaches them to the contact,
// company and deal.
type MeetingBuilder struct {
	crm      hubspot.Client
	linker   *Linker
	policy   MeetingPolicy
	keywords AnswerKeywords
	now      func() time.Time
}

// NewMeetingBuilder creates a MeetingBuilder. now stamps hs_timestamp.
func NewMeetingBuilder(crm hubspot.Client, linker *Linker, policy MeetingPolicy, keywords AnswerKeywords, now func() time.Time) *MeetingBuilder {
	if now == nil {
		now = time.Now
	}
	return &MeetingBuilder{crm: crm, linker: linker, policy: policy, keywords: keywords, now: now}
}

// Properties derives the meeting properties from a booking. The title and
// body are extended with the first answers whose labels match the title and
// comment keywords.
func (m *MeetingBuilder) Properties(b *booking.Booking, ownerID string) hubspot.Properties {
	title := b.EventType.Name
	if suffix, _ := b.Answers.Lookup(m.keywords.Title); suffix != "" {
		title += ": " + suffix
	}
	body := "meeting location: " + b.Location
	if comment, _ := b.Answers.Lookup(m.keywords.Comment); comment != "" {
		body += "\n" + comment
	}

	return hubspot.Properties{
		propTimestamp:   booking.FormatUTC(m.now()),
		propOwnerID:     ownerID,
		propTitle:       title,
		propBody:        body,
		propExternalURL: b.Location,
		propLocation:    m.policy.LocationLabel,
		propStartTime:   b.StartUTC(),
		propEndTime:     b.EndUTC(),
		propOutcome:     m.policy.Outcome,
	}
}

// BuildAndLink creates the meeting and links it to the contact, the
// contact's first company if any, and the deal.
func (m *MeetingBuilder) BuildAndLink(ctx context.Context, b *booking.Booking, contact *Contact, ownerID string, deal *Deal) (*Meeting, error) {
	props := m.Properties(b, ownerID)
	obj, err := m.crm.CreateObject(ctx, hubspot.ObjectMeetings, props)
	if err != nil {
		return nil, eris.Wrapf(err, "crmsync: create meeting for contact %s", contact.ID)
	}
	meeting := &Meeting{ID: obj.ID, Properties: props}
	zap.L().Info("created meeting",
		zap.String("contact_id", contact.ID),
		zap.String("meeting_id", meeting.ID),
		zap.String("title", props[propTitle]),
	)

	link, err := m.linker.Link(ctx, hubspot.ObjectContacts, hubspot.ObjectMeetings, contact.ID, meeting.ID, hubspot.ContactToMeetingEvent)
	if err != nil {
		return nil, err
	}
	meeting.Links = append(meeting.Links, link)

	if companyID := contact.CompanyID(); companyID != "" {
		link, err := m.linker.Link(ctx, hubspot.ObjectCompanies, hubspot.ObjectMeetings, companyID, meeting.ID, hubspot.CompanyToMeetingEvent)
		if err != nil {
			return nil, err
		}
		meeting.Links = append(meeting.Links, link)
	}

	if deal != nil {
		link, err := m.linker.Link(ctx, hubspot.ObjectDeals, hubspot.ObjectMeetings, deal.ID, meeting.ID, hubspot.DealToMeetingEvent)
		if err != nil {
			return nil, err
		}
		meeting.Links = append(meeting.Links, link)
	}

	contact.MeetingIDs = append(contact.MeetingIDs, meeting.ID)
	return meeting, nil
}
