package crmsync

import (
	"context"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/booking-sync/internal/booking"
	"github.com/sells-group/booking-sync/pkg/hubspot"
	"github.com/sells-group/booking-sync/pkg/hubspot/hubspottest"
)

var fixedNow = time.Date(2022, 2, 1, 9, 30, 0, 0, time.UTC)

func newMeetingBuilder(crm hubspot.Client) *MeetingBuilder {
	s := DefaultSettings()
	return NewMeetingBuilder(crm, NewLinker(crm), s.Meeting, s.Answers, func() time.Time { return fixedNow })
}

func testBooking() *booking.Booking {
	return &booking.Booking{
		Invitee: booking.Invitee{
			FirstName: "Jane",
			FullName:  "Jane Doe",
			Email:     "jane@example.com",
		},
		EventType:   booking.EventType{Name: "Intro"},
		ScheduledAt: "2022-02-10T13:00:00+00:00",
		EndDate:     "2022-02-10T13:45:00+00:00",
		Location:    "https://zoom.us/j/1",
	}
}

func TestMeetingProperties(t *testing.T) {
	m := newMeetingBuilder(hubspottest.NewFake())

	props := m.Properties(testBooking(), "7")
	assert.Equal(t, hubspot.Properties{
		"hs_timestamp":            "2022-02-01T09:30:00Z",
		"hubspot_owner_id":        "7",
		"hs_meeting_title":        "Intro",
		"hs_meeting_body":         "meeting location: https://zoom.us/j/1",
		"hs_meeting_external_url": "https://zoom.us/j/1",
		"hs_meeting_location":     "Remote",
		"hs_meeting_start_time":   "2022-02-10T13:00:00Z",
		"hs_meeting_end_time":     "2022-02-10T13:45:00Z",
		"hs_meeting_outcome":      "SCHEDULED",
	}, props)
}

func TestMeetingProperties_AnswerSuffixes(t *testing.T) {
	tests := []struct {
		name      string
		answers   booking.Answers
		wantTitle string
		wantBody  string
	}{
		{
			name: "title and comment",
			answers: booking.Answers{
				{Label: "Meeting Topic", Value: "Pricing"},
				{Label: "Agenda / comments", Value: "Bring numbers"},
			},
			wantTitle: "Intro: Pricing",
			wantBody:  "meeting location: https://zoom.us/j/1\nBring numbers",
		},
		{
			name: "first matching label wins",
			answers: booking.Answers{
				{Label: "Subject", Value: "First"},
				{Label: "Title", Value: "Second"},
			},
			wantTitle: "Intro: First",
			wantBody:  "meeting location: https://zoom.us/j/1",
		},
		{
			name: "empty answers are ignored",
			answers: booking.Answers{
				{Label: "Thema", Value: "  "},
				{Label: "Kommentar", Value: ""},
			},
			wantTitle: "Intro",
			wantBody:  "meeting location: https://zoom.us/j/1",
		},
		{
			name: "unrelated labels",
			answers: booking.Answers{
				{Label: "Company size", Value: "50"},
			},
			wantTitle: "Intro",
			wantBody:  "meeting location: https://zoom.us/j/1",
		},
	}

	m := newMeetingBuilder(hubspottest.NewFake())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := testBooking()
			b.Answers = tt.answers
			props := m.Properties(b, "7")
			assert.Equal(t, tt.wantTitle, props["hs_meeting_title"])
			assert.Equal(t, tt.wantBody, props["hs_meeting_body"])
		})
	}
}

func TestBuildAndLink(t *testing.T) {
	tests := []struct {
		name       string
		contact    *Contact
		deal       *Deal
		wantLabels []string
	}{
		{
			name:       "contact and deal",
			contact:    &Contact{ID: "1"},
			deal:       &Deal{ID: "20"},
			wantLabels: []string{hubspot.ContactToMeetingEvent, hubspot.DealToMeetingEvent},
		},
		{
			name:    "contact company and deal",
			contact: &Contact{ID: "1", CompanyIDs: []string{"3"}},
			deal:    &Deal{ID: "20"},
			wantLabels: []string{
				hubspot.ContactToMeetingEvent,
				hubspot.CompanyToMeetingEvent,
				hubspot.DealToMeetingEvent,
			},
		},
		{
			name:       "no deal",
			contact:    &Contact{ID: "1"},
			wantLabels: []string{hubspot.ContactToMeetingEvent},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			crm := hubspottest.NewFake()
			m := newMeetingBuilder(crm)

			meeting, err := m.BuildAndLink(context.Background(), testBooking(), tt.contact, "7", tt.deal)
			require.NoError(t, err)
			assert.Equal(t, 1, crm.Count(hubspot.ObjectMeetings))
			assert.Equal(t, []string{meeting.ID}, tt.contact.MeetingIDs)

			var labels []string
			for _, e := range crm.Edges() {
				assert.Equal(t, meeting.ID, e.ToID)
				assert.Equal(t, hubspot.ObjectMeetings, e.ToType)
				labels = append(labels, e.Label)
			}
			assert.Equal(t, tt.wantLabels, labels)
			assert.Len(t, meeting.Links, len(tt.wantLabels))
		})
	}
}

func TestBuildAndLink_CreateFailure(t *testing.T) {
	crm := hubspottest.NewFake()
	crm.FailOn("create meetings", eris.New("status 400: bad timestamp"))

	_, err := newMeetingBuilder(crm).BuildAndLink(context.Background(), testBooking(), &Contact{ID: "1"}, "7", &Deal{ID: "20"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create meeting for contact 1")
	assert.Empty(t, crm.Edges())
}

func TestBuildAndLink_DealLinkFailure(t *testing.T) {
	crm := hubspottest.NewFake()
	crm.FailOn("associate deals/meetings", eris.New("status 500"))

	contact := &Contact{ID: "1"}
	_, err := newMeetingBuilder(crm).BuildAndLink(context.Background(), testBooking(), contact, "7", &Deal{ID: "20"})
	require.Error(t, err)
	assert.Equal(t, 1, crm.Count(hubspot.ObjectMeetings))
	assert.Len(t, crm.Edges(), 1)
	assert.Empty(t, contact.MeetingIDs)
}
