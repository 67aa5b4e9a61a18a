package crmsync

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/booking-sync/internal/booking"
	"github.com/sells-group/booking-sync/pkg/hubspot"
	"github.com/sells-group/booking-sync/pkg/hubspot/hubspottest"
)

var testOwner = hubspot.Owner{ID: "7", Email: "sales@example.com", FirstName: "Sam"}

func loadBooking(t *testing.T) *booking.Booking {
	t.Helper()
	f, err := os.Open("../booking/testdata/booking.json")
	require.NoError(t, err)
	defer f.Close() //nolint:errcheck

	b, err := booking.Decode(f)
	require.NoError(t, err)
	b.Mailbox = "sales@example.com"
	return b
}

func newTestSyncer(crm hubspot.Client) *Syncer {
	return NewSyncer(crm, DefaultSettings(), WithClock(func() time.Time { return fixedNow }))
}

func TestProcess_NewContact(t *testing.T) {
	crm := hubspottest.NewFake(testOwner)
	s := newTestSyncer(crm)

	res, err := s.Process(context.Background(), loadBooking(t), "SALES@example.com")
	require.NoError(t, err)

	assert.Equal(t, "7", res.OwnerID)
	assert.True(t, res.ContactCreated)
	assert.True(t, res.DealCreated)
	assert.Empty(t, res.CompanyID)
	assert.Equal(t, 1, crm.Count(hubspot.ObjectContacts))
	assert.Equal(t, 1, crm.Count(hubspot.ObjectDeals))
	assert.Equal(t, 1, crm.Count(hubspot.ObjectMeetings))
	assert.Len(t, crm.Edges(), 3)
	assert.Len(t, res.Associations, 3)

	contact := crm.Object(hubspot.ObjectContacts, res.ContactID)
	require.NotNil(t, contact)
	assert.Equal(t, "aarno.aukia+test1@vshn.ch", contact.Properties["email"])
	assert.Equal(t, "Aarno", contact.Properties["firstname"])
	assert.Equal(t, "Aukia", contact.Properties["lastname"])
	assert.Equal(t, "+41 44 545 53 01", contact.Properties["phone"])
	assert.Equal(t, "7", contact.Properties["hubspot_owner_id"])

	deal := crm.Object(hubspot.ObjectDeals, res.DealID)
	require.NotNil(t, deal)
	assert.Equal(t, "Meeting Aarno Aukia: APPUiO & Exoscale", deal.Properties["dealname"])
	assert.Equal(t, "2022-02-10T13:00:00Z", deal.Properties["closedate"])

	meeting := crm.Object(hubspot.ObjectMeetings, res.MeetingID)
	require.NotNil(t, meeting)
	assert.Equal(t, "APPUiO & Exoscale: Kubernetes migration", meeting.Properties["hs_meeting_title"])
	assert.Equal(t, "meeting location: https://vshn.zoom.us/j/1234567890\nDiscuss pricing", meeting.Properties["hs_meeting_body"])
	assert.Equal(t, "2022-02-10T13:00:00Z", meeting.Properties["hs_meeting_start_time"])
	assert.Equal(t, "2022-02-10T13:45:00Z", meeting.Properties["hs_meeting_end_time"])
	assert.Equal(t, "2022-02-01T09:30:00Z", meeting.Properties["hs_timestamp"])

	// The contact now sees its deal and meeting.
	assert.Len(t, contact.Associations[hubspot.ObjectDeals].Results, 1)
	assert.Len(t, contact.Associations[hubspot.ObjectMeetings].Results, 1)
}

func TestProcess_ExistingContactWithCompany(t *testing.T) {
	crm := hubspottest.NewFake(testOwner)
	contactID := crm.Seed(hubspot.ObjectContacts, hubspot.Properties{
		"email":     "aarno.aukia+test1@vshn.ch",
		"firstname": "Aarno Aukia",
		"lastname":  "Aukia",
		"phone":     "+41445455300",
		"jobtitle":  "CEO",
	})
	companyID := crm.Seed(hubspot.ObjectCompanies, hubspot.Properties{"name": "VSHN"})
	crm.Link(hubspot.ObjectContacts, contactID, hubspot.ObjectCompanies, companyID, "contact_to_company")

	res, err := newTestSyncer(crm).Process(context.Background(), loadBooking(t), "sales@example.com")
	require.NoError(t, err)

	assert.Equal(t, contactID, res.ContactID)
	assert.False(t, res.ContactCreated)
	assert.Equal(t, companyID, res.CompanyID)
	assert.Equal(t, 1, crm.Count(hubspot.ObjectContacts))
	assert.Equal(t, 0, crm.CallCount("create contacts"))
	assert.Equal(t, 1, crm.CallCount("update contacts"))

	// contact->deal, company->deal, contact->meeting, company->meeting, deal->meeting
	assert.Len(t, crm.Edges(), 5)
	assert.Len(t, res.Associations, 5)

	contact := crm.Object(hubspot.ObjectContacts, contactID)
	assert.Equal(t, "Aarno", contact.Properties["firstname"])
	assert.Equal(t, "Aukia", contact.Properties["lastname"])
	assert.Equal(t, "CEO", contact.Properties["jobtitle"])
	// Stored phone already has a country code; it is only reformatted.
	assert.Equal(t, "+41 44 545 53 00", contact.Properties["phone"])
}

func TestProcess_RepeatedDelivery(t *testing.T) {
	crm := hubspottest.NewFake(testOwner)
	s := newTestSyncer(crm)

	first, err := s.Process(context.Background(), loadBooking(t), "sales@example.com")
	require.NoError(t, err)
	second, err := s.Process(context.Background(), loadBooking(t), "sales@example.com")
	require.NoError(t, err)

	assert.Equal(t, first.ContactID, second.ContactID)
	assert.Equal(t, first.DealID, second.DealID)
	assert.False(t, second.ContactCreated)
	assert.False(t, second.DealCreated)
	assert.NotEqual(t, first.MeetingID, second.MeetingID)
	assert.Equal(t, 1, crm.Count(hubspot.ObjectContacts))
	assert.Equal(t, 1, crm.Count(hubspot.ObjectDeals))
	assert.Equal(t, 2, crm.Count(hubspot.ObjectMeetings))
	// Second run adds contact->meeting and deal->meeting only.
	assert.Len(t, second.Associations, 2)
	assert.Len(t, crm.Edges(), 5)
}

func TestProcess_ClosedDealReused(t *testing.T) {
	crm := hubspottest.NewFake(testOwner)
	contactID := crm.Seed(hubspot.ObjectContacts, hubspot.Properties{
		"email":     "aarno.aukia+test1@vshn.ch",
		"firstname": "Aarno",
		"lastname":  "Aukia",
		"phone":     "+41 44 545 53 00",
	})
	dealID := crm.Seed(hubspot.ObjectDeals, hubspot.Properties{"dealstage": "closedwon"})
	crm.Link(hubspot.ObjectContacts, contactID, hubspot.ObjectDeals, dealID, hubspot.ContactToDeal)

	res, err := newTestSyncer(crm).Process(context.Background(), loadBooking(t), "sales@example.com")
	require.NoError(t, err)
	assert.Equal(t, dealID, res.DealID)
	assert.False(t, res.DealCreated)
	assert.Equal(t, 1, crm.Count(hubspot.ObjectDeals))
	assert.Equal(t, 0, crm.CallCount("update contacts"))
}

func TestProcess_OwnerNotFound(t *testing.T) {
	crm := hubspottest.NewFake(testOwner)

	_, err := newTestSyncer(crm).Process(context.Background(), loadBooking(t), "nobody@example.com")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrOwnerNotFound))
	assert.Equal(t, []string{"owners"}, crm.Calls())
}

func TestProcess_OwnersUnavailable(t *testing.T) {
	crm := hubspottest.NewFake(testOwner)
	crm.FailOn("owners", &hubspot.APIError{StatusCode: 401, Message: "expired token"})

	_, err := newTestSyncer(crm).Process(context.Background(), loadBooking(t), "sales@example.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access token")
	var apiErr *hubspot.APIError
	assert.True(t, errors.As(err, &apiErr))
}

func TestProcess_StopsAtFirstFailure(t *testing.T) {
	crm := hubspottest.NewFake(testOwner)
	crm.FailOn("create deals", eris.New("status 500"))

	_, err := newTestSyncer(crm).Process(context.Background(), loadBooking(t), "sales@example.com")
	require.Error(t, err)
	assert.Equal(t, 1, crm.Count(hubspot.ObjectContacts))
	assert.Equal(t, 0, crm.CallCount("create meetings"))
}

func TestCandidate(t *testing.T) {
	s := newTestSyncer(hubspottest.NewFake())

	tests := []struct {
		name string
		edit func(b *booking.Booking)
		want Candidate
	}{
		{
			name: "answers phone wins",
			edit: func(*booking.Booking) {},
			want: Candidate{Email: "aarno.aukia+test1@vshn.ch", FirstName: "Aarno", LastName: "Aukia", Phone: "+41 44 545 53 01", OwnerID: "7"},
		},
		{
			name: "invitee phone fallback",
			edit: func(b *booking.Booking) { b.Answers = nil },
			want: Candidate{Email: "aarno.aukia+test1@vshn.ch", FirstName: "Aarno", LastName: "Aukia", Phone: "+41 44 545 53 00", OwnerID: "7"},
		},
		{
			name: "no phone",
			edit: func(b *booking.Booking) {
				b.Answers = nil
				b.Invitee.PhoneNumber = ""
			},
			want: Candidate{Email: "aarno.aukia+test1@vshn.ch", FirstName: "Aarno", LastName: "Aukia", OwnerID: "7"},
		},
		{
			name: "first name when full name missing",
			edit: func(b *booking.Booking) { b.Invitee.FullName = "" },
			want: Candidate{Email: "aarno.aukia+test1@vshn.ch", FirstName: "Aarno", Phone: "+41 44 545 53 01", OwnerID: "7"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := loadBooking(t)
			tt.edit(b)
			assert.Equal(t, tt.want, s.Candidate(b, "7"))
		})
	}
}

func TestDealName(t *testing.T) {
	assert.Equal(t, "Meeting Jane Doe: Intro", DealName("Jane", "Doe", "Intro"))
	assert.Equal(t, "Meeting Cher: Intro", DealName("Cher", "", "Intro"))
	assert.Equal(t, "Meeting : Intro", DealName("", "", "Intro"))
}
