// Package booking models the scheduling webhook payload.
package booking

import (
	"bytes"
	"encoding/json"
	"io"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rotisserie/eris"
)

var (
	// ErrEmptyPayload is returned when the webhook body is missing.
	ErrEmptyPayload = eris.New("booking: empty payload")
	// ErrInvalidPayload is returned when the body is not a usable booking.
	ErrInvalidPayload = eris.New("booking: invalid payload")
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Booking is one scheduled-meeting notification.
type Booking struct {
	UUID        string    `json:"uuid"`
	State       string    `json:"state"`
	Invitee     Invitee   `json:"invitee"`
	EventType   EventType `json:"event_type"`
	ScheduledAt string    `json:"scheduled_at" validate:"required"`
	EndDate     string    `json:"end_date" validate:"required"`
	Location    string    `json:"location"`
	Notes       string    `json:"notes"`
	Answers     Answers   `json:"answers"`

	// Mailbox is the routing key the webhook was posted to.
	Mailbox string `json:"-"`
}

// Invitee is the person who booked the meeting.
type Invitee struct {
	FirstName   string `json:"first_name"`
	FullName    string `json:"full_name"`
	Email       string `json:"email" validate:"required,email"`
	PhoneNumber string `json:"phone_number"`
	Timezone    string `json:"timezone"`
	Locale      string `json:"locale"`
}

// EventType describes the kind of meeting that was booked.
type EventType struct {
	Name     string `json:"name" validate:"required"`
	Slug     string `json:"slug"`
	Duration int    `json:"duration"`
}

// Decode reads and validates a booking from r.
func Decode(r io.Reader) (*Booking, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, eris.Wrap(err, "booking: read body")
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyPayload
	}

	var b Booking
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, eris.Wrap(ErrInvalidPayload, err.Error())
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return &b, nil
}

// Validate checks required fields and that the meeting does not end before
// it starts.
func (b *Booking) Validate() error {
	if err := validate.Struct(b); err != nil {
		return eris.Wrap(ErrInvalidPayload, err.Error())
	}
	start, err := time.Parse(time.RFC3339, b.ScheduledAt)
	if err != nil {
		return eris.Wrapf(ErrInvalidPayload, "scheduled_at %q", b.ScheduledAt)
	}
	end, err := time.Parse(time.RFC3339, b.EndDate)
	if err != nil {
		return eris.Wrapf(ErrInvalidPayload, "end_date %q", b.EndDate)
	}
	if end.Before(start) {
		return eris.Wrapf(ErrInvalidPayload, "end_date %s before scheduled_at %s", b.EndDate, b.ScheduledAt)
	}
	return nil
}

// StartUTC returns the scheduled start as a UTC "Z" timestamp.
func (b *Booking) StartUTC() string { return UTCTimestamp(b.ScheduledAt) }

// EndUTC returns the scheduled end as a UTC "Z" timestamp.
func (b *Booking) EndUTC() string { return UTCTimestamp(b.EndDate) }
