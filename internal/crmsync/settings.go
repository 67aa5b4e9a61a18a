package crmsync

import (
	"github.com/sells-group/booking-sync/internal/booking"
)

// Settings holds the sync policy. It is built once at startup and shared
// read-only by every request.
type Settings struct {
	Honorifics []string
	Answers    AnswerKeywords
	Deal       DealPolicy
	Meeting    MeetingPolicy
}

// AnswerKeywords identifies which booking answers carry which field.
type AnswerKeywords struct {
	Phone   booking.Keywords
	Title   booking.Keywords
	Comment booking.Keywords
}

// DealPolicy controls deals created for contacts without one.
type DealPolicy struct {
	Stage    string
	Pipeline string
	// ClosedStagePrefix marks stages that end the sales process
	// ("closedwon", "closedlost").
	ClosedStagePrefix string
}

// MeetingPolicy holds the fixed meeting properties.
type MeetingPolicy struct {
	LocationLabel string
	Outcome       string
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		Honorifics: []string{"Herr", "Frau"},
		Answers: AnswerKeywords{
			Phone:   booking.Keywords{"phone", "telephone", "telefon", "mobile", "handy"},
			Title:   booking.Keywords{"title", "subject", "topic", "titel", "thema", "betreff"},
			Comment: booking.Keywords{"comment", "agenda", "note", "kommentar", "bemerkung", "anmerkung"},
		},
		Deal: DealPolicy{
			Stage:             "appointmentscheduled",
			Pipeline:          "default",
			ClosedStagePrefix: "closed",
		},
		Meeting: MeetingPolicy{
			LocationLabel: "Remote",
			Outcome:       "SCHEDULED",
		},
	}
}
