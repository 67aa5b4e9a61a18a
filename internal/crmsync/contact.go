package crmsync

import (
	"context"
	"errors"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/booking-sync/internal/normalize"
	"github.com/sells-group/booking-sync/pkg/hubspot"
)

// Contact property names.
const (
	propEmail     = "email"
	propFirstName = "firstname"
	propLastName  = "lastname"
	propPhone     = "phone"
	propOwnerID   = "hubspot_owner_id"
)

var contactProperties = []string{propEmail, propFirstName, propLastName, propPhone, propOwnerID}

var contactAssociations = []string{hubspot.ObjectMeetings, hubspot.ObjectDeals, hubspot.ObjectCompanies}

// Contact is a CRM contact with the associations the sync relies on.
type Contact struct {
	ID         string
	Email      string
	FirstName  string
	LastName   string
	Phone      string
	OwnerID    string
	DealIDs    []string
	CompanyIDs []string
	MeetingIDs []string
	// Created is true when the contact was created by this sync.
	Created bool
}

// CompanyID returns the first associated company, or "".
func (c *Contact) CompanyID() string {
	if len(c.CompanyIDs) == 0 {
		return ""
	}
	return c.CompanyIDs[0]
}

func contactFromObject(obj *hubspot.Object) *Contact {
	return &Contact{
		ID:         obj.ID,
		Email:      obj.Property(propEmail),
		FirstName:  obj.Property(propFirstName),
		LastName:   obj.Property(propLastName),
		Phone:      obj.Property(propPhone),
		OwnerID:    obj.Property(propOwnerID),
		DealIDs:    obj.AssociatedIDs(hubspot.ObjectDeals),
		CompanyIDs: obj.AssociatedIDs(hubspot.ObjectCompanies),
		MeetingIDs: obj.AssociatedIDs(hubspot.ObjectMeetings),
	}
}

// Candidate holds the contact values derived from a booking.
type Candidate struct {
	Email     string
	FirstName string
	LastName  string
	// Phone is already normalized; "" when the booking had none.
	Phone   string
	OwnerID string
}

// Reconciler finds or creates the contact for a booking and brings its name
// and phone in line with the booking.
type Reconciler struct {
	crm hubspot.Client
}

// NewReconciler creates a Reconciler.
func NewReconciler(crm hubspot.Client) *Reconciler {
	return &Reconciler{crm: crm}
}

// Reconcile returns the contact with email cand.Email, creating it when
// missing. Name and phone updates are sent as a partial update touching only
// the changed properties.
func (r *Reconciler) Reconcile(ctx context.Context, cand Candidate) (*Contact, error) {
	log := zap.L().With(zap.String("email", cand.Email))

	contact, err := r.Find(ctx, cand.Email)
	if err != nil {
		return nil, err
	}
	if contact == nil {
		contact, err = r.create(ctx, cand)
		if err != nil {
			return nil, err
		}
		log.Info("created contact", zap.String("contact_id", contact.ID))
	}

	updates := contactUpdates(contact, cand)
	if len(updates) == 0 {
		return contact, nil
	}
	if _, err := r.crm.UpdateObject(ctx, hubspot.ObjectContacts, contact.ID, updates); err != nil {
		return nil, eris.Wrapf(err, "crmsync: update contact %s", contact.ID)
	}
	log.Info("updated contact",
		zap.String("contact_id", contact.ID),
		zap.Any("properties", updates),
	)

	if v, ok := updates[propFirstName]; ok {
		contact.FirstName = v
	}
	if v, ok := updates[propLastName]; ok {
		contact.LastName = v
	}
	if v, ok := updates[propPhone]; ok {
		contact.Phone = v
	}
	return contact, nil
}

// Find looks up a contact by email with its meeting, deal and company
// associations. Returns nil if no contact has that email.
func (r *Reconciler) Find(ctx context.Context, email string) (*Contact, error) {
	obj, err := r.crm.GetObject(ctx, hubspot.ObjectContacts, email, hubspot.GetQuery{
		IDProperty:   propEmail,
		Properties:   contactProperties,
		Associations: contactAssociations,
	})
	if errors.Is(err, hubspot.ErrNotFound) {
		zap.L().Debug("contact not found", zap.String("email", email))
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "crmsync: find contact %s", email)
	}
	return contactFromObject(obj), nil
}

func (r *Reconciler) create(ctx context.Context, cand Candidate) (*Contact, error) {
	props := hubspot.Properties{
		propEmail:     cand.Email,
		propFirstName: cand.FirstName,
		propLastName:  cand.LastName,
		propOwnerID:   cand.OwnerID,
	}
	if cand.Phone != "" {
		props[propPhone] = cand.Phone
	}

	created, err := r.crm.CreateObject(ctx, hubspot.ObjectContacts, props)
	if err != nil {
		return nil, eris.Wrapf(err, "crmsync: create contact %s", cand.Email)
	}

	// The create response carries no associations; read the contact back.
	contact, err := r.Find(ctx, cand.Email)
	if err != nil {
		return nil, err
	}
	if contact == nil {
		zap.L().Warn("created contact not yet readable, using create response",
			zap.String("email", cand.Email),
			zap.String("contact_id", created.ID),
		)
		contact = contactFromObject(created)
		if contact.Email == "" {
			contact.Email = cand.Email
		}
	}
	contact.Created = true
	return contact, nil
}

// contactUpdates returns the minimal set of property changes for stored.
//
// Names are replaced when the last name is missing or the first name ends
// with the last name (a full name stored unsplit). The phone is replaced by
// the candidate when none is stored or the candidate adds a country code the
// stored one lacks; otherwise a stored phone is reformatted in place.
func contactUpdates(stored *Contact, cand Candidate) hubspot.Properties {
	props := hubspot.Properties{}

	hasCandidateName := cand.FirstName != "" || cand.LastName != ""
	if hasCandidateName && (stored.LastName == "" || strings.HasSuffix(stored.FirstName, stored.LastName)) {
		if cand.FirstName != stored.FirstName {
			props[propFirstName] = cand.FirstName
		}
		if cand.LastName != stored.LastName {
			props[propLastName] = cand.LastName
		}
	}

	candidateWins := cand.Phone != "" &&
		(stored.Phone == "" || (!strings.HasPrefix(stored.Phone, "+") && strings.HasPrefix(cand.Phone, "+")))
	switch {
	case candidateWins:
		if cand.Phone != stored.Phone {
			props[propPhone] = cand.Phone
		}
	case stored.Phone != "":
		if formatted, ok := normalize.InternationalPhone(stored.Phone); ok && formatted != stored.Phone {
			props[propPhone] = formatted
		}
	}

	return props
}
