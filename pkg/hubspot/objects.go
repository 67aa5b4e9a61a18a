package hubspot

import (
	"fmt"

	"github.com/rotisserie/eris"
)

// ErrNotFound is returned when the requested object does not exist.
var ErrNotFound = eris.New("hubspot: not found")

// Properties holds CRM property values keyed by internal property name.
type Properties map[string]string

// Object represents a CRM object (contact, company, deal, meeting).
type Object struct {
	ID           string                     `json:"id"`
	Properties   Properties                 `json:"properties"`
	Associations map[string]AssociationList `json:"associations,omitempty"`
	CreatedAt    string                     `json:"createdAt,omitempty"`
	UpdatedAt    string                     `json:"updatedAt,omitempty"`
	Archived     bool                       `json:"archived,omitempty"`
}

// AssociationList is the set of objects of one type associated with an object.
type AssociationList struct {
	Results []AssociatedObject `json:"results"`
}

// AssociatedObject is a single association edge as returned on read.
type AssociatedObject struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

// Property returns the value of a property, or "" when unset.
func (o *Object) Property(name string) string {
	if o == nil || o.Properties == nil {
		return ""
	}
	return o.Properties[name]
}

// AssociatedIDs returns the ids associated under toType in the order the
// API listed them. The same id can appear once per association label, so
// duplicates are dropped.
func (o *Object) AssociatedIDs(toType string) []string {
	if o == nil {
		return nil
	}
	list, ok := o.Associations[toType]
	if !ok {
		return nil
	}
	seen := make(map[string]bool, len(list.Results))
	var ids []string
	for _, r := range list.Results {
		if r.ID == "" || seen[r.ID] {
			continue
		}
		seen[r.ID] = true
		ids = append(ids, r.ID)
	}
	return ids
}

type objectInput struct {
	Properties Properties `json:"properties"`
}

// Owner is a HubSpot user that objects can be assigned to.
type Owner struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	UserID    int    `json:"userId"`
	Archived  bool   `json:"archived"`
}

// APIError is the error body returned by the HubSpot API.
type APIError struct {
	StatusCode    int    `json:"-"`
	Status        string `json:"status"`
	Message       string `json:"message"`
	Category      string `json:"category"`
	CorrelationID string `json:"correlationId"`
}

func (e *APIError) Error() string {
	if e.Category != "" {
		return fmt.Sprintf("status %d %s: %s", e.StatusCode, e.Category, e.Message)
	}
	return fmt.Sprintf("status %d: %s", e.StatusCode, e.Message)
}
