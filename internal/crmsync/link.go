package crmsync

import (
	"context"
	"fmt"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/booking-sync/pkg/hubspot"
)

// Association is one directed edge created in the CRM.
type Association struct {
	FromType string `json:"from_type"`
	ToType   string `json:"to_type"`
	FromID   string `json:"from_id"`
	ToID     string `json:"to_id"`
	Label    string `json:"label"`
}

func (a Association) String() string {
	return fmt.Sprintf("%s/%s -> %s/%s (%s)", a.FromType, a.FromID, a.ToType, a.ToID, a.Label)
}

// Linker creates associations between CRM objects. It does not check for an
// existing identical edge; repeated calls may create duplicates if the CRM
// keeps them.
type Linker struct {
	crm hubspot.Client
}

// NewLinker creates a Linker.
func NewLinker(crm hubspot.Client) *Linker {
	return &Linker{crm: crm}
}

// Link creates a single directed association.
func (l *Linker) Link(ctx context.Context, fromType, toType, fromID, toID, label string) (Association, error) {
	a := Association{FromType: fromType, ToType: toType, FromID: fromID, ToID: toID, Label: label}
	err := l.crm.CreateAssociations(ctx, fromType, toType, []hubspot.AssociationInput{
		hubspot.NewAssociation(fromID, toID, label),
	})
	if err != nil {
		return a, eris.Wrapf(err, "crmsync: link %s", a)
	}
	zap.L().Debug("associated objects", zap.Stringer("association", a))
	return a, nil
}
