package crmsync

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/booking-sync/pkg/hubspot"
)

// ErrOwnerNotFound is returned when no CRM owner has the routed email.
var ErrOwnerNotFound = eris.New("crmsync: owner not found")

// ResolveOwner looks up the CRM owner id for an email. Owners are fetched
// fresh on every call.
func ResolveOwner(ctx context.Context, crm hubspot.Client, email string) (string, error) {
	owners, err := crm.ListOwners(ctx)
	if err != nil {
		return "", eris.Wrap(err, "crmsync: load owners, problem with the access token?")
	}
	owner := hubspot.FindOwnerByEmail(owners, email)
	if owner == nil {
		return "", eris.Wrapf(ErrOwnerNotFound, "email %s", email)
	}
	return owner.ID, nil
}
