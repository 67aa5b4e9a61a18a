package hubspot

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type readOnlyClient struct {
	Client
	gets int
}

func (r *readOnlyClient) GetObject(context.Context, string, string, GetQuery) (*Object, error) {
	r.gets++
	return &Object{ID: "1"}, nil
}

func (r *readOnlyClient) ListOwners(context.Context) ([]Owner, error) {
	return []Owner{{ID: "9", Email: "owner@example.com"}}, nil
}

func TestDryRunClient(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	next := &readOnlyClient{}
	c := NewDryRunClient(next, zap.New(core))
	ctx := context.Background()

	obj, err := c.GetObject(ctx, ObjectContacts, "1", GetQuery{})
	require.NoError(t, err)
	assert.Equal(t, "1", obj.ID)
	assert.Equal(t, 1, next.gets)

	owners, err := c.ListOwners(ctx)
	require.NoError(t, err)
	assert.Len(t, owners, 1)

	created, err := c.CreateObject(ctx, ObjectDeals, Properties{"dealname": "x"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(created.ID, "dryrun-"))
	assert.Equal(t, "x", created.Property("dealname"))

	updated, err := c.UpdateObject(ctx, ObjectContacts, "1", Properties{"phone": "+1"})
	require.NoError(t, err)
	assert.Equal(t, "1", updated.ID)

	err = c.CreateAssociations(ctx, ObjectContacts, ObjectDeals, []AssociationInput{
		NewAssociation("1", created.ID, ContactToDeal),
	})
	require.NoError(t, err)

	assert.Equal(t, 1, logs.FilterMessage("would create object").Len())
	assert.Equal(t, 1, logs.FilterMessage("would update object").Len())
	assert.Equal(t, 1, logs.FilterMessage("would associate").Len())
}
