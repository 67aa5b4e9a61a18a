package hubspot

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// dryRunClient forwards reads to the wrapped client and only logs writes.
type dryRunClient struct {
	next Client
	log  *zap.Logger
}

// NewDryRunClient wraps c so that creates, updates and associations are
// logged instead of sent. Created objects get a synthetic "dryrun-" id.
func NewDryRunClient(c Client, log *zap.Logger) Client {
	if log == nil {
		log = zap.L()
	}
	return &dryRunClient{next: c, log: log.With(zap.Bool("dry_run", true))}
}

func (d *dryRunClient) GetObject(ctx context.Context, objectType, id string, q GetQuery) (*Object, error) {
	return d.next.GetObject(ctx, objectType, id, q)
}

func (d *dryRunClient) ListOwners(ctx context.Context) ([]Owner, error) {
	return d.next.ListOwners(ctx)
}

func (d *dryRunClient) CreateObject(_ context.Context, objectType string, props Properties) (*Object, error) {
	obj := &Object{ID: "dryrun-" + uuid.NewString(), Properties: copyProps(props)}
	d.log.Info("would create object",
		zap.String("type", objectType),
		zap.String("id", obj.ID),
		zap.Any("properties", props),
	)
	return obj, nil
}

func (d *dryRunClient) UpdateObject(_ context.Context, objectType, id string, props Properties) (*Object, error) {
	d.log.Info("would update object",
		zap.String("type", objectType),
		zap.String("id", id),
		zap.Any("properties", props),
	)
	return &Object{ID: id, Properties: copyProps(props)}, nil
}

func (d *dryRunClient) CreateAssociations(_ context.Context, fromType, toType string, inputs []AssociationInput) error {
	for _, in := range inputs {
		d.log.Info("would associate",
			zap.String("from_type", fromType),
			zap.String("to_type", toType),
			zap.String("from", in.From.ID),
			zap.String("to", in.To.ID),
			zap.String("label", in.Type),
		)
	}
	return nil
}

func copyProps(p Properties) Properties {
	out := make(Properties, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}
