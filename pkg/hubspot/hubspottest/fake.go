// Package hubspottest provides an in-memory HubSpot CRM for tests.
package hubspottest

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"github.com/rotisserie/eris"

	"github.com/sells-group/booking-sync/pkg/hubspot"
)

// Edge is an association recorded by CreateAssociations.
type Edge struct {
	FromType string
	ToType   string
	FromID   string
	ToID     string
	Label    string
}

// Fake implements hubspot.Client against in-memory state. Associations are
// visible on subsequent reads from both sides, like the real API. Creating
// the same association twice records two edges.
type Fake struct {
	mu      sync.Mutex
	objects map[string]map[string]*hubspot.Object
	owners  []hubspot.Owner
	edges   []Edge
	calls   []string
	fail    map[string]error
	nextID  int
}

// NewFake returns an empty CRM with the given owners.
func NewFake(owners ...hubspot.Owner) *Fake {
	return &Fake{
		objects: make(map[string]map[string]*hubspot.Object),
		owners:  owners,
		fail:    make(map[string]error),
		nextID:  100,
	}
}

// FailOn makes every call matching op return err. Ops are "get <type>",
// "create <type>", "update <type>", "associate <from>/<to>" and "owners".
func (f *Fake) FailOn(op string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail[op] = err
}

// Seed stores an object and returns its id.
func (f *Fake) Seed(objectType string, props hubspot.Properties) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.put(objectType, props).ID
}

// Link stores an association without recording it as an edge call.
func (f *Fake) Link(fromType, fromID, toType, toID, label string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.link(fromType, fromID, toType, toID, label)
}

// Object returns a copy of a stored object, or nil.
func (f *Fake) Object(objectType, id string) *hubspot.Object {
	f.mu.Lock()
	defer f.mu.Unlock()
	obj, ok := f.objects[objectType][id]
	if !ok {
		return nil
	}
	return clone(obj, true)
}

// Count returns the number of stored objects of a type.
func (f *Fake) Count(objectType string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.objects[objectType])
}

// Edges returns the associations created through CreateAssociations.
func (f *Fake) Edges() []Edge {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Edge(nil), f.edges...)
}

// Calls returns every operation issued against the fake, in order.
func (f *Fake) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// CallCount returns how many times op was issued.
func (f *Fake) CallCount(op string) int {
	n := 0
	for _, c := range f.Calls() {
		if c == op {
			n++
		}
	}
	return n
}

func (f *Fake) GetObject(_ context.Context, objectType, id string, q hubspot.GetQuery) (*hubspot.Object, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("get " + objectType); err != nil {
		return nil, err
	}

	var found *hubspot.Object
	if q.IDProperty == "" || q.IDProperty == "hs_object_id" {
		found = f.objects[objectType][id]
	} else {
		for _, obj := range f.objects[objectType] {
			if strings.EqualFold(obj.Properties[q.IDProperty], id) {
				found = obj
				break
			}
		}
	}
	if found == nil {
		return nil, eris.Wrapf(hubspot.ErrNotFound, "hubspot: get %s %s", objectType, id)
	}

	out := clone(found, false)
	for _, typ := range q.Associations {
		if list, ok := found.Associations[typ]; ok {
			if out.Associations == nil {
				out.Associations = make(map[string]hubspot.AssociationList)
			}
			out.Associations[typ] = hubspot.AssociationList{
				Results: append([]hubspot.AssociatedObject(nil), list.Results...),
			}
		}
	}
	return out, nil
}

func (f *Fake) CreateObject(_ context.Context, objectType string, props hubspot.Properties) (*hubspot.Object, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("create " + objectType); err != nil {
		return nil, err
	}
	return clone(f.put(objectType, props), false), nil
}

func (f *Fake) UpdateObject(_ context.Context, objectType, id string, props hubspot.Properties) (*hubspot.Object, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("update " + objectType); err != nil {
		return nil, err
	}
	obj, ok := f.objects[objectType][id]
	if !ok {
		return nil, eris.Wrapf(hubspot.ErrNotFound, "hubspot: update %s %s", objectType, id)
	}
	for k, v := range props {
		obj.Properties[k] = v
	}
	return clone(obj, false), nil
}

func (f *Fake) CreateAssociations(_ context.Context, fromType, toType string, inputs []hubspot.AssociationInput) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("associate " + fromType + "/" + toType); err != nil {
		return err
	}
	for _, in := range inputs {
		f.edges = append(f.edges, Edge{
			FromType: fromType,
			ToType:   toType,
			FromID:   in.From.ID,
			ToID:     in.To.ID,
			Label:    in.Type,
		})
		f.link(fromType, in.From.ID, toType, in.To.ID, in.Type)
	}
	return nil
}

func (f *Fake) ListOwners(context.Context) ([]hubspot.Owner, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("owners"); err != nil {
		return nil, err
	}
	return append([]hubspot.Owner(nil), f.owners...), nil
}

func (f *Fake) record(op string) error {
	f.calls = append(f.calls, op)
	return f.fail[op]
}

func (f *Fake) put(objectType string, props hubspot.Properties) *hubspot.Object {
	f.nextID++
	obj := &hubspot.Object{
		ID:         strconv.Itoa(f.nextID),
		Properties: hubspot.Properties{},
	}
	for k, v := range props {
		obj.Properties[k] = v
	}
	if f.objects[objectType] == nil {
		f.objects[objectType] = make(map[string]*hubspot.Object)
	}
	f.objects[objectType][obj.ID] = obj
	return obj
}

func (f *Fake) link(fromType, fromID, toType, toID, label string) {
	if from, ok := f.objects[fromType][fromID]; ok {
		addAssociation(from, toType, toID, label)
	}
	if to, ok := f.objects[toType][toID]; ok {
		addAssociation(to, fromType, fromID, label)
	}
}

func addAssociation(obj *hubspot.Object, typ, id, label string) {
	if obj.Associations == nil {
		obj.Associations = make(map[string]hubspot.AssociationList)
	}
	list := obj.Associations[typ]
	list.Results = append(list.Results, hubspot.AssociatedObject{ID: id, Type: label})
	obj.Associations[typ] = list
}

func clone(obj *hubspot.Object, withAssociations bool) *hubspot.Object {
	out := &hubspot.Object{ID: obj.ID, Properties: hubspot.Properties{}}
	for k, v := range obj.Properties {
		out.Properties[k] = v
	}
	if withAssociations && obj.Associations != nil {
		out.Associations = make(map[string]hubspot.AssociationList, len(obj.Associations))
		for k, v := range obj.Associations {
			out.Associations[k] = hubspot.AssociationList{
				Results: append([]hubspot.AssociatedObject(nil), v.Results...),
			}
		}
	}
	return out
}
