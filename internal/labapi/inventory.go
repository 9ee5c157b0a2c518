package labapi

import (
	"context"
	"encoding/json"
)

// Inventory collections that share the CRUD shape.
const (
	CollectionLab      = "lab"
	CollectionNGS      = "ngs"
	CollectionProjects = "projects"
	CollectionRuns     = "runs"
)

// Collections lists every CRUD inventory collection.
var Collections = []string{CollectionLab, CollectionNGS, CollectionProjects, CollectionRuns}

// Collection is one CRUD resource under /inventory.
type Collection struct {
	c    caller
	base string
}

func (col *Collection) List(ctx context.Context) (json.RawMessage, error) {
	return col.c.get(ctx, col.base, nil)
}

func (col *Collection) Get(ctx context.Context, itemID int64) (json.RawMessage, error) {
	return col.c.get(ctx, col.base+"/"+id(itemID), nil)
}

func (col *Collection) Create(ctx context.Context, item map[string]any) (json.RawMessage, error) {
	return col.c.post(ctx, col.base, item)
}

func (col *Collection) Update(ctx context.Context, itemID int64, item map[string]any) (json.RawMessage, error) {
	return col.c.put(ctx, col.base+"/"+id(itemID), item)
}

func (col *Collection) Delete(ctx context.Context, itemID int64) (json.RawMessage, error) {
	return col.c.delete(ctx, col.base+"/"+id(itemID))
}

// InventoryAPI covers /inventory.
type InventoryAPI struct {
	c           caller
	collections map[string]*Collection

	Lab      *Collection
	NGS      *Collection
	Projects *Collection
	Runs     *Collection
}

func newInventoryAPI(c caller) *InventoryAPI {
	inv := &InventoryAPI{c: c, collections: make(map[string]*Collection, len(Collections))}

	for _, name := range Collections {
		inv.collections[name] = &Collection{c: c, base: "/inventory/" + name}
	}

	inv.Lab = inv.collections[CollectionLab]
	inv.NGS = inv.collections[CollectionNGS]
	inv.Projects = inv.collections[CollectionProjects]
	inv.Runs = inv.collections[CollectionRuns]

	return inv
}

// Collection returns the named collection, or nil when unknown.
func (inv *InventoryAPI) Collection(name string) *Collection {
	return inv.collections[name]
}

func (inv *InventoryAPI) Transactions(ctx context.Context, params Params) (json.RawMessage, error) {
	return inv.c.get(ctx, "/inventory/transactions", params)
}

// Consume records usage of stock; the backend deducts quantities.
func (inv *InventoryAPI) Consume(ctx context.Context, entry map[string]any) (json.RawMessage, error) {
	return inv.c.post(ctx, "/inventory/consume", entry)
}

func (inv *InventoryAPI) Alerts(ctx context.Context) (json.RawMessage, error) {
	return inv.c.get(ctx, "/inventory/alerts", nil)
}

func (inv *InventoryAPI) ResolveAlert(ctx context.Context, alertID int64) (json.RawMessage, error) {
	return inv.c.put(ctx, "/inventory/alerts/"+id(alertID)+"/resolve", nil)
}
