package ports

import (
	"context"

	"promolift/domain/promo"
)

// DatasetProvider supplies the promotion table every analysis runs on.
// Implementations load once and hand out the same immutable table.
type DatasetProvider interface {
	Table(ctx context.Context) (*promo.Table, error)
}

// TableLoader reads a table from a source; the provider caches its result
type TableLoader interface {
	Load(ctx context.Context) (*promo.Table, error)
	Source() string
}
