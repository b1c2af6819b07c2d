// Package integrity verifies that ids referenced by a mutation exist.
package integrity

import (
	"context"

	"github.com/angelmondragon/catalog-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/catalog-backend/pkg/errors"
)

// Finder reports whether a row exists in a table.
type Finder interface {
	Exists(ctx context.Context, table string, id any) (bool, error)
}

// EnsureExist checks ids one at a time, in order, and reports the first one
// missing from kind's table.
func EnsureExist(ctx context.Context, finder Finder, kind enums.EntityType, ids []uint) error {
	for _, id := range ids {
		ok, err := finder.Exists(ctx, kind.Plural(), id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: check "+kind.String()+" exists")
		}
		if !ok {
			return pkgerrors.Newf(pkgerrors.CodeNotFound, "%s with id %d not found", kind, id)
		}
	}
	return nil
}
