// Package associations applies add, set and remove to the many-to-many
// links between catalog entities.
package associations

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/catalog-backend/internal/repo"
	"github.com/angelmondragon/catalog-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/catalog-backend/pkg/errors"
)

// Relation describes one side of a join table.
type Relation struct {
	Table        string
	OwnerColumn  string
	TargetColumn string
	// Target is the kind of entity the ids refer to.
	Target enums.EntityType
}

var (
	CharacterMovies = Relation{Table: "character_movies", OwnerColumn: "character_id", TargetColumn: "movie_id", Target: enums.EntityTypeMovie}
	MovieCharacters = Relation{Table: "character_movies", OwnerColumn: "movie_id", TargetColumn: "character_id", Target: enums.EntityTypeCharacter}
	MovieGenres     = Relation{Table: "genre_movies", OwnerColumn: "movie_id", TargetColumn: "genre_id", Target: enums.EntityTypeGenre}
	GenreMovies     = Relation{Table: "genre_movies", OwnerColumn: "genre_id", TargetColumn: "movie_id", Target: enums.EntityTypeMovie}
)

type txRunner interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Manager mutates join rows. It never checks that the ids exist; callers
// run the integrity check first.
type Manager struct {
	repo.Base
	tx txRunner
}

func NewManager(conn *gorm.DB, tx txRunner) *Manager {
	return &Manager{Base: repo.NewBase(conn), tx: tx}
}

// Apply runs action against the owner's links. Set with no ids clears them.
func (m *Manager) Apply(ctx context.Context, rel Relation, ownerID uint, action enums.AssociationAction, ids IDList) error {
	if ids == nil {
		return nil
	}
	if action == "" {
		return MissingAction(rel)
	}
	unique := ids.Unique()
	switch action {
	case enums.AssociationAdd:
		return m.insert(ctx, rel, ownerID, unique)
	case enums.AssociationRemove:
		return m.remove(ctx, rel, ownerID, unique)
	case enums.AssociationSet:
		return m.tx.InTx(ctx, func(ctx context.Context) error {
			if err := m.DB(ctx).Table(rel.Table).Where(rel.OwnerColumn+" = ?", ownerID).Delete(map[string]any{}).Error; err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: clear "+rel.Table)
			}
			return m.insert(ctx, rel, ownerID, unique)
		})
	}
	return pkgerrors.Newf(pkgerrors.CodeValidation, "invalid association action %q", action)
}

// Targets lists the ids linked to ownerID.
func (m *Manager) Targets(ctx context.Context, rel Relation, ownerID uint) ([]uint, error) {
	var ids []uint
	err := m.DB(ctx).Table(rel.Table).Where(rel.OwnerColumn+" = ?", ownerID).Order(rel.TargetColumn).Pluck(rel.TargetColumn, &ids).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: list "+rel.Table)
	}
	return ids, nil
}

func (m *Manager) insert(ctx context.Context, rel Relation, ownerID uint, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	rows := make([]map[string]any, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, map[string]any{rel.OwnerColumn: ownerID, rel.TargetColumn: id})
	}
	err := m.DB(ctx).Table(rel.Table).Clauses(clause.OnConflict{DoNothing: true}).Create(rows).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: insert "+rel.Table)
	}
	return nil
}

func (m *Manager) remove(ctx context.Context, rel Relation, ownerID uint, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	err := m.DB(ctx).Table(rel.Table).
		Where(rel.OwnerColumn+" = ? AND "+rel.TargetColumn+" IN ?", ownerID, ids).
		Delete(map[string]any{}).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: remove "+rel.Table)
	}
	return nil
}

// MissingAction is the error for ids supplied without an action.
func MissingAction(rel Relation) error {
	return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%sAction is required when %s are provided", rel.Target.Plural(), rel.Target.Plural()))
}
