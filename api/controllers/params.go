package controllers

import (
	"github.com/google/uuid"

	pkgerrors "github.com/angelmondragon/catalog-backend/pkg/errors"
	"github.com/angelmondragon/catalog-backend/pkg/types"
)

// Image ids arrive as strings so the validator can check uuid4 first.

func optionalUUID(raw *string) (*uuid.UUID, error) {
	if raw == nil {
		return nil, nil
	}
	id, err := uuid.Parse(*raw)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "imageId must be a valid uuid v4")
	}
	return &id, nil
}

func nullableUUID(raw types.Nullable[string]) (types.Nullable[uuid.UUID], error) {
	if !raw.Set {
		return types.Nullable[uuid.UUID]{}, nil
	}
	if raw.Value == nil {
		return types.Null[uuid.UUID](), nil
	}
	id, err := optionalUUID(raw.Value)
	if err != nil {
		return types.Nullable[uuid.UUID]{}, err
	}
	return types.Some(*id), nil
}
