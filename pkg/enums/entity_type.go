package enums

import "fmt"

// EntityType names the catalog entity kind an image was uploaded for.
type EntityType string

const (
	EntityTypeCharacter EntityType = "character"
	EntityTypeMovie     EntityType = "movie"
	EntityTypeGenre     EntityType = "genre"
)

var validEntityTypes = []EntityType{
	EntityTypeCharacter,
	EntityTypeMovie,
	EntityTypeGenre,
}

// String returns the literal string for the type.
func (e EntityType) String() string {
	return string(e)
}

// IsValid reports whether the type is known.
func (e EntityType) IsValid() bool {
	for _, candidate := range validEntityTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// Plural is the collection name used in routes and storage folders.
func (e EntityType) Plural() string {
	return string(e) + "s"
}

// Folder is the storage folder images of this type are written to.
func (e EntityType) Folder() string {
	return "/" + e.Plural() + "/images"
}

// ParseEntityType converts raw input into an EntityType.
func ParseEntityType(value string) (EntityType, error) {
	for _, candidate := range validEntityTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid entity type %q", value)
}

// EntityTypes lists every known type.
func EntityTypes() []EntityType {
	return append([]EntityType(nil), validEntityTypes...)
}
