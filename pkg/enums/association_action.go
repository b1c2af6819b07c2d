package enums

import (
	"encoding/json"
	"fmt"
	"strings"
)

// AssociationAction is applied to a many-to-many relation on patch.
type AssociationAction string

const (
	AssociationAdd    AssociationAction = "add"
	AssociationSet    AssociationAction = "set"
	AssociationRemove AssociationAction = "remove"
)

var validAssociationActions = []AssociationAction{
	AssociationAdd,
	AssociationSet,
	AssociationRemove,
}

func (a AssociationAction) String() string {
	return string(a)
}

func (a AssociationAction) IsValid() bool {
	for _, candidate := range validAssociationActions {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseAssociationAction is case-insensitive.
func ParseAssociationAction(value string) (AssociationAction, error) {
	normalized := AssociationAction(strings.ToLower(strings.TrimSpace(value)))
	if normalized.IsValid() {
		return normalized, nil
	}
	return "", fmt.Errorf("invalid association action %q", value)
}

// UnmarshalJSON accepts any casing of a known action.
func (a *AssociationAction) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("association action must be a string")
	}
	parsed, err := ParseAssociationAction(raw)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
