package enums

import (
	"fmt"
	"strings"
)

type SortOrder string

const (
	SortAsc  SortOrder = "ASC"
	SortDesc SortOrder = "DESC"
)

// ParseSortOrder is case-insensitive; empty input yields "".
func ParseSortOrder(value string) (SortOrder, error) {
	switch SortOrder(strings.ToUpper(strings.TrimSpace(value))) {
	case "":
		return "", nil
	case SortAsc:
		return SortAsc, nil
	case SortDesc:
		return SortDesc, nil
	}
	return "", fmt.Errorf("invalid sort order %q", value)
}
