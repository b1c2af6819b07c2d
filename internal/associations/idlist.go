package associations

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// IDList decodes either a single id or an array of ids. null leaves it nil.
type IDList []uint

func (l *IDList) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*l = nil
		return nil
	}
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var ids []uint
		if err := json.Unmarshal(trimmed, &ids); err != nil {
			return fmt.Errorf("ids must be positive integers")
		}
		*l = ids
		return nil
	}
	var id uint
	if err := json.Unmarshal(trimmed, &id); err != nil {
		return fmt.Errorf("ids must be a positive integer or a list of them")
	}
	*l = IDList{id}
	return nil
}

// Unique returns the ids with duplicates dropped, keeping first-seen order.
func (l IDList) Unique() []uint {
	seen := make(map[uint]struct{}, len(l))
	out := make([]uint, 0, len(l))
	for _, id := range l {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
