package model

import "strings"

// Allowlist is the immutable set of chat ids permitted to use the relay.
// An empty allowlist admits every chat.
type Allowlist struct {
	ids map[string]struct{}
}

// NewAllowlist trims and deduplicates ids, dropping blanks.
func NewAllowlist(ids ...string) Allowlist {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		set[id] = struct{}{}
	}
	return Allowlist{ids: set}
}

func (a Allowlist) Contains(chatID string) bool {
	if len(a.ids) == 0 {
		return true
	}
	_, ok := a.ids[strings.TrimSpace(chatID)]
	return ok
}

func (a Allowlist) Len() int { return len(a.ids) }

// IDs returns the members in no particular order.
func (a Allowlist) IDs() []string {
	out := make([]string, 0, len(a.ids))
	for id := range a.ids {
		out = append(out, id)
	}
	return out
}
