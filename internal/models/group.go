package models

import "sort"

// Group is a saved participant list owned by one user.
// Groups are stored on the user record as a name to members mapping; this
// type is the flattened view handed to callers.
type Group struct {
	// Name is unique within the owning user.
	Name string

	// Members keeps the order the members were entered in.
	// Duplicates and empty strings are not removed by the store.
	Members []string
}

// SortedGroups flattens a group mapping into a slice ordered by name.
func SortedGroups(groups map[string][]string) []Group {
	out := make([]Group, 0, len(groups))
	for name, members := range groups {
		out = append(out, Group{Name: name, Members: append([]string(nil), members...)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
