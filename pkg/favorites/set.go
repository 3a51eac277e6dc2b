package favorites

import (
	"errors"
	"fmt"
	"maps"
	"slices"
)

// Set is a set of canonical IDs. The zero value is an empty, read-only set;
// use NewSet before calling Add.
type Set map[ID]struct{}

// NewSet returns a set holding ids.
func NewSet(ids ...ID) Set {
	s := make(Set, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// NormalizeAll builds a set from remote entries. Entries that fail
// normalization are skipped; their errors are joined into the returned error
// while the set still holds every valid entry.
func NormalizeAll(refs []Ref) (Set, error) {
	s := make(Set, len(refs))
	var errs []error
	for i, ref := range refs {
		id, err := Normalize(ref)
		if err != nil {
			errs = append(errs, fmt.Errorf("entry %d: %w", i, err))
			continue
		}
		s[id] = struct{}{}
	}
	return s, errors.Join(errs...)
}

func (s Set) Has(id ID) bool {
	_, ok := s[id]
	return ok
}

func (s Set) Add(id ID) { s[id] = struct{}{} }

func (s Set) Remove(id ID) { delete(s, id) }

func (s Set) Len() int { return len(s) }

// Clone returns an independent copy. Cloning a nil set yields an empty one.
func (s Set) Clone() Set {
	c := make(Set, len(s))
	maps.Copy(c, s)
	return c
}

// Equal reports whether both sets hold the same IDs.
func (s Set) Equal(other Set) bool {
	if len(s) != len(other) {
		return false
	}
	for id := range s {
		if !other.Has(id) {
			return false
		}
	}
	return true
}

// Sorted returns the IDs in lexical order.
func (s Set) Sorted() []ID {
	return slices.Sorted(maps.Keys(s))
}
