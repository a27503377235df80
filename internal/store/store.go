package store

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/obsidianstack/sensorfusion/pkg/types"
)

// ErrNotFound is returned when a named reading is not present in a group.
var ErrNotFound = errors.New("store: reading not found")

// ErrUnknownGroup is returned for a Group value outside types.Groups.
var ErrUnknownGroup = errors.New("store: unknown group")

// Store is the sensor record store for one run.
type Store struct {
	groups [3][]types.Reading
}

// New returns an empty Store.
func New() *Store {
	return &Store{}
}

// Upsert updates the reading called name in group g in place, or appends a
// new reading when none exists. Names longer than types.MaxNameLen are
// truncated before lookup.
func (s *Store) Upsert(g types.Group, name string, time int, value float64) (types.Reading, error) {
	list, err := s.list(g)
	if err != nil {
		return types.Reading{}, err
	}
	name = TruncateName(name)
	if i := indexOf(*list, name); i >= 0 {
		(*list)[i].Time = time
		(*list)[i].Value = value
		return (*list)[i], nil
	}
	r := types.Reading{Name: name, Time: time, Value: value}
	*list = append(*list, r)
	return r, nil
}

// Get returns the reading called name in group g.
func (s *Store) Get(g types.Group, name string) (types.Reading, bool) {
	list, err := s.list(g)
	if err != nil {
		return types.Reading{}, false
	}
	i := indexOf(*list, TruncateName(name))
	if i < 0 {
		return types.Reading{}, false
	}
	return (*list)[i], true
}

// Find scans the groups in types.Groups order and returns the first reading
// called name together with the group holding it.
func (s *Store) Find(name string) (types.Group, types.Reading, bool) {
	name = TruncateName(name)
	for _, g := range types.Groups {
		if i := indexOf(s.groups[g], name); i >= 0 {
			return g, s.groups[g][i], true
		}
	}
	return 0, types.Reading{}, false
}

// Remove deletes the reading called name from group g, preserving the order
// of the remaining readings. It returns ErrNotFound if there is no such
// reading.
func (s *Store) Remove(g types.Group, name string) error {
	list, err := s.list(g)
	if err != nil {
		return err
	}
	i := indexOf(*list, TruncateName(name))
	if i < 0 {
		return fmt.Errorf("remove %q from %s: %w", name, g, ErrNotFound)
	}
	*list = append((*list)[:i], (*list)[i+1:]...)
	return nil
}

// Transfer moves the reading called name from one group to the end of
// another, keeping its time and value.
func (s *Store) Transfer(from, to types.Group, name string) error {
	src, err := s.list(from)
	if err != nil {
		return err
	}
	dst, err := s.list(to)
	if err != nil {
		return err
	}
	name = TruncateName(name)
	i := indexOf(*src, name)
	if i < 0 {
		return fmt.Errorf("transfer %q from %s to %s: %w", name, from, to, ErrNotFound)
	}
	r := (*src)[i]
	*src = append((*src)[:i], (*src)[i+1:]...)
	if from == to {
		*src = append(*src, r)
		return nil
	}
	if j := indexOf(*dst, name); j >= 0 {
		(*dst)[j] = r
		return nil
	}
	*dst = append(*dst, r)
	return nil
}

// Count returns the number of readings in group g.
func (s *Store) Count(g types.Group) int {
	list, err := s.list(g)
	if err != nil {
		return 0
	}
	return len(*list)
}

// Snapshot returns a copy of group g in insertion order. The copy is safe to
// keep after the store is mutated.
func (s *Store) Snapshot(g types.Group) []types.Reading {
	list, err := s.list(g)
	if err != nil {
		return nil
	}
	out := make([]types.Reading, len(*list))
	copy(out, *list)
	return out
}

// Len returns the total number of readings across all groups.
func (s *Store) Len() int {
	n := 0
	for _, g := range types.Groups {
		n += len(s.groups[g])
	}
	return n
}

func (s *Store) list(g types.Group) (*[]types.Reading, error) {
	if g < types.Valid || g > types.Stuck {
		return nil, fmt.Errorf("%w: %d", ErrUnknownGroup, int(g))
	}
	return &s.groups[g], nil
}

func indexOf(list []types.Reading, name string) int {
	for i := range list {
		if list[i].Name == name {
			return i
		}
	}
	return -1
}

// TruncateName shortens name to at most types.MaxNameLen bytes without
// splitting a UTF-8 sequence.
func TruncateName(name string) string {
	if len(name) <= types.MaxNameLen {
		return name
	}
	cut := types.MaxNameLen
	for cut > 0 && !utf8.RuneStart(name[cut]) {
		cut--
	}
	return name[:cut]
}
