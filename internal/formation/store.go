package formation

import (
	"context"
	"fmt"
)

// Op names a store mutation.
type Op string

const (
	OpAdded       Op = "added"
	OpUpdated     Op = "updated"
	OpRenamed     Op = "renamed"
	OpDeleted     Op = "deleted"
	OpZoneAdded   Op = "zone_added"
	OpZoneDeleted Op = "zone_deleted"
	OpReplaced    Op = "replaced"
)

// Change describes a mutation. Formation is the record after the change;
// for OpDeleted it is the removed record. Index is -1 for OpReplaced.
type Change struct {
	Op        Op
	Index     int
	Formation Formation
}

// Listener observes store mutations. Listeners run synchronously after the
// mutation is persisted.
type Listener func(Change)

// Persister writes the whole collection after every mutation.
type Persister interface {
	Save(ctx context.Context, formations []Formation) error
}

// Options tune store behavior.
type Options struct {
	// UniqueNames rejects Add and Rename with a name already in use.
	UniqueNames bool
}

// Store is an ordered collection of formations. Order is insertion order.
// Store is not safe for concurrent use.
type Store struct {
	items     []Formation
	persist   Persister
	opts      Options
	listeners []Listener
}

// NewStore creates a store. persist may be nil for an in-memory store.
func NewStore(persist Persister, opts Options) *Store {
	return &Store{persist: persist, opts: opts}
}

// Subscribe registers l for every later mutation.
func (s *Store) Subscribe(l Listener) {
	s.listeners = append(s.listeners, l)
}

func (s *Store) Len() int { return len(s.items) }

// Get returns a copy of the formation at i.
func (s *Store) Get(i int) (Formation, error) {
	if err := s.checkIndex(i); err != nil {
		return Formation{}, err
	}
	return s.items[i].Clone(), nil
}

// List returns copies of all formations in order.
func (s *Store) List() []Formation {
	out := make([]Formation, len(s.items))
	for i, f := range s.items {
		out[i] = f.Clone()
	}
	return out
}

// Add appends f and returns its index.
func (s *Store) Add(ctx context.Context, f Formation) (int, error) {
	if err := f.Validate(); err != nil {
		return -1, err
	}
	if err := s.checkName(f.Name, -1); err != nil {
		return -1, err
	}
	s.items = append(s.items, f.Clone())
	i := len(s.items) - 1
	return i, s.commit(ctx, Change{Op: OpAdded, Index: i, Formation: s.items[i]})
}

// Update replaces the formation at i.
func (s *Store) Update(ctx context.Context, i int, f Formation) error {
	if err := s.checkIndex(i); err != nil {
		return err
	}
	if err := f.Validate(); err != nil {
		return err
	}
	if err := s.checkName(f.Name, i); err != nil {
		return err
	}
	s.items[i] = f.Clone()
	return s.commit(ctx, Change{Op: OpUpdated, Index: i, Formation: s.items[i]})
}

// Rename changes the name of the formation at i.
func (s *Store) Rename(ctx context.Context, i int, name string) error {
	if err := s.checkIndex(i); err != nil {
		return err
	}
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidRecord)
	}
	if err := s.checkName(name, i); err != nil {
		return err
	}
	s.items[i].Name = name
	return s.commit(ctx, Change{Op: OpRenamed, Index: i, Formation: s.items[i]})
}

// Delete removes the formation at i. Later indices shift down.
func (s *Store) Delete(ctx context.Context, i int) error {
	if err := s.checkIndex(i); err != nil {
		return err
	}
	removed := s.items[i]
	s.items = append(s.items[:i], s.items[i+1:]...)
	return s.commit(ctx, Change{Op: OpDeleted, Index: i, Formation: removed})
}

// AddZone appends z to formation i. A player may own several zones.
func (s *Store) AddZone(ctx context.Context, i int, z Zone) error {
	if err := s.checkIndex(i); err != nil {
		return err
	}
	if err := validateZone(z, len(s.items[i].Offsets)); err != nil {
		return err
	}
	s.items[i].Zones = append(s.items[i].Zones, z)
	return s.commit(ctx, Change{Op: OpZoneAdded, Index: i, Formation: s.items[i]})
}

// DeleteZone removes the first zone of formation i equal to z. It reports
// whether a zone was removed; no match is not an error.
func (s *Store) DeleteZone(ctx context.Context, i int, z Zone) (bool, error) {
	if err := s.checkIndex(i); err != nil {
		return false, err
	}
	zones := s.items[i].Zones
	for j := range zones {
		if zones[j] == z {
			s.items[i].Zones = append(zones[:j], zones[j+1:]...)
			return true, s.commit(ctx, Change{Op: OpZoneDeleted, Index: i, Formation: s.items[i]})
		}
	}
	return false, nil
}

// Replace swaps in a whole collection, typically one just loaded from
// storage. It does not persist.
func (s *Store) Replace(formations []Formation) {
	s.items = make([]Formation, len(formations))
	for i, f := range formations {
		s.items[i] = f.Clone()
	}
	s.notify(Change{Op: OpReplaced, Index: -1})
}

func (s *Store) commit(ctx context.Context, c Change) error {
	var err error
	if s.persist != nil {
		if perr := s.persist.Save(ctx, s.List()); perr != nil {
			err = fmt.Errorf("%w: %w", ErrPersist, perr)
		}
	}
	c.Formation = c.Formation.Clone()
	s.notify(c)
	return err
}

func (s *Store) notify(c Change) {
	for _, l := range s.listeners {
		l(c)
	}
}

func (s *Store) checkIndex(i int) error {
	if i < 0 || i >= len(s.items) {
		return fmt.Errorf("%w: %d (have %d)", ErrIndexOutOfRange, i, len(s.items))
	}
	return nil
}

func (s *Store) checkName(name string, self int) error {
	if !s.opts.UniqueNames {
		return nil
	}
	for i, f := range s.items {
		if i != self && f.Name == name {
			return &DuplicateNameError{Name: name, Index: i}
		}
	}
	return nil
}
