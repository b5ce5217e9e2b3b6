// Package team stores named rosters: the labels shown on the six player
// markers.
package team

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrIndexOutOfRange = errors.New("team index out of range")
	ErrInvalidRecord   = errors.New("invalid team record")
	ErrPersist         = errors.New("persist teams")
)

// Team is a named list of player labels in roster order.
type Team struct {
	Name        string   `json:"name"`
	PlayerNames []string `json:"player_names"`
}

// UnmarshalJSON defaults a missing roster to an empty list.
func (t *Team) UnmarshalJSON(data []byte) error {
	type plain Team
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	if p.PlayerNames == nil {
		p.PlayerNames = []string{}
	}
	*t = Team(p)
	return nil
}

func (t Team) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidRecord)
	}
	return nil
}

func (t Team) Clone() Team {
	t.PlayerNames = append([]string{}, t.PlayerNames...)
	return t
}

// Persister writes the whole collection after every mutation.
type Persister interface {
	Save(ctx context.Context, teams []Team) error
}

// Store is an ordered collection of teams. It is not safe for concurrent
// use.
type Store struct {
	items   []Team
	persist Persister
}

func NewStore(persist Persister) *Store {
	return &Store{persist: persist}
}

func (s *Store) Len() int { return len(s.items) }

func (s *Store) Get(i int) (Team, error) {
	if err := s.checkIndex(i); err != nil {
		return Team{}, err
	}
	return s.items[i].Clone(), nil
}

func (s *Store) List() []Team {
	out := make([]Team, len(s.items))
	for i, t := range s.items {
		out[i] = t.Clone()
	}
	return out
}

// Add appends t and returns its index.
func (s *Store) Add(ctx context.Context, t Team) (int, error) {
	if err := t.Validate(); err != nil {
		return -1, err
	}
	s.items = append(s.items, t.Clone())
	return len(s.items) - 1, s.save(ctx)
}

func (s *Store) Update(ctx context.Context, i int, t Team) error {
	if err := s.checkIndex(i); err != nil {
		return err
	}
	if err := t.Validate(); err != nil {
		return err
	}
	s.items[i] = t.Clone()
	return s.save(ctx)
}

func (s *Store) Delete(ctx context.Context, i int) error {
	if err := s.checkIndex(i); err != nil {
		return err
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	return s.save(ctx)
}

// Replace swaps in a loaded collection without persisting it.
func (s *Store) Replace(teams []Team) {
	s.items = make([]Team, len(teams))
	for i, t := range teams {
		s.items[i] = t.Clone()
	}
}

func (s *Store) save(ctx context.Context) error {
	if s.persist == nil {
		return nil
	}
	if err := s.persist.Save(ctx, s.List()); err != nil {
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	return nil
}

func (s *Store) checkIndex(i int) error {
	if i < 0 || i >= len(s.items) {
		return fmt.Errorf("%w: %d (have %d)", ErrIndexOutOfRange, i, len(s.items))
	}
	return nil
}
