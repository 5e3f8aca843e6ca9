package id

import "github.com/google/uuid"

// Generator produces identifiers for newly persisted entities.
type Generator interface {
	NewID() string
}

type uuidGenerator struct{}

// NewUUIDGenerator returns a Generator backed by random (v4) UUIDs.
func NewUUIDGenerator() Generator { return uuidGenerator{} }

func (uuidGenerator) NewID() string { return uuid.NewString() }

// Sequence hands out ids from a fixed list, then falls back to UUIDs. Handy for deterministic tests.
type Sequence struct {
	ids []string
}

func NewSequence(ids ...string) *Sequence {
	return &Sequence{ids: ids}
}

func (s *Sequence) NewID() string {
	if len(s.ids) == 0 {
		return uuid.NewString()
	}
	next := s.ids[0]
	s.ids = s.ids[1:]
	return next
}
