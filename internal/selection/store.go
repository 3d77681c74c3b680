// Package selection holds the shopper's checkout working set: the cart lines
// picked for the next order, copied by value out of the cart.
package selection

import (
	"encoding/json"

	"github.com/wichananm65/food-order-backend/internal/cart"
)

// Store is an ordered list of selected cart lines. Operations never touch
// the persisted cart and never perform I/O. The zero value is an empty store.
type Store struct {
	lines []cart.Line
}

func NewStore(lines ...cart.Line) *Store {
	s := &Store{}
	s.ReplaceAll(lines)
	return s
}

// ReplaceAll makes the content exactly lines, in order. Repeated ids are kept.
func (s *Store) ReplaceAll(lines []cart.Line) {
	s.lines = make([]cart.Line, len(lines))
	copy(s.lines, lines)
}

func (s *Store) Clear() {
	s.lines = nil
}

// UpdateQuantity overwrites the quantity of the first line with id. The value
// is stored as given; dropping non-positive lines is up to the caller.
func (s *Store) UpdateQuantity(id string, quantity int) {
	if i := s.index(id); i >= 0 {
		s.lines[i].Quantity = quantity
	}
}

// Remove drops the first line with id, if any.
func (s *Store) Remove(id string) {
	if i := s.index(id); i >= 0 {
		s.lines = append(s.lines[:i:i], s.lines[i+1:]...)
	}
}

// Lines returns a copy of the current content.
func (s *Store) Lines() []cart.Line {
	out := make([]cart.Line, len(s.lines))
	copy(out, s.lines)
	return out
}

func (s *Store) Len() int {
	return len(s.lines)
}

func (s *Store) IsEmpty() bool {
	return len(s.lines) == 0
}

func (s *Store) index(id string) int {
	for i, l := range s.lines {
		if l.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Lines())
}

func (s *Store) UnmarshalJSON(data []byte) error {
	var lines []cart.Line
	if err := json.Unmarshal(data, &lines); err != nil {
		return err
	}
	s.ReplaceAll(lines)
	return nil
}
