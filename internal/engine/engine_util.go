package engine

import (
	"fmt"
	"slices"

	"github.com/DoyleJ11/tactics-server/internal/card"
)

func NewState(rules Rules) State {
	s := State{
		Phase:  PhaseAwaitingDecks,
		Active: FirstPlayer,
		Rules:  rules,
	}
	for i := range s.Economy {
		s.Economy[i] = Economy{Pawns: StartingPawns, Spirits: StartingSpirits}
	}
	return s
}

// Clone deep-copies the board so the copy can be mutated freely.
func (s State) Clone() State {
	cp := s
	for y := range s.Board {
		for x, e := range s.Board[y] {
			if e != nil {
				cp.Board[y][x] = e.Copy()
			}
		}
	}
	for i := range s.Decks {
		cp.Decks[i] = cloneDeck(s.Decks[i])
	}
	return cp
}

func (s State) EconomyOf(p Player) Economy { return s.Economy[p.Index()] }

func (s State) Username(p Player) string { return s.Usernames[p.Index()] }

func (b *Board) At(x, y int) *card.Entity {
	if !inBounds(x, y) {
		return nil
	}
	return b[y][x]
}

// Entities lists occupied cells row by row.
func (b *Board) Entities() []*card.Entity {
	var out []*card.Entity
	for y := range b {
		for _, e := range b[y] {
			if e != nil {
				out = append(out, e)
			}
		}
	}
	return out
}

// Validate checks that every entity's stored position matches its cell and
// that no entity is on the board twice.
func (b *Board) Validate() error {
	seen := map[*card.Entity]bool{}
	for y := range b {
		for x, e := range b[y] {
			if e == nil {
				continue
			}
			if seen[e] {
				return fmt.Errorf("entity %q placed twice (found again at %d,%d)", e.Card.Name, x, y)
			}
			seen[e] = true
			if e.X != x || e.Y != y {
				return fmt.Errorf("entity %q at cell %d,%d claims position %d,%d", e.Card.Name, x, y, e.X, e.Y)
			}
		}
	}
	return nil
}

func ContainsEvent(events []Event, eventType EventType) bool {
	return slices.ContainsFunc(events, func(e Event) bool { return e.Type == eventType })
}

func inBounds(x, y int) bool {
	return x >= 0 && x < Cols && y >= 0 && y < Rows
}

// withinReach is the client's highlight rule: euclidean distance <= 1.5.
func withinReach(cmd Command) bool {
	dx, dy := cmd.EndX-cmd.StartX, cmd.EndY-cmd.StartY
	return dx*dx+dy*dy <= 2
}

func cloneDeck(deck []card.Card) []card.Card {
	if deck == nil {
		return nil
	}
	out := make([]card.Card, len(deck))
	for i, c := range deck {
		out[i] = c.Clone()
	}
	return out
}
