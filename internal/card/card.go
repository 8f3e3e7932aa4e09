package card

import (
	"errors"
	"fmt"
	"slices"
)

var ErrInvalidCard = errors.New("invalid card")

type Type string

const (
	TypeTroop    Type = "Troop"
	TypeSpell    Type = "Spell"
	TypeBuilding Type = "Building"
)

type AbilityKind string

const (
	AbilityMultiAttack     AbilityKind = "MultiAttack"
	AbilitySpiritCollector AbilityKind = "SpiritCollector"
	AbilityStun            AbilityKind = "Stun"
)

// Ability is one entry of the closed ability set. Only the fields of its
// Kind are meaningful: MaxAttacks for MultiAttack, Amount for Stun.
type Ability struct {
	Kind       AbilityKind `json:"kind"`
	MaxAttacks int         `json:"maxAttacks,omitempty"`
	Amount     int         `json:"amount,omitempty"`
}

func MultiAttack(maxAttacks int) Ability {
	return Ability{Kind: AbilityMultiAttack, MaxAttacks: maxAttacks}
}

func SpiritCollector() Ability {
	return Ability{Kind: AbilitySpiritCollector}
}

func Stun(amount int) Ability {
	return Ability{Kind: AbilityStun, Amount: amount}
}

func (a Ability) Validate() error {
	switch a.Kind {
	case AbilityMultiAttack:
		if a.MaxAttacks <= 0 {
			return fmt.Errorf("%w: multi-attack needs maxAttacks > 0, got %d", ErrInvalidCard, a.MaxAttacks)
		}
	case AbilitySpiritCollector:
	case AbilityStun:
		if a.Amount < 0 {
			return fmt.Errorf("%w: negative stun amount %d", ErrInvalidCard, a.Amount)
		}
	default:
		return fmt.Errorf("%w: unknown ability %q", ErrInvalidCard, a.Kind)
	}
	return nil
}

// Card is a catalog template. Entities hold their own copy.
type Card struct {
	Name      string    `json:"name"`
	Type      Type      `json:"type"`
	MaxHP     int       `json:"maxHp"`
	Attack    int       `json:"attack"`
	Cost      int       `json:"cost"`
	Abilities []Ability `json:"abilities"`
}

func (c Card) Validate() error {
	switch c.Type {
	case TypeTroop, TypeSpell, TypeBuilding:
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidCard, c.Type)
	}
	if c.MaxHP < 0 || c.Attack < 0 || c.Cost < 0 {
		return fmt.Errorf("%w: %q has negative stats", ErrInvalidCard, c.Name)
	}
	for _, a := range c.Abilities {
		if err := a.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (c Card) Clone() Card {
	c.Abilities = slices.Clone(c.Abilities)
	return c
}

func (c Card) Has(kind AbilityKind) bool {
	return slices.ContainsFunc(c.Abilities, func(a Ability) bool { return a.Kind == kind })
}

// Entity is a card in play. Position is always the canonical
// (player 1 relative) cell it occupies.
type Entity struct {
	Card           Card `json:"card"`
	CurrentHP      int  `json:"currentHp"`
	X              int  `json:"positionX"`
	Y              int  `json:"positionY"`
	OwnedByPlayer1 bool `json:"ownedByPlayer1"`
	HasMoved       bool `json:"hasMoved"`
	HasAttacked    bool `json:"hasAttacked"`
	StunCount      int  `json:"stunCount"`
	AttackCount    int  `json:"attackCount"`
}

func NewEntity(c Card, x, y int, ownedByPlayer1 bool) *Entity {
	return &Entity{
		Card:           c.Clone(),
		CurrentHP:      c.MaxHP,
		X:              x,
		Y:              y,
		OwnedByPlayer1: ownedByPlayer1,
	}
}

func (e *Entity) Stunned() bool { return e.StunCount > 0 }

func (e *Entity) Dead() bool { return e.CurrentHP <= 0 }

// Copy returns a detached copy, safe to hand to another goroutine.
func (e *Entity) Copy() *Entity {
	cp := *e
	cp.Card = e.Card.Clone()
	return &cp
}
