package card

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyStunOnAttack_Additive(t *testing.T) {
	golem := Catalog()["golem"]
	golem.Abilities = append(golem.Abilities, Stun(1))
	attacker := NewEntity(golem, 0, 0, true)
	defender := NewEntity(Catalog()["skeleton"], 0, 1, false)
	defender.StunCount = 1

	ApplyStunOnAttack(attacker, defender)

	assert.Equal(t, 4, defender.StunCount)
	assert.Equal(t, 0, attacker.StunCount)
}

func TestConsumeAction(t *testing.T) {
	cases := []struct {
		name      string
		card      Card
		attacks   int
		wantCount int
		wantSpent bool
	}{
		{name: "plain troop spends on first attack", card: Catalog()["skeleton"], attacks: 1, wantCount: 0, wantSpent: true},
		{name: "multi-attack keeps action under budget", card: Catalog()["berserker"], attacks: 2, wantCount: 2, wantSpent: false},
		{name: "multi-attack spends once budget is used", card: Catalog()["berserker"], attacks: 3, wantCount: 2, wantSpent: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := NewEntity(tc.card, 2, 2, true)
			for range tc.attacks {
				ConsumeAction(e)
			}
			assert.Equal(t, tc.wantCount, e.AttackCount)
			assert.Equal(t, tc.wantSpent, e.HasAttacked)
		})
	}
}

func TestRewardOnKill(t *testing.T) {
	killed := Card{Name: "target", Type: TypeTroop, MaxHP: 1, Cost: 5}

	collector := NewEntity(Catalog()["reaper"], 0, 0, true)
	plain := NewEntity(Catalog()["skeleton"], 0, 0, true)

	assert.Equal(t, 5, RewardOnKill(collector, killed))
	assert.Equal(t, 2, RewardOnKill(plain, killed), "half cost rounds down")
}

func TestResetForNewTurn(t *testing.T) {
	e := NewEntity(Catalog()["berserker"], 1, 1, false)
	e.HasMoved, e.HasAttacked, e.AttackCount, e.StunCount = true, true, 2, 2

	ResetForNewTurn(e)
	assert.False(t, e.HasMoved)
	assert.False(t, e.HasAttacked)
	assert.Equal(t, 0, e.AttackCount)
	assert.Equal(t, 1, e.StunCount)

	ResetForNewTurn(e)
	ResetForNewTurn(e)
	assert.Equal(t, 0, e.StunCount, "stun never goes below zero")
}

func TestNewEntity_DoesNotAliasTemplate(t *testing.T) {
	tmpl := Catalog()["golem"]
	e := NewEntity(tmpl, 0, 0, true)
	e.Card.Abilities[0].Amount = 99

	require.Len(t, tmpl.Abilities, 1)
	assert.Equal(t, 2, tmpl.Abilities[0].Amount)
	assert.Equal(t, tmpl.MaxHP, e.CurrentHP)
}

func TestCardValidate(t *testing.T) {
	for name, c := range Catalog() {
		assert.NoError(t, c.Validate(), name)
	}

	bad := []Card{
		{Name: "x", Type: "Dragon"},
		{Name: "x", Type: TypeTroop, Cost: -1},
		{Name: "x", Type: TypeTroop, Abilities: []Ability{{Kind: "Fly"}}},
		{Name: "x", Type: TypeTroop, Abilities: []Ability{MultiAttack(0)}},
	}
	for _, c := range bad {
		assert.ErrorIs(t, c.Validate(), ErrInvalidCard)
	}
}
