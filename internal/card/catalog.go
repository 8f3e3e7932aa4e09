package card

// Catalog is a small built-in card set. Clients send their own cards, so
// the server never needs it to play; it backs tests and local tooling.
func Catalog() map[string]Card {
	return map[string]Card{
		"skeleton": {
			Name: "skeleton", Type: TypeTroop, MaxHP: 5, Attack: 5, Cost: 2,
		},
		"berserker": {
			Name: "berserker", Type: TypeTroop, MaxHP: 6, Attack: 2, Cost: 4,
			Abilities: []Ability{MultiAttack(2)},
		},
		"reaper": {
			Name: "reaper", Type: TypeTroop, MaxHP: 4, Attack: 4, Cost: 5,
			Abilities: []Ability{SpiritCollector()},
		},
		"golem": {
			Name: "golem", Type: TypeTroop, MaxHP: 10, Attack: 1, Cost: 4,
			Abilities: []Ability{Stun(2)},
		},
		"gold-mine": {
			Name: "gold-mine", Type: TypeBuilding, MaxHP: 20, Attack: 0, Cost: 6,
		},
	}
}
