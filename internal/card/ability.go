package card

// ApplyStunOnAttack adds every Stun amount on the attacker to the defender.
func ApplyStunOnAttack(attacker, defender *Entity) {
	for _, a := range attacker.Card.Abilities {
		if a.Kind == AbilityStun {
			defender.StunCount += a.Amount
		}
	}
}

// ConsumeAction spends one attack. A MultiAttack entity keeps its action
// until it has attacked MaxAttacks times this turn.
func ConsumeAction(attacker *Entity) {
	for _, a := range attacker.Card.Abilities {
		if a.Kind == AbilityMultiAttack && attacker.AttackCount < a.MaxAttacks {
			attacker.AttackCount++
			return
		}
	}
	attacker.HasAttacked = true
}

func RewardOnKill(attacker *Entity, killed Card) int {
	if attacker.Card.Has(AbilitySpiritCollector) {
		return killed.Cost
	}
	return killed.Cost / 2
}

func ResetForNewTurn(e *Entity) {
	e.HasMoved = false
	e.HasAttacked = false
	e.AttackCount = 0
	if e.StunCount > 0 {
		e.StunCount--
	}
}
