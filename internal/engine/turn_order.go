package engine

import "fmt"

type Player int

const (
	Player1 Player = 1
	Player2 Player = 2
)

// FirstPlayer opens every game.
const FirstPlayer = Player1

func (p Player) Other() Player {
	if p == Player1 {
		return Player2
	}
	return Player1
}

// Index maps a player to its slot in per-player arrays.
func (p Player) Index() int { return int(p) - 1 }

func (p Player) Valid() bool { return p == Player1 || p == Player2 }

func (p Player) String() string {
	if !p.Valid() {
		return "none"
	}
	return fmt.Sprintf("player%d", int(p))
}

func OwnerOf(ownedByPlayer1 bool) Player {
	if ownedByPlayer1 {
		return Player1
	}
	return Player2
}

// Rotate turns a cell 180 degrees. Player 2 sees the canonical board this
// way; the rotation is its own inverse.
func Rotate(x, y int) (int, int) {
	return Cols - 1 - x, Rows - 1 - y
}

// View converts between canonical coordinates and p's own orientation, in
// either direction.
func (p Player) View(x, y int) (int, int) {
	if p == Player2 {
		return Rotate(x, y)
	}
	return x, y
}
