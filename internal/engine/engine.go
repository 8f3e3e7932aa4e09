package engine

import (
	"errors"
	"fmt"

	"github.com/DoyleJ11/tactics-server/internal/card"
)

// ErrRejected is wrapped by every rule violation. A rejected command never
// changes the state.
var ErrRejected = errors.New("command rejected")

var (
	ErrWrongTurn          = fmt.Errorf("%w: not this player's turn", ErrRejected)
	ErrNotStarted         = fmt.Errorf("%w: game has not started", ErrRejected)
	ErrAlreadyStarted     = fmt.Errorf("%w: game already started", ErrRejected)
	ErrAlreadyJoined      = fmt.Errorf("%w: player info already received", ErrRejected)
	ErrGameFinished       = fmt.Errorf("%w: game already finished", ErrRejected)
	ErrOutOfBounds        = fmt.Errorf("%w: cell outside the board", ErrRejected)
	ErrCellEmpty          = fmt.Errorf("%w: cell is empty", ErrRejected)
	ErrCellOccupied       = fmt.Errorf("%w: cell is occupied", ErrRejected)
	ErrNotOwner           = fmt.Errorf("%w: entity belongs to the opponent", ErrRejected)
	ErrNotOpponent        = fmt.Errorf("%w: target is not an opponent", ErrRejected)
	ErrAlreadyActed       = fmt.Errorf("%w: entity already acted this turn", ErrRejected)
	ErrStunned            = fmt.Errorf("%w: entity is stunned", ErrRejected)
	ErrOutOfRange         = fmt.Errorf("%w: target out of range", ErrRejected)
	ErrNoPawns            = fmt.Errorf("%w: no pawns left", ErrRejected)
	ErrNotEnoughSpirits   = fmt.Errorf("%w: not enough spirits", ErrRejected)
	ErrNotWinRow          = fmt.Errorf("%w: entity is not on a winning row", ErrRejected)
	ErrUnsupportedCommand = fmt.Errorf("%w: unsupported command", ErrRejected)
)

const (
	Rows = 9
	Cols = 5

	StartingPawns   = 6
	StartingSpirits = 8
)

type Phase string

const (
	PhaseAwaitingDecks Phase = "awaiting_decks"
	PhaseActive        Phase = "active"
	PhaseFinished      Phase = "finished"
)

// Board is indexed [y][x] in canonical coordinates.
type Board [Rows][Cols]*card.Entity

type Economy struct {
	Pawns   int
	Spirits int
}

type Rules struct {
	// EnforceRange limits move and attack to the eight neighbouring cells.
	EnforceRange bool
	// SpiritPerAction grants the spirit after each move, attack and spawn
	// instead of at the start of a turn.
	SpiritPerAction bool
}

type State struct {
	Phase     Phase
	Active    Player
	Winner    Player
	Board     Board
	Economy   [2]Economy
	Usernames [2]string
	Decks     [2][]card.Card
	Joined    [2]bool
	Rules     Rules
}

type CommandType string

const (
	CmdPlayerInfo  CommandType = "PlayerInfo"
	CmdMoveTroop   CommandType = "MoveTroop"
	CmdAttackTroop CommandType = "AttackTroop"
	CmdSpawnCard   CommandType = "SpawnCard"
	CmdEndTurn     CommandType = "EndTurn"
	CmdWinGame     CommandType = "WinGame"
	CmdResign      CommandType = "Resign"
	CmdDisconnect  CommandType = "Disconnect"
)

/*
	CmdPlayerInfo  -> EvtPlayerJoined [-> EvtGameStarted]
	CmdSpawnCard   -> EvtTroopSpawned
	CmdMoveTroop   -> EvtTroopMoved
	CmdAttackTroop -> EvtTroopAttacked (Killed set when the defender died)
	CmdEndTurn     -> EvtTurnStarted
	CmdWinGame     -> EvtGameEnded
	CmdResign      -> EvtGameEnded (opponent wins)
	CmdDisconnect  -> EvtGameEnded (opponent wins, or nobody before the game started)

	All coordinates are canonical.
*/

type Command struct {
	Type     CommandType
	Player   Player
	StartX   int
	StartY   int
	EndX     int
	EndY     int
	Card     card.Card
	Username string
	Deck     []card.Card
}

type EventType string

const (
	EvtPlayerJoined  EventType = "PlayerJoined"
	EvtGameStarted   EventType = "GameStarted"
	EvtTroopSpawned  EventType = "TroopSpawned"
	EvtTroopMoved    EventType = "TroopMoved"
	EvtTroopAttacked EventType = "TroopAttacked"
	EvtTurnStarted   EventType = "TurnStarted"
	EvtGameEnded     EventType = "GameEnded"
)

// Event.Player is the actor, except for EvtTurnStarted (the player whose
// turn begins) and EvtGameEnded (the winner, zero when nobody won).
type Event struct {
	Type   EventType
	Player Player
	StartX int
	StartY int
	EndX   int
	EndY   int
	Entity *card.Entity
	Killed bool
}

func Apply(s State, cmd Command) ([]Event, State, error) {
	if s.Phase == PhaseFinished {
		return nil, s, ErrGameFinished
	}
	if !cmd.Player.Valid() {
		return nil, s, ErrUnsupportedCommand
	}

	switch cmd.Type {
	case CmdPlayerInfo:
		return applyPlayerInfo(s, cmd)
	case CmdDisconnect:
		return applyDisconnect(s, cmd)
	case CmdResign:
		// Not turn-gated: either player may concede at any time.
		if s.Phase != PhaseActive {
			return nil, s, ErrNotStarted
		}
		return finish(s, cmd.Player.Other())
	}

	if s.Phase != PhaseActive {
		return nil, s, ErrNotStarted
	}
	if cmd.Player != s.Active {
		return nil, s, ErrWrongTurn
	}

	switch cmd.Type {
	case CmdMoveTroop:
		return applyMove(s, cmd)
	case CmdAttackTroop:
		return applyAttack(s, cmd)
	case CmdSpawnCard:
		return applySpawn(s, cmd)
	case CmdEndTurn:
		return applyEndTurn(s, cmd)
	case CmdWinGame:
		return applyWinGame(s, cmd)
	default:
		return nil, s, ErrUnsupportedCommand
	}
}

func applyPlayerInfo(s State, cmd Command) ([]Event, State, error) {
	if s.Phase != PhaseAwaitingDecks {
		return nil, s, ErrAlreadyStarted
	}
	i := cmd.Player.Index()
	if s.Joined[i] {
		return nil, s, ErrAlreadyJoined
	}

	newState := s.Clone()
	newState.Joined[i] = true
	newState.Usernames[i] = cmd.Username
	newState.Decks[i] = cloneDeck(cmd.Deck)

	events := []Event{{Type: EvtPlayerJoined, Player: cmd.Player}}

	// Whichever side arrives second starts the game.
	if newState.Joined[0] && newState.Joined[1] {
		newState.Phase = PhaseActive
		newState.Active = FirstPlayer
		events = append(events, Event{Type: EvtGameStarted, Player: FirstPlayer})
	}
	return events, newState, nil
}

func applyDisconnect(s State, cmd Command) ([]Event, State, error) {
	if s.Phase == PhaseAwaitingDecks {
		newState := s.Clone()
		newState.Phase = PhaseFinished
		return []Event{{Type: EvtGameEnded}}, newState, nil
	}
	return finish(s, cmd.Player.Other())
}

func applyMove(s State, cmd Command) ([]Event, State, error) {
	if !inBounds(cmd.StartX, cmd.StartY) || !inBounds(cmd.EndX, cmd.EndY) {
		return nil, s, ErrOutOfBounds
	}
	if err := canMove(s, cmd); err != nil {
		return nil, s, err
	}

	newState := s.Clone()
	b := &newState.Board
	e := b[cmd.StartY][cmd.StartX]
	b[cmd.StartY][cmd.StartX] = nil
	b[cmd.EndY][cmd.EndX] = e
	e.X, e.Y = cmd.EndX, cmd.EndY
	e.HasMoved = true
	grantActionSpirit(&newState, cmd.Player)

	events := []Event{{
		Type: EvtTroopMoved, Player: cmd.Player,
		StartX: cmd.StartX, StartY: cmd.StartY, EndX: cmd.EndX, EndY: cmd.EndY,
	}}
	return events, newState, nil
}

func applyAttack(s State, cmd Command) ([]Event, State, error) {
	if !inBounds(cmd.StartX, cmd.StartY) || !inBounds(cmd.EndX, cmd.EndY) {
		return nil, s, ErrOutOfBounds
	}
	if err := canAttack(s, cmd); err != nil {
		return nil, s, err
	}

	newState := s.Clone()
	b := &newState.Board
	attacker := b[cmd.StartY][cmd.StartX]
	defender := b[cmd.EndY][cmd.EndX]

	card.ApplyStunOnAttack(attacker, defender)
	card.ConsumeAction(attacker)
	defender.CurrentHP -= attacker.Card.Attack

	killed := defender.Dead()
	if killed {
		// The attacker captures the cell.
		b[cmd.EndY][cmd.EndX] = attacker
		b[cmd.StartY][cmd.StartX] = nil
		attacker.X, attacker.Y = cmd.EndX, cmd.EndY

		newState.Economy[cmd.Player.Index()].Spirits += card.RewardOnKill(attacker, defender.Card)
		newState.Economy[OwnerOf(defender.OwnedByPlayer1).Index()].Pawns++
	}
	grantActionSpirit(&newState, cmd.Player)

	events := []Event{{
		Type: EvtTroopAttacked, Player: cmd.Player,
		StartX: cmd.StartX, StartY: cmd.StartY, EndX: cmd.EndX, EndY: cmd.EndY,
		Killed: killed,
	}}
	return events, newState, nil
}

func applySpawn(s State, cmd Command) ([]Event, State, error) {
	if !inBounds(cmd.EndX, cmd.EndY) {
		return nil, s, ErrOutOfBounds
	}
	if s.Board[cmd.EndY][cmd.EndX] != nil {
		return nil, s, ErrCellOccupied
	}
	econ := s.Economy[cmd.Player.Index()]
	if econ.Pawns < 1 {
		return nil, s, ErrNoPawns
	}
	if econ.Spirits < cmd.Card.Cost {
		return nil, s, ErrNotEnoughSpirits
	}

	newState := s.Clone()
	e := card.NewEntity(cmd.Card, cmd.EndX, cmd.EndY, cmd.Player == Player1)
	newState.Board[cmd.EndY][cmd.EndX] = e
	newState.Economy[cmd.Player.Index()].Pawns--
	newState.Economy[cmd.Player.Index()].Spirits -= cmd.Card.Cost
	grantActionSpirit(&newState, cmd.Player)

	events := []Event{{
		Type: EvtTroopSpawned, Player: cmd.Player,
		EndX: cmd.EndX, EndY: cmd.EndY, Entity: e.Copy(),
	}}
	return events, newState, nil
}

func applyEndTurn(s State, cmd Command) ([]Event, State, error) {
	newState := s.Clone()
	next := cmd.Player.Other()
	newState.Active = next

	// Every entity resets, not only the next player's.
	for _, e := range newState.Board.Entities() {
		card.ResetForNewTurn(e)
	}
	if !newState.Rules.SpiritPerAction {
		newState.Economy[next.Index()].Spirits++
	}

	return []Event{{Type: EvtTurnStarted, Player: next}}, newState, nil
}

func applyWinGame(s State, cmd Command) ([]Event, State, error) {
	x, y := cmd.EndX, cmd.EndY
	if !inBounds(x, y) {
		return nil, s, ErrOutOfBounds
	}
	e := s.Board[y][x]
	if e == nil {
		return nil, s, ErrCellEmpty
	}
	if OwnerOf(e.OwnedByPlayer1) != cmd.Player {
		return nil, s, ErrNotOwner
	}
	if y != 0 && y != Rows-1 {
		return nil, s, ErrNotWinRow
	}
	if e.Stunned() {
		return nil, s, ErrStunned
	}
	if e.HasMoved {
		return nil, s, ErrAlreadyActed
	}
	return finish(s, cmd.Player)
}

func finish(s State, winner Player) ([]Event, State, error) {
	newState := s.Clone()
	newState.Phase = PhaseFinished
	newState.Winner = winner
	return []Event{{Type: EvtGameEnded, Player: winner}}, newState, nil
}

func canMove(s State, cmd Command) error {
	e := s.Board[cmd.StartY][cmd.StartX]
	if e == nil {
		return ErrCellEmpty
	}
	if OwnerOf(e.OwnedByPlayer1) != cmd.Player {
		return ErrNotOwner
	}
	if s.Board[cmd.EndY][cmd.EndX] != nil {
		return ErrCellOccupied
	}
	if e.HasMoved || e.HasAttacked {
		return ErrAlreadyActed
	}
	if e.Stunned() {
		return ErrStunned
	}
	if s.Rules.EnforceRange && !withinReach(cmd) {
		return ErrOutOfRange
	}
	return nil
}

func canAttack(s State, cmd Command) error {
	attacker := s.Board[cmd.StartY][cmd.StartX]
	if attacker == nil {
		return ErrCellEmpty
	}
	if OwnerOf(attacker.OwnedByPlayer1) != cmd.Player {
		return ErrNotOwner
	}
	if attacker.HasAttacked {
		return ErrAlreadyActed
	}
	if attacker.Stunned() {
		return ErrStunned
	}
	defender := s.Board[cmd.EndY][cmd.EndX]
	if defender == nil {
		return ErrCellEmpty
	}
	if OwnerOf(defender.OwnedByPlayer1) == cmd.Player {
		return ErrNotOpponent
	}
	if s.Rules.EnforceRange && !withinReach(cmd) {
		return ErrOutOfRange
	}
	return nil
}

func grantActionSpirit(s *State, p Player) {
	if s.Rules.SpiritPerAction {
		s.Economy[p.Index()].Spirits++
	}
}
