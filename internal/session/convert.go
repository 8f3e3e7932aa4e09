package session

import (
	"github.com/DoyleJ11/tactics-server/internal/engine"
	"github.com/DoyleJ11/tactics-server/internal/protocol"
)

// toEngineCommand maps a client message onto a canonical engine command.
// Player 2's coordinates arrive rotated and are turned back here.
func toEngineCommand(p engine.Player, m protocol.ClientMessage) (engine.Command, bool) {
	switch m := m.(type) {
	case protocol.PlayerInfo:
		return engine.Command{Type: engine.CmdPlayerInfo, Player: p, Username: m.Username, Deck: m.Deck}, true
	case protocol.MoveTroop:
		sx, sy := p.View(m.StartX, m.StartY)
		ex, ey := p.View(m.EndX, m.EndY)
		return engine.Command{Type: engine.CmdMoveTroop, Player: p, StartX: sx, StartY: sy, EndX: ex, EndY: ey}, true
	case protocol.AttackTroop:
		sx, sy := p.View(m.StartX, m.StartY)
		ex, ey := p.View(m.EndX, m.EndY)
		return engine.Command{Type: engine.CmdAttackTroop, Player: p, StartX: sx, StartY: sy, EndX: ex, EndY: ey}, true
	case protocol.SpawnCard:
		x, y := p.View(m.X, m.Y)
		return engine.Command{Type: engine.CmdSpawnCard, Player: p, Card: m.Card, EndX: x, EndY: y}, true
	case protocol.WinGame:
		x, y := p.View(m.X, m.Y)
		return engine.Command{Type: engine.CmdWinGame, Player: p, EndX: x, EndY: y}, true
	case protocol.EndTurn:
		return engine.Command{Type: engine.CmdEndTurn, Player: p}, true
	case protocol.Resign:
		return engine.Command{Type: engine.CmdResign, Player: p}, true
	default:
		return engine.Command{}, false
	}
}

// toServerMessages renders one engine event for a single player, in that
// player's orientation.
func toServerMessages(p engine.Player, ev engine.Event) []protocol.ServerMessage {
	switch ev.Type {
	case engine.EvtGameStarted:
		if p == engine.FirstPlayer {
			return []protocol.ServerMessage{protocol.StartGame{IsPlayer1: true}, protocol.StartTurn{}}
		}
		return []protocol.ServerMessage{protocol.StartGame{IsPlayer1: p == engine.Player1}}

	case engine.EvtTroopSpawned:
		e := ev.Entity.Copy()
		e.X, e.Y = p.View(e.X, e.Y)
		return []protocol.ServerMessage{protocol.SpawnEntity{Entity: *e}}

	case engine.EvtTroopMoved:
		sx, sy := p.View(ev.StartX, ev.StartY)
		ex, ey := p.View(ev.EndX, ev.EndY)
		return []protocol.ServerMessage{protocol.MoveTroop{StartX: sx, StartY: sy, EndX: ex, EndY: ey}}

	case engine.EvtTroopAttacked:
		sx, sy := p.View(ev.StartX, ev.StartY)
		ex, ey := p.View(ev.EndX, ev.EndY)
		return []protocol.ServerMessage{protocol.AttackTroop{StartX: sx, StartY: sy, EndX: ex, EndY: ey}}

	case engine.EvtTurnStarted:
		if ev.Player == p {
			return []protocol.ServerMessage{protocol.StartTurn{}}
		}

	case engine.EvtGameEnded:
		if ev.Player.Valid() {
			return []protocol.ServerMessage{protocol.EndGame{Won: ev.Player == p}}
		}
	}
	return nil
}
