package protocol

import "github.com/DoyleJ11/tactics-server/internal/card"

type Message interface{ messageType() string }

type ClientMessage interface {
	Message
	isClientMessage()
}

type ServerMessage interface {
	Message
	isServerMessage()
}

const (
	TypePlayerInfo  = "PlayerInfo"
	TypeMoveTroop   = "MoveTroop"
	TypeAttackTroop = "AttackTroop"
	TypeSpawnCard   = "SpawnCard"
	TypeEndTurn     = "EndTurn"
	TypeWinGame     = "WinGame"
	TypeChatMessage = "ChatMessage"
	TypeResign      = "Resign"
	TypeStartGame   = "StartGame"
	TypeStartTurn   = "StartTurn"
	TypeEndGame     = "EndGame"
)

// Client -> Server

type PlayerInfo struct {
	Username string      `json:"username"`
	Deck     []card.Card `json:"deck"`
}

type SpawnCard struct {
	Card card.Card `json:"card"`
	X    int       `json:"x"`
	Y    int       `json:"y"`
}

type EndTurn struct{}

type WinGame struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type Resign struct{}

// Both directions

type MoveTroop struct {
	StartX int `json:"startX"`
	StartY int `json:"startY"`
	EndX   int `json:"endX"`
	EndY   int `json:"endY"`
}

type AttackTroop struct {
	StartX int `json:"startX"`
	StartY int `json:"startY"`
	EndX   int `json:"endX"`
	EndY   int `json:"endY"`
}

type ChatMessage struct {
	Text string `json:"text"`
}

// Server -> Client

type StartGame struct {
	IsPlayer1 bool `json:"isPlayer1"`
}

type StartTurn struct{}

// SpawnEntity travels as "SpawnCard"; it carries the placed entity rather
// than the card the client asked for.
type SpawnEntity struct {
	Entity card.Entity `json:"entity"`
}

type EndGame struct {
	Won bool `json:"won"`
}

func (PlayerInfo) messageType() string  { return TypePlayerInfo }
func (SpawnCard) messageType() string   { return TypeSpawnCard }
func (EndTurn) messageType() string     { return TypeEndTurn }
func (WinGame) messageType() string     { return TypeWinGame }
func (Resign) messageType() string      { return TypeResign }
func (MoveTroop) messageType() string   { return TypeMoveTroop }
func (AttackTroop) messageType() string { return TypeAttackTroop }
func (ChatMessage) messageType() string { return TypeChatMessage }
func (StartGame) messageType() string   { return TypeStartGame }
func (StartTurn) messageType() string   { return TypeStartTurn }
func (SpawnEntity) messageType() string { return TypeSpawnCard }
func (EndGame) messageType() string     { return TypeEndGame }

func (PlayerInfo) isClientMessage()  {}
func (SpawnCard) isClientMessage()   {}
func (EndTurn) isClientMessage()     {}
func (WinGame) isClientMessage()     {}
func (Resign) isClientMessage()      {}
func (MoveTroop) isClientMessage()   {}
func (AttackTroop) isClientMessage() {}
func (ChatMessage) isClientMessage() {}

func (MoveTroop) isServerMessage()   {}
func (AttackTroop) isServerMessage() {}
func (ChatMessage) isServerMessage() {}
func (StartGame) isServerMessage()   {}
func (StartTurn) isServerMessage()   {}
func (SpawnEntity) isServerMessage() {}
func (EndGame) isServerMessage()     {}

// TypeOf names a message the way it appears on the wire.
func TypeOf(m Message) string { return m.messageType() }
