// Package protocol is the wire format shared by the session server and its
// clients: every message is a frame of a 4-byte big-endian length followed by
// that many bytes of UTF-8 JSON.
//
// Payloads are an envelope {"type": <variant>, "data": <fields>}; variants
// without fields omit "data". Board coordinates are always relative to the
// receiving player.
//
// Client -> Server
//
//	PlayerInfo:  username: string, deck: Card[]
//	MoveTroop:   startX, startY, endX, endY: number
//	AttackTroop: startX, startY, endX, endY: number
//	SpawnCard:   card: Card, x: number, y: number
//	EndTurn:     {}
//	WinGame:     x: number, y: number
//	ChatMessage: text: string
//	Resign:      {}
//
// Server -> Client
//
//	StartGame:   isPlayer1: boolean
//	StartTurn:   {}
//	SpawnCard:   entity: CardEntity
//	MoveTroop:   startX, startY, endX, endY: number
//	AttackTroop: startX, startY, endX, endY: number
//	EndGame:     won: boolean
//	ChatMessage: text: string
package protocol
