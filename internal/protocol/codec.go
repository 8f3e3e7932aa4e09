package protocol

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"
)

var (
	ErrFraming = errors.New("framing error")
	ErrDecode  = errors.New("decode error")
)

const (
	LengthPrefixSize = 4
	DefaultMaxFrame  = 1 << 20
)

type envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Marshal serializes m into its envelope, without the length prefix.
func Marshal(m Message) ([]byte, error) {
	env := envelope{Type: m.messageType()}
	switch m.(type) {
	case EndTurn, Resign, StartTurn:
	default:
		data, err := json.Marshal(m)
		if err != nil {
			return nil, fmt.Errorf("marshal %s: %w", env.Type, err)
		}
		env.Data = data
	}
	return json.Marshal(env)
}

// Encode returns the full frame for m.
func Encode(m Message) ([]byte, error) {
	payload, err := Marshal(m)
	if err != nil {
		return nil, err
	}
	frame := make([]byte, LengthPrefixSize, LengthPrefixSize+len(payload))
	binary.BigEndian.PutUint32(frame, uint32(len(payload)))
	return append(frame, payload...), nil
}

// WriteMessage frames m and writes it with a single Write call.
func WriteMessage(w io.Writer, m Message) error {
	frame, err := Encode(m)
	if err != nil {
		return err
	}
	_, err = w.Write(frame)
	return err
}

// ReadFrame reads one length-prefixed payload. A stream that ends cleanly
// between frames returns io.EOF; one that ends inside a frame, or declares
// a length above limit, returns ErrFraming.
func ReadFrame(r io.Reader, limit uint32) ([]byte, error) {
	var prefix [LengthPrefixSize]byte
	if _, err := io.ReadFull(r, prefix[:]); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("%w: length prefix: %w", ErrFraming, err)
	}

	n := binary.BigEndian.Uint32(prefix[:])
	if limit > 0 && n > limit {
		return nil, fmt.Errorf("%w: frame of %d bytes exceeds limit %d", ErrFraming, n, limit)
	}

	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, fmt.Errorf("%w: payload (%d bytes declared): %w", ErrFraming, n, err)
	}
	return payload, nil
}

// ReadClientMessage reads and decodes one frame. Errors wrapping ErrDecode
// leave the stream positioned at the next frame.
func ReadClientMessage(r io.Reader, limit uint32) (ClientMessage, error) {
	payload, err := ReadFrame(r, limit)
	if err != nil {
		return nil, err
	}
	return DecodeClient(payload)
}

func ReadServerMessage(r io.Reader, limit uint32) (ServerMessage, error) {
	payload, err := ReadFrame(r, limit)
	if err != nil {
		return nil, err
	}
	return DecodeServer(payload)
}

func DecodeClient(payload []byte) (ClientMessage, error) {
	env, err := openEnvelope(payload)
	if err != nil {
		return nil, err
	}

	switch env.Type {
	case TypePlayerInfo:
		m, err := decodeData[PlayerInfo](env)
		if err != nil {
			return nil, err
		}
		for _, c := range m.Deck {
			if err := c.Validate(); err != nil {
				return nil, fmt.Errorf("%w: %w", ErrDecode, err)
			}
		}
		return m, nil
	case TypeSpawnCard:
		m, err := decodeData[SpawnCard](env)
		if err != nil {
			return nil, err
		}
		if err := m.Card.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDecode, err)
		}
		return m, nil
	case TypeMoveTroop:
		return decodeData[MoveTroop](env)
	case TypeAttackTroop:
		return decodeData[AttackTroop](env)
	case TypeWinGame:
		return decodeData[WinGame](env)
	case TypeChatMessage:
		return decodeData[ChatMessage](env)
	case TypeEndTurn:
		return EndTurn{}, nil
	case TypeResign:
		return Resign{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown client message type %q", ErrDecode, env.Type)
	}
}

func DecodeServer(payload []byte) (ServerMessage, error) {
	env, err := openEnvelope(payload)
	if err != nil {
		return nil, err
	}

	switch env.Type {
	case TypeStartGame:
		return decodeData[StartGame](env)
	case TypeStartTurn:
		return StartTurn{}, nil
	case TypeSpawnCard:
		return decodeData[SpawnEntity](env)
	case TypeMoveTroop:
		return decodeData[MoveTroop](env)
	case TypeAttackTroop:
		return decodeData[AttackTroop](env)
	case TypeEndGame:
		return decodeData[EndGame](env)
	case TypeChatMessage:
		return decodeData[ChatMessage](env)
	default:
		return nil, fmt.Errorf("%w: unknown server message type %q", ErrDecode, env.Type)
	}
}

func openEnvelope(payload []byte) (envelope, error) {
	if !utf8.Valid(payload) {
		return envelope{}, fmt.Errorf("%w: payload is not valid UTF-8", ErrDecode)
	}
	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return envelope{}, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	if env.Type == "" {
		return envelope{}, fmt.Errorf("%w: missing message type", ErrDecode)
	}
	return env, nil
}

func decodeData[T any](env envelope) (T, error) {
	var m T
	if len(env.Data) == 0 {
		return m, fmt.Errorf("%w: %s without data", ErrDecode, env.Type)
	}
	dec := json.NewDecoder(bytes.NewReader(env.Data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&m); err != nil {
		return m, fmt.Errorf("%w: %s: %w", ErrDecode, env.Type, err)
	}
	return m, nil
}
