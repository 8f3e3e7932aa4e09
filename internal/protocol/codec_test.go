package protocol

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DoyleJ11/tactics-server/internal/card"
)

func rawFrame(payload []byte) []byte {
	frame := make([]byte, LengthPrefixSize, LengthPrefixSize+len(payload))
	binary.BigEndian.PutUint32(frame, uint32(len(payload)))
	return append(frame, payload...)
}

func TestClientMessages_RoundTrip(t *testing.T) {
	catalog := card.Catalog()
	msgs := []ClientMessage{
		PlayerInfo{Username: "A", Deck: []card.Card{catalog["skeleton"], catalog["golem"]}},
		MoveTroop{StartX: 1, StartY: 7, EndX: 1, EndY: 6},
		AttackTroop{StartX: 0, StartY: 0, EndX: 4, EndY: 8},
		SpawnCard{Card: catalog["berserker"], X: 2, Y: 8},
		EndTurn{},
		WinGame{X: 3, Y: 0},
		ChatMessage{Text: "gl hf"},
		Resign{},
	}

	var stream bytes.Buffer
	for _, m := range msgs {
		require.NoError(t, WriteMessage(&stream, m))
	}

	for _, want := range msgs {
		got, err := ReadClientMessage(&stream, DefaultMaxFrame)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ReadClientMessage(&stream, DefaultMaxFrame)
	assert.ErrorIs(t, err, io.EOF)
}

func TestServerMessages_RoundTrip(t *testing.T) {
	e := card.NewEntity(card.Catalog()["reaper"], 2, 0, false)
	e.StunCount = 1
	msgs := []ServerMessage{
		StartGame{IsPlayer1: true},
		StartGame{IsPlayer1: false},
		StartTurn{},
		SpawnEntity{Entity: *e},
		MoveTroop{StartX: 4, StartY: 8, EndX: 3, EndY: 7},
		AttackTroop{StartX: 1, StartY: 1, EndX: 1, EndY: 2},
		EndGame{Won: true},
		ChatMessage{Text: "A: hi"},
	}

	for _, want := range msgs {
		frame, err := Encode(want)
		require.NoError(t, err)
		got, err := ReadServerMessage(bytes.NewReader(frame), DefaultMaxFrame)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestEncode_LengthPrefix(t *testing.T) {
	frame, err := Encode(StartTurn{})
	require.NoError(t, err)

	payload := frame[LengthPrefixSize:]
	assert.Equal(t, uint32(len(payload)), binary.BigEndian.Uint32(frame[:LengthPrefixSize]))
	assert.JSONEq(t, `{"type":"StartTurn"}`, string(payload))
}

func TestReadFrame_Truncated(t *testing.T) {
	full, err := Encode(ChatMessage{Text: "hello"})
	require.NoError(t, err)

	cases := map[string][]byte{
		"partial prefix":  full[:2],
		"partial payload": full[:len(full)-3],
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ReadFrame(bytes.NewReader(data), DefaultMaxFrame)
			assert.ErrorIs(t, err, ErrFraming)
		})
	}
}

func TestReadFrame_OverLimit(t *testing.T) {
	var prefix [LengthPrefixSize]byte
	binary.BigEndian.PutUint32(prefix[:], 1<<30)

	_, err := ReadFrame(bytes.NewReader(prefix[:]), DefaultMaxFrame)
	assert.ErrorIs(t, err, ErrFraming)
}

func TestReadClientMessage_DecodeErrorKeepsStream(t *testing.T) {
	bad := [][]byte{
		[]byte(`not json`),
		{0xff, 0xfe, 0xfd},
		[]byte(`{"type":"Teleport","data":{}}`),
		[]byte(`{"type":"MoveTroop"}`),
		[]byte(`{"type":"SpawnCard","data":{"card":{"name":"x","type":"Dragon"},"x":0,"y":0}}`),
	}

	var stream bytes.Buffer
	for _, p := range bad {
		stream.Write(rawFrame(p))
	}
	require.NoError(t, WriteMessage(&stream, EndTurn{}))

	for range bad {
		_, err := ReadClientMessage(&stream, DefaultMaxFrame)
		assert.ErrorIs(t, err, ErrDecode)
	}

	m, err := ReadClientMessage(&stream, DefaultMaxFrame)
	require.NoError(t, err)
	assert.Equal(t, EndTurn{}, m)
}

func TestDecodeServer_RejectsClientOnlyTypes(t *testing.T) {
	payload, err := Marshal(Resign{})
	require.NoError(t, err)

	_, err = DecodeServer(payload)
	assert.ErrorIs(t, err, ErrDecode)
}
