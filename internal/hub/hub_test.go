package hub

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/DoyleJ11/tactics-server/internal/card"
	"github.com/DoyleJ11/tactics-server/internal/client"
	"github.com/DoyleJ11/tactics-server/internal/engine"
	"github.com/DoyleJ11/tactics-server/internal/protocol"
	"github.com/DoyleJ11/tactics-server/internal/session"
)

type fakePlayer struct {
	id     string
	events chan client.Event
	done   chan struct{}
	once   sync.Once
}

func newFakePlayer(id string) *fakePlayer {
	return &fakePlayer{id: id, events: make(chan client.Event, 4), done: make(chan struct{})}
}

func (f *fakePlayer) ID() string                        { return f.id }
func (f *fakePlayer) Events() <-chan client.Event       { return f.events }
func (f *fakePlayer) Send(protocol.ServerMessage) error { return nil }
func (f *fakePlayer) Done() <-chan struct{}             { return f.done }

func (f *fakePlayer) Close() error {
	f.once.Do(func() { close(f.done) })
	return nil
}

func (f *fakePlayer) closed() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

func newTestHub(t *testing.T) *Hub {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return NewHub(ctx, Options{Logger: zap.NewNop()})
}

func pendingID(t *testing.T, h *Hub) string {
	t.Helper()
	reply := make(chan string, 1)
	h.Inbox() <- GetPending{Reply: reply}
	select {
	case id := <-reply:
		return id
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for pending id")
		return ""
	}
}

func listSessions(t *testing.T, h *Hub) []session.Summary {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	out, err := h.Sessions(ctx)
	require.NoError(t, err)
	return out
}

func TestHub_PairsInArrivalOrder(t *testing.T) {
	h := newTestHub(t)

	a, b, c := newFakePlayer("a"), newFakePlayer("b"), newFakePlayer("c")
	require.True(t, h.Arrive(a))
	assert.Equal(t, "a", pendingID(t, h))
	assert.Empty(t, listSessions(t, h))

	require.True(t, h.Arrive(b))
	assert.Equal(t, "", pendingID(t, h))

	sessions := listSessions(t, h)
	require.Len(t, sessions, 1)
	assert.Equal(t, engine.PhaseAwaitingDecks, sessions[0].Phase)

	// odd one out waits
	require.True(t, h.Arrive(c))
	assert.Equal(t, "c", pendingID(t, h))
	assert.Len(t, listSessions(t, h), 1)
}

func TestHub_DropsPendingPlayerThatLeft(t *testing.T) {
	h := newTestHub(t)

	a := newFakePlayer("a")
	h.Arrive(a)
	require.Equal(t, "a", pendingID(t, h))

	_ = a.Close()
	require.Eventually(t, func() bool { return pendingID(t, h) == "" }, time.Second, 5*time.Millisecond)

	// the next two arrivals pair with each other, not with the ghost
	b, c := newFakePlayer("b"), newFakePlayer("c")
	h.Arrive(b)
	h.Arrive(c)
	assert.Len(t, listSessions(t, h), 1)
}

func TestHub_NeverPairsWithDeadPendingPlayer(t *testing.T) {
	// Both arrivals are queued before the hub can see the first one is gone,
	// so loop over a few runs to cover either select order.
	for i := range 50 {
		h := newTestHub(t)

		dead, live := newFakePlayer("dead"), newFakePlayer("live")
		_ = dead.Close()

		h.Inbox() <- Arrive{Player: dead}
		h.Inbox() <- Arrive{Player: live}

		require.Equal(t, "live", pendingID(t, h), "run %d", i)
		assert.Empty(t, listSessions(t, h), "run %d", i)
		assert.False(t, live.closed(), "run %d", i)
	}
}

func TestHub_RemovesFinishedSessions(t *testing.T) {
	h := newTestHub(t)

	a, b := newFakePlayer("a"), newFakePlayer("b")
	h.Arrive(a)
	h.Arrive(b)
	require.Len(t, listSessions(t, h), 1)

	// a disconnect before decks arrive ends the session
	close(a.events)
	require.Eventually(t, func() bool { return len(listSessions(t, h)) == 0 }, time.Second, 5*time.Millisecond)
	assert.True(t, a.closed())
	assert.True(t, b.closed())
}

func TestHub_ShutdownClosesEveryone(t *testing.T) {
	h := newTestHub(t)

	a, b, c := newFakePlayer("a"), newFakePlayer("b"), newFakePlayer("c")
	h.Arrive(a)
	h.Arrive(b)
	h.Arrive(c)
	require.Equal(t, "c", pendingID(t, h))

	h.Inbox() <- ShutdownHub{}
	select {
	case <-h.Done():
	case <-time.After(time.Second):
		t.Fatalf("hub did not stop")
	}

	assert.True(t, c.closed())
	assert.Eventually(t, func() bool { return a.closed() && b.closed() }, time.Second, 5*time.Millisecond)

	d := newFakePlayer("d")
	assert.False(t, h.Arrive(d))
	assert.True(t, d.closed())
}

// Two real clients over in-memory pipes, through pairing and the first turn.
func TestHub_EndToEndOverPipes(t *testing.T) {
	h := newTestHub(t)

	type peer struct {
		conn net.Conn
		in   chan protocol.ServerMessage
	}
	connect := func() peer {
		server, remote := net.Pipe()
		c := client.New(server, protocol.DefaultMaxFrame, zap.NewNop())
		t.Cleanup(func() {
			_ = c.Close()
			_ = remote.Close()
		})
		p := peer{conn: remote, in: make(chan protocol.ServerMessage, 16)}
		go func() {
			for {
				m, err := protocol.ReadServerMessage(remote, protocol.DefaultMaxFrame)
				if err != nil {
					return
				}
				p.in <- m
			}
		}()
		require.True(t, h.Arrive(c))
		return p
	}
	recv := func(p peer) protocol.ServerMessage {
		t.Helper()
		select {
		case m := <-p.in:
			return m
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for server message")
			return nil
		}
	}

	a, b := connect(), connect()
	deck := []card.Card{card.Catalog()["skeleton"]}
	require.NoError(t, protocol.WriteMessage(a.conn, protocol.PlayerInfo{Username: "A", Deck: deck}))
	require.NoError(t, protocol.WriteMessage(b.conn, protocol.PlayerInfo{Username: "B", Deck: deck}))

	assert.Equal(t, protocol.StartGame{IsPlayer1: true}, recv(a))
	assert.Equal(t, protocol.StartTurn{}, recv(a))
	assert.Equal(t, protocol.StartGame{IsPlayer1: false}, recv(b))

	require.NoError(t, protocol.WriteMessage(a.conn, protocol.SpawnCard{Card: deck[0], X: 2, Y: 8}))
	sa := recv(a).(protocol.SpawnEntity)
	sb := recv(b).(protocol.SpawnEntity)
	assert.Equal(t, [2]int{2, 8}, [2]int{sa.Entity.X, sa.Entity.Y})
	assert.Equal(t, [2]int{2, 0}, [2]int{sb.Entity.X, sb.Entity.Y})

	require.NoError(t, protocol.WriteMessage(a.conn, protocol.ChatMessage{Text: "gg"}))
	assert.Equal(t, protocol.ChatMessage{Text: "A: gg"}, recv(a))
	assert.Equal(t, protocol.ChatMessage{Text: "A: gg"}, recv(b))

	// B hangs up; A wins
	_ = b.conn.Close()
	assert.Equal(t, protocol.EndGame{Won: true}, recv(a))
}
