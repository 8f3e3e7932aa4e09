package session

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/DoyleJ11/tactics-server/internal/chat"
	"github.com/DoyleJ11/tactics-server/internal/client"
	"github.com/DoyleJ11/tactics-server/internal/engine"
	"github.com/DoyleJ11/tactics-server/internal/protocol"
)

// Conn is the session's view of one connected player.
type Conn interface {
	ID() string
	Events() <-chan client.Event
	Send(protocol.ServerMessage) error
	Close() error
}

// MaxBacklog bounds the actions a waiting player can queue for their turn.
const MaxBacklog = 64

type Msg interface{ isSessionMsg() }

type GetState struct {
	Reply chan View
}

func (GetState) isSessionMsg() {}

type Shutdown struct{}

func (Shutdown) isSessionMsg() {}

type View struct {
	Summary Summary
	State   engine.State
	Backlog [2]int
}

type Summary struct {
	ID        string       `json:"id"`
	Phase     engine.Phase `json:"phase"`
	Active    int          `json:"active_player"`
	Usernames [2]string    `json:"usernames"`
}

type Options struct {
	Rules  engine.Rules
	Censor chat.Censor
	Logger *zap.Logger
	// OnDone runs on the session goroutine after both connections close.
	OnDone func(id string)
}

// Session runs one match. Its goroutine is the only owner of the game
// state; the players' event channels are the only way in.
type Session struct {
	id      string
	inbox   chan Msg
	players [2]Conn
	events  [2]<-chan client.Event
	backlog [2][]protocol.ClientMessage
	state   engine.State
	censor  chat.Censor
	onDone  func(string)
	log     *zap.Logger
	summary atomic.Pointer[Summary]
	done    chan struct{}
	ctx     context.Context
	cancel  context.CancelFunc
}

func New(parent context.Context, p1, p2 Conn, opts Options) *Session {
	ctx, cancel := context.WithCancel(parent)
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	id := uuid.NewString()

	s := &Session{
		id:      id,
		inbox:   make(chan Msg, 8),
		players: [2]Conn{p1, p2},
		events:  [2]<-chan client.Event{p1.Events(), p2.Events()},
		state:   engine.NewState(opts.Rules),
		censor:  opts.Censor,
		onDone:  opts.OnDone,
		log:     log.Named("session").With(zap.String("session_id", id)),
		done:    make(chan struct{}),
		ctx:     ctx,
		cancel:  cancel,
	}
	s.publish()

	s.log.Info("session created",
		zap.String("player1", p1.ID()),
		zap.String("player2", p2.ID()),
	)
	go s.loop()
	return s
}

func (s *Session) ID() string { return s.id }

// Expose the inbox so tests or the hub can send messages.
func (s *Session) Inbox() chan<- Msg { return s.inbox }

func (s *Session) Done() <-chan struct{} { return s.done }

// Summary is safe to call from any goroutine.
func (s *Session) Summary() Summary { return *s.summary.Load() }

func (s *Session) loop() {
	defer s.shutdown()

	for {
		// Messages the new active player sent while waiting go first.
		s.drainBacklog()
		if s.state.Phase == engine.PhaseFinished {
			return
		}

		select {
		case <-s.ctx.Done():
			return

		case m := <-s.inbox:
			switch msg := m.(type) {
			case GetState:
				// test-only: reflect internal state without data races
				msg.Reply <- View{
					Summary: s.Summary(),
					State:   s.state.Clone(),
					Backlog: [2]int{len(s.backlog[0]), len(s.backlog[1])},
				}
			case Shutdown:
				return
			}

		case ev, ok := <-s.events[0]:
			s.handle(engine.Player1, ev, ok)

		case ev, ok := <-s.events[1]:
			s.handle(engine.Player2, ev, ok)
		}
	}
}

func (s *Session) handle(p engine.Player, ev client.Event, ok bool) {
	if !ok {
		ev = client.Disconnected{}
	}

	switch ev := ev.(type) {
	case client.Disconnected:
		// A nil channel drops out of the select.
		s.events[p.Index()] = nil
		s.log.Info("player disconnected", zap.Stringer("player", p), zap.Error(ev.Err))
		s.apply(engine.Command{Type: engine.CmdDisconnect, Player: p})

	case client.Message:
		s.route(p, ev.Msg)
	}
}

func (s *Session) route(p engine.Player, m protocol.ClientMessage) {
	if s.state.Phase == engine.PhaseAwaitingDecks {
		if _, ok := m.(protocol.PlayerInfo); !ok {
			s.log.Debug("dropping message before game start",
				zap.Stringer("player", p), zap.String("type", protocol.TypeOf(m)))
			return
		}
		s.applyMessage(p, m)
		return
	}

	switch m := m.(type) {
	case protocol.ChatMessage:
		// Chat flows regardless of whose turn it is.
		s.relayChat(p, m.Text)
	case protocol.Resign:
		s.applyMessage(p, m)
	default:
		if p != s.state.Active {
			if len(s.backlog[p.Index()]) >= MaxBacklog {
				s.log.Debug("backlog full, dropping message",
					zap.Stringer("player", p), zap.String("type", protocol.TypeOf(m)))
				return
			}
			s.backlog[p.Index()] = append(s.backlog[p.Index()], m)
			return
		}
		s.applyMessage(p, m)
	}
}

func (s *Session) drainBacklog() {
	for s.state.Phase == engine.PhaseActive {
		i := s.state.Active.Index()
		if len(s.backlog[i]) == 0 {
			return
		}
		m := s.backlog[i][0]
		s.backlog[i] = s.backlog[i][1:]
		s.applyMessage(s.state.Active, m)
	}
}

func (s *Session) applyMessage(p engine.Player, m protocol.ClientMessage) {
	cmd, ok := toEngineCommand(p, m)
	if !ok {
		s.log.Debug("unsupported message", zap.Stringer("player", p), zap.String("type", protocol.TypeOf(m)))
		return
	}
	s.apply(cmd)
}

func (s *Session) apply(cmd engine.Command) {
	events, next, err := engine.Apply(s.state, cmd)
	if err != nil {
		if errors.Is(err, engine.ErrRejected) {
			s.log.Debug("command rejected",
				zap.Stringer("player", cmd.Player),
				zap.String("command", string(cmd.Type)),
				zap.Error(err),
			)
			return
		}
		s.log.Error("apply failed", zap.String("command", string(cmd.Type)), zap.Error(err))
		return
	}

	s.state = next
	s.publish()
	for _, ev := range events {
		s.dispatch(ev)
	}
}

func (s *Session) dispatch(ev engine.Event) {
	switch ev.Type {
	case engine.EvtPlayerJoined:
		s.log.Info("player joined", zap.Stringer("player", ev.Player), zap.String("username", s.state.Username(ev.Player)))
	case engine.EvtGameStarted:
		s.log.Info("game started")
	case engine.EvtGameEnded:
		s.log.Info("game ended", zap.Stringer("winner", ev.Player))
	}

	for _, p := range []engine.Player{engine.Player1, engine.Player2} {
		for _, m := range toServerMessages(p, ev) {
			s.send(p, m)
		}
	}
}

func (s *Session) relayChat(p engine.Player, text string) {
	line, err := chat.Format(s.censor, s.state.Username(p), text)
	if err != nil {
		s.log.Debug("chat rejected", zap.Stringer("player", p), zap.Error(err))
		return
	}
	s.send(engine.Player1, protocol.ChatMessage{Text: line})
	s.send(engine.Player2, protocol.ChatMessage{Text: line})
}

func (s *Session) send(p engine.Player, m protocol.ServerMessage) {
	if err := s.players[p.Index()].Send(m); err != nil {
		s.log.Warn("send failed", zap.Stringer("player", p), zap.Error(err))
	}
}

func (s *Session) publish() {
	sum := Summary{
		ID:        s.id,
		Phase:     s.state.Phase,
		Usernames: s.state.Usernames,
	}
	if s.state.Phase == engine.PhaseActive {
		sum.Active = int(s.state.Active)
	}
	s.summary.Store(&sum)
}

func (s *Session) shutdown() {
	var err error
	for _, p := range s.players {
		err = multierr.Append(err, p.Close())
	}
	if err != nil {
		s.log.Debug("closing connections", zap.Error(err))
	}
	s.cancel()
	close(s.done)
	s.log.Info("session closed", zap.String("phase", string(s.state.Phase)))

	if s.onDone != nil {
		s.onDone(s.id)
	}
}
