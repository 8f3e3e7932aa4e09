package hub

import (
	"cmp"
	"context"
	"slices"

	"go.uber.org/zap"

	"github.com/DoyleJ11/tactics-server/internal/chat"
	"github.com/DoyleJ11/tactics-server/internal/engine"
	"github.com/DoyleJ11/tactics-server/internal/session"
)

// Player is a connected client waiting to be matched. Done closes when its
// connection is gone.
type Player interface {
	session.Conn
	Done() <-chan struct{}
}

type HubMsg interface{ isHubMsg() }

// Arrive queues a freshly connected player for pairing.
type Arrive struct {
	Player Player
}

type ListSessions struct {
	Reply chan []session.Summary
}

type RemoveSession struct {
	ID string
}

type GetPending struct {
	Reply chan string // empty when nobody is waiting
}

type ShutdownHub struct{}

func (Arrive) isHubMsg()        {}
func (ListSessions) isHubMsg()  {}
func (RemoveSession) isHubMsg() {}
func (GetPending) isHubMsg()    {}
func (ShutdownHub) isHubMsg()   {}

type Options struct {
	Rules  engine.Rules
	Censor chat.Censor
	Logger *zap.Logger
}

// Hub pairs arriving players two at a time, first come first served, and
// keeps the registry of live sessions.
type Hub struct {
	inbox    chan HubMsg
	pending  Player
	sessions map[string]*session.Session
	opts     Options
	log      *zap.Logger
	done     chan struct{}
	ctx      context.Context
	cancel   context.CancelFunc
}

func NewHub(parent context.Context, opts Options) *Hub {
	ctx, cancel := context.WithCancel(parent)
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	h := &Hub{
		inbox:    make(chan HubMsg, 64),
		sessions: make(map[string]*session.Session),
		opts:     opts,
		log:      opts.Logger.Named("hub"),
		done:     make(chan struct{}),
		ctx:      ctx,
		cancel:   cancel,
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- HubMsg { return h.inbox }

func (h *Hub) Done() <-chan struct{} { return h.done }

// Arrive hands p to the matchmaker. It reports false, and closes p, when
// the hub has already stopped.
func (h *Hub) Arrive(p Player) bool {
	// The inbox is buffered, so check for shutdown first.
	if h.ctx.Err() != nil {
		_ = p.Close()
		return false
	}
	select {
	case h.inbox <- Arrive{Player: p}:
		return true
	case <-h.ctx.Done():
		_ = p.Close()
		return false
	}
}

// Sessions returns summaries of the live sessions ordered by id.
func (h *Hub) Sessions(ctx context.Context) ([]session.Summary, error) {
	reply := make(chan []session.Summary, 1)
	select {
	case h.inbox <- ListSessions{Reply: reply}:
	case <-h.ctx.Done():
		return nil, h.ctx.Err()
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case out := <-reply:
		return out, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (h *Hub) loop() {
	defer close(h.done)

	for {
		// A nil channel never fires, so with nobody waiting this case is off.
		var pendingGone <-chan struct{}
		if h.pending != nil {
			pendingGone = h.pending.Done()
		}

		select {
		case <-h.ctx.Done():
			h.shutdown()
			return

		case <-pendingGone:
			h.log.Info("waiting player left", zap.String("client_id", h.pending.ID()))
			h.pending = nil

		case m := <-h.inbox:
			switch msg := m.(type) {
			case Arrive:
				h.arrive(msg.Player)

			case ListSessions:
				out := make([]session.Summary, 0, len(h.sessions))
				for _, s := range h.sessions {
					out = append(out, s.Summary())
				}
				slices.SortFunc(out, func(a, b session.Summary) int { return cmp.Compare(a.ID, b.ID) })
				msg.Reply <- out

			case GetPending:
				var id string
				if h.pending != nil {
					id = h.pending.ID()
				}
				msg.Reply <- id

			case RemoveSession:
				delete(h.sessions, msg.ID)

			case ShutdownHub:
				h.shutdown()
				h.cancel()
				return
			}
		}
	}
}

func (h *Hub) arrive(p Player) {
	// The select in loop may pick this arrival before noticing the waiting
	// player left.
	if h.pending != nil {
		select {
		case <-h.pending.Done():
			h.log.Info("waiting player left", zap.String("client_id", h.pending.ID()))
			h.pending = nil
		default:
		}
	}

	if h.pending == nil {
		h.pending = p
		h.log.Info("player waiting for opponent", zap.String("client_id", p.ID()))
		return
	}

	// The first arrival is player 1.
	first := h.pending
	h.pending = nil

	s := session.New(h.ctx, first, p, session.Options{
		Rules:  h.opts.Rules,
		Censor: h.opts.Censor,
		Logger: h.opts.Logger,
		OnDone: h.removeLater,
	})
	h.sessions[s.ID()] = s
	h.log.Info("players paired",
		zap.String("session_id", s.ID()),
		zap.Int("live_sessions", len(h.sessions)),
	)
}

// removeLater runs on a session goroutine, so it must not block once the
// hub is gone.
func (h *Hub) removeLater(id string) {
	select {
	case h.inbox <- RemoveSession{ID: id}:
	case <-h.ctx.Done():
	}
}

func (h *Hub) shutdown() {
	if h.pending != nil {
		_ = h.pending.Close()
		h.pending = nil
	}
	for _, s := range h.sessions {
		select {
		case s.Inbox() <- session.Shutdown{}:
		case <-s.Done():
		}
	}
	clear(h.sessions)
	h.log.Info("hub stopped")
}
