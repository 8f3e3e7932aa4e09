package client

import (
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/DoyleJ11/tactics-server/internal/protocol"
)

const (
	inboxSize    = 64
	writeTimeout = 5 * time.Second
)

type Event interface{ isClientEvent() }

type Message struct {
	Msg protocol.ClientMessage
}

func (Message) isClientEvent() {}

// Disconnected is the last event a client produces; the channel is closed
// right after it.
type Disconnected struct {
	Err error
}

func (Disconnected) isClientEvent() {}

// Client owns one connection: a reader goroutine turns frames into an
// ordered event stream, and Send writes whole frames under a lock.
type Client struct {
	id       string
	conn     net.Conn
	maxFrame uint32
	log      *zap.Logger

	events chan Event
	done   chan struct{}
	quit   chan struct{}

	writeMu   sync.Mutex
	closeOnce sync.Once
}

func New(conn net.Conn, maxFrame uint32, log *zap.Logger) *Client {
	id := uuid.NewString()
	c := &Client{
		id:       id,
		conn:     conn,
		maxFrame: maxFrame,
		log:      log.With(zap.String("client_id", id), zap.Stringer("remote", conn.RemoteAddr())),
		events:   make(chan Event, inboxSize),
		done:     make(chan struct{}),
		quit:     make(chan struct{}),
	}
	go c.readLoop()
	return c
}

func (c *Client) ID() string { return c.id }

// Events yields messages in the order the peer sent them.
func (c *Client) Events() <-chan Event { return c.events }

// Done is closed once the reader has stopped.
func (c *Client) Done() <-chan struct{} { return c.done }

func (c *Client) Send(m protocol.ServerMessage) error {
	frame, err := protocol.Encode(m)
	if err != nil {
		return err
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if err := c.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return fmt.Errorf("send %s: %w", protocol.TypeOf(m), err)
	}
	if _, err := c.conn.Write(frame); err != nil {
		return fmt.Errorf("send %s: %w", protocol.TypeOf(m), err)
	}
	return nil
}

func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.quit)
		err = c.conn.Close()
	})
	return err
}

func (c *Client) readLoop() {
	defer close(c.done)
	defer close(c.events)

	for {
		msg, err := protocol.ReadClientMessage(c.conn, c.maxFrame)
		if err != nil {
			if errors.Is(err, protocol.ErrDecode) {
				c.log.Warn("dropping undecodable frame", zap.Error(err))
				continue
			}
			if errors.Is(err, io.EOF) {
				c.log.Debug("peer closed connection")
			} else {
				c.log.Info("connection lost", zap.Error(err))
			}
			c.push(Disconnected{Err: err})
			return
		}
		if !c.push(Message{Msg: msg}) {
			return
		}
	}
}

func (c *Client) push(ev Event) bool {
	select {
	case c.events <- ev:
		return true
	case <-c.quit:
		return false
	}
}
