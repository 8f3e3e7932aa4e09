package server

import (
	"context"
	"errors"
	"net"

	"go.uber.org/zap"

	"github.com/DoyleJ11/tactics-server/internal/client"
	"github.com/DoyleJ11/tactics-server/internal/hub"
)

// Server accepts raw TCP connections and hands each one to the hub.
type Server struct {
	hub      *hub.Hub
	maxFrame uint32
	log      *zap.Logger
}

func New(h *hub.Hub, maxFrame uint32, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{hub: h, maxFrame: maxFrame, log: log.Named("tcp")}
}

// ListenAndServe blocks until ctx is cancelled or the listener fails.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve owns ln and closes it on return. A cancelled ctx is a clean stop.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.log.Info("listening", zap.String("addr", ln.Addr().String()))

	stop := context.AfterFunc(ctx, func() { _ = ln.Close() })
	defer stop()
	defer ln.Close()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				s.log.Warn("accept timeout", zap.Error(err))
				continue
			}
			return err
		}

		c := client.New(conn, s.maxFrame, s.log)
		s.log.Info("client connected",
			zap.String("client_id", c.ID()),
			zap.String("remote_addr", conn.RemoteAddr().String()),
		)
		if !s.hub.Arrive(c) {
			return nil
		}
	}
}
