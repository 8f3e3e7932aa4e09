package ws

import (
	"net/http"

	"github.com/coder/websocket"
	"go.uber.org/zap"

	"github.com/DoyleJ11/tactics-server/internal/client"
	"github.com/DoyleJ11/tactics-server/internal/hub"
	"github.com/DoyleJ11/tactics-server/internal/protocol"
)

type Options struct {
	MaxFrame uint32
	// OriginPatterns loosens the same-origin check, e.g. "localhost:*" in dev.
	OriginPatterns []string
	Logger         *zap.Logger
}

// Handler upgrades to a websocket and treats the binary message stream as
// the same length-prefixed byte stream the TCP listener carries. Frames
// may span websocket messages.
func Handler(h *hub.Hub, opts Options) http.HandlerFunc {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if opts.MaxFrame == 0 {
		opts.MaxFrame = protocol.DefaultMaxFrame
	}

	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: opts.OriginPatterns,
		})
		if err != nil {
			log.Debug("websocket accept failed", zap.Error(err))
			return
		}
		// Don't let a single frame exceed what the codec would accept anyway.
		conn.SetReadLimit(int64(opts.MaxFrame) + protocol.LengthPrefixSize)

		nc := websocket.NetConn(r.Context(), conn, websocket.MessageBinary)
		c := client.New(nc, opts.MaxFrame, log)
		log.Info("websocket client connected",
			zap.String("client_id", c.ID()),
			zap.String("remote_addr", r.RemoteAddr),
		)

		if !h.Arrive(c) {
			return
		}

		// The net.Conn lives only as long as the request context.
		select {
		case <-c.Done():
		case <-r.Context().Done():
			_ = c.Close()
		}
	}
}
