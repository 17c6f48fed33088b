package signal

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/huddlekit/huddle/internal/app"
)

func (ctl *Controller) writePump(ctx context.Context, c *WsSignalConn) {
	ping := time.NewTicker(ctl.Cfg.PingPeriod)
	defer ping.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Msg("writePump ctx done")
			return
		case <-ping.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Warn().Err(err).Str("module", "signal").Msg("writePump ping error")
				return
			}
		case data, ok := <-c.send:
			if !ok {
				log.Warn().Str("module", "signal").Msg("writePump channel closed")
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		}
	}
}

func (ctl *Controller) readPump(ctx context.Context, cancel context.CancelFunc, handle app.HandleID, c *WsSignalConn) {
	defer func() {
		log.Info().Str("module", "signal").Str("handle", string(handle)).Msg("readPump closing")
		if sess, ok := ctl.Hub.Remove(handle); ok {
			log.Info().Str("module", "signal").Str("user", string(sess.IdentityID)).Str("name", sess.DisplayName).Msg("user disconnected")
		}
		ctl.limiter.Forget(string(handle))
		c.Close()
		cancel()
	}()

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Str("handle", string(handle)).Msg("readPump ctx done")
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				log.Info().Err(err).Str("module", "signal").Str("handle", string(handle)).Msg("readPump read error")
				return
			}
			ctl.handleEvent(handle, c, data)
		}
	}
}

func (ctl *Controller) handleEvent(handle app.HandleID, c *WsSignalConn, data []byte) {
	// One bad message must not tear down the connection.
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("module", "signal").Str("handle", string(handle)).Any("panic", r).Msg("event handler panicked")
		}
	}()

	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad json")
		return
	}

	if !ctl.limiter.Allow(string(handle)) {
		log.Warn().Str("module", "signal").Str("handle", string(handle)).Str("type", env.Type).Msg("rate limit exceeded, event dropped")
		return
	}

	switch env.Type {
	case "user-connected":
		ctl.handleConnected(handle, c, data)
	case "media-state-changed":
		ctl.handleMediaState(handle, data)
	case "private-call-request":
		ctl.handleCallRequest(handle, data)
	case "private-call-response":
		ctl.handleCallResponse(handle, data)
	case "offer":
		ctl.relay("offer", handle, data)
	case "answer":
		ctl.relay("answer", handle, data)
	case "ice-candidate":
		ctl.relay("ice-candidate", handle, data)
	case "ping":
		ctl.handlePing(c)
	default:
		log.Warn().Str("module", "signal").Str("type", env.Type).Msg("unknown signal")
	}
}

func (ctl *Controller) sendJSON(c *WsSignalConn, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("sendJSON marshal")
		return
	}
	_ = c.TrySend(b)
}
