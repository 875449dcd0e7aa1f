package signal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dkeye/Lounge/internal/core"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var (
	ErrBadFrame     = errors.New("bad frame")
	ErrUnknownEvent = errors.New("unknown event")
)

func (ctl *SignalWSController) writePump(ctx context.Context, id core.ConnID, c *WsSignalConn) {
	ticker := ctl.pingTicker()
	defer ticker.Stop()
	defer c.Close()

	for {
		select {
		case <-ctx.Done():
			log.Debug().Str("module", "signal").Str("conn", string(id)).Msg("writePump ctx done")
			return
		case <-ticker.C:
			if err := ctl.writePing(c); err != nil {
				log.Warn().Err(err).Str("module", "signal").Str("conn", string(id)).Msg("writePump ping")
				return
			}
		case data, ok := <-c.send:
			if !ok {
				log.Debug().Str("module", "signal").Str("conn", string(id)).Msg("writePump channel closed")
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(ctl.opts.WriteTimeout)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Warn().Err(err).Str("module", "signal").Str("conn", string(id)).Msg("writePump write error")
				return
			}
		}
	}
}

// readPump delivers Connect, every inbound event and finally Disconnect to
// the handler, one at a time.
func (ctl *SignalWSController) readPump(ctx context.Context, cancel context.CancelFunc, id core.ConnID, c *WsSignalConn) {
	defer func() {
		log.Info().Str("module", "signal").Str("conn", string(id)).Msg("readPump closing")
		ctl.Hub.unregister(id)
		c.Close()
		cancel()
		ctl.Events.Handle(context.WithoutCancel(ctx), core.DisconnectEvent{ID: id})
	}()

	go func() {
		<-ctx.Done()
		c.Close()
	}()

	ctl.armKeepalive(c)
	ctl.Events.Handle(ctx, core.ConnectEvent{ID: id})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("module", "signal").Str("conn", string(id)).Msg("readPump read error")
			}
			return
		}
		ev, err := decodeEvent(id, data)
		if err != nil {
			log.Warn().Err(err).Str("module", "signal").Str("conn", string(id)).Msg("dropped frame")
			continue
		}
		ctl.Events.Handle(ctx, ev)
	}
}

// decodeEvent turns an inbound envelope into an event. Payloads that do not
// decode are coerced rather than rejected: fields of the wrong type are left
// zero and the rest are kept.
func decodeEvent(id core.ConnID, data []byte) (core.Event, error) {
	var env core.Envelope[json.RawMessage]
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadFrame, err)
	}

	switch env.Event {
	case core.EventSetName:
		p := decodeData[core.SetNamePayload](id, env)
		return core.SetNameEvent{ID: id, Name: p.Name}, nil
	case core.EventMessage:
		p := decodeData[core.MessagePayload](id, env)
		return core.MessageEvent{ID: id, TargetID: p.ID, Text: p.Message}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, env.Event)
	}
}

func decodeData[T any](id core.ConnID, env core.Envelope[json.RawMessage]) T {
	var v T
	if len(env.Data) == 0 {
		return v
	}
	err := json.Unmarshal(env.Data, &v)
	if err == nil {
		return v
	}
	log.Warn().Err(err).Str("module", "signal").Str("conn", string(id)).Str("event", env.Event).Msg("coercing payload")
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return v
	}
	var zero T
	return zero
}
