package signal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/dkeye/Lounge/internal/core"
	"github.com/dkeye/Lounge/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var ErrConnNotFound = errors.New("connection not found")

// Hub owns live connections and room groups. It implements core.Transport.
type Hub struct {
	mu    sync.RWMutex
	conns map[core.ConnID]core.SignalConnection
	rooms map[domain.RoomID]map[core.ConnID]struct{}
}

func NewHub() *Hub {
	return &Hub{
		conns: make(map[core.ConnID]core.SignalConnection),
		rooms: make(map[domain.RoomID]map[core.ConnID]struct{}),
	}
}

var _ core.Transport = (*Hub)(nil)

func (h *Hub) register(c core.SignalConnection) core.ConnID {
	id := core.ConnID(uuid.NewString())
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[id] = c
	return id
}

// unregister forgets id and drops it from every room.
func (h *Hub) unregister(id core.ConnID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns, id)
	for name, members := range h.rooms {
		delete(members, id)
		if len(members) == 0 {
			delete(h.rooms, name)
		}
	}
	log.Debug().Str("module", "signal.hub").Str("conn", string(id)).Msg("unregistered")
}

func (h *Hub) ConnCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

func (h *Hub) SendTo(id core.ConnID, event string, payload any) error {
	frame, err := encodeFrame(event, payload)
	if err != nil {
		return err
	}
	h.mu.RLock()
	c, ok := h.conns[id]
	h.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrConnNotFound, id)
	}
	if err := c.TrySend(frame); err != nil {
		return fmt.Errorf("send %s to %s: %w", event, id, err)
	}
	return nil
}

func (h *Hub) BroadcastToRoom(room domain.RoomID, event string, payload any) error {
	return h.BroadcastToRoomExcept(room, "", event, payload)
}

// BroadcastToRoomExcept queues the frame for every member but except.
// Failed recipients are reported together; the rest still receive it.
func (h *Hub) BroadcastToRoomExcept(room domain.RoomID, except core.ConnID, event string, payload any) error {
	frame, err := encodeFrame(event, payload)
	if err != nil {
		return err
	}

	h.mu.RLock()
	targets := make(map[core.ConnID]core.SignalConnection, len(h.rooms[room]))
	for id := range h.rooms[room] {
		if id == except {
			continue
		}
		if c, ok := h.conns[id]; ok {
			targets[id] = c
		}
	}
	h.mu.RUnlock()

	var errs []error
	sent := 0
	for id, c := range targets {
		if err := c.TrySend(frame); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", id, err))
			continue
		}
		sent++
	}
	log.Debug().
		Str("module", "signal.hub").
		Str("room", string(room)).
		Str("event", event).
		Int("sent_to", sent).
		Int("dropped", len(errs)).
		Msg("broadcast result")
	return errors.Join(errs...)
}

func (h *Hub) AddToRoom(ctx context.Context, id core.ConnID, room domain.RoomID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.conns[id]; !ok {
		return fmt.Errorf("%w: %s", ErrConnNotFound, id)
	}
	members, ok := h.rooms[room]
	if !ok {
		members = make(map[core.ConnID]struct{})
		h.rooms[room] = members
	}
	members[id] = struct{}{}
	log.Info().Str("module", "signal.hub").Str("conn", string(id)).Str("room", string(room)).Msg("added to room")
	return nil
}

func (h *Hub) RoomMembers(ctx context.Context, room domain.RoomID) ([]core.ConnID, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]core.ConnID, 0, len(h.rooms[room]))
	for id := range h.rooms[room] {
		out = append(out, id)
	}
	return out, nil
}

func encodeFrame(event string, payload any) (core.Frame, error) {
	b, err := json.Marshal(core.Envelope[any]{Event: event, Data: payload})
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", event, err)
	}
	return b, nil
}
