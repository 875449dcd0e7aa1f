package app

import (
	"context"

	"github.com/dkeye/Lounge/internal/core"
	"github.com/dkeye/Lounge/internal/domain"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// RoomSessionManager reacts to connection lifecycle and chat events for a
// single room and turns them into sends through the transport.
type RoomSessionManager struct {
	Room      *domain.Room
	Registry  *SessionRegistry
	Transport core.Transport

	anonymous domain.DisplayName
}

type Option func(m *RoomSessionManager)

// WithAnonymousName overrides the name used for clients that never set one.
func WithAnonymousName(name string) Option {
	return func(m *RoomSessionManager) {
		if name != "" {
			m.anonymous = domain.DisplayName(name)
		}
	}
}

func NewRoomSessionManager(room *domain.Room, t core.Transport, opts ...Option) *RoomSessionManager {
	m := &RoomSessionManager{
		Room:      room,
		Transport: t,
		anonymous: domain.AnonymousName,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.Registry = NewSessionRegistry(m.anonymous)
	return m
}

func (m *RoomSessionManager) Handle(ctx context.Context, ev core.Event) {
	switch e := ev.(type) {
	case core.ConnectEvent:
		m.OnConnect(ctx, e.ID)
	case core.SetNameEvent:
		m.OnSetName(ctx, e.ID, e.Name)
	case core.DisconnectEvent:
		m.OnDisconnect(ctx, e.ID)
	case core.MessageEvent:
		m.OnMessage(ctx, e.ID, e.TargetID, e.Text)
	default:
		log.Warn().Str("module", "app.session").Str("conn", string(ev.Conn())).Msgf("unhandled event %T", ev)
	}
}

func (m *RoomSessionManager) OnConnect(ctx context.Context, id core.ConnID) {
	logger := m.logger(id)
	logger.Info().Msg("connected")

	if err := m.Transport.SendTo(id, core.EventConnection, core.ConnectionPayload{ClientID: id}); err != nil {
		logger.Warn().Err(err).Msg("send connection ack")
	}
	m.BroadcastOccupancy(ctx)
}

// OnSetName registers name, admits the connection to the room and
// announces it. Calling it again re-announces under the new name.
func (m *RoomSessionManager) OnSetName(ctx context.Context, id core.ConnID, name string) {
	logger := m.logger(id)
	display := domain.DisplayName(name)
	m.Registry.Set(id, display)

	if err := m.Transport.AddToRoom(ctx, id, m.Room.ID); err != nil {
		logger.Error().Err(err).Msg("add to room")
		return
	}
	m.BroadcastOccupancy(ctx)

	if err := m.Transport.BroadcastToRoomExcept(m.Room.ID, id, core.EventJoinPerson, domain.JoinNotice(display)); err != nil {
		logger.Warn().Err(err).Msg("broadcast join notice")
	}
	if err := m.Transport.SendTo(id, core.EventNameSet, core.NameSetPayload{Success: true}); err != nil {
		logger.Warn().Err(err).Msg("send nameSet")
	}
	logger.Info().Str("name", name).Msg("joined")
}

// OnDisconnect announces the departure under the last registered name,
// then forgets the connection.
func (m *RoomSessionManager) OnDisconnect(ctx context.Context, id core.ConnID) {
	logger := m.logger(id)
	name := m.Registry.Name(id)

	if err := m.Transport.BroadcastToRoomExcept(m.Room.ID, id, core.EventOutPerson, domain.LeaveNotice(name)); err != nil {
		logger.Warn().Err(err).Msg("broadcast leave notice")
	}
	m.Registry.Release(id)
	m.BroadcastOccupancy(ctx)
	logger.Info().Str("name", string(name)).Msg("disconnected")
}

func (m *RoomSessionManager) OnMessage(_ context.Context, id, targetID core.ConnID, text string) {
	logger := m.logger(id)
	out := core.StrangerPayload{
		ResCode: core.ResCodeOK,
		Message: text,
		Name:    string(m.Registry.Name(id)),
	}
	if err := m.Transport.BroadcastToRoomExcept(m.Room.ID, id, core.EventStranger, out); err != nil {
		logger.Warn().Err(err).Msg("broadcast message")
	}

	if targetID != id {
		return
	}
	if err := m.Transport.SendTo(id, core.EventResult, core.ResultPayload{ResCode: core.ResCodeOK, Message: text}); err != nil {
		logger.Warn().Err(err).Msg("send result")
	}
}

// BroadcastOccupancy sends the current member count to every member. The
// count is re-read from the transport each time and may already be stale
// when it arrives.
func (m *RoomSessionManager) BroadcastOccupancy(ctx context.Context) {
	logger := log.With().Str("module", "app.session").Str("room", string(m.Room.ID)).Logger()

	members, err := m.Transport.RoomMembers(ctx, m.Room.ID)
	if err != nil {
		logger.Error().Err(err).Msg("room members")
		return
	}
	count := len(members)
	if err := m.Transport.BroadcastToRoom(m.Room.ID, core.EventClientsCount, core.ClientsCountPayload{Count: count}); err != nil {
		logger.Warn().Err(err).Msg("broadcast occupancy")
	}
	logger.Debug().Int("count", count).Msg("occupancy")
}

func (m *RoomSessionManager) logger(id core.ConnID) zerolog.Logger {
	return log.With().
		Str("module", "app.session").
		Str("room", string(m.Room.ID)).
		Str("conn", string(id)).
		Logger()
}
