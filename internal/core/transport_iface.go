package core

import (
	"context"

	"github.com/dkeye/Lounge/internal/domain"
)

// Transport is the addressing surface the session manager talks through.
// Delivery is best-effort; a nil error means the frame was queued, not
// that it arrived.
type Transport interface {
	SendTo(id ConnID, event string, payload any) error
	BroadcastToRoom(room domain.RoomID, event string, payload any) error
	BroadcastToRoomExcept(room domain.RoomID, except ConnID, event string, payload any) error

	AddToRoom(ctx context.Context, id ConnID, room domain.RoomID) error
	RoomMembers(ctx context.Context, room domain.RoomID) ([]ConnID, error)
}
