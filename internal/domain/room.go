package domain

// DefaultRoomID is the room every named client joins.
const DefaultRoomID RoomID = "1"

type RoomID string

// Room is the shared broadcast group. Membership itself is kept by the
// transport; the room only names it.
type Room struct {
	ID RoomID
}

func NewRoom(id RoomID) *Room {
	if id == "" {
		id = DefaultRoomID
	}
	return &Room{ID: id}
}
