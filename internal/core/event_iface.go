package core

import "context"

// ConnID is assigned by the transport and is unique per live connection.
type ConnID string

// Event is one of ConnectEvent, SetNameEvent, DisconnectEvent, MessageEvent.
type Event interface {
	Conn() ConnID
	isEvent()
}

type ConnectEvent struct {
	ID ConnID
}

type SetNameEvent struct {
	ID   ConnID
	Name string
}

type DisconnectEvent struct {
	ID ConnID
}

// MessageEvent carries a chat line. TargetID is echoed by the client and
// compared against ID to decide on the private "result" acknowledgement.
type MessageEvent struct {
	ID       ConnID
	TargetID ConnID
	Text     string
}

func (e ConnectEvent) Conn() ConnID    { return e.ID }
func (e SetNameEvent) Conn() ConnID    { return e.ID }
func (e DisconnectEvent) Conn() ConnID { return e.ID }
func (e MessageEvent) Conn() ConnID    { return e.ID }

func (ConnectEvent) isEvent()    {}
func (SetNameEvent) isEvent()    {}
func (DisconnectEvent) isEvent() {}
func (MessageEvent) isEvent()    {}

// EventHandler receives lifecycle and inbound events from the transport.
// The transport never calls Handle concurrently for the same connection.
type EventHandler interface {
	Handle(ctx context.Context, ev Event)
}
