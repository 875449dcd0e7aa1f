package app

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/dkeye/Lounge/internal/core"
	"github.com/dkeye/Lounge/internal/domain"
)

type sent struct {
	Event   string
	Payload any
}

// fakeTransport keeps room membership and records every delivered frame
// per recipient.
type fakeTransport struct {
	mu         sync.Mutex
	rooms      map[domain.RoomID]map[core.ConnID]struct{}
	inbox      map[core.ConnID][]sent
	addErr     error
	membersErr error
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		rooms: make(map[domain.RoomID]map[core.ConnID]struct{}),
		inbox: make(map[core.ConnID][]sent),
	}
}

func (f *fakeTransport) SendTo(id core.ConnID, event string, payload any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inbox[id] = append(f.inbox[id], sent{event, payload})
	return nil
}

func (f *fakeTransport) BroadcastToRoom(room domain.RoomID, event string, payload any) error {
	return f.BroadcastToRoomExcept(room, "", event, payload)
}

func (f *fakeTransport) BroadcastToRoomExcept(room domain.RoomID, except core.ConnID, event string, payload any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id := range f.rooms[room] {
		if id == except {
			continue
		}
		f.inbox[id] = append(f.inbox[id], sent{event, payload})
	}
	return nil
}

func (f *fakeTransport) AddToRoom(_ context.Context, id core.ConnID, room domain.RoomID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.addErr != nil {
		return f.addErr
	}
	if f.rooms[room] == nil {
		f.rooms[room] = make(map[core.ConnID]struct{})
	}
	f.rooms[room][id] = struct{}{}
	return nil
}

func (f *fakeTransport) RoomMembers(_ context.Context, room domain.RoomID) ([]core.ConnID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.membersErr != nil {
		return nil, f.membersErr
	}
	out := make([]core.ConnID, 0, len(f.rooms[room]))
	for id := range f.rooms[room] {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

// drop removes id from every room, as a transport does when a socket closes.
func (f *fakeTransport) drop(id core.ConnID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, members := range f.rooms {
		delete(members, id)
	}
}

func (f *fakeTransport) received(id core.ConnID) []sent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sent(nil), f.inbox[id]...)
}

func (f *fakeTransport) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inbox = make(map[core.ConnID][]sent)
}

func (f *fakeTransport) isMember(room domain.RoomID, id core.ConnID) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.rooms[room][id]
	return ok
}

func eventsOf(msgs []sent, event string) []sent {
	var out []sent
	for _, m := range msgs {
		if m.Event == event {
			out = append(out, m)
		}
	}
	return out
}

func names(msgs []sent) []string {
	out := make([]string, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, m.Event)
	}
	return out
}

var errTransport = errors.New("transport down")
