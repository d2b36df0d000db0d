package domain

import (
	"time"

	"golang.org/x/exp/slices"
)

// Rooms is the room table. Iteration follows creation order and the
// default room always exists.
type Rooms struct {
	order  []string
	byName map[string]*Room
}

func NewRooms(now time.Time) *Rooms {
	rs := &Rooms{
		order:  make([]string, 0),
		byName: make(map[string]*Room),
	}
	rs.GetOrCreate(DefaultRoomName, now)

	return rs
}

func (rs *Rooms) Get(name string) (*Room, bool) {
	room, ok := rs.byName[name]
	return room, ok
}

func (rs *Rooms) GetOrCreate(name string, now time.Time) (*Room, bool) {
	if room, ok := rs.byName[name]; ok {
		return room, false
	}

	room := NewRoom(name, now)
	rs.byName[name] = room
	rs.order = append(rs.order, name)

	return room, true
}

// Delete never removes the default room.
func (rs *Rooms) Delete(name string) bool {
	if name == DefaultRoomName {
		return false
	}

	if _, ok := rs.byName[name]; !ok {
		return false
	}

	delete(rs.byName, name)
	if index := slices.Index(rs.order, name); index >= 0 {
		rs.order = slices.Delete(rs.order, index, index+1)
	}

	return true
}

func (rs Rooms) Length() int {
	return len(rs.order)
}

func (rs Rooms) List() []RoomCount {
	counts := make([]RoomCount, 0, len(rs.order))
	for _, name := range rs.order {
		counts = append(counts, rs.byName[name].Count())
	}

	return counts
}

func (rs Rooms) Each(fn func(*Room)) {
	for _, name := range rs.order {
		fn(rs.byName[name])
	}
}
