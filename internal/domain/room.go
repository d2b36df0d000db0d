package domain

import "time"

const DefaultRoomName = "main"

type Room struct {
	Name     string
	Members  *Members
	Leader   string
	Playback Playback
}

func NewRoom(name string, now time.Time) *Room {
	return &Room{
		Name:     name,
		Members:  NewMembers(),
		Playback: NewPlayback(now),
	}
}

func (r Room) IsDefault() bool {
	return r.Name == DefaultRoomName
}

func (r Room) HasLeader() bool {
	return r.Leader != ""
}

func (r Room) IsLeader(connID string) bool {
	return r.Leader != "" && r.Leader == connID
}

func (r Room) IsEmpty() bool {
	return r.Members.Length() == 0
}

type RoomCount struct {
	Name      string `json:"name"`
	UserCount int    `json:"userCount"`
}

func (r Room) Count() RoomCount {
	return RoomCount{
		Name:      r.Name,
		UserCount: r.Members.Length(),
	}
}
