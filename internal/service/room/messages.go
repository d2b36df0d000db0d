package room

import "github.com/sharetube/syncroom/internal/domain"

const (
	MessageRoomList               = "room-list"
	MessageRoomCreated            = "room-created"
	MessageRoomDeleted            = "room-deleted"
	MessageRoomUserCounts         = "room-user-counts"
	MessageUserCount              = "user-count"
	MessageLeaderStatus           = "leader-status"
	MessageSyncVideo              = "sync-video"
	MessageVideoSelected          = "video-selected"
	MessageUserJoinedNotification = "user-joined-notification"
	MessageChatMessage            = "chat-message"
	MessageUserTyping             = "user-typing"
	MessageUserStoppedTyping      = "user-stopped-typing"
	MessageReaction               = "reaction"
)

type LeaderStatus struct {
	IsLeader bool `json:"isLeader"`
}

// UserCount.Room is only set for the user-joined announcement.
type UserCount struct {
	Total int  `json:"total"`
	Room  *int `json:"room,omitempty"`
}

type ChatMessage struct {
	Username string `json:"username"`
	Message  string `json:"message"`
}

type Reaction struct {
	Reaction string `json:"reaction"`
	Username string `json:"username"`
}

type RoomState struct {
	Name      string          `json:"name"`
	UserCount int             `json:"userCount"`
	Playback  domain.Playback `json:"playback"`
}
