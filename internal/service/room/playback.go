package room

import (
	"fmt"
	"math"
	"strings"

	"github.com/sharetube/syncroom/internal/domain"
	"github.com/sharetube/syncroom/internal/fanout"
)

const (
	VideoEventPlay  = "play"
	VideoEventPause = "pause"
	VideoEventSeek  = "seek"
)

type VideoEventParams struct {
	Type        string
	CurrentTime float64
}

// leaderRoom returns the sender's room, failing unless the sender leads it.
func (s Service) leaderRoom(connID string) (*domain.Room, error) {
	room, err := s.senderRoom(connID)
	if err != nil {
		return nil, err
	}

	if !room.IsLeader(connID) {
		return nil, fmt.Errorf("connection %s in room %s: %w", connID, room.Name, ErrUnauthorized)
	}

	return room, nil
}

// SelectVideo resets playback to the start of the new video. Both the
// announcement and the sync go to the whole room, sender included.
func (s *Service) SelectVideo(connID, video string) ([]fanout.Outbound, error) {
	video = strings.TrimSpace(video)
	if video == "" {
		return nil, fmt.Errorf("empty video: %w", ErrMalformed)
	}

	room, err := s.leaderRoom(connID)
	if err != nil {
		return nil, err
	}

	room.Playback.Select(video, s.clock.Now())
	members := room.Members.IDs()

	return []fanout.Outbound{
		fanout.ToConns(members, MessageVideoSelected, video),
		fanout.ToConns(members, MessageSyncVideo, room.Playback),
	}, nil
}

func (s *Service) VideoEvent(connID string, params *VideoEventParams) ([]fanout.Outbound, error) {
	if math.IsNaN(params.CurrentTime) || math.IsInf(params.CurrentTime, 0) {
		return nil, fmt.Errorf("current time %v: %w", params.CurrentTime, ErrMalformed)
	}

	switch params.Type {
	case VideoEventPlay, VideoEventPause, VideoEventSeek:
	default:
		return nil, fmt.Errorf("unknown video event %q: %w", params.Type, ErrMalformed)
	}

	room, err := s.leaderRoom(connID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	switch params.Type {
	case VideoEventPlay:
		room.Playback.Play(params.CurrentTime, now)
	case VideoEventPause:
		room.Playback.Pause(params.CurrentTime)
	case VideoEventSeek:
		room.Playback.Seek(params.CurrentTime, now)
	}

	return []fanout.Outbound{
		fanout.ToConns(room.Members.IDsExcept(connID), MessageSyncVideo, room.Playback),
	}, nil
}
