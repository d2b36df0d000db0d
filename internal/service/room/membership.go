package room

import (
	"fmt"
	"strings"

	"github.com/sharetube/syncroom/internal/domain"
	"github.com/sharetube/syncroom/internal/fanout"
)

// UserJoined registers the display name and places the connection in the
// default room. Repeated announcements from the same connection are ignored.
func (s *Service) UserJoined(connID, username string) ([]fanout.Outbound, error) {
	username = strings.TrimSpace(s.sanitize(username))
	if username == "" {
		return nil, fmt.Errorf("empty username: %w", ErrMalformed)
	}

	if _, err := s.connRepo.Lookup(connID); err == nil {
		s.logger.Debug("connection already registered", "conn_id", connID)
		return nil, nil
	}

	s.connRepo.Register(connID, username)
	mainRoom, _ := s.rooms.GetOrCreate(domain.DefaultRoomName, s.clock.Now())
	outs := s.join(connID, username, mainRoom)

	roomCount := mainRoom.Members.Length()
	outs = append(outs, fanout.ToAll(MessageUserCount, UserCount{
		Total: s.connRepo.Count(),
		Room:  &roomCount,
	}))

	return outs, nil
}

// CreateRoom does not require a registered sender.
func (s *Service) CreateRoom(connID, name string) ([]fanout.Outbound, error) {
	name, err := roomName(name)
	if err != nil {
		return nil, err
	}

	room, created := s.rooms.GetOrCreate(name, s.clock.Now())
	if !created {
		s.logger.Debug("room already exists", "conn_id", connID, "room", name)
		return nil, nil
	}

	return []fanout.Outbound{
		fanout.ToAll(MessageRoomCreated, room.Count()),
	}, nil
}

func (s *Service) JoinRoom(connID, name string) ([]fanout.Outbound, error) {
	name, err := roomName(name)
	if err != nil {
		return nil, err
	}

	username, err := s.username(connID)
	if err != nil {
		return nil, err
	}

	// Rejoining the current room only refreshes the joiner.
	if s.current[connID] == name {
		room, err := s.senderRoom(connID)
		if err != nil {
			return nil, err
		}

		return []fanout.Outbound{
			fanout.ToConn(connID, MessageLeaderStatus, LeaderStatus{IsLeader: room.IsLeader(connID)}),
			s.syncVideo(room, []string{connID}),
		}, nil
	}

	outs := s.leave(connID)

	room, created := s.rooms.GetOrCreate(name, s.clock.Now())
	if created {
		outs = append(outs, fanout.ToAll(MessageRoomCreated, room.Count()))
	}

	return append(outs, s.join(connID, username, room)...), nil
}

// Disconnect runs exactly once per transport and is valid for connections
// that never registered. Those leave without any announcement.
func (s *Service) Disconnect(connID string) []fanout.Outbound {
	outs := s.leave(connID)

	if err := s.connRepo.Remove(connID); err != nil {
		s.logger.Debug("disconnect of unregistered connection", "conn_id", connID)
		return outs
	}

	return append(outs,
		s.roomUserCounts(),
		fanout.ToAll(MessageUserCount, UserCount{Total: s.connRepo.Count()}),
	)
}

func (s *Service) join(connID, username string, room *domain.Room) []fanout.Outbound {
	isLeader := room.Join(connID, username)
	s.current[connID] = room.Name

	s.logger.Debug("member joined room",
		"conn_id", connID,
		"room", room.Name,
		"is_leader", isLeader,
		"members", room.Members.Length(),
	)

	return []fanout.Outbound{
		fanout.ToConn(connID, MessageLeaderStatus, LeaderStatus{IsLeader: isLeader}),
		s.syncVideo(room, []string{connID}),
		fanout.ToConns(room.Members.IDs(), MessageUserJoinedNotification, username),
		s.roomUserCounts(),
	}
}

// leave removes the connection from its current room, hands leadership
// over and deletes the room if it became empty.
func (s *Service) leave(connID string) []fanout.Outbound {
	name, ok := s.current[connID]
	if !ok {
		return nil
	}
	delete(s.current, connID)

	room, ok := s.rooms.Get(name)
	if !ok {
		return nil
	}

	var outs []fanout.Outbound

	successor, removed := room.Leave(connID)
	if !removed {
		return nil
	}

	if successor != "" {
		s.logger.Debug("leadership handed over", "room", name, "from", connID, "to", successor)
		outs = append(outs, fanout.ToConn(successor, MessageLeaderStatus, LeaderStatus{IsLeader: true}))
	}

	if room.IsEmpty() && s.rooms.Delete(name) {
		s.logger.Debug("room deleted", "room", name)
		outs = append(outs, fanout.ToAll(MessageRoomDeleted, name))
	}

	return outs
}
