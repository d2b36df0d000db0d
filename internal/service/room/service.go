package room

import (
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/benbjohnson/clock"
	"github.com/microcosm-cc/bluemonday"
	"github.com/sharetube/syncroom/internal/domain"
	"github.com/sharetube/syncroom/internal/fanout"
)

type iConnRepo interface {
	Register(connID, username string)
	Lookup(connID string) (string, error)
	Remove(connID string) error
	Count() int
}

// Service owns the room table. It is not safe for concurrent use: every
// call is expected to come from the Dispatcher loop.
type Service struct {
	rooms     *domain.Rooms
	current   map[string]string
	connRepo  iConnRepo
	clock     clock.Clock
	sanitizer *bluemonday.Policy
	logger    *slog.Logger
}

type Config struct {
	SanitizeChat bool
}

func NewService(connRepo iConnRepo, clk clock.Clock, logger *slog.Logger, cfg *Config) *Service {
	s := &Service{
		rooms:    domain.NewRooms(clk.Now()),
		current:  make(map[string]string),
		connRepo: connRepo,
		clock:    clk,
		logger:   logger,
	}

	if cfg != nil && cfg.SanitizeChat {
		s.sanitizer = bluemonday.StrictPolicy()
	}

	return s
}

func (s Service) sanitize(text string) string {
	if s.sanitizer == nil {
		return text
	}

	return s.sanitizer.Sanitize(text)
}

// senderRoom returns the room the connection is currently a member of.
func (s Service) senderRoom(connID string) (*domain.Room, error) {
	name, ok := s.current[connID]
	if !ok {
		return nil, fmt.Errorf("connection %s is not in a room: %w", connID, ErrNotFound)
	}

	room, ok := s.rooms.Get(name)
	if !ok {
		return nil, fmt.Errorf("room %s: %w", name, ErrNotFound)
	}

	return room, nil
}

func (s Service) username(connID string) (string, error) {
	username, err := s.connRepo.Lookup(connID)
	if err != nil {
		return "", fmt.Errorf("failed to lookup connection: %w: %w", ErrNotFound, err)
	}

	return username, nil
}

const MaxRoomNameLength = 64

func roomName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("empty room name: %w", ErrMalformed)
	}
	if utf8.RuneCountInString(name) > MaxRoomNameLength {
		return "", fmt.Errorf("room name longer than %d characters: %w", MaxRoomNameLength, ErrMalformed)
	}

	return name, nil
}

// syncVideo brings the room up to date before it is shown to anybody.
func (s Service) syncVideo(room *domain.Room, connIDs []string) fanout.Outbound {
	room.Playback.Advance(s.clock.Now())
	return fanout.ToConns(connIDs, MessageSyncVideo, room.Playback)
}

func (s Service) roomUserCounts() fanout.Outbound {
	return fanout.ToAll(MessageRoomUserCounts, s.rooms.List())
}

// Connect greets a freshly accepted transport with the room list and the
// state of the default room.
func (s *Service) Connect(connID string) []fanout.Outbound {
	mainRoom, _ := s.rooms.GetOrCreate(domain.DefaultRoomName, s.clock.Now())

	return []fanout.Outbound{
		fanout.ToConn(connID, MessageRoomList, s.rooms.List()),
		s.syncVideo(mainRoom, []string{connID}),
	}
}

func (s Service) ListRooms() []domain.RoomCount {
	return s.rooms.List()
}

func (s *Service) GetRoom(name string) (RoomState, error) {
	room, ok := s.rooms.Get(name)
	if !ok {
		return RoomState{}, fmt.Errorf("room %s: %w", name, ErrNotFound)
	}

	room.Playback.Advance(s.clock.Now())

	return RoomState{
		Name:      room.Name,
		UserCount: room.Members.Length(),
		Playback:  room.Playback,
	}, nil
}

// Tick extrapolates every playing room and reports how many advanced.
// It never produces outbound messages.
func (s *Service) Tick() int {
	now := s.clock.Now()
	advanced := 0
	s.rooms.Each(func(room *domain.Room) {
		if room.Playback.Playing {
			room.Playback.Advance(now)
			advanced++
		}
	})

	return advanced
}

func (s Service) RoomsLength() int {
	return s.rooms.Length()
}

func (s Service) RegisteredLength() int {
	return s.connRepo.Count()
}
