package room

import (
	"fmt"
	"strings"

	"github.com/sharetube/syncroom/internal/fanout"
)

type ChatMessageParams struct {
	Username string
	Message  string
}

// ChatMessage relays the message as sent. The sender's own name is only
// used when the payload carries none.
func (s *Service) ChatMessage(connID string, params *ChatMessageParams) ([]fanout.Outbound, error) {
	message := s.sanitize(params.Message)
	if strings.TrimSpace(message) == "" {
		return nil, fmt.Errorf("empty chat message: %w", ErrMalformed)
	}

	room, err := s.senderRoom(connID)
	if err != nil {
		return nil, err
	}

	username := s.sanitize(params.Username)
	if username == "" {
		if username, err = s.username(connID); err != nil {
			return nil, err
		}
	}

	return []fanout.Outbound{
		fanout.ToConns(room.Members.IDsExcept(connID), MessageChatMessage, ChatMessage{
			Username: username,
			Message:  message,
		}),
	}, nil
}

func (s *Service) UserTyping(connID string) ([]fanout.Outbound, error) {
	return s.relayName(connID, MessageUserTyping)
}

func (s *Service) UserStoppedTyping(connID string) ([]fanout.Outbound, error) {
	return s.relayName(connID, MessageUserStoppedTyping)
}

func (s *Service) relayName(connID, messageType string) ([]fanout.Outbound, error) {
	room, err := s.senderRoom(connID)
	if err != nil {
		return nil, err
	}

	username, err := s.username(connID)
	if err != nil {
		return nil, err
	}

	return []fanout.Outbound{
		fanout.ToConns(room.Members.IDsExcept(connID), messageType, username),
	}, nil
}

func (s *Service) Reaction(connID, reaction string) ([]fanout.Outbound, error) {
	reaction = strings.TrimSpace(s.sanitize(reaction))
	if reaction == "" {
		return nil, fmt.Errorf("empty reaction: %w", ErrMalformed)
	}

	room, err := s.senderRoom(connID)
	if err != nil {
		return nil, err
	}

	username, err := s.username(connID)
	if err != nil {
		return nil, err
	}

	return []fanout.Outbound{
		fanout.ToConns(room.Members.IDsExcept(connID), MessageReaction, Reaction{
			Reaction: reaction,
			Username: username,
		}),
	}, nil
}
