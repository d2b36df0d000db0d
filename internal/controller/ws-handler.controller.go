package controller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sharetube/syncroom/internal/fanout"
	"github.com/sharetube/syncroom/internal/service/room"
	"github.com/sharetube/syncroom/pkg/wsrouter"
)

var errInvalidInput = errors.New("invalid input")

// do runs fn on the dispatcher under the current message type.
func (c controller) do(ctx context.Context, fn room.HandlerFunc) error {
	return c.dispatcher.Do(ctx, wsrouter.GetMessageTypeFromCtx(ctx), fn)
}

func (c controller) validateInput(input any) error {
	if validationErrors, ok := c.validate.Validate(input); !ok {
		return fmt.Errorf("%w: %w", errInvalidInput, validationErrors)
	}

	return nil
}

func (c controller) handleUserJoined(ctx context.Context, username string) error {
	connId := c.getConnIdFromCtx(ctx)
	if strings.TrimSpace(username) == "" {
		username = c.guestName()
	}

	return c.do(ctx, func(s *room.Service) ([]fanout.Outbound, error) {
		return s.UserJoined(connId, username)
	})
}

func (c controller) handleCreateRoom(ctx context.Context, name string) error {
	connId := c.getConnIdFromCtx(ctx)

	return c.do(ctx, func(s *room.Service) ([]fanout.Outbound, error) {
		return s.CreateRoom(connId, name)
	})
}

func (c controller) handleJoinRoom(ctx context.Context, name string) error {
	connId := c.getConnIdFromCtx(ctx)

	return c.do(ctx, func(s *room.Service) ([]fanout.Outbound, error) {
		return s.JoinRoom(connId, name)
	})
}

func (c controller) handleSelectVideo(ctx context.Context, video string) error {
	connId := c.getConnIdFromCtx(ctx)

	return c.do(ctx, func(s *room.Service) ([]fanout.Outbound, error) {
		return s.SelectVideo(connId, video)
	})
}

type VideoEventInput struct {
	Type        string   `json:"type" validate:"required,oneof=play pause seek"`
	CurrentTime *float64 `json:"currentTime" validate:"required"`
}

func (c controller) handleVideoEvent(ctx context.Context, input VideoEventInput) error {
	if err := c.validateInput(input); err != nil {
		return err
	}

	connId := c.getConnIdFromCtx(ctx)
	params := room.VideoEventParams{
		Type:        input.Type,
		CurrentTime: *input.CurrentTime,
	}

	return c.do(ctx, func(s *room.Service) ([]fanout.Outbound, error) {
		return s.VideoEvent(connId, &params)
	})
}

type ChatMessageInput struct {
	Username string `json:"username"`
	Message  string `json:"message" validate:"required"`
}

func (c controller) handleChatMessage(ctx context.Context, input ChatMessageInput) error {
	if err := c.validateInput(input); err != nil {
		return err
	}

	connId := c.getConnIdFromCtx(ctx)
	params := room.ChatMessageParams{
		Username: input.Username,
		Message:  input.Message,
	}

	return c.do(ctx, func(s *room.Service) ([]fanout.Outbound, error) {
		return s.ChatMessage(connId, &params)
	})
}

func (c controller) handleUserTyping(ctx context.Context, _ json.RawMessage) error {
	connId := c.getConnIdFromCtx(ctx)

	return c.do(ctx, func(s *room.Service) ([]fanout.Outbound, error) {
		return s.UserTyping(connId)
	})
}

func (c controller) handleUserStoppedTyping(ctx context.Context, _ json.RawMessage) error {
	connId := c.getConnIdFromCtx(ctx)

	return c.do(ctx, func(s *room.Service) ([]fanout.Outbound, error) {
		return s.UserStoppedTyping(connId)
	})
}

func (c controller) handleReaction(ctx context.Context, reaction string) error {
	connId := c.getConnIdFromCtx(ctx)

	return c.do(ctx, func(s *room.Service) ([]fanout.Outbound, error) {
		return s.Reaction(connId, reaction)
	})
}
