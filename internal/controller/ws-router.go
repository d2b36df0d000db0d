package controller

import (
	"github.com/sharetube/syncroom/pkg/wsrouter"
)

func (c controller) getWSRouter() *wsrouter.WSRouter {
	mux := wsrouter.New()
	mux.Use(c.wsRequestIdWSMw(), c.loggerWSMw(), c.rateLimitWSMw())

	// membership
	wsrouter.Handle(mux, "user-joined", c.handleUserJoined)
	wsrouter.Handle(mux, "create-room", c.handleCreateRoom)
	wsrouter.Handle(mux, "join-room", c.handleJoinRoom)

	// playback
	wsrouter.Handle(mux, "select-video", c.handleSelectVideo)
	wsrouter.Handle(mux, "video-event", c.handleVideoEvent)

	// signals
	wsrouter.Handle(mux, "chat-message", c.handleChatMessage)
	wsrouter.Handle(mux, "user-typing", c.handleUserTyping)
	wsrouter.Handle(mux, "user-stopped-typing", c.handleUserStoppedTyping)
	wsrouter.Handle(mux, "reaction", c.handleReaction)

	return mux
}
