package controller

import (
	"github.com/sharetube/watchparty/pkg/wsrouter"
)

func (c controller) getWSRouter() *wsrouter.WSRouter[*client] {
	mux := wsrouter.New[*client]()
	mux.Use(c.wsRequestIdWSMw(), c.loggerWSMw(), c.rateLimitWSMw())

	wsrouter.Handle(mux, "alive", c.handleAlive)
	wsrouter.Handle(mux, "join", c.handleJoin)

	// player
	wsrouter.Handle(mux, "control-play", c.handleControlPlay)
	wsrouter.Handle(mux, "control-pause", c.handleControlPause)
	wsrouter.Handle(mux, "control-seek", c.handleControlSeek)
	wsrouter.Handle(mux, "request-sync", c.handleRequestSync)

	// chat
	wsrouter.Handle(mux, "send-message", c.handleSendMessage)
	wsrouter.Handle(mux, "send-reaction", c.handleSendReaction)

	return mux
}
