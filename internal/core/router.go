package core

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/guildgate/internal/tsquery"
)

// Router owns the session cache and turns raw ServerQuery notifications
// into domain events. The cache update for a connect notification completes
// before the corresponding event is published.
type Router struct {
	cache             *SessionCache
	emitter           *Emitter
	botNickname       string
	evictOnDisconnect bool
	log               *zerolog.Logger
}

// NewRouter constructs a router over the given cache and emitter.
func NewRouter(cache *SessionCache, emitter *Emitter, botNickname string, evictOnDisconnect bool, logger *zerolog.Logger) *Router {
	return &Router{
		cache:             cache,
		emitter:           emitter,
		botNickname:       botNickname,
		evictOnDisconnect: evictOnDisconnect,
		log:               logger,
	}
}

// Handle dispatches a single notification. Unknown notification kinds are
// ignored; missing fields pass through as empty strings.
func (r *Router) Handle(n tsquery.Notification) {
	switch n.Event {
	case "notifycliententerview":
		sess := &Session{
			ID:       n.Args["clid"],
			StableID: n.Args["client_unique_identifier"],
			Nickname: n.Args["client_nickname"],
		}
		r.cache.RecordConnect(sess.ID, sess.StableID)
		r.log.Debug().Str("clid", sess.ID).Str("nickname", sess.Nickname).Msg("client connected")
		r.emitter.Publish(Event{Kind: EventClientConnected, Session: sess})
	case "notifytextmessage":
		// Skip our own outgoing messages to avoid a feedback loop.
		if n.Args["invokername"] == r.botNickname {
			return
		}
		r.emitter.Publish(Event{
			Kind:      EventChatReceived,
			SessionID: n.Args["invokerid"],
			Text:      n.Args["msg"],
		})
	case "notifyclientleftview":
		if r.evictOnDisconnect {
			r.cache.Evict(n.Args["clid"])
		}
	}
}

// Run consumes notifications until the channel closes or the context ends.
func (r *Router) Run(ctx context.Context, notifications <-chan tsquery.Notification) {
	for {
		select {
		case n, ok := <-notifications:
			if !ok {
				return
			}
			r.Handle(n)
		case <-ctx.Done():
			return
		}
	}
}

// Cache exposes read access to the session cache.
func (r *Router) Cache() *SessionCache {
	return r.cache
}
