package proto

import "github.com/vovakirdan/guildgate/internal/core"

// Outbound is one event frame on the /events stream.
type Outbound struct {
	Type        string            `json:"type"`
	Session     *SessionPayload   `json:"session,omitempty"`
	SessionID   string            `json:"session_id,omitempty"`
	Text        string            `json:"text,omitempty"`
	Profile     *ProfilePayload   `json:"profile,omitempty"`
	Character   *CharacterPayload `json:"character,omitempty"`
	Code        int               `json:"code,omitempty"`
	Port        int               `json:"port,omitempty"`
	Scheme      string            `json:"scheme,omitempty"`
	Error       *ErrorPayload     `json:"error,omitempty"`
}

// SessionPayload mirrors core.Session on the wire.
type SessionPayload struct {
	ID       string `json:"id"`
	StableID string `json:"stable_id"`
	Nickname string `json:"nickname"`
}

// ProfilePayload mirrors core.AuthProfile on the wire. The access token is
// deliberately not exposed on the stream.
type ProfilePayload struct {
	AccountID string `json:"account_id"`
	Battletag string `json:"battletag"`
	SessionID string `json:"session_id"`
	StableID  string `json:"stable_id"`
}

// CharacterPayload mirrors core.Character on the wire.
type CharacterPayload struct {
	Name    string          `json:"name"`
	Realm   string          `json:"realm"`
	Guild   string          `json:"guild"`
	Rank    int             `json:"rank"`
	Level   int             `json:"level"`
	Profile *ProfilePayload `json:"profile,omitempty"`
}

// ErrorPayload mirrors core.CoreError on the wire.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// FromEvent maps a domain event to its wire representation.
func FromEvent(ev core.Event) Outbound {
	switch ev.Kind {
	case core.EventQueryConnected:
		return Outbound{Type: "teamspeak.connected"}
	case core.EventClientConnected:
		return Outbound{Type: "teamspeak.client.connected", Session: sessionPayload(ev.Session)}
	case core.EventChatReceived:
		return Outbound{Type: "teamspeak.chat.received", SessionID: ev.SessionID, Text: ev.Text}
	case core.EventUserAuthenticated:
		return Outbound{Type: "battlenet.user.authenticated", Profile: profilePayload(ev.Profile)}
	case core.EventUserVerified:
		return Outbound{Type: "battlenet.user.verified", Character: characterPayload(ev.Character)}
	case core.EventUserNotVerified:
		out := Outbound{Type: "battlenet.user.notverified", Code: 404}
		if ev.NotVerified != nil {
			out.Code = ev.NotVerified.Code
			out.Profile = profilePayload(&ev.NotVerified.Profile)
		}
		return out
	case core.EventHTTPStarted:
		return Outbound{Type: "http.started", Port: ev.Port, Scheme: ev.Scheme}
	case core.EventError:
		out := Outbound{Type: "error"}
		if ev.Error != nil {
			out.Error = &ErrorPayload{Code: ev.Error.Code, Message: ev.Error.Message}
		}
		return out
	default:
		return Outbound{Type: "unknown"}
	}
}

func sessionPayload(s *core.Session) *SessionPayload {
	if s == nil {
		return nil
	}
	return &SessionPayload{ID: s.ID, StableID: s.StableID, Nickname: s.Nickname}
}

func profilePayload(p *core.AuthProfile) *ProfilePayload {
	if p == nil {
		return nil
	}
	return &ProfilePayload{
		AccountID: p.AccountID,
		Battletag: p.Battletag,
		SessionID: p.SessionID,
		StableID:  p.StableID,
	}
}

func characterPayload(c *core.Character) *CharacterPayload {
	if c == nil {
		return nil
	}
	return &CharacterPayload{
		Name:    c.Name,
		Realm:   c.Realm,
		Guild:   c.Guild,
		Rank:    c.Rank,
		Level:   c.Level,
		Profile: profilePayload(c.Profile),
	}
}
