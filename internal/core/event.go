package core

// EventKind identifies what happened in the system.
type EventKind int

const (
	// EventQueryConnected fires once the ServerQuery link is logged in and
	// subscribed to notifications.
	EventQueryConnected EventKind = iota
	// EventClientConnected fires when a voice client enters the server.
	EventClientConnected
	// EventChatReceived fires for private text messages sent to the bot.
	EventChatReceived
	// EventUserAuthenticated fires when the OAuth callback produced a profile.
	EventUserAuthenticated
	// EventUserVerified fires when a character matched the allow-list.
	EventUserVerified
	// EventUserNotVerified fires when no character matched the allow-list.
	EventUserNotVerified
	// EventHTTPStarted fires once the web endpoints are listening.
	EventHTTPStarted
	// EventError carries non-fatal failures from the pipeline.
	EventError
)

// Event is the single tagged union delivered to subscribers. The payload
// fields relevant to a Kind are set, everything else is zero.
type Event struct {
	Kind EventKind

	Session     *Session     // EventClientConnected
	SessionID   string       // EventChatReceived
	Text        string       // EventChatReceived
	Profile     *AuthProfile // EventUserAuthenticated
	Character   *Character   // EventUserVerified
	NotVerified *NotVerified // EventUserNotVerified
	Port        int          // EventHTTPStarted
	Scheme      string       // EventHTTPStarted
	Error       *CoreError   // EventError
}
