package core

// AuthProfile is a completed Battle.net authorization correlated back to the
// TeamSpeak session that requested it. Immutable once constructed by the
// auth bridge; persistence is left to the embedding application.
type AuthProfile struct {
	AccessToken string
	AccountID   string
	Battletag   string
	SessionID   string // transient clid, reassigned on every reconnect
	StableID    string // client unique identifier, survives reconnects
}

// Character is a game character as reported by the account API.
type Character struct {
	Name  string
	Realm string
	Guild string
	Rank  int
	Level int

	// Profile is attached by the verifier when the character matches the
	// allow-list, never by the provider.
	Profile *AuthProfile
}

// NotVerified reports a verification attempt that matched no character.
// It is a normal terminal outcome, not an error.
type NotVerified struct {
	Profile AuthProfile
	Code    int
}

// Outcome is the result of one verification attempt. Exactly one of
// Character or NotVerified is set.
type Outcome struct {
	Character   *Character
	NotVerified *NotVerified
}

// Verified reports whether the attempt selected a character.
func (o Outcome) Verified() bool {
	return o.Character != nil
}
