package http

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

// State is the correlation pair threaded through the OAuth round trip so
// the callback can be matched back to the originating session. It travels
// to the provider and back unchanged; no server-side state is kept.
type State struct {
	SessionID string `json:"clid"`
	StableID  string `json:"cluid"`
	Nonce     string `json:"nonce,omitempty"`
}

// EncodeState serializes the state for the provider's state passthrough.
func EncodeState(st State) string {
	data, _ := json.Marshal(st)
	return string(data)
}

// DecodeState parses the state blob returned by the provider and undoes
// the percent-encoding applied to the stable identity in the auth link.
// Decoding is idempotent for identities that arrived already unescaped.
func DecodeState(raw string) (State, error) {
	var st State
	if err := json.Unmarshal([]byte(raw), &st); err != nil {
		return State{}, fmt.Errorf("decode state: %w", err)
	}
	if unescaped, err := url.PathUnescape(st.StableID); err == nil {
		st.StableID = unescaped
	}
	return st, nil
}

// AuthLink builds the externally shared URL that starts verification for a
// session. The stable identity is percent-encoded into the path.
func AuthLink(baseURL, sessionID, stableID string) string {
	return fmt.Sprintf("%s/auth/%s/%s",
		strings.TrimRight(baseURL, "/"), sessionID, url.PathEscape(stableID))
}
