package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	"github.com/vovakirdan/guildgate/internal/bnet"
	"github.com/vovakirdan/guildgate/internal/core"
)

const (
	genericErrorPage   = "Error"
	genericFailurePage = "Something went wrong..."
	closingPage        = "<script>window.close()</script>You can close this window."
)

// Provider is the OAuth surface the bridge drives.
type Provider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
	UserInfo(ctx context.Context, token *oauth2.Token) (*bnet.UserInfo, error)
}

// AuthBridge implements the two OAuth correlation endpoints. The auth
// endpoint serializes the session pair into the provider state; the
// callback decodes it, attaches it to the profile, and hands the profile
// to the verifier.
type AuthBridge struct {
	provider Provider
	verifier *core.Verifier
	emitter  *core.Emitter
	log      *zerolog.Logger
}

// NewAuthBridge constructs the bridge handlers.
func NewAuthBridge(provider Provider, verifier *core.Verifier, emitter *core.Emitter, logger *zerolog.Logger) *AuthBridge {
	return &AuthBridge{
		provider: provider,
		verifier: verifier,
		emitter:  emitter,
		log:      logger,
	}
}

// Auth initiates the OAuth flow for a session pair.
// GET /auth/:clid/:cluid
func (b *AuthBridge) Auth(c *gin.Context) {
	st := State{
		SessionID: c.Param("clid"),
		StableID:  c.Param("cluid"),
		Nonce:     uuid.NewString(),
	}
	c.Redirect(http.StatusFound, b.provider.AuthCodeURL(EncodeState(st)))
}

// Callback completes the OAuth flow.
// GET /callback
func (b *AuthBridge) Callback(c *gin.Context) {
	raw := c.Query("state")
	if raw == "" {
		b.log.Warn().Msg("callback without state")
		c.String(http.StatusBadRequest, genericErrorPage)
		return
	}
	st, err := DecodeState(raw)
	if err != nil {
		b.log.Warn().Err(err).Msg("callback with undecodable state")
		c.String(http.StatusBadRequest, genericErrorPage)
		return
	}

	token, err := b.provider.Exchange(c.Request.Context(), c.Query("code"))
	if err != nil {
		b.log.Warn().Err(err).Msg("code exchange failed")
		c.String(http.StatusBadGateway, genericFailurePage)
		return
	}

	info, err := b.provider.UserInfo(c.Request.Context(), token)
	if err != nil || info == nil {
		b.log.Warn().Err(err).Msg("no profile returned by provider")
		c.String(http.StatusBadGateway, genericFailurePage)
		return
	}

	profile := core.AuthProfile{
		AccessToken: token.AccessToken,
		AccountID:   info.ID,
		Battletag:   info.Battletag,
		SessionID:   st.SessionID,
		StableID:    st.StableID,
	}
	b.emitter.Publish(core.Event{Kind: core.EventUserAuthenticated, Profile: &profile})

	// Verification runs detached; the browser window is done either way.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		b.verifier.Verify(ctx, profile, "")
	}()

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.String(http.StatusOK, closingPage)
}
