package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/vovakirdan/guildgate/internal/core"
	"github.com/vovakirdan/guildgate/internal/store"
)

// dispatch is the default event wiring: greet connecting clients with an
// auth link (or re-verify a stored profile), persist authorizations, and
// synchronize the privilege group on verification outcomes.
func (a *App) dispatch(ctx context.Context) {
	events := a.emitter.Subscribe(32)
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			switch ev.Kind {
			case core.EventClientConnected:
				a.onClientConnected(ctx, ev.Session)
			case core.EventUserAuthenticated:
				a.onAuthenticated(ctx, ev.Profile)
			case core.EventUserVerified:
				a.onVerified(ctx, ev.Character)
			case core.EventUserNotVerified:
				a.onNotVerified(ctx, ev.NotVerified)
			case core.EventError:
				a.log.Warn().Str("code", ev.Error.Code).Msg(ev.Error.Message)
			}
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) onClientConnected(ctx context.Context, sess *core.Session) {
	stored, err := a.store.GetProfile(ctx, sess.StableID)
	if err == nil {
		// Known identity: re-check guild membership instead of asking the
		// user to authenticate again.
		profile := core.AuthProfile{
			AccessToken: stored.AccessToken,
			AccountID:   stored.AccountID,
			Battletag:   stored.Battletag,
			SessionID:   sess.ID,
			StableID:    sess.StableID,
		}
		go a.verifier.Verify(ctx, profile, "")
		return
	}
	if !errors.Is(err, store.ErrNotFound) {
		a.log.Warn().Err(err).Str("cluid", sess.StableID).Msg("profile lookup failed")
	}

	link := a.server.AuthLink(sess.ID, sess.StableID)
	msg := fmt.Sprintf("Hello %s, please open [url=%s]this link[/url] to verify your guild membership.", sess.Nickname, link)
	if err := a.service.SendPrivate(ctx, sess.ID, msg); err != nil {
		a.log.Warn().Err(err).Str("clid", sess.ID).Msg("could not send auth link")
	}
}

func (a *App) onAuthenticated(ctx context.Context, profile *core.AuthProfile) {
	err := a.store.SaveProfile(ctx, &store.Profile{
		StableID:    profile.StableID,
		SessionID:   profile.SessionID,
		AccountID:   profile.AccountID,
		Battletag:   profile.Battletag,
		AccessToken: profile.AccessToken,
	})
	if err != nil {
		a.log.Warn().Err(err).Str("battletag", profile.Battletag).Msg("could not persist profile")
	}
}

func (a *App) onVerified(ctx context.Context, character *core.Character) {
	if a.cfg.PrivilegeGroup == "" || character.Profile == nil {
		return
	}
	profile := character.Profile

	if err := a.sync.Grant(ctx, profile.StableID, a.cfg.PrivilegeGroup); err != nil {
		a.log.Warn().Err(err).Str("group", a.cfg.PrivilegeGroup).Msg("grant failed")
	}
	msg := fmt.Sprintf("%s, you are verified and promoted to %s.", character.Name, a.cfg.PrivilegeGroup)
	if err := a.service.SendPrivate(ctx, profile.SessionID, msg); err != nil {
		a.log.Warn().Err(err).Str("clid", profile.SessionID).Msg("could not send confirmation")
	}
}

func (a *App) onNotVerified(ctx context.Context, nv *core.NotVerified) {
	profile := nv.Profile
	if a.cfg.PrivilegeGroup != "" {
		if err := a.sync.Revoke(ctx, profile.StableID, a.cfg.PrivilegeGroup); err != nil {
			a.log.Warn().Err(err).Str("group", a.cfg.PrivilegeGroup).Msg("revoke failed")
		}
	}
	if err := a.store.DeleteProfile(ctx, profile.StableID); err != nil {
		a.log.Warn().Err(err).Str("cluid", profile.StableID).Msg("could not delete profile")
	}

	msg := fmt.Sprintf("%s does not have any characters in %s.", profile.Battletag, a.cfg.GuildName)
	if err := a.service.SendPrivate(ctx, profile.SessionID, msg); err != nil {
		a.log.Warn().Err(err).Str("clid", profile.SessionID).Msg("could not send notice")
	}
}
