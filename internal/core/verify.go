package core

import (
	"context"
	"slices"
	"strings"

	"github.com/rs/zerolog"
)

// CharacterSource lists the characters of an authorized account.
type CharacterSource interface {
	Characters(ctx context.Context, accessToken string) ([]Character, error)
}

// Verifier matches an account's characters against the configured realm
// allow-list and guild name.
type Verifier struct {
	source  CharacterSource
	realms  []string
	guild   string
	emitter *Emitter
	log     *zerolog.Logger
}

// NewVerifier constructs a verifier for the given allow-list.
func NewVerifier(source CharacterSource, realms []string, guild string, emitter *Emitter, logger *zerolog.Logger) *Verifier {
	return &Verifier{
		source:  source,
		realms:  realms,
		guild:   guild,
		emitter: emitter,
		log:     logger,
	}
}

// Verify fetches the account's characters and selects the first one, in
// provider order, whose realm is allow-listed, whose guild matches exactly,
// and, when expectedName is non-empty, whose name matches it
// case-insensitively. Exactly one outcome is published and returned per
// call: the selected character with the profile attached, or a not-found
// result with code 404.
func (v *Verifier) Verify(ctx context.Context, profile AuthProfile, expectedName string) Outcome {
	characters, err := v.source.Characters(ctx, profile.AccessToken)
	if err != nil {
		// A provider error does not abort matching; whatever part of the
		// list came back is still evaluated.
		v.log.Warn().Err(err).Str("battletag", profile.Battletag).Msg("character fetch failed")
		v.emitter.Fail(ErrCodeProvider, err.Error())
	}

	for i := range characters {
		ch := characters[i]
		if !slices.Contains(v.realms, ch.Realm) {
			continue
		}
		if ch.Guild != v.guild {
			continue
		}
		if expectedName != "" && !strings.EqualFold(expectedName, ch.Name) {
			continue
		}
		ch.Profile = &profile
		v.log.Info().Str("character", ch.Name).Str("realm", ch.Realm).Msg("user verified")
		v.emitter.Publish(Event{Kind: EventUserVerified, Character: &ch})
		return Outcome{Character: &ch}
	}

	nv := &NotVerified{Profile: profile, Code: 404}
	v.log.Info().Str("battletag", profile.Battletag).Msg("user not verified")
	v.emitter.Publish(Event{Kind: EventUserNotVerified, NotVerified: nv})
	return Outcome{NotVerified: nv}
}
