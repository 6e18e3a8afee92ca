package core

import (
	"context"
	"errors"
	"testing"
)

type stubSource struct {
	characters []Character
	err        error
	calls      int
}

func (s *stubSource) Characters(ctx context.Context, accessToken string) ([]Character, error) {
	s.calls++
	return s.characters, s.err
}

func TestVerifySelectsFirstEligibleCharacter(t *testing.T) {
	source := &stubSource{characters: []Character{
		{Name: "Grom", Realm: "eu", Guild: "Horde Fist"},
		{Name: "Thrall", Realm: "us", Guild: "Target Guild"},
	}}
	emitter := NewEmitter()
	events := emitter.Subscribe(4)
	verifier := NewVerifier(source, []string{"us"}, "Target Guild", emitter, testLogger())

	profile := AuthProfile{AccessToken: "tok", SessionID: "1", StableID: "idA"}
	outcome := verifier.Verify(context.Background(), profile, "")

	if !outcome.Verified() {
		t.Fatalf("expected verified outcome, got %+v", outcome)
	}
	if outcome.Character.Name != "Thrall" {
		t.Fatalf("expected Thrall, got %s", outcome.Character.Name)
	}
	if outcome.Character.Profile == nil || outcome.Character.Profile.StableID != "idA" {
		t.Fatalf("expected profile attached to character, got %+v", outcome.Character.Profile)
	}

	ev := mustEvent(t, events, EventUserVerified)
	if ev.Character.Name != "Thrall" {
		t.Fatalf("unexpected verified event: %+v", ev.Character)
	}
}

func TestVerifyNoRealmMatchYieldsNotFound(t *testing.T) {
	source := &stubSource{characters: []Character{
		{Name: "Grom", Realm: "eu", Guild: "Horde Fist"},
		{Name: "Thrall", Realm: "us", Guild: "Target Guild"},
	}}
	emitter := NewEmitter()
	events := emitter.Subscribe(4)
	verifier := NewVerifier(source, []string{"kr"}, "Target Guild", emitter, testLogger())

	outcome := verifier.Verify(context.Background(), AuthProfile{}, "")

	if outcome.Verified() {
		t.Fatalf("expected not-verified outcome, got %+v", outcome)
	}
	if outcome.NotVerified.Code != 404 {
		t.Fatalf("expected code 404, got %d", outcome.NotVerified.Code)
	}

	mustEvent(t, events, EventUserNotVerified)
}

func TestVerifyFirstEligibleNotBestMatch(t *testing.T) {
	// Both characters are eligible; selection must stop at the first in
	// provider order even though the later one has a higher level.
	source := &stubSource{characters: []Character{
		{Name: "Alt", Realm: "us", Guild: "Target Guild", Level: 10},
		{Name: "Main", Realm: "us", Guild: "Target Guild", Level: 60},
	}}
	emitter := NewEmitter()
	verifier := NewVerifier(source, []string{"us"}, "Target Guild", emitter, testLogger())

	for i := 0; i < 3; i++ {
		outcome := verifier.Verify(context.Background(), AuthProfile{}, "")
		if !outcome.Verified() || outcome.Character.Name != "Alt" {
			t.Fatalf("expected deterministic first match Alt, got %+v", outcome.Character)
		}
	}
}

func TestVerifyExpectedNameCaseInsensitive(t *testing.T) {
	source := &stubSource{characters: []Character{
		{Name: "Alt", Realm: "us", Guild: "Target Guild"},
		{Name: "Main", Realm: "us", Guild: "Target Guild"},
	}}
	emitter := NewEmitter()
	verifier := NewVerifier(source, []string{"us"}, "Target Guild", emitter, testLogger())

	outcome := verifier.Verify(context.Background(), AuthProfile{}, "MAIN")
	if !outcome.Verified() || outcome.Character.Name != "Main" {
		t.Fatalf("expected Main via case-insensitive name filter, got %+v", outcome.Character)
	}
}

func TestVerifyGuildMatchIsCaseSensitive(t *testing.T) {
	source := &stubSource{characters: []Character{
		{Name: "Thrall", Realm: "us", Guild: "target guild"},
	}}
	emitter := NewEmitter()
	verifier := NewVerifier(source, []string{"us"}, "Target Guild", emitter, testLogger())

	outcome := verifier.Verify(context.Background(), AuthProfile{}, "")
	if outcome.Verified() {
		t.Fatalf("guild comparison must be case-sensitive, got %+v", outcome.Character)
	}
}

func TestVerifyEmptyListYieldsNotFound(t *testing.T) {
	emitter := NewEmitter()
	verifier := NewVerifier(&stubSource{}, []string{"us"}, "Target Guild", emitter, testLogger())

	outcome := verifier.Verify(context.Background(), AuthProfile{StableID: "idA"}, "")
	if outcome.Verified() {
		t.Fatalf("expected not-verified for empty list")
	}
	if outcome.NotVerified.Profile.StableID != "idA" {
		t.Fatalf("expected profile carried on not-found result")
	}
}

func TestVerifyProviderErrorDoesNotAbortMatching(t *testing.T) {
	// A partial list accompanied by an error is still matched against.
	source := &stubSource{
		characters: []Character{{Name: "Thrall", Realm: "us", Guild: "Target Guild"}},
		err:        errors.New("provider timeout"),
	}
	emitter := NewEmitter()
	events := emitter.Subscribe(8)
	verifier := NewVerifier(source, []string{"us"}, "Target Guild", emitter, testLogger())

	outcome := verifier.Verify(context.Background(), AuthProfile{}, "")

	ev := mustEvent(t, events, EventError)
	if ev.Error == nil || ev.Error.Code != ErrCodeProvider {
		t.Fatalf("expected provider error event, got %+v", ev)
	}
	if !outcome.Verified() {
		t.Fatalf("expected verification to continue past provider error")
	}
}

func TestVerifyExactlyOneOutcomeEmitted(t *testing.T) {
	source := &stubSource{characters: []Character{
		{Name: "Thrall", Realm: "us", Guild: "Target Guild"},
	}}
	emitter := NewEmitter()
	events := emitter.Subscribe(8)
	verifier := NewVerifier(source, []string{"us"}, "Target Guild", emitter, testLogger())

	verifier.Verify(context.Background(), AuthProfile{}, "")

	mustEvent(t, events, EventUserVerified)
	mustNoEvent(t, events)

	if source.calls != 1 {
		t.Fatalf("expected a single provider fetch, got %d", source.calls)
	}
}
