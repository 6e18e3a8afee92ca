package core

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/guildgate/internal/tsquery"
)

// QueryService is the slice of the ServerQuery surface the synchronizer
// needs: live client lookup, group lookup, and membership mutation.
type QueryService interface {
	ClientList(ctx context.Context) ([]tsquery.ClientEntry, error)
	ServerGroupList(ctx context.Context) ([]tsquery.Group, error)
	GroupAddClient(ctx context.Context, groupID, clientDBID string) error
	GroupDelClient(ctx context.Context, groupID, clientDBID string) error
}

// Synchronizer mutates privilege-group membership for verified accounts.
// Lookups are never cached; client and group lists are re-fetched per
// operation.
type Synchronizer struct {
	query   QueryService
	emitter *Emitter
	log     *zerolog.Logger
}

// NewSynchronizer constructs a synchronizer over the given query service.
func NewSynchronizer(query QueryService, emitter *Emitter, logger *zerolog.Logger) *Synchronizer {
	return &Synchronizer{query: query, emitter: emitter, log: logger}
}

// Grant adds the client resolved from target to the given group. A numeric
// target is treated as a session id, anything else as a stable identity;
// a numeric group as a group id, anything else as a case-insensitive group
// name. If either lookup fails no membership is mutated; the failure is
// published as an error event and returned. The add request itself is fire
// and forget: server-side rejection is not surfaced.
func (s *Synchronizer) Grant(ctx context.Context, target, group string) error {
	client, grp, err := s.resolve(ctx, target, group)
	if err != nil {
		return err
	}
	if err := s.query.GroupAddClient(ctx, grp.ID, client.DatabaseID); err != nil {
		s.log.Warn().Err(err).Str("group", grp.Name).Str("cldbid", client.DatabaseID).Msg("group add failed")
	}
	return nil
}

// Revoke removes the client resolved from target from the given group.
// Resolution works as in Grant. The removal is best effort: the server
// rejects removing a membership the account never had, so transport
// failures are logged and swallowed.
func (s *Synchronizer) Revoke(ctx context.Context, target, group string) error {
	client, grp, err := s.resolve(ctx, target, group)
	if err != nil {
		return err
	}
	if err := s.query.GroupDelClient(ctx, grp.ID, client.DatabaseID); err != nil {
		s.log.Warn().Err(err).Str("group", grp.Name).Str("cldbid", client.DatabaseID).Msg("group remove failed")
	}
	return nil
}

func (s *Synchronizer) resolve(ctx context.Context, target, group string) (*tsquery.ClientEntry, *tsquery.Group, error) {
	client, err := s.resolveClient(ctx, target)
	if err != nil {
		msg := fmt.Sprintf("unable to find client [%s] for group [%s]", target, group)
		s.log.Warn().Msg(msg)
		s.emitter.Fail(failCode(err, ErrCodeClientNotFound), msg)
		return nil, nil, err
	}

	grp, err := s.resolveGroup(ctx, group)
	if err != nil {
		msg := fmt.Sprintf("unable to find group [%s]", group)
		s.log.Warn().Msg(msg)
		s.emitter.Fail(failCode(err, ErrCodeGroupNotFound), msg)
		return nil, nil, err
	}

	return client, grp, nil
}

// failCode distinguishes a lookup miss from a broken query link.
func failCode(err error, notFound string) string {
	if errors.Is(err, ErrClientNotFound) || errors.Is(err, ErrGroupNotFound) {
		return notFound
	}
	return ErrCodeQueryFailed
}

func (s *Synchronizer) resolveClient(ctx context.Context, target string) (*tsquery.ClientEntry, error) {
	clients, err := s.query.ClientList(ctx)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}

	bySession := isNumeric(target)
	for i := range clients {
		c := clients[i]
		if bySession && c.SessionID == target {
			return &c, nil
		}
		if !bySession && c.StableID == target {
			return &c, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrClientNotFound, target)
}

func (s *Synchronizer) resolveGroup(ctx context.Context, group string) (*tsquery.Group, error) {
	groups, err := s.query.ServerGroupList(ctx)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}

	byID := isNumeric(group)
	for i := range groups {
		g := groups[i]
		if byID && g.ID == group {
			return &g, nil
		}
		if !byID && strings.EqualFold(g.Name, group) {
			return &g, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrGroupNotFound, group)
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	_, err := strconv.Atoi(s)
	return err == nil
}
