package tsquery

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"
)

// ClientEntry is one row of a clientlist response.
type ClientEntry struct {
	SessionID  string // clid
	StableID   string // client_unique_identifier
	Nickname   string
	DatabaseID string // durable client database id
}

// Group is one row of a servergrouplist response.
type Group struct {
	ID   string // sgid
	Name string
}

// Service exposes the typed command surface of the query link.
type Service struct {
	client *Client
	log    *zerolog.Logger
}

// NewService wraps a client with typed operations.
func NewService(client *Client, logger *zerolog.Logger) *Service {
	return &Service{client: client, log: logger}
}

// Login authenticates the query session.
func (s *Service) Login(ctx context.Context, username, password string) error {
	_, err := s.client.Exec(ctx, "login",
		P("client_login_name", username),
		P("client_login_password", password),
	)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	return nil
}

// Use selects the virtual server to operate on.
func (s *Service) Use(ctx context.Context, serverID int) error {
	_, err := s.client.Exec(ctx, "use", P("sid", strconv.Itoa(serverID)))
	if err != nil {
		return fmt.Errorf("use sid=%d: %w", serverID, err)
	}
	return nil
}

// SetNickname renames the query session's own client.
func (s *Service) SetNickname(ctx context.Context, nickname string) error {
	_, err := s.client.Exec(ctx, "clientupdate", P("client_nickname", nickname))
	if err != nil {
		return fmt.Errorf("clientupdate: %w", err)
	}
	return nil
}

// Subscribe registers for a notification class ("server", "textprivate").
func (s *Service) Subscribe(ctx context.Context, event string) error {
	_, err := s.client.Exec(ctx, "servernotifyregister", P("event", event))
	if err != nil {
		return fmt.Errorf("servernotifyregister %s: %w", event, err)
	}
	return nil
}

// ClientList lists the clients currently connected to the virtual server.
func (s *Service) ClientList(ctx context.Context) ([]ClientEntry, error) {
	resp, err := s.client.Exec(ctx, "clientlist -uid")
	if err != nil {
		return nil, fmt.Errorf("clientlist: %w", err)
	}

	entries := make([]ClientEntry, 0, len(resp.Records))
	for _, record := range resp.Records {
		entries = append(entries, ClientEntry{
			SessionID:  record["clid"],
			StableID:   record["client_unique_identifier"],
			Nickname:   record["client_nickname"],
			DatabaseID: record["client_database_id"],
		})
	}
	return entries, nil
}

// ServerGroupList lists the server's privilege groups.
func (s *Service) ServerGroupList(ctx context.Context) ([]Group, error) {
	resp, err := s.client.Exec(ctx, "servergrouplist")
	if err != nil {
		return nil, fmt.Errorf("servergrouplist: %w", err)
	}

	groups := make([]Group, 0, len(resp.Records))
	for _, record := range resp.Records {
		groups = append(groups, Group{ID: record["sgid"], Name: record["name"]})
	}
	return groups, nil
}

// GroupAddClient adds a durable client record to a server group.
func (s *Service) GroupAddClient(ctx context.Context, groupID, clientDBID string) error {
	_, err := s.client.Exec(ctx, "servergroupaddclient",
		P("sgid", groupID),
		P("cldbid", clientDBID),
	)
	if err != nil {
		return fmt.Errorf("servergroupaddclient: %w", err)
	}
	return nil
}

// GroupDelClient removes a durable client record from a server group.
func (s *Service) GroupDelClient(ctx context.Context, groupID, clientDBID string) error {
	_, err := s.client.Exec(ctx, "servergroupdelclient",
		P("sgid", groupID),
		P("cldbid", clientDBID),
	)
	if err != nil {
		return fmt.Errorf("servergroupdelclient: %w", err)
	}
	return nil
}

// SendPrivate delivers a private text message to a live session.
func (s *Service) SendPrivate(ctx context.Context, sessionID, message string) error {
	_, err := s.client.Exec(ctx, "sendtextmessage",
		P("targetmode", "1"),
		P("target", sessionID),
		P("msg", message),
	)
	if err != nil {
		return fmt.Errorf("sendtextmessage: %w", err)
	}
	return nil
}

// Poke flashes a short message at a live session.
func (s *Service) Poke(ctx context.Context, sessionID, message string) error {
	_, err := s.client.Exec(ctx, "clientpoke",
		P("clid", sessionID),
		P("msg", message),
	)
	if err != nil {
		return fmt.Errorf("clientpoke: %w", err)
	}
	return nil
}

// KeepAlive issues a clientlist on the given interval until the context
// ends. The response carries no semantic payload and is discarded; the
// request only prevents the server's idle timeout from dropping the link.
func (s *Service) KeepAlive(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := s.client.Exec(ctx, "clientlist"); err != nil {
				s.log.Warn().Err(err).Msg("keep-alive failed")
			}
		case <-ctx.Done():
			return
		}
	}
}
