package http

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	stdhttp "net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/guildgate/internal/config"
	"github.com/vovakirdan/guildgate/internal/core"
)

// Server hosts the auth bridge endpoints and the event stream. The listen
// scheme and port derive from the configured base URL.
type Server struct {
	srv     *stdhttp.Server
	emitter *core.Emitter
	log     *zerolog.Logger

	baseURL  string
	scheme   string
	port     int
	certFile string
	keyFile  string
}

// NewServer builds the gin engine and the enclosing HTTP server.
func NewServer(cfg *config.Config, bridge *AuthBridge, events *EventsHandler, emitter *core.Emitter, logger *zerolog.Logger) (*Server, error) {
	scheme, port, err := splitBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, err
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(LoggerMiddleware(logger), gin.Recovery())

	// Stable identities are base64 and may contain percent-encoded
	// slashes; keep path values raw and unescape at the callback.
	router.UseRawPath = true
	router.UnescapePathValues = false

	router.GET("/health", healthHandler)
	router.GET("/auth/:clid/:cluid", bridge.Auth)
	router.GET("/callback", bridge.Callback)
	router.GET("/events", gin.WrapH(events))

	srv := &stdhttp.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
	if scheme == "https" {
		srv.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	return &Server{
		srv:      srv,
		emitter:  emitter,
		log:      logger,
		baseURL:  cfg.BaseURL,
		scheme:   scheme,
		port:     port,
		certFile: cfg.TLSCertFile,
		keyFile:  cfg.TLSKeyFile,
	}, nil
}

// AuthLink builds the auth URL for a session against the configured base.
func (s *Server) AuthLink(sessionID, stableID string) string {
	return AuthLink(s.baseURL, sessionID, stableID)
}

// Start listens and serves until the server is shut down. The started
// event is published once the listener is bound.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.srv.Addr, err)
	}

	s.log.Info().Int("port", s.port).Str("scheme", s.scheme).Msg("http server listening")
	s.emitter.Publish(core.Event{Kind: core.EventHTTPStarted, Port: s.port, Scheme: s.scheme})

	if s.scheme == "https" {
		return s.srv.ServeTLS(ln, s.certFile, s.keyFile)
	}
	return s.srv.Serve(ln)
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func healthHandler(c *gin.Context) {
	c.String(stdhttp.StatusOK, "ok")
}

// splitBaseURL derives the listen scheme and port from the base URL,
// defaulting the port by scheme.
func splitBaseURL(baseURL string) (string, int, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", 0, fmt.Errorf("parse base url: %w", err)
	}
	scheme := u.Scheme
	if scheme != "http" && scheme != "https" {
		return "", 0, fmt.Errorf("unsupported base url scheme %q", scheme)
	}

	if p := u.Port(); p != "" {
		var port int
		if _, err := fmt.Sscanf(p, "%d", &port); err != nil {
			return "", 0, fmt.Errorf("parse base url port: %w", err)
		}
		return scheme, port, nil
	}
	if scheme == "https" {
		return scheme, 443, nil
	}
	return scheme, 80, nil
}
