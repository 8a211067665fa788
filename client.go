package dirverify

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/go-ldap/ldap/v3"
)

// Default request-bounding limits. A directory holding thousands of matches
// must not be allowed to stall a verification call.
const (
	DefaultDialTimeout      = 10 * time.Second
	DefaultSizeLimit        = 50
	DefaultTimeLimitSeconds = 10
)

// Config contains the configuration for directory connections.
type Config struct {
	// ServerURL is the directory endpoint, e.g. "ldaps://ldap.example.com:636".
	ServerURL string
	// BaseDN is the subtree all searches are scoped under.
	BaseDN string
	// ServiceDN and ServicePassword identify the pre-configured service
	// principal used for the initial bind of every session.
	ServiceDN       string
	ServicePassword string

	// TLSConfig controls transport trust. Leave nil for the library default;
	// set InsecureSkipVerify only for test deployments.
	TLSConfig *tls.Config

	// DialTimeout bounds connection establishment.
	DialTimeout time.Duration
	// SizeLimit caps the number of entries a single search may return.
	SizeLimit int
	// TimeLimitSeconds is the server-side time limit per search.
	TimeLimitSeconds int

	Logger *slog.Logger
}

// Option is a functional option for configuring a Client.
type Option func(*Client)

// WithLogger sets a custom structured logger for directory operations.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithTLSConfig sets the TLS configuration used when dialing the directory.
func WithTLSConfig(tlsConfig *tls.Config) Option {
	return func(c *Client) {
		c.config.TLSConfig = tlsConfig
	}
}

// WithDialTimeout bounds how long connection establishment may take.
func WithDialTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.config.DialTimeout = d
		}
	}
}

// WithSearchLimits sets the per-search result-count ceiling and server-side
// time limit.
func WithSearchLimits(sizeLimit, timeLimitSeconds int) Option {
	return func(c *Client) {
		if sizeLimit > 0 {
			c.config.SizeLimit = sizeLimit
		}
		if timeLimitSeconds > 0 {
			c.config.TimeLimitSeconds = timeLimitSeconds
		}
	}
}

// Client creates directory sessions. It holds configuration only; every
// verification call opens and closes its own session.
type Client struct {
	config Config
	logger *slog.Logger
}

// NewClient validates the configuration and returns a Client. No connection
// is made until Session is called.
func NewClient(config *Config, opts ...Option) (*Client, error) {
	if config == nil {
		return nil, errors.New("config cannot be nil")
	}
	if config.ServerURL == "" {
		return nil, errors.New("server URL cannot be empty")
	}
	if config.BaseDN == "" {
		return nil, errors.New("base DN cannot be empty")
	}
	if config.ServiceDN == "" {
		return nil, errors.New("service DN cannot be empty")
	}
	if config.ServicePassword == "" {
		return nil, errors.New("service password cannot be empty")
	}

	c := &Client{config: *config, logger: slog.Default()}
	if config.Logger != nil {
		c.logger = config.Logger
	}
	if c.config.DialTimeout <= 0 {
		c.config.DialTimeout = DefaultDialTimeout
	}
	if c.config.SizeLimit <= 0 {
		c.config.SizeLimit = DefaultSizeLimit
	}
	if c.config.TimeLimitSeconds <= 0 {
		c.config.TimeLimitSeconds = DefaultTimeLimitSeconds
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// BaseDN returns the configured search base.
func (c *Client) BaseDN() string { return c.config.BaseDN }

// Session dials the directory and binds the service principal. The returned
// session must be closed by the caller on every exit path.
//
// Both dial and service-bind failures classify as ErrDirectoryUnavailable:
// neither says anything about the end user's credentials.
func (c *Client) Session(ctx context.Context) (Session, error) {
	start := time.Now()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.logger.Debug("directory_session_establishing",
		slog.String("server", c.config.ServerURL),
		slog.String("base_dn", c.config.BaseDN))

	dialOpts := []ldap.DialOpt{
		ldap.DialWithDialer(&net.Dialer{Timeout: c.config.DialTimeout}),
	}
	if c.config.TLSConfig != nil {
		dialOpts = append(dialOpts, ldap.DialWithTLSConfig(c.config.TLSConfig))
	}

	conn, err := ldap.DialURL(c.config.ServerURL, dialOpts...)
	if err != nil {
		c.logger.Error("directory_dial_failed",
			slog.String("server", c.config.ServerURL),
			slog.String("error", err.Error()),
			slog.Duration("duration", time.Since(start)))
		return nil, fmt.Errorf("%w: %w", ErrDirectoryUnavailable,
			newDirectoryError("Session", c.config.ServerURL, err))
	}
	conn.SetTimeout(c.config.DialTimeout)

	select {
	case <-ctx.Done():
		_ = conn.Close()
		return nil, ctx.Err()
	default:
	}

	if err := conn.Bind(c.config.ServiceDN, c.config.ServicePassword); err != nil {
		_ = conn.Close()
		c.logger.Error("directory_service_bind_failed",
			slog.String("server", c.config.ServerURL),
			slog.String("service_dn_masked", maskSensitiveData(c.config.ServiceDN)),
			slog.String("error", err.Error()),
			slog.Duration("duration", time.Since(start)))
		return nil, fmt.Errorf("%w: %w", ErrDirectoryUnavailable,
			newDirectoryError("Session", c.config.ServerURL, err).withDN(c.config.ServiceDN))
	}

	c.logger.Debug("directory_session_established",
		slog.String("server", c.config.ServerURL),
		slog.Duration("duration", time.Since(start)))

	return &ldapSession{
		conn:   conn,
		config: c.config,
		logger: c.logger,
	}, nil
}

// ldapSession is one bound network session against the directory.
type ldapSession struct {
	conn   *ldap.Conn
	config Config
	logger *slog.Logger
}

// Search executes a subtree search under the configured base DN. The
// configured size and time limits apply; when the directory reports that
// either limit was exceeded, the partial result set collected so far is
// returned instead of an error.
func (s *ldapSession) Search(ctx context.Context, filter string, attributes []string) ([]Record, error) {
	start := time.Now()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	req := &ldap.SearchRequest{
		BaseDN:       s.config.BaseDN,
		Scope:        ldap.ScopeWholeSubtree,
		DerefAliases: ldap.NeverDerefAliases,
		SizeLimit:    s.config.SizeLimit,
		TimeLimit:    s.config.TimeLimitSeconds,
		Filter:       filter,
		Attributes:   attributes,
	}

	r, err := s.conn.Search(req)
	records, truncated, err := classifySearch(s.config.ServerURL, r, err)
	if err != nil {
		s.logger.Debug("directory_search_failed",
			slog.String("server", s.config.ServerURL),
			slog.String("error", err.Error()),
			slog.Duration("duration", time.Since(start)))
		return nil, err
	}

	if truncated {
		s.logger.Debug("directory_search_truncated",
			slog.String("server", s.config.ServerURL),
			slog.Int("entries", len(records)),
			slog.Duration("duration", time.Since(start)))
	} else {
		s.logger.Debug("directory_search_completed",
			slog.String("server", s.config.ServerURL),
			slog.Int("entries", len(records)),
			slog.Duration("duration", time.Since(start)))
	}

	return records, nil
}

// classifySearch maps one completed search exchange onto the records the
// caller may use. A directory reporting that the size or time limit was
// exceeded still hands over the entries collected so far; that partial set
// is a usable result, not a failure. Every other search error fails the
// exchange with ErrSearchFailed.
func classifySearch(server string, r *ldap.SearchResult, err error) (records []Record, truncated bool, _ error) {
	if err != nil {
		exceeded := ldap.IsErrorWithCode(err, ldap.LDAPResultSizeLimitExceeded) ||
			ldap.IsErrorWithCode(err, ldap.LDAPResultTimeLimitExceeded)
		if !exceeded || r == nil {
			return nil, false, fmt.Errorf("%w: %w", ErrSearchFailed,
				newDirectoryError("Search", server, err))
		}
		return recordsFromResult(r), true, nil
	}
	return recordsFromResult(r), false, nil
}

// Rebind authenticates the session as the given principal, proving
// possession of the secret. After a successful Rebind the session holds the
// user's bind state and must not be reused for further service searches.
func (s *ldapSession) Rebind(ctx context.Context, dn, password string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := validateRebindPassword(password); err != nil {
		return err
	}

	if err := s.conn.Bind(dn, password); err != nil {
		return classifyBindError("Rebind", s.config.ServerURL, dn, err)
	}
	return nil
}

// validateRebindPassword blocks empty passwords before they reach the
// directory. An empty password would trigger an unauthenticated bind, which
// most directories accept; that must never count as proof of possession.
func validateRebindPassword(password string) error {
	if password == "" {
		return fmt.Errorf("%w: empty password", ErrInvalidCredentials)
	}
	return nil
}

// Close unbinds and releases the session. Failures are logged, never
// propagated: closing an already-broken session is not an error condition
// for the caller.
func (s *ldapSession) Close() {
	if err := s.conn.Close(); err != nil {
		s.logger.Debug("directory_session_close_failed",
			slog.String("server", s.config.ServerURL),
			slog.String("error", err.Error()))
	}
}

func recordsFromResult(r *ldap.SearchResult) []Record {
	records := make([]Record, 0, len(r.Entries))
	for _, entry := range r.Entries {
		records = append(records, recordFromEntry(entry))
	}
	return records
}
