package dirverify

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Outcome tags a verification verdict. Exactly one outcome applies per call.
type Outcome string

const (
	OutcomeAuthenticated        Outcome = "authenticated"
	OutcomeResolved             Outcome = "resolved"
	OutcomeInvalidCredentials   Outcome = "invalid_credentials"
	OutcomeNotFound             Outcome = "not_found"
	OutcomeDirectoryUnavailable Outcome = "directory_unavailable"
)

// Verdict is the internal tagged result of one verification call.
type Verdict struct {
	Outcome Outcome
	Profile *Profile
	Detail  string
}

// Result is the uniform response shape handed to transport layers.
//
// The two negative outcomes of authentication — unknown account and wrong
// password — share one reason string, so the response cannot be used to
// enumerate which usernames exist. Infrastructure failures carry a
// distinguishable reason instead.
type Result struct {
	Verified bool     `json:"verified"`
	Profile  *Profile `json:"profile,omitempty"`
	Reason   string   `json:"reason,omitempty"`

	// Outcome lets transport layers pick a status code without parsing the
	// reason text. Never serialized.
	Outcome Outcome `json:"-"`
}

const (
	reasonInvalidCredentials = "invalid username or password"
	reasonNotFound           = "no matching directory record found"
	reasonUnavailable        = "directory unavailable"
)

// MetricsRecorder receives one observation per completed verification call.
// Implementations must be safe for concurrent use.
type MetricsRecorder interface {
	ObserveVerification(operation string, outcome Outcome, duration time.Duration)
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithServiceLogger sets the structured logger used by the service and its
// matcher.
func WithServiceLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics attaches a metrics recorder. Nil-safe; without it the service
// records nothing.
func WithMetrics(m MetricsRecorder) ServiceOption {
	return func(s *Service) { s.metrics = m }
}

// Service orchestrates the resolution and verification engine into the two
// public operations transport layers call.
type Service struct {
	dir      Directory
	matcher  *Matcher
	verifier *Verifier
	logger   *slog.Logger
	metrics  MetricsRecorder
}

// NewService builds a Service on top of a Directory.
func NewService(dir Directory, opts ...ServiceOption) *Service {
	s := &Service{dir: dir, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	s.matcher = NewMatcher(s.logger)
	s.verifier = NewVerifier(dir, s.logger)
	return s
}

// Authenticate confirms a username/password pair against the directory and
// returns the uniform result shape. Synchronous; returns once the full
// directory round trip completes.
func (s *Service) Authenticate(ctx context.Context, username, password string) Result {
	start := time.Now()
	requestID := uuid.NewString()

	verdict := s.authenticate(ctx, username, password)
	s.observe(ctx, "authenticate", requestID, verdict, time.Since(start))

	return verdict.toResult(reasonInvalidCredentials)
}

func (s *Service) authenticate(ctx context.Context, username, password string) Verdict {
	if username == "" || password == "" {
		return Verdict{Outcome: OutcomeInvalidCredentials}
	}

	profile, err := s.verifier.Authenticate(ctx, username, password)
	switch {
	case err == nil:
		return Verdict{Outcome: OutcomeAuthenticated, Profile: &profile}
	case IsUnavailable(err) || errors.Is(err, ErrSearchFailed) ||
		errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		return Verdict{Outcome: OutcomeDirectoryUnavailable, Detail: err.Error()}
	case IsNotFound(err):
		return Verdict{Outcome: OutcomeNotFound}
	default:
		// Wrong password and every other bind refusal collapse here, per
		// the anti-enumeration rule.
		return Verdict{Outcome: OutcomeInvalidCredentials}
	}
}

// ResolveProfile locates and normalizes an employee record from partial
// identifying inputs.
func (s *Service) ResolveProfile(ctx context.Context, in Inputs) Result {
	start := time.Now()
	requestID := uuid.NewString()

	verdict := s.resolveProfile(ctx, in)
	s.observe(ctx, "resolve_profile", requestID, verdict, time.Since(start))

	return verdict.toResult(reasonNotFound)
}

func (s *Service) resolveProfile(ctx context.Context, in Inputs) Verdict {
	if in.IsZero() {
		return Verdict{Outcome: OutcomeNotFound, Detail: "no identifying inputs supplied"}
	}

	sess, err := s.dir.Session(ctx)
	if err != nil {
		return Verdict{Outcome: OutcomeDirectoryUnavailable, Detail: err.Error()}
	}
	defer sess.Close()

	matches, err := s.matcher.Resolve(ctx, sess, PlanStrategies(in), in)
	switch {
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		return Verdict{Outcome: OutcomeDirectoryUnavailable, Detail: err.Error()}
	case IsNotFound(err):
		return Verdict{Outcome: OutcomeNotFound}
	case err != nil:
		return Verdict{Outcome: OutcomeDirectoryUnavailable, Detail: err.Error()}
	}

	profile := NormalizeProfile(matches[0].Record, Fallbacks{
		Email:       in.Email,
		DisplayName: in.DisplayName,
	})
	return Verdict{Outcome: OutcomeResolved, Profile: &profile}
}

// toResult flattens a verdict into the transport shape. negativeReason is
// the message used for both NotFound and InvalidCredentials so the two stay
// indistinguishable on the authentication path.
func (v Verdict) toResult(negativeReason string) Result {
	switch v.Outcome {
	case OutcomeAuthenticated, OutcomeResolved:
		return Result{Verified: true, Profile: v.Profile, Outcome: v.Outcome}
	case OutcomeDirectoryUnavailable:
		reason := reasonUnavailable
		if v.Detail != "" {
			reason = reasonUnavailable + ": " + v.Detail
		}
		return Result{Verified: false, Reason: reason, Outcome: v.Outcome}
	default:
		return Result{Verified: false, Reason: negativeReason, Outcome: v.Outcome}
	}
}

func (s *Service) observe(ctx context.Context, operation, requestID string, v Verdict, d time.Duration) {
	if s.metrics != nil {
		s.metrics.ObserveVerification(operation, v.Outcome, d)
	}
	s.logger.InfoContext(ctx, "verification_completed",
		slog.String("operation", operation),
		slog.String("request_id", requestID),
		slog.String("outcome", string(v.Outcome)),
		slog.Duration("duration", d))
}
