package dirverify

import (
	"errors"
	"fmt"

	"github.com/go-ldap/ldap/v3"
)

// Sentinel errors classifying directory operation failures. They form the
// stable surface callers test with errors.Is; richer context travels in the
// wrapping DirectoryError.
var (
	// ErrDirectoryUnavailable covers transport-level failures: unreachable
	// host, TLS negotiation failure, dial timeout, or the directory refusing
	// the service bind. Always fatal to the call it occurs in.
	ErrDirectoryUnavailable = errors.New("dirverify: directory unavailable")

	// ErrInvalidCredentials is returned when a bind is rejected because the
	// supplied secret is wrong.
	ErrInvalidCredentials = errors.New("dirverify: invalid credentials")

	// ErrProtocolRefused is returned when the directory rejects a bind for a
	// reason other than a wrong password (malformed DN, locked account,
	// unwilling to perform). Kept distinct from ErrInvalidCredentials
	// internally; the service boundary collapses both on the
	// authentication path.
	ErrProtocolRefused = errors.New("dirverify: directory refused request")

	// ErrSearchFailed is returned when the directory rejects a search
	// (malformed filter, server-side failure). Recoverable per strategy.
	ErrSearchFailed = errors.New("dirverify: search failed")

	// ErrNoMatch is the valid negative result: a well-formed query matched
	// zero records, or an ambiguous login matched more than one.
	ErrNoMatch = errors.New("dirverify: no matching record")

	// ErrAmbiguousMatch is returned when a login search resolves more than
	// one unique distinguished name for a single username. It satisfies
	// errors.Is(err, ErrNoMatch): ambiguity fails closed.
	ErrAmbiguousMatch = fmt.Errorf("%w: multiple records match username", ErrNoMatch)
)

// DirectoryError wraps an underlying error with the operation and server it
// occurred on.
type DirectoryError struct {
	// Op is the operation name (e.g. "Session", "Search", "Rebind").
	Op string
	// DN is the distinguished name involved, if any.
	DN string
	// Server is the directory endpoint URL.
	Server string
	// Code is the LDAP result code, when the underlying error carried one.
	Code int
	// Err is the underlying error.
	Err error
}

func (e *DirectoryError) Error() string {
	if e.DN != "" {
		return fmt.Sprintf("dirverify: %s failed for DN %q on %q: %v", e.Op, e.DN, e.Server, e.Err)
	}
	return fmt.Sprintf("dirverify: %s failed on %q: %v", e.Op, e.Server, e.Err)
}

func (e *DirectoryError) Unwrap() error { return e.Err }

func newDirectoryError(op, server string, err error) *DirectoryError {
	de := &DirectoryError{Op: op, Server: server, Err: err}
	var lerr *ldap.Error
	if errors.As(err, &lerr) {
		de.Code = int(lerr.ResultCode)
	}
	return de
}

func (e *DirectoryError) withDN(dn string) *DirectoryError {
	e.DN = dn
	return e
}

// classifyBindError maps a failed bind onto the credential/protocol split.
// Only LDAPResultInvalidCredentials means "the password is wrong"; every
// other result code is the directory refusing the request for its own
// reasons and must not be reported as a credential failure.
func classifyBindError(op, server, dn string, err error) error {
	de := newDirectoryError(op, server, err).withDN(dn)
	if ldap.IsErrorWithCode(err, ldap.LDAPResultInvalidCredentials) {
		return fmt.Errorf("%w: %w", ErrInvalidCredentials, de)
	}
	return fmt.Errorf("%w: %w", ErrProtocolRefused, de)
}

// IsInvalidCredentials reports whether err means a bind was rejected for a
// wrong secret.
func IsInvalidCredentials(err error) bool {
	return errors.Is(err, ErrInvalidCredentials)
}

// IsUnavailable reports whether err is an infrastructure-level failure that
// should surface as "directory unavailable" rather than a negative verdict.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrDirectoryUnavailable)
}

// IsNotFound reports whether err is the valid zero-or-ambiguous-match
// outcome.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNoMatch)
}
