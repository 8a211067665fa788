package dirverify

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Verifier implements the two-phase bind authentication protocol: resolve
// the account's distinguished name under the service bind, then prove
// possession of the password by re-binding as that DN.
type Verifier struct {
	dir    Directory
	logger *slog.Logger
}

// NewVerifier returns a Verifier using the given directory.
func NewVerifier(dir Directory, logger *slog.Logger) *Verifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Verifier{dir: dir, logger: logger}
}

// loginAttributes are the identity attributes a username is matched against
// during authentication.
var loginAttributes = []string{"uid", "cn", "mail", "sAMAccountName"}

// Authenticate validates a username/password pair.
//
// Errors classify as:
//   - ErrDirectoryUnavailable: the service bind itself failed; an
//     infrastructure problem, not a user-credential problem
//   - ErrNoMatch: zero or more than one record matched the username;
//     ambiguity fails closed rather than picking the first result
//   - ErrInvalidCredentials / ErrProtocolRefused: the user re-bind was
//     rejected; callers collapse both into one generic verdict
func (v *Verifier) Authenticate(ctx context.Context, username, password string) (Profile, error) {
	start := time.Now()
	masked := maskSensitiveData(username)

	sess, err := v.dir.Session(ctx)
	if err != nil {
		v.logger.Warn("authentication_service_bind_failed",
			slog.String("username_masked", masked),
			slog.String("error", err.Error()),
			slog.Duration("duration", time.Since(start)))
		return Profile{}, err
	}
	defer sess.Close()

	// Single highest-trust strategy only. Login is 1:1; if the username is
	// findable more than once that is a directory-data problem, not a
	// ranking problem.
	filter := andFilter(personClassFilter, orEquals(username, loginAttributes...))

	records, err := sess.Search(ctx, filter, profileAttributes)
	if err != nil {
		v.logger.Warn("authentication_lookup_failed",
			slog.String("username_masked", masked),
			slog.String("error", err.Error()),
			slog.Duration("duration", time.Since(start)))
		return Profile{}, err
	}

	record, err := exactlyOne(records)
	if err != nil {
		v.logger.Debug("authentication_lookup_not_unique",
			slog.String("username_masked", masked),
			slog.Int("matches", len(records)),
			slog.Duration("duration", time.Since(start)))
		return Profile{}, err
	}

	if err := sess.Rebind(ctx, record.DN(), password); err != nil {
		v.logger.Warn("authentication_bind_rejected",
			slog.String("username_masked", masked),
			slog.String("dn_masked", maskSensitiveData(record.DN())),
			slog.String("error", err.Error()),
			slog.Duration("duration", time.Since(start)))
		return Profile{}, err
	}

	v.logger.Info("authentication_successful",
		slog.String("username_masked", masked),
		slog.Duration("duration", time.Since(start)))

	return NormalizeProfile(record, Fallbacks{}), nil
}

// exactlyOne enforces the unique-account rule. Duplicate entries for the
// same DN (overlapping attribute matches) still count as one account.
func exactlyOne(records []Record) (Record, error) {
	seen := make(map[string]struct{}, len(records))
	var unique []Record
	for _, rec := range records {
		if _, dup := seen[rec.DN()]; dup {
			continue
		}
		seen[rec.DN()] = struct{}{}
		unique = append(unique, rec)
	}

	switch len(unique) {
	case 0:
		return Record{}, ErrNoMatch
	case 1:
		return unique[0], nil
	default:
		return Record{}, fmt.Errorf("%w (%d records)", ErrAmbiguousMatch, len(unique))
	}
}
