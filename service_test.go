package dirverify

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveProfileSingleEmailMatch(t *testing.T) {
	rec := NewRecord("cn=Alice A,ou=people,dc=co,dc=com", map[string][]string{
		"mail": {"a@co.com"},
		"cn":   {"Alice A"},
	})
	svc := NewService(&fakeDirectory{session: matchingSession(rec)})

	res := svc.ResolveProfile(context.Background(), Inputs{Email: "a@co.com"})

	assert.True(t, res.Verified)
	assert.Equal(t, OutcomeResolved, res.Outcome)
	require.NotNil(t, res.Profile)
	assert.Equal(t, "Alice A", res.Profile.Name)
	assert.Equal(t, "a@co.com", res.Profile.Email)
	assert.Empty(t, res.Reason)
}

func TestResolveProfileNoMatch(t *testing.T) {
	svc := NewService(&fakeDirectory{session: matchingSession()})

	res := svc.ResolveProfile(context.Background(), Inputs{Email: "ghost@co.com"})

	assert.False(t, res.Verified)
	assert.Nil(t, res.Profile)
	assert.Contains(t, res.Reason, "not found")
}

func TestResolveProfileNoInputs(t *testing.T) {
	svc := NewService(&fakeDirectory{session: matchingSession()})

	res := svc.ResolveProfile(context.Background(), Inputs{})

	assert.False(t, res.Verified)
	assert.Nil(t, res.Profile)
}

func TestResolveProfilePicksHighestScore(t *testing.T) {
	other := NewRecord("cn=Alice Abel,ou=people,dc=co,dc=com", map[string][]string{
		"cn": {"Alice Abel"},
	})
	exact := NewRecord("cn=Alice A,ou=people,dc=co,dc=com", map[string][]string{
		"cn":   {"Alice A"},
		"mail": {"a@co.com"},
	})
	svc := NewService(&fakeDirectory{session: matchingSession(other, exact)})

	res := svc.ResolveProfile(context.Background(), Inputs{
		Email:       "a@co.com",
		DisplayName: "Alice",
	})

	require.True(t, res.Verified)
	assert.Equal(t, "Alice A", res.Profile.Name)
}

func TestResolveProfileFallbacksFromInputs(t *testing.T) {
	// Record carries an id attribute only; name and email come from the
	// caller-supplied inputs, not the sentinels.
	rec := NewRecord("uid=alice,ou=people,dc=co,dc=com", map[string][]string{
		"uid": {"alice"},
	})
	svc := NewService(&fakeDirectory{session: matchingSession(rec)})

	res := svc.ResolveProfile(context.Background(), Inputs{
		UserID:      "alice",
		Email:       "a@co.com",
		DisplayName: "Alice A",
	})

	require.True(t, res.Verified)
	assert.Equal(t, "Alice A", res.Profile.Name)
	assert.Equal(t, "a@co.com", res.Profile.Email)
	assert.Equal(t, "alice", res.Profile.EmployeeID)
}

func TestResolveProfileDirectoryUnavailable(t *testing.T) {
	svc := NewService(&fakeDirectory{sessionErr: ErrDirectoryUnavailable})

	res := svc.ResolveProfile(context.Background(), Inputs{Email: "a@co.com"})

	assert.False(t, res.Verified)
	assert.Equal(t, OutcomeDirectoryUnavailable, res.Outcome)
	assert.Contains(t, res.Reason, "directory unavailable")
	assert.NotEqual(t, reasonNotFound, res.Reason)
}

func TestResolveProfileReleasesSession(t *testing.T) {
	sess := matchingSession()
	svc := NewService(&fakeDirectory{session: sess})

	_ = svc.ResolveProfile(context.Background(), Inputs{Email: "ghost@co.com"})
	assert.Equal(t, 1, sess.closeCount)
}

func TestAuthenticateVerdictShapesIndistinguishable(t *testing.T) {
	// "alice" exists but the password is wrong; "ghost" does not exist.
	// The two responses must be identical in shape and reason.
	sess := &fakeSession{
		searchFn: func(filter string) ([]Record, error) {
			return matchingSession(aliceRecord()).searchFn(filter)
		},
		rebindFn: func(string, string) error { return ErrInvalidCredentials },
	}
	svc := NewService(&fakeDirectory{session: sess})

	wrongPass := svc.Authenticate(context.Background(), "alice", "wrongpass")
	sess2 := matchingSession()
	svc2 := NewService(&fakeDirectory{session: sess2})
	unknown := svc2.Authenticate(context.Background(), "ghost", "whatever")

	assert.False(t, wrongPass.Verified)
	assert.False(t, unknown.Verified)
	assert.Nil(t, wrongPass.Profile)
	assert.Nil(t, unknown.Profile)
	assert.Equal(t, wrongPass.Reason, unknown.Reason)
}

func TestAuthenticateProtocolRefusalCollapsesToGeneric(t *testing.T) {
	// A locked account (protocol-level refusal) must read exactly like a
	// wrong password.
	sess := &fakeSession{
		searchFn: func(filter string) ([]Record, error) {
			return matchingSession(aliceRecord()).searchFn(filter)
		},
		rebindFn: func(string, string) error { return ErrProtocolRefused },
	}
	svc := NewService(&fakeDirectory{session: sess})

	res := svc.Authenticate(context.Background(), "alice", "pw")
	assert.False(t, res.Verified)
	assert.Equal(t, reasonInvalidCredentials, res.Reason)
}

func TestAuthenticateDirectoryUnavailableDistinguishable(t *testing.T) {
	svc := NewService(&fakeDirectory{sessionErr: ErrDirectoryUnavailable})

	res := svc.Authenticate(context.Background(), "alice", "pw")
	assert.False(t, res.Verified)
	assert.Equal(t, OutcomeDirectoryUnavailable, res.Outcome)
	assert.NotEqual(t, reasonInvalidCredentials, res.Reason)
}

func TestAuthenticateSuccessfulVerdict(t *testing.T) {
	sess := &fakeSession{
		searchFn: func(filter string) ([]Record, error) {
			return matchingSession(aliceRecord()).searchFn(filter)
		},
		rebindFn: func(dn, password string) error {
			if password == "s3cret" {
				return nil
			}
			return ErrInvalidCredentials
		},
	}
	svc := NewService(&fakeDirectory{session: sess})

	res := svc.Authenticate(context.Background(), "alice", "s3cret")
	assert.True(t, res.Verified)
	assert.Equal(t, OutcomeAuthenticated, res.Outcome)
	require.NotNil(t, res.Profile)
	assert.Equal(t, "Alice A", res.Profile.Name)
}

func TestAuthenticateEmptyCredentialsRejected(t *testing.T) {
	svc := NewService(&fakeDirectory{session: matchingSession(aliceRecord())})

	res := svc.Authenticate(context.Background(), "", "")
	assert.False(t, res.Verified)
	assert.Equal(t, reasonInvalidCredentials, res.Reason)
}

type recordingMetrics struct {
	mu           sync.Mutex
	observations []string
}

func (m *recordingMetrics) ObserveVerification(op string, outcome Outcome, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observations = append(m.observations, op+":"+string(outcome))
}

func TestServiceRecordsMetrics(t *testing.T) {
	rec := &recordingMetrics{}
	svc := NewService(&fakeDirectory{session: matchingSession()}, WithMetrics(rec))

	_ = svc.ResolveProfile(context.Background(), Inputs{Email: "ghost@co.com"})
	_ = svc.Authenticate(context.Background(), "ghost", "pw")

	assert.Equal(t, []string{
		"resolve_profile:not_found",
		"authenticate:not_found",
	}, rec.observations)
}

func TestServiceRecordsDistinctSuccessOutcomes(t *testing.T) {
	rec := &recordingMetrics{}
	svc := NewService(&fakeDirectory{session: matchingSession(aliceRecord())}, WithMetrics(rec))

	_ = svc.ResolveProfile(context.Background(), Inputs{Email: "a@co.com"})

	sess := &fakeSession{
		searchFn: func(filter string) ([]Record, error) {
			return matchingSession(aliceRecord()).searchFn(filter)
		},
		rebindFn: func(string, string) error { return nil },
	}
	svc2 := NewService(&fakeDirectory{session: sess}, WithMetrics(rec))
	_ = svc2.Authenticate(context.Background(), "alice", "s3cret")

	assert.Equal(t, []string{
		"resolve_profile:resolved",
		"authenticate:authenticated",
	}, rec.observations)
}
