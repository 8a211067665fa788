package dirverify

import (
	"context"
	"strings"
)

// fakeSession scripts directory behavior per test. searchFn and rebindFn
// default to empty results / accepted binds when nil.
type fakeSession struct {
	searchFn   func(filter string) ([]Record, error)
	rebindFn   func(dn, password string) error
	closeCount int
	searches   []string
}

func (s *fakeSession) Search(_ context.Context, filter string, _ []string) ([]Record, error) {
	s.searches = append(s.searches, filter)
	if s.searchFn == nil {
		return nil, nil
	}
	return s.searchFn(filter)
}

func (s *fakeSession) Rebind(_ context.Context, dn, password string) error {
	if s.rebindFn == nil {
		return nil
	}
	return s.rebindFn(dn, password)
}

func (s *fakeSession) Close() { s.closeCount++ }

type fakeDirectory struct {
	session    *fakeSession
	sessionErr error
}

func (d *fakeDirectory) Session(context.Context) (Session, error) {
	if d.sessionErr != nil {
		return nil, d.sessionErr
	}
	return d.session, nil
}

// matchingSession returns records whose listed attribute values appear
// verbatim in the filter. Crude but sufficient: filters embed the escaped
// caller value, so a record "matches" when one of its indexed values was
// asked for.
func matchingSession(records ...Record) *fakeSession {
	return &fakeSession{
		searchFn: func(filter string) ([]Record, error) {
			var out []Record
			for _, rec := range records {
				if recordMatchesFilter(rec, filter) {
					out = append(out, rec)
				}
			}
			return out, nil
		},
	}
}

func recordMatchesFilter(rec Record, filter string) bool {
	substrings := wildcardTokens(filter)
	for _, attrs := range [][]string{emailAttributes, idAttributes, nameAttributes} {
		for _, attr := range attrs {
			for _, v := range rec.Values(attr) {
				if v == "" {
					continue
				}
				if strings.Contains(filter, "="+v+")") {
					return true
				}
				for _, tok := range substrings {
					if strings.Contains(strings.ToLower(v), strings.ToLower(tok)) {
						return true
					}
				}
			}
		}
	}
	return false
}

// wildcardTokens extracts the X of every "=*X*)" clause so substring
// strategies behave like a real directory would.
func wildcardTokens(filter string) []string {
	var tokens []string
	rest := filter
	for {
		i := strings.Index(rest, "=*")
		if i < 0 {
			return tokens
		}
		rest = rest[i+2:]
		j := strings.Index(rest, "*)")
		if j < 0 {
			return tokens
		}
		tokens = append(tokens, rest[:j])
		rest = rest[j+2:]
	}
}
