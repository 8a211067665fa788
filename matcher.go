package dirverify

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Match score contributions. Scores are additive across independent signals
// and deterministic for a given record and input set.
const (
	scoreEmailExact   = 100
	scoreUserIDExact  = 50
	scoreNameContains = 25
)

// Match is one unique candidate record with its resolution score.
type Match struct {
	Record Record
	Score  int
	// Reasons lists the signals that contributed to the score, in the order
	// they were evaluated.
	Reasons []string
}

// Matcher executes a strategy plan against one directory session and ranks
// the unique records it finds.
type Matcher struct {
	logger *slog.Logger
}

// NewMatcher returns a Matcher logging through the given logger.
func NewMatcher(logger *slog.Logger) *Matcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Matcher{logger: logger}
}

// Resolve runs the strategies in plan order, sequentially over the single
// bound session. A strategy whose search fails contributes zero records and
// never aborts the remaining strategies: partial outages or filter syntax
// one schema rejects must not block strategies that would succeed.
//
// Records are deduplicated by distinguished name, first occurrence winning.
// After all strategies ran, every unique record is scored and the result is
// sorted by descending score; ties keep discovery order, so earlier (higher
// trust) strategies win. An empty result yields ErrNoMatch.
func (m *Matcher) Resolve(ctx context.Context, sess Session, plan []Strategy, in Inputs) ([]Match, error) {
	seen := make(map[string]struct{})
	var unique []Record

	for _, strategy := range plan {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		records, err := sess.Search(ctx, strategy.Filter, profileAttributes)
		if err != nil {
			m.logger.Debug("strategy_search_failed",
				slog.String("strategy", strategy.Name),
				slog.String("error", err.Error()))
			continue
		}

		added := 0
		for _, rec := range records {
			if _, dup := seen[rec.DN()]; dup {
				continue
			}
			seen[rec.DN()] = struct{}{}
			unique = append(unique, rec)
			added++
		}

		m.logger.Debug("strategy_executed",
			slog.String("strategy", strategy.Name),
			slog.Int("returned", len(records)),
			slog.Int("new_unique", added))
	}

	if len(unique) == 0 {
		return nil, ErrNoMatch
	}

	matches := make([]Match, 0, len(unique))
	for _, rec := range unique {
		matches = append(matches, scoreRecord(rec, in))
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	return matches, nil
}

// scoreRecord computes the additive match score for one record.
func scoreRecord(rec Record, in Inputs) Match {
	match := Match{Record: rec}

	if in.Email != "" {
		for _, attr := range emailAttributes {
			if anyValueEquals(rec, attr, in.Email) {
				match.Score += scoreEmailExact
				match.Reasons = append(match.Reasons, fmt.Sprintf("email matches %s", attr))
				break
			}
		}
	}

	if in.UserID != "" {
		for _, attr := range idAttributes {
			if anyValueEquals(rec, attr, in.UserID) {
				match.Score += scoreUserIDExact
				match.Reasons = append(match.Reasons, fmt.Sprintf("user id matches %s", attr))
				break
			}
		}
	}

	if in.DisplayName != "" {
		for _, attr := range nameAttributes {
			if anyValueContains(rec, attr, in.DisplayName) {
				match.Score += scoreNameContains
				match.Reasons = append(match.Reasons, fmt.Sprintf("display name found in %s", attr))
				break
			}
		}
	}

	return match
}

func anyValueEquals(rec Record, attr, want string) bool {
	for _, v := range rec.Values(attr) {
		if foldEqual(v, want) {
			return true
		}
	}
	return false
}

func anyValueContains(rec Record, attr, want string) bool {
	for _, v := range rec.Values(attr) {
		if foldContains(v, want) {
			return true
		}
	}
	return false
}

// foldEqual compares two strings case-insensitively after Unicode NFC
// normalization, so composed and decomposed spellings of the same name
// compare equal.
func foldEqual(a, b string) bool {
	return strings.EqualFold(norm.NFC.String(a), norm.NFC.String(b))
}

func foldContains(s, substr string) bool {
	return strings.Contains(
		strings.ToLower(norm.NFC.String(s)),
		strings.ToLower(norm.NFC.String(substr)),
	)
}
