// Package guard enforces that interview clips arrive in question order.
//
// The guard keeps no state of its own. Whether question k has been answered is
// decided by whether its artifact exists in the session folder, so the rule
// survives restarts. Callers serialise uploads per session to keep the check
// and the following write atomic.
package guard

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/nguyentantai21042004/interview-clips/internal/apperr"
)

// DefaultIndex is used when neither the file name nor the explicit field names a question.
// A malformed request therefore targets Q1, which is always allowed.
const DefaultIndex = 1

// ArtifactChecker answers whether a question's clip is already persisted
type ArtifactChecker interface {
	Exists(sessionID string, q int) bool
}

// Guard checks upload order against persisted artifacts
type Guard struct {
	artifacts ArtifactChecker
	maxQ      int
	namePat   *regexp.Regexp
}

// New creates a Guard for clips with the given extension and questions 1..maxQ
func New(artifacts ArtifactChecker, extension string, maxQ int) *Guard {
	return &Guard{
		artifacts: artifacts,
		maxQ:      maxQ,
		namePat:   regexp.MustCompile(`(?i)Q(\d+)\.` + regexp.QuoteMeta(strings.TrimPrefix(extension, ".")) + `$`),
	}
}

// MaxQuestions is the largest accepted question index
func (g *Guard) MaxQuestions() int {
	return g.maxQ
}

// ResolveIndex picks the target question: the Q<n> in the file name first,
// then the explicit field, then DefaultIndex. The result is clamped to [1, maxQ].
func (g *Guard) ResolveIndex(filename, explicit string) int {
	if m := g.namePat.FindStringSubmatch(filename); m != nil {
		if n, ok := leadingInt(m[1]); ok {
			return g.clamp(n)
		}
	}
	if n, ok := leadingInt(explicit); ok {
		return g.clamp(n)
	}
	return DefaultIndex
}

// leadingInt parses the optionally signed digits at the start of s and ignores
// the rest. Values beyond the int range saturate so they clamp to a bound.
func leadingInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}

	n, err := strconv.Atoi(s[:end])
	if errors.Is(err, strconv.ErrRange) {
		if s[0] == '-' {
			return math.MinInt, true
		}
		return math.MaxInt, true
	}
	if err != nil {
		return 0, false
	}
	return n, true
}

// Check returns a *apperr.SequentialViolationError naming the first missing
// question before q. Question q itself may already exist.
func (g *Guard) Check(sessionID string, q int) error {
	if q < 1 || q > g.maxQ {
		return apperr.Validation("question index %d outside 1..%d", q, g.maxQ)
	}
	for k := 1; k < q; k++ {
		if !g.artifacts.Exists(sessionID, k) {
			return &apperr.SequentialViolationError{Target: q, Missing: k}
		}
	}
	return nil
}

func (g *Guard) clamp(n int) int {
	if n < 1 {
		return 1
	}
	if n > g.maxQ {
		return g.maxQ
	}
	return n
}
