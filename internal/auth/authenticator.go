package auth

import (
	"crypto/subtle"
	"strings"
)

// Authenticator validates shared-secret tokens against an allow-list fixed at construction
type Authenticator struct {
	tokens [][]byte
}

// New copies the given tokens; later changes to the slice have no effect
func New(tokens []string) *Authenticator {
	a := &Authenticator{}
	for _, t := range tokens {
		if t = strings.TrimSpace(t); t != "" {
			a.tokens = append(a.tokens, []byte(t))
		}
	}
	return a
}

// Authenticate reports whether token is on the allow-list
func (a *Authenticator) Authenticate(token string) bool {
	token = strings.TrimSpace(token)
	if token == "" {
		return false
	}
	presented := []byte(token)
	ok := 0
	for _, t := range a.tokens {
		ok |= subtle.ConstantTimeCompare(presented, t)
	}
	return ok == 1
}
