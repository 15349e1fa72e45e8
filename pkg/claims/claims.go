// Package claims extracts identity from bearer access tokens without
// verifying their signature. The client never holds the signing key; the
// backend remains the authority on token validity.
package claims

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

var (
	// ErrMalformedToken reports a token whose segments cannot be decoded.
	ErrMalformedToken = errors.New("malformed token")
	// ErrNoSubject reports a token without a positive numeric subject.
	ErrNoSubject = errors.New("token subject is not a user id")
)

// ClaimSet is the decoded payload of an access token.
type ClaimSet struct {
	Subject   string
	UserID    int64
	ExpiresAt time.Time
	IssuedAt  time.Time
	Raw       map[string]any
}

// Expired reports whether the token carries an exp claim that is before now.
func (c ClaimSet) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}

var parser = jwt.NewParser(jwt.WithJSONNumber())

// DecodeClaims decodes the claim segment of token and resolves the numeric
// user id from "sub", which may be a JSON string or number.
func DecodeClaims(token string) (ClaimSet, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return ClaimSet{}, ErrMalformedToken
	}
	mc := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, mc); err != nil {
		return ClaimSet{}, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}

	out := ClaimSet{Raw: map[string]any(mc)}
	if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time.UTC()
	}
	if iat, err := mc.GetIssuedAt(); err == nil && iat != nil {
		out.IssuedAt = iat.Time.UTC()
	}

	sub, ok := subjectString(mc["sub"])
	if !ok {
		return out, ErrNoSubject
	}
	out.Subject = sub
	id, err := strconv.ParseInt(sub, 10, 64)
	if err != nil || id <= 0 {
		return out, ErrNoSubject
	}
	out.UserID = id
	return out, nil
}

func subjectString(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		s = strings.TrimSpace(s)
		return s, s != ""
	case json.Number:
		return s.String(), true
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64), true
	default:
		return "", false
	}
}
