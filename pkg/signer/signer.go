package signer

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TokenSigner issues short-lived HMAC tokens binding a subject (a teacher email)
// to a scope. Used where the client cannot send an Authorization header, such as
// EventSource streams.
type TokenSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenSigner constructs a signer with the provided secret and TTL.
func NewTokenSigner(secret string, ttl time.Duration) *TokenSigner {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &TokenSigner{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Generate returns a signed token for subject within scope.
func (s *TokenSigner) Generate(subject, scope string) (string, time.Time, error) {
	if subject == "" || scope == "" {
		return "", time.Time{}, fmt.Errorf("subject and scope required")
	}
	if len(s.secret) == 0 {
		return "", time.Time{}, fmt.Errorf("signing secret missing")
	}
	expiresAt := s.now().Add(s.ttl)
	encSubject := base64.RawURLEncoding.EncodeToString([]byte(subject))
	exp := strconv.FormatInt(expiresAt.Unix(), 10)
	signature := s.sign(encSubject, scope, exp)
	return strings.Join([]string{encSubject, scope, exp, signature}, "."), expiresAt, nil
}

// Parse validates a token for the expected scope and returns its subject.
func (s *TokenSigner) Parse(token, scope string) (string, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 4 {
		return "", fmt.Errorf("invalid token format")
	}
	encSubject, tokenScope, exp, signature := parts[0], parts[1], parts[2], parts[3]
	if tokenScope != scope {
		return "", fmt.Errorf("token scope mismatch")
	}
	expected := s.sign(encSubject, tokenScope, exp)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return "", fmt.Errorf("invalid token signature")
	}
	expUnix, err := strconv.ParseInt(exp, 10, 64)
	if err != nil {
		return "", fmt.Errorf("invalid timestamp")
	}
	if s.now().After(time.Unix(expUnix, 0)) {
		return "", fmt.Errorf("token expired")
	}
	subject, err := base64.RawURLEncoding.DecodeString(encSubject)
	if err != nil {
		return "", fmt.Errorf("decode subject: %w", err)
	}
	return string(subject), nil
}

func (s *TokenSigner) sign(encSubject, scope, exp string) string {
	mac := hmac.New(sha256.New, s.secret)
	_, _ = mac.Write([]byte(encSubject + "|" + scope + "|" + exp))
	return hex.EncodeToString(mac.Sum(nil))
}
