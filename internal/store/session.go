package store

import (
	"context"
	"errors"
	"strings"
)

// SessionKey is the key the saved PHP session id lives under.
const SessionKey = "phpSessionId"

// SessionStore persists the session credential forwarded to the backend.
type SessionStore struct {
	kv KV
}

func NewSessionStore(kv KV) *SessionStore {
	return &SessionStore{kv: kv}
}

// Credential returns the saved credential, or "" when none is saved.
func (s *SessionStore) Credential(ctx context.Context) (string, error) {
	v, err := s.kv.Get(ctx, SessionKey)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	return v, err
}

// SetCredential saves value. A blank value removes the saved credential.
func (s *SessionStore) SetCredential(ctx context.Context, value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return s.kv.Delete(ctx, SessionKey)
	}
	return s.kv.Set(ctx, SessionKey, value)
}

func (s *SessionStore) Clear(ctx context.Context) error {
	return s.kv.Delete(ctx, SessionKey)
}
