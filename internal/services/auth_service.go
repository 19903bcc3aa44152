package services

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"order_manager/internal/apperrors"
	"order_manager/internal/redis"
)

// SessionStore is the durable registry of operator sessions, backed by
// Redis in production.
type SessionStore interface {
	SetSession(sessionID string, data *redis.OperatorSession, ttl time.Duration) error
	GetSession(sessionID string) (*redis.OperatorSession, error)
	DeleteSession(sessionID string) error
	TouchSession(sessionID string, ttl time.Duration) error
}

type AuthService interface {
	VerifyPassphrase(passphrase string) error
	Login(passphrase string) (string, error)
	Logout(sessionID string) error
	ValidateSession(sessionID string) error
}

type authService struct {
	hash       []byte
	sessions   SessionStore
	sessionTTL time.Duration
}

// NewAuthService hashes the shared admin passphrase once at startup and
// compares against the hash from then on.
func NewAuthService(passphrase string, sessions SessionStore, sessionTTL time.Duration) (AuthService, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(passphrase), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash admin passphrase: %w", err)
	}
	return &authService{
		hash:       hash,
		sessions:   sessions,
		sessionTTL: sessionTTL,
	}, nil
}

func (s *authService) VerifyPassphrase(passphrase string) error {
	if err := bcrypt.CompareHashAndPassword(s.hash, []byte(passphrase)); err != nil {
		return apperrors.ErrInvalidPassphrase
	}
	return nil
}

func (s *authService) Login(passphrase string) (string, error) {
	if err := s.VerifyPassphrase(passphrase); err != nil {
		return "", err
	}

	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate session id: %w", err)
	}
	sessionID := hex.EncodeToString(buf)

	session := &redis.OperatorSession{
		SessionID: sessionID,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.sessions.SetSession(sessionID, session, s.sessionTTL); err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}
	return sessionID, nil
}

func (s *authService) Logout(sessionID string) error {
	return s.sessions.DeleteSession(sessionID)
}

// ValidateSession checks the session and extends its TTL, so an
// operator who keeps working is not logged out mid-shift.
func (s *authService) ValidateSession(sessionID string) error {
	if _, err := s.sessions.GetSession(sessionID); err != nil {
		return err
	}
	return s.sessions.TouchSession(sessionID, s.sessionTTL)
}
