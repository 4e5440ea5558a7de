package services

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"

	"github.com/rmateus/taskman-be/internal/common"
	"github.com/rmateus/taskman-be/internal/models"
)

// SessionServiceProvider defines the interface for session token services.
type SessionServiceProvider interface {
	Issue(userID string) (string, error)
	Revoke(token string) error
	Resolve(token string) (models.User, error)
}

// SessionService mints, resolves and revokes the opaque bearer tokens that
// back cookie sessions. Tokens are persisted keyed by account; an account
// holds at most one at a time.
type SessionService struct {
	db *sql.DB
}

// NewSessionService creates a new SessionService.
func NewSessionService(db *sql.DB) *SessionService {
	return &SessionService{db: db}
}

// Issue generates a fresh random token for the account, replacing any
// existing one. A login on a second device logs the first one out.
func (s *SessionService) Issue(userID string) (string, error) {
	token, err := generateToken()
	if err != nil {
		return "", err
	}

	_, err = s.db.Exec(
		`INSERT INTO sessions(user_id, token) VALUES(?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET token = excluded.token, created_at = CURRENT_TIMESTAMP`,
		userID, token)
	if err != nil {
		return "", err
	}
	return token, nil
}

// Revoke deletes the session holding the token. Idempotent: revoking an
// unknown token is not an error.
func (s *SessionService) Revoke(token string) error {
	_, err := s.db.Exec("DELETE FROM sessions WHERE token = ?", token)
	return err
}

// Resolve maps a token to its account. Revoked and replaced tokens no
// longer have a row and fail with common.ErrInvalidToken.
func (s *SessionService) Resolve(token string) (models.User, error) {
	var user models.User
	row := s.db.QueryRow(
		`SELECT u.id, u.username, u.email, u.first_name, u.last_name, u.created_at
		 FROM sessions s JOIN users u ON u.id = s.user_id
		 WHERE s.token = ?`, token)
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.FirstName, &user.LastName, &user.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.User{}, common.ErrInvalidToken
		}
		return models.User{}, err
	}
	return user, nil
}

// generateToken returns 32 bytes of crypto-grade randomness, hex encoded.
func generateToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
