package services

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/rmateus/taskman-be/internal/common"
	"github.com/rmateus/taskman-be/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength is the floor applied at registration and rotation.
const MinPasswordLength = 6

// ProfileUpdate carries the optional fields of a partial profile update.
// Nil fields are left untouched.
type ProfileUpdate struct {
	Username  *string
	Email     *string
	FirstName *string
	LastName  *string
	Password  *string
}

// UserServiceProvider defines the interface for user services.
type UserServiceProvider interface {
	GetUserByID(id string) (models.User, error)
	Register(username, email, password, firstName, lastName string) (models.User, error)
	Authenticate(identifier, password string) (models.User, error)
	UpdateProfile(id string, upd ProfileUpdate) (models.User, error)
	DeleteUser(id string) error
}

// UserService provides business logic for user management.
type UserService struct {
	db *sql.DB
}

// NewUserService creates a new UserService.
func NewUserService(db *sql.DB) *UserService {
	return &UserService{db: db}
}

// GetUserByID retrieves a single user by their ID.
func (s *UserService) GetUserByID(id string) (models.User, error) {
	var user models.User
	row := s.db.QueryRow("SELECT id, username, email, first_name, last_name, created_at FROM users WHERE id = ?", id)
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.FirstName, &user.LastName, &user.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.User{}, common.ErrNotFound
		}
		return models.User{}, err
	}
	return user, nil
}

// Register creates a new user account, hashing the password. The raw
// password is discarded as soon as the hash is computed.
func (s *UserService) Register(username, email, password, firstName, lastName string) (models.User, error) {
	if len(password) < MinPasswordLength {
		return models.User{}, common.ErrWeakPassword
	}
	if taken, err := s.exists("username", username, ""); err != nil {
		return models.User{}, err
	} else if taken {
		return models.User{}, common.ErrDuplicateUsername
	}
	if taken, err := s.exists("email", email, ""); err != nil {
		return models.User{}, err
	} else if taken {
		return models.User{}, common.ErrDuplicateEmail
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		ID:        uuid.New().String(),
		Username:  username,
		Email:     email,
		FirstName: firstName,
		LastName:  lastName,
	}

	stmt, err := s.db.Prepare("INSERT INTO users(id, username, email, password_hash, first_name, last_name) VALUES(?, ?, ?, ?, ?, ?)")
	if err != nil {
		return models.User{}, err
	}
	defer stmt.Close()

	_, err = stmt.Exec(user.ID, user.Username, user.Email, string(hashedPassword), user.FirstName, user.LastName)
	if err != nil {
		return models.User{}, err
	}

	return s.GetUserByID(user.ID)
}

// Authenticate verifies credentials. The identifier may be a username or
// an email; username lookup is tried first. Every failure path returns
// common.ErrInvalidCredentials.
func (s *UserService) Authenticate(identifier, password string) (models.User, error) {
	user, err := s.getWithHash("username", identifier)
	if err == sql.ErrNoRows {
		user, err = s.getWithHash("email", identifier)
	}
	if err != nil {
		if err == sql.ErrNoRows {
			return models.User{}, common.ErrInvalidCredentials
		}
		return models.User{}, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return models.User{}, common.ErrInvalidCredentials
	}

	// Don't send the password hash to the client
	user.PasswordHash = ""
	return user, nil
}

// UpdateProfile applies a partial update, including optional password
// rotation. Uniqueness and password-strength rules from registration apply.
func (s *UserService) UpdateProfile(id string, upd ProfileUpdate) (models.User, error) {
	user, err := s.GetUserByID(id)
	if err != nil {
		return models.User{}, err
	}

	if upd.Username != nil && *upd.Username != user.Username {
		if taken, err := s.exists("username", *upd.Username, id); err != nil {
			return models.User{}, err
		} else if taken {
			return models.User{}, common.ErrDuplicateUsername
		}
		user.Username = *upd.Username
	}
	if upd.Email != nil && *upd.Email != user.Email {
		if taken, err := s.exists("email", *upd.Email, id); err != nil {
			return models.User{}, err
		} else if taken {
			return models.User{}, common.ErrDuplicateEmail
		}
		user.Email = *upd.Email
	}
	if upd.FirstName != nil {
		user.FirstName = *upd.FirstName
	}
	if upd.LastName != nil {
		user.LastName = *upd.LastName
	}

	// Validate and hash before touching the row so the update stays a
	// single all-or-nothing write.
	var newHash string
	if upd.Password != nil {
		if len(*upd.Password) < MinPasswordLength {
			return models.User{}, common.ErrWeakPassword
		}
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(*upd.Password), bcrypt.DefaultCost)
		if err != nil {
			return models.User{}, fmt.Errorf("failed to hash new password: %w", err)
		}
		newHash = string(hashedPassword)
	}

	if newHash != "" {
		_, err = s.db.Exec("UPDATE users SET username = ?, email = ?, first_name = ?, last_name = ?, password_hash = ? WHERE id = ?",
			user.Username, user.Email, user.FirstName, user.LastName, newHash, id)
	} else {
		_, err = s.db.Exec("UPDATE users SET username = ?, email = ?, first_name = ?, last_name = ? WHERE id = ?",
			user.Username, user.Email, user.FirstName, user.LastName, id)
	}
	if err != nil {
		return models.User{}, err
	}

	return s.GetUserByID(id)
}

// DeleteUser removes a user account. Owned tasks and the live session go
// with it via foreign-key cascades.
func (s *UserService) DeleteUser(id string) error {
	res, err := s.db.Exec("DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrNotFound
	}
	return nil
}

// getWithHash looks a user up by one column, password hash included.
// Returns sql.ErrNoRows unwrapped so Authenticate can fall through.
func (s *UserService) getWithHash(column, value string) (models.User, error) {
	var user models.User
	query := fmt.Sprintf("SELECT id, username, email, password_hash, first_name, last_name, created_at FROM users WHERE %s = ?", column)
	row := s.db.QueryRow(query, value)
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.FirstName, &user.LastName, &user.CreatedAt)
	return user, err
}

// exists reports whether another account already uses the given value for
// the column. excludeID skips the account being updated.
func (s *UserService) exists(column, value, excludeID string) (bool, error) {
	var n int
	query := fmt.Sprintf("SELECT COUNT(*) FROM users WHERE %s = ? AND id != ?", column)
	if err := s.db.QueryRow(query, value, excludeID).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}
