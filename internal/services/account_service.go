package services

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/MrLotU/user-profile-be/internal/models"
	"github.com/MrLotU/user-profile-be/internal/policy"
)

// AccountServiceProvider defines the interface for account services.
type AccountServiceProvider interface {
	CreateUser(username, password string) (models.User, error)
	GetUserByID(id string) (models.User, error)
	GetUserByUsername(username string) (models.User, error)
	GetProfile(userID string) (models.Profile, error)
	SaveUser(user models.User) (models.User, error)
	Authenticate(username, password string) (models.User, error)
	ChangePassword(userID, currentPassword, newPassword, confirmPassword string) (models.User, error)
	PasswordStamp(userID string) (int64, error)
}

// AccountService provides business logic for account management.
type AccountService struct {
	db *sql.DB
}

// NewAccountService creates a new AccountService.
func NewAccountService(db *sql.DB) *AccountService {
	return &AccountService{db: db}
}

const userColumns = "id, username, email, password_hash, is_active, password_changed_at, created_at"

func scanUser(row *sql.Row) (models.User, error) {
	var user models.User
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.IsActive, &user.PasswordStamp, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}
	return user, nil
}

// GetUserByID retrieves a single user by their ID.
func (s *AccountService) GetUserByID(id string) (models.User, error) {
	row := s.db.QueryRow("SELECT "+userColumns+" FROM users WHERE id = ?", id)
	return scanUser(row)
}

// GetUserByUsername retrieves a single user by their username.
func (s *AccountService) GetUserByUsername(username string) (models.User, error) {
	row := s.db.QueryRow("SELECT "+userColumns+" FROM users WHERE username = ?", username)
	return scanUser(row)
}

// GetProfile retrieves the profile owned by a user.
func (s *AccountService) GetProfile(userID string) (models.Profile, error) {
	var p models.Profile
	row := s.db.QueryRow(
		"SELECT id, user_id, first_name, last_name, birthday, bio, picture_path, updated_at FROM profiles WHERE user_id = ?",
		userID)
	err := row.Scan(&p.ID, &p.UserID, &p.FirstName, &p.LastName, &p.Birthday, &p.Bio, &p.PicturePath, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Profile{}, fmt.Errorf("profile for user %s not found", userID)
		}
		return models.Profile{}, err
	}
	return p, nil
}

// PasswordStamp reports the stamp of the user's last password change.
func (s *AccountService) PasswordStamp(userID string) (int64, error) {
	var stamp int64
	err := s.db.QueryRow("SELECT password_changed_at FROM users WHERE id = ?", userID).Scan(&stamp)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrUserNotFound
		}
		return 0, err
	}
	return stamp, nil
}

// CreateUser creates a new user with its profile. Both rows are written
// in one transaction so a user never exists without a profile.
func (s *AccountService) CreateUser(username, password string) (models.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: string(hashedPassword),
		IsActive:     true,
	}

	tx, err := s.db.Begin()
	if err != nil {
		return models.User{}, err
	}
	defer tx.Rollback()

	_, err = tx.Exec("INSERT INTO users(id, username, password_hash, is_active) VALUES(?, ?, ?, 1)",
		user.ID, user.Username, user.PasswordHash)
	if err != nil {
		if isUniqueViolation(err) {
			return models.User{}, ErrUsernameTaken
		}
		return models.User{}, err
	}

	_, err = tx.Exec("INSERT INTO profiles(id, user_id) VALUES(?, ?)", uuid.New().String(), user.ID)
	if err != nil {
		return models.User{}, err
	}

	if err := tx.Commit(); err != nil {
		return models.User{}, err
	}
	return s.GetUserByID(user.ID)
}

// SaveUser persists a user's mutable fields. Saving a user always
// re-saves its profile as well, keeping derived profile state in step.
func (s *AccountService) SaveUser(user models.User) (models.User, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return models.User{}, err
	}
	defer tx.Rollback()

	_, err = tx.Exec("UPDATE users SET email = ?, is_active = ? WHERE id = ?",
		user.Email, user.IsActive, user.ID)
	if err != nil {
		return models.User{}, err
	}
	if err := touchProfile(tx, user.ID); err != nil {
		return models.User{}, err
	}
	if err := tx.Commit(); err != nil {
		return models.User{}, err
	}
	return s.GetUserByID(user.ID)
}

// Authenticate verifies a user's credentials.
func (s *AccountService) Authenticate(username, password string) (models.User, error) {
	user, err := s.GetUserByUsername(username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return models.User{}, ErrInvalidCredentials
		}
		return models.User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return models.User{}, ErrInvalidCredentials
	}

	if !user.IsActive {
		return models.User{}, ErrAccountDisabled
	}
	return user, nil
}

// ChangePassword validates a proposed password change against the
// policy, rewrites the credential and advances the password stamp so
// previously issued session tokens become stale.
func (s *AccountService) ChangePassword(userID, currentPassword, newPassword, confirmPassword string) (models.User, error) {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return models.User{}, err
	}
	profile, err := s.GetProfile(userID)
	if err != nil {
		return models.User{}, err
	}

	identity := policy.Identity{
		Username:  user.Username,
		FirstName: profile.FirstName,
		LastName:  profile.LastName,
	}
	verify := func(password string) bool {
		return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) == nil
	}
	if err := policy.ValidateChange(identity, verify, currentPassword, newPassword, confirmPassword); err != nil {
		return models.User{}, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to hash new password: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return models.User{}, err
	}
	defer tx.Rollback()

	_, err = tx.Exec("UPDATE users SET password_hash = ?, password_changed_at = ? WHERE id = ?",
		string(hashedPassword), time.Now().Unix(), userID)
	if err != nil {
		return models.User{}, err
	}
	if err := touchProfile(tx, userID); err != nil {
		return models.User{}, err
	}
	if err := tx.Commit(); err != nil {
		return models.User{}, err
	}
	return s.GetUserByID(userID)
}

// touchProfile re-saves the profile row owned by a user inside the
// transaction that is saving the user.
func touchProfile(tx *sql.Tx, userID string) error {
	_, err := tx.Exec("UPDATE profiles SET updated_at = CURRENT_TIMESTAMP WHERE user_id = ?", userID)
	return err
}

// isUniqueViolation reports whether err is a sqlite unique-constraint
// failure.
func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	return errors.As(err, &se) && se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}
