package services

import (
	"database/sql"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"
)

// Date formats accepted for the birthday field.
var birthdayFormats = []string{"2006-01-02", "01/02/2006", "01/02/06"}

// ProfileEdit carries the editable profile attributes. A nil
// PicturePath keeps the existing picture; a nil Birthday clears it.
type ProfileEdit struct {
	FirstName   string
	LastName    string
	Birthday    string // optional, in one of birthdayFormats
	Bio         string
	PicturePath *string
}

// ProfileServiceProvider defines the interface for profile services.
type ProfileServiceProvider interface {
	EditProfile(userID string, edit ProfileEdit) error
	EditEmail(userID, newEmail string, confirmEmail *string) error
	SetPicture(userID, path string) error
}

// ProfileService provides business logic for profile editing.
type ProfileService struct {
	db *sql.DB
}

// NewProfileService creates a new ProfileService.
func NewProfileService(db *sql.DB) *ProfileService {
	return &ProfileService{db: db}
}

// EditProfile validates and persists an edit of the profile attributes.
// The names are required: an empty name would match every password as a
// substring and lock the account out of password changes.
func (s *ProfileService) EditProfile(userID string, edit ProfileEdit) error {
	if edit.FirstName == "" {
		return &ValidationError{Field: "first", Message: "This field is required."}
	}
	if edit.LastName == "" {
		return &ValidationError{Field: "last", Message: "This field is required."}
	}
	if utf8.RuneCountInString(edit.Bio) <= 10 {
		return &ValidationError{Field: "bio", Message: "Bio must be 10 characters or more"}
	}

	var birthday *time.Time
	if edit.Birthday != "" {
		parsed, err := parseBirthday(edit.Birthday)
		if err != nil {
			return &ValidationError{Field: "birthday", Message: "Enter a valid date."}
		}
		birthday = &parsed
	}

	if edit.PicturePath != nil {
		_, err := s.db.Exec(
			"UPDATE profiles SET first_name = ?, last_name = ?, birthday = ?, bio = ?, picture_path = ?, updated_at = CURRENT_TIMESTAMP WHERE user_id = ?",
			edit.FirstName, edit.LastName, birthday, edit.Bio, *edit.PicturePath, userID)
		return err
	}
	_, err := s.db.Exec(
		"UPDATE profiles SET first_name = ?, last_name = ?, birthday = ?, bio = ?, updated_at = CURRENT_TIMESTAMP WHERE user_id = ?",
		edit.FirstName, edit.LastName, birthday, edit.Bio, userID)
	return err
}

// EditEmail validates and persists a change of the account email.
// An unchanged email is accepted as-is with no confirmation required.
// Any actual change must be confirmed with a case-insensitive match.
func (s *ProfileService) EditEmail(userID, newEmail string, confirmEmail *string) error {
	var current string
	if err := s.db.QueryRow("SELECT email FROM users WHERE id = ?", userID).Scan(&current); err != nil {
		if err == sql.ErrNoRows {
			return ErrUserNotFound
		}
		return err
	}

	if newEmail == current {
		return nil
	}

	if _, err := mail.ParseAddress(newEmail); err != nil {
		return &ValidationError{Field: "email", Message: "Enter a valid email address."}
	}
	if confirmEmail == nil || !strings.EqualFold(newEmail, *confirmEmail) {
		return &ValidationError{Field: "confirm_email", Message: "Emails don't match!"}
	}

	// The email lives on the user, so this is a user save and the
	// profile is re-saved with it.
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("UPDATE users SET email = ? WHERE id = ?", newEmail, userID); err != nil {
		return err
	}
	if err := touchProfile(tx, userID); err != nil {
		return err
	}
	return tx.Commit()
}

// SetPicture stores the reference to an uploaded profile picture.
func (s *ProfileService) SetPicture(userID, path string) error {
	_, err := s.db.Exec("UPDATE profiles SET picture_path = ?, updated_at = CURRENT_TIMESTAMP WHERE user_id = ?", path, userID)
	return err
}

func parseBirthday(value string) (time.Time, error) {
	var lastErr error
	for _, format := range birthdayFormats {
		parsed, err := time.Parse(format, value)
		if err == nil {
			return parsed, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
