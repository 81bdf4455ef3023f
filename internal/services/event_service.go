package services

import (
	"database/sql"

	"github.com/google/uuid"

	"github.com/MrLotU/user-profile-be/internal/models"
)

// EventServiceProvider defines the interface for account-event services.
type EventServiceProvider interface {
	Record(eventType, level, message string, userID *string) error
	RecentForUser(userID string, limit int) ([]models.AccountEvent, error)
}

// EventService provides business logic for the account activity log.
type EventService struct {
	db *sql.DB
}

// NewEventService creates a new EventService.
func NewEventService(db *sql.DB) *EventService {
	return &EventService{db: db}
}

// Record logs a new account event to the database.
func (s *EventService) Record(eventType, level, message string, userID *string) error {
	event := models.AccountEvent{
		ID:      uuid.New().String(),
		Type:    eventType,
		Level:   level,
		Message: message,
		UserID:  userID,
	}

	stmt, err := s.db.Prepare("INSERT INTO account_events (id, type, level, message, user_id) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	_, err = stmt.Exec(event.ID, event.Type, event.Level, event.Message, event.UserID)
	return err
}

// RecentForUser retrieves the most recent events for one account.
func (s *EventService) RecentForUser(userID string, limit int) ([]models.AccountEvent, error) {
	rows, err := s.db.Query(
		"SELECT id, type, level, message, user_id, created_at FROM account_events WHERE user_id = ? ORDER BY created_at DESC LIMIT ?",
		userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []models.AccountEvent
	for rows.Next() {
		var event models.AccountEvent
		if err := rows.Scan(&event.ID, &event.Type, &event.Level, &event.Message, &event.UserID, &event.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}
