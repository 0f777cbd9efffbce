package models

import (
	"time"

	"github.com/google/uuid"
)

type Notification struct {
	ID          uuid.UUID  `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Title       string     `gorm:"size:255;not null" json:"title"`
	Message     string     `gorm:"type:text;not null" json:"message"`
	Audience    string     `gorm:"size:20;not null;default:'all'" json:"audience"`
	RecipientID *uuid.UUID `gorm:"index" json:"recipient_id"`
	CreatedBy   *uuid.UUID `json:"created_by"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

type NotificationRead struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	NotificationID uuid.UUID `gorm:"not null;uniqueIndex:idx_notification_reads_note_user" json:"notification_id"`
	UserID         uuid.UUID `gorm:"not null;uniqueIndex:idx_notification_reads_note_user;index" json:"user_id"`
	ReadAt         time.Time `json:"read_at"`
}
