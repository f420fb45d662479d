package domain

import "time"

// Transcript is one finalized speech-to-text buffer persisted for a room.
type Transcript struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Room      string    `json:"room" gorm:"size:255;index"`
	ClientID  string    `json:"client_id" gorm:"size:255;index"`
	Language  string    `json:"language" gorm:"size:32"`
	Text      string    `json:"text" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at"`
}

func (Transcript) TableName() string { return "transcripts" }
