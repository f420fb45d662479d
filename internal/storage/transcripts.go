// Package storage persists finalized transcript buffers in Postgres.
package storage

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/openhuddle/huddle/internal/domain"
	"github.com/openhuddle/huddle/internal/observability"
)

type TranscriptStore struct {
	db *gorm.DB
}

// Open connects to Postgres and auto-migrates the transcripts table.
func Open(databaseURL string) (*TranscriptStore, error) {
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.AutoMigrate(&domain.Transcript{}); err != nil {
		return nil, fmt.Errorf("migrate transcripts: %w", err)
	}
	log.Info().Str("module", "storage").Msg("transcript store ready")
	return &TranscriptStore{db: db}, nil
}

func (s *TranscriptStore) Save(ctx context.Context, t *domain.Transcript) error {
	if err := s.db.WithContext(ctx).Create(t).Error; err != nil {
		return fmt.Errorf("save transcript: %w", err)
	}
	observability.RecordTranscriptSaved()
	log.Info().Str("module", "storage").
		Uint("id", t.ID).Str("room", t.Room).Str("client", t.ClientID).
		Int("chars", len(t.Text)).Msg("saved transcript")
	return nil
}

// ListByRoom returns up to limit transcripts, newest first. An empty room
// matches all rooms.
func (s *TranscriptStore) ListByRoom(ctx context.Context, room string, limit int) ([]domain.Transcript, error) {
	q := s.db.WithContext(ctx).Model(&domain.Transcript{})
	if room != "" {
		q = q.Where("room = ?", room)
	}
	var rows []domain.Transcript
	if err := q.Order("id desc").Limit(limit).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list transcripts: %w", err)
	}
	return rows, nil
}
