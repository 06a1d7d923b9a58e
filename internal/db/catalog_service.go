package db

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/balkashynov/sensorset/internal/models"
)

var errNotInitialized = errors.New("catalog is not initialized")

// RecordSessions upserts catalog rows in a single transaction, keyed by
// session id. CreatedAt is kept for rows that already exist.
func RecordSessions(sessions []models.CatalogSession) error {
	if DB == nil {
		return errNotInitialized
	}
	if len(sessions) == 0 {
		return nil
	}

	return DB.Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"updated_at", "label", "folder", "start_date",
				"experiment_id", "row_count", "sensor_files", "output_path",
			}),
		}).Create(&sessions).Error
		if err != nil {
			return fmt.Errorf("record sessions: %w", err)
		}
		return nil
	})
}

// ListSessions returns catalog rows ordered by label then start date.
// An empty label returns every row.
func ListSessions(label string) ([]models.CatalogSession, error) {
	if DB == nil {
		return nil, errNotInitialized
	}

	var sessions []models.CatalogSession
	query := DB.Order("label ASC").Order("start_date ASC").Order("folder ASC")
	if label = strings.TrimSpace(label); label != "" {
		query = query.Where("label = ?", label)
	}
	if err := query.Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

// GetSession retrieves a catalog row by id
func GetSession(id string) (*models.CatalogSession, error) {
	if DB == nil {
		return nil, errNotInitialized
	}

	var session models.CatalogSession
	if err := DB.First(&session, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("session %s not found", id)
	}
	return &session, nil
}
