package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// sessionNamespace scopes catalog keys
var sessionNamespace = uuid.MustParse("6f1c8f0e-5b9a-4c55-9a57-2f4f0e3d8b21")

// CatalogSession records one session folder that went into a class dataset
type CatalogSession struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Label        string `gorm:"index;not null" json:"label"`
	Folder       string `gorm:"not null" json:"folder"`
	StartDate    string `json:"start_date"`
	ExperimentID int    `json:"experiment_id"`
	RowCount     int    `json:"row_count"`
	SensorFiles  string `json:"sensor_files"` // comma-separated
	OutputPath   string `json:"output_path"`
}

// SessionKey derives a stable id from the label and absolute session
// folder, so re-running a build updates the same catalog row.
func SessionKey(label, folder string) string {
	return uuid.NewSHA1(sessionNamespace, []byte(label+"\x00"+folder)).String()
}

// SensorFileList splits SensorFiles back into names
func (s CatalogSession) SensorFileList() []string {
	if s.SensorFiles == "" {
		return nil
	}
	return strings.Split(s.SensorFiles, ",")
}
