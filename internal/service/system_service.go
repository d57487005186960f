package service

import (
	"database/sql"
	"fmt"
	"strconv"

	"github.com/ndewijer/stock-tracker/internal/database"
	"github.com/ndewijer/stock-tracker/internal/model"
	"github.com/ndewijer/stock-tracker/internal/version"
)

// SystemService handles system-related operations
type SystemService struct {
	db       *sql.DB
	features map[string]bool
}

// NewSystemService creates a new SystemService.
// features is reported unchanged by CheckVersion.
func NewSystemService(db *sql.DB, features map[string]bool) *SystemService {
	if features == nil {
		features = map[string]bool{}
	}
	return &SystemService{
		db:       db,
		features: features,
	}
}

// CheckHealth checks the health of the system
func (s *SystemService) CheckHealth() error {
	return database.HealthCheck(s.db)
}

// CheckVersion reports the application version, the applied schema version
// and whether migrations embedded in the binary are still pending.
func (s *SystemService) CheckVersion() (model.VersionInfo, error) {
	applied, err := database.Version(s.db)
	if err != nil {
		return model.VersionInfo{}, err
	}

	latest, err := database.LatestVersion()
	if err != nil {
		return model.VersionInfo{}, err
	}

	info := model.VersionInfo{
		AppVersion: version.Version,
		DbVersion:  strconv.FormatInt(applied, 10),
		Features:   s.features,
	}

	if applied < latest {
		msg := fmt.Sprintf("database schema %d is behind %d; restart the server to migrate", applied, latest)
		info.MigrationNeeded = true
		info.MigrationMessage = &msg
	}

	return info, nil
}
