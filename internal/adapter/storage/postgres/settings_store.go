package postgres

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/seu-repo/sigec-posto/internal/ports"
	"github.com/seu-repo/sigec-posto/pkg/config"
)

// settingRecord is one row per named simulation setting.
type settingRecord struct {
	Name      string `gorm:"primaryKey;type:varchar(64)"`
	Value     string `gorm:"type:text"`
	Type      string `gorm:"type:varchar(8)"`
	UpdatedAt time.Time
}

func (settingRecord) TableName() string { return "simulation_settings" }

// SettingsStore keeps the simulation configuration as key-value rows.
// Settings missing from the table come from base.
type SettingsStore struct {
	db   *gorm.DB
	base config.Simulation
	log  *zap.Logger
}

func NewSettingsStore(db *gorm.DB, base config.Simulation, log *zap.Logger) ports.SettingsStore {
	return &SettingsStore{
		db:   db,
		base: base,
		log:  log,
	}
}

func (s *SettingsStore) Load(ctx context.Context) (config.Simulation, error) {
	var rows []settingRecord
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return s.base, fmt.Errorf("failed to load settings: %w", err)
	}

	settings := make([]config.Setting, 0, len(rows))
	for _, row := range rows {
		settings = append(settings, config.Setting{Name: row.Name, Value: row.Value, Type: row.Type})
	}

	out, err := config.ApplySettings(s.base, settings)
	if err != nil {
		return s.base, fmt.Errorf("stored settings are invalid: %w", err)
	}
	if err := out.Validate(); err != nil {
		return s.base, err
	}
	return out, nil
}

// Save validates settings and upserts every row in one transaction.
func (s *SettingsStore) Save(ctx context.Context, settings config.Simulation) error {
	if err := settings.Validate(); err != nil {
		return err
	}

	rows := make([]settingRecord, 0)
	for _, st := range config.Settings(settings) {
		rows = append(rows, settingRecord{Name: st.Name, Value: st.Value, Type: st.Type})
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "type", "updated_at"}),
		}).Create(&rows).Error
	})
	if err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	s.log.Info("Simulation settings saved", zap.Int("settings", len(rows)))
	return nil
}
