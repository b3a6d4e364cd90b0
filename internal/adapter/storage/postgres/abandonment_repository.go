package postgres

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/seu-repo/sigec-posto/internal/domain"
	"github.com/seu-repo/sigec-posto/internal/ports"
)

type abandonmentRecord struct {
	ID          uint               `gorm:"primaryKey;autoIncrement"`
	RunID       string             `gorm:"index"`
	VehicleID   string             `gorm:"index"`
	VehicleKind domain.VehicleKind `gorm:"type:varchar(16)"`
	FuelKind    domain.FuelKind    `gorm:"type:varchar(16)"`
	QueuedAt    time.Duration
	AbandonedAt time.Duration
	CreatedAt   time.Time
}

func (abandonmentRecord) TableName() string { return "abandonments" }

type AbandonmentRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewAbandonmentRepository(db *gorm.DB, log *zap.Logger) ports.AbandonmentRepository {
	return &AbandonmentRepository{
		db:  db,
		log: log,
	}
}

func (r *AbandonmentRepository) Save(ctx context.Context, a *domain.Abandonment) error {
	rec := abandonmentRecord{
		RunID:       a.RunID,
		VehicleID:   a.VehicleID,
		VehicleKind: a.VehicleKind,
		FuelKind:    a.FuelKind,
		QueuedAt:    a.QueuedAt,
		AbandonedAt: a.AbandonedAt,
	}
	return r.db.WithContext(ctx).Create(&rec).Error
}

func (r *AbandonmentRepository) FindByRun(ctx context.Context, runID string) ([]domain.Abandonment, error) {
	var recs []abandonmentRecord
	if err := r.db.WithContext(ctx).Where("run_id = ?", runID).Order("id asc").Find(&recs).Error; err != nil {
		return nil, err
	}

	out := make([]domain.Abandonment, 0, len(recs))
	for _, rec := range recs {
		out = append(out, domain.Abandonment{
			RunID:       rec.RunID,
			VehicleID:   rec.VehicleID,
			VehicleKind: rec.VehicleKind,
			FuelKind:    rec.FuelKind,
			QueuedAt:    rec.QueuedAt,
			AbandonedAt: rec.AbandonedAt,
		})
	}
	return out, nil
}
