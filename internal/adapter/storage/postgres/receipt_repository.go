package postgres

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/seu-repo/sigec-posto/internal/domain"
	"github.com/seu-repo/sigec-posto/internal/ports"
)

type ReceiptRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewReceiptRepository(db *gorm.DB, log *zap.Logger) ports.ReceiptRepository {
	return &ReceiptRepository{
		db:  db,
		log: log,
	}
}

func (r *ReceiptRepository) Save(ctx context.Context, receipt *domain.Receipt) error {
	return r.db.WithContext(ctx).Save(receipt).Error
}

func (r *ReceiptRepository) FindByID(ctx context.Context, id string) (*domain.Receipt, error) {
	var receipt domain.Receipt
	err := r.db.WithContext(ctx).First(&receipt, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &receipt, nil
}

func (r *ReceiptRepository) FindByRun(ctx context.Context, runID string) ([]domain.Receipt, error) {
	var receipts []domain.Receipt
	err := r.db.WithContext(ctx).Where("run_id = ?", runID).Order("sequence asc").Find(&receipts).Error
	return receipts, err
}

func (r *ReceiptRepository) FindByPump(ctx context.Context, runID string, pumpID int) ([]domain.Receipt, error) {
	var receipts []domain.Receipt
	err := r.db.WithContext(ctx).
		Where("run_id = ? AND pump_id = ?", runID, pumpID).
		Order("sequence asc").
		Find(&receipts).Error
	return receipts, err
}
