package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/seu-repo/sigec-posto/internal/domain"
	"github.com/seu-repo/sigec-posto/internal/observability/telemetry"
)

// ReceiptJournal appends every issued receipt as one text line to a file per
// run under dir. ReceiptIssued only buffers the receipt; Run does the
// writing, so a slow disk never holds up the simulation.
type ReceiptJournal struct {
	mu   sync.Mutex
	fs   afero.Fs
	file afero.File
	path string
	in   chan domain.Receipt
	log  *zap.Logger
}

func NewReceiptJournal(fs afero.Fs, dir, runID string, buffer int, log *zap.Logger) (*ReceiptJournal, error) {
	if buffer <= 0 {
		buffer = 1024
	}
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create receipts directory: %w", err)
	}
	path := filepath.Join(dir, "receipts-"+runID+".txt")
	f, err := fs.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open receipt journal: %w", err)
	}
	log.Info("Receipt journal opened", zap.String("path", path))
	return &ReceiptJournal{
		fs:   fs,
		file: f,
		path: path,
		in:   make(chan domain.Receipt, buffer),
		log:  log,
	}, nil
}

func (j *ReceiptJournal) Path() string { return j.path }

func (j *ReceiptJournal) ReceiptIssued(r domain.Receipt) {
	select {
	case j.in <- r:
	default:
		telemetry.JournalLinesTotal.WithLabelValues("dropped").Inc()
		j.log.Warn("Journal buffer full, dropping receipt", zap.String("receipt_id", r.ID))
	}
}

// Run appends buffered receipts until ctx is done, then flushes the rest.
func (j *ReceiptJournal) Run(ctx context.Context) error {
	for {
		select {
		case r := <-j.in:
			j.append(r)
		case <-ctx.Done():
			for {
				select {
				case r := <-j.in:
					j.append(r)
				default:
					return nil
				}
			}
		}
	}
}

func (j *ReceiptJournal) append(r domain.Receipt) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.file == nil {
		telemetry.JournalLinesTotal.WithLabelValues("dropped").Inc()
		return
	}
	if _, err := fmt.Fprintln(j.file, FormatReceipt(r)); err != nil {
		telemetry.JournalLinesTotal.WithLabelValues("error").Inc()
		j.log.Error("Failed to append receipt", zap.String("receipt_id", r.ID), zap.Error(err))
		return
	}
	telemetry.JournalLinesTotal.WithLabelValues("ok").Inc()
}

// VehicleAbandoned is a no-op; only receipts go to the journal.
func (j *ReceiptJournal) VehicleAbandoned(domain.Abandonment) {}

// Close closes the file. Call it after Run has returned.
func (j *ReceiptJournal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.file == nil {
		return nil
	}
	err := j.file.Close()
	j.file = nil
	return err
}

// FormatReceipt renders r as the single journal line.
func FormatReceipt(r domain.Receipt) string {
	return fmt.Sprintf("#%d %s pump=%d vehicle=%s %s fuel=%s litres=%.2f price=%.3f cost=%.2f service=%s outcome=%s",
		r.Sequence,
		r.ID,
		r.PumpID,
		r.VehicleID,
		r.VehicleKind,
		r.FuelKind,
		r.Litres,
		r.UnitPrice,
		r.Cost,
		r.ServiceTime.Round(time.Millisecond),
		r.Outcome,
	)
}
