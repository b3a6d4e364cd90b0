package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"sync"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/seu-repo/sigec-posto/internal/adapter/queue"
	"github.com/seu-repo/sigec-posto/internal/adapter/storage/file"
	"github.com/seu-repo/sigec-posto/internal/domain"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow the receipts and abandonments a running server publishes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		log, err := newLogger()
		if err != nil {
			return err
		}
		defer log.Sync()

		mq, err := queue.New(cfg, log)
		if err != nil {
			return err
		}
		if mq == nil {
			return errors.New("messaging is disabled (messaging.driver is none)")
		}
		defer mq.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		return watchEvents(ctx, cmd.OutOrStdout(), mq, cfg.Messaging.ReceiptSubject, cfg.Messaging.AbandonedSubject, log)
	},
}

// eventPrinter serialises lines from the broker's delivery goroutines.
type eventPrinter struct {
	mu sync.Mutex
	w  io.Writer
}

func (p *eventPrinter) receipt(data []byte) error {
	var r domain.Receipt
	if err := json.Unmarshal(data, &r); err != nil {
		return fmt.Errorf("decode receipt: %w", err)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	_, err := fmt.Fprintln(p.w, file.FormatReceipt(r))
	return err
}

func (p *eventPrinter) abandonment(data []byte) error {
	var a domain.Abandonment
	if err := json.Unmarshal(data, &a); err != nil {
		return fmt.Errorf("decode abandonment: %w", err)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	_, err := color.New(color.FgYellow).Fprintf(p.w, "abandoned vehicle=%s %s fuel=%s waited=%s\n",
		a.VehicleID, a.VehicleKind, a.FuelKind, a.Waited())
	return err
}

// watchEvents prints every event delivered on the two subjects until ctx is
// done.
func watchEvents(ctx context.Context, w io.Writer, mq queue.MessageQueue, receiptSubject, abandonedSubject string, log *zap.Logger) error {
	p := &eventPrinter{w: w}
	if err := mq.Subscribe(receiptSubject, p.receipt); err != nil {
		return fmt.Errorf("subscribe %s: %w", receiptSubject, err)
	}
	if err := mq.Subscribe(abandonedSubject, p.abandonment); err != nil {
		return fmt.Errorf("subscribe %s: %w", abandonedSubject, err)
	}
	log.Info("Watching simulation events",
		zap.String("receipts", receiptSubject),
		zap.String("abandonments", abandonedSubject),
	)

	<-ctx.Done()
	return nil
}
