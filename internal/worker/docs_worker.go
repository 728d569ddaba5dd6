package worker

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/verimetr/verimetr-api/internal/domain"
	"github.com/verimetr/verimetr-api/internal/repository"
	"github.com/verimetr/verimetr-api/internal/service/queue"
	"github.com/verimetr/verimetr-api/internal/service/storage"
	"github.com/verimetr/verimetr-api/pkg/logger"
)

// DocsWorker consumes document generation jobs: it renders verification
// protocols and registry reports, stores them in S3 and writes the object
// key back onto the verification entry.
type DocsWorker struct {
	sqsService   *queue.SQSService
	repository   repository.Repository
	documents    *storage.DocumentStore
	logger       *logger.Logger
	workerCount  int
	pollInterval time.Duration
	maxMessages  int32
	waitTime     int32
	shutdownChan chan struct{}
	waitGroup    sync.WaitGroup
}

func NewDocsWorker(
	sqsService *queue.SQSService,
	repository repository.Repository,
	documents *storage.DocumentStore,
	logger *logger.Logger,
	workerCount int,
	pollInterval time.Duration,
) *DocsWorker {
	return &DocsWorker{
		sqsService:   sqsService,
		repository:   repository,
		documents:    documents,
		logger:       logger,
		workerCount:  workerCount,
		pollInterval: pollInterval,
		maxMessages:  10,
		waitTime:     20,
		shutdownChan: make(chan struct{}),
	}
}

func (w *DocsWorker) Start() {
	w.logger.Info("Starting docs workers...")

	for i := 0; i < w.workerCount; i++ {
		w.waitGroup.Add(1)
		go w.runWorker(i)
	}
}

func (w *DocsWorker) Stop() {
	w.logger.Info("Stopping docs workers...")
	close(w.shutdownChan)
	w.waitGroup.Wait()
	w.logger.Info("All docs workers stopped")
}

func (w *DocsWorker) runWorker(workerID int) {
	defer w.waitGroup.Done()

	w.logger.Infof("Docs worker %d started", workerID)

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.shutdownChan:
			w.logger.Infof("Docs worker %d shutting down", workerID)
			return
		case <-ticker.C:
			if err := w.processMessages(context.Background()); err != nil {
				w.logger.Errorf("Docs worker %d failed to process messages: %v", workerID, err)
			}
		}
	}
}

func (w *DocsWorker) processMessages(ctx context.Context) error {
	queueURL := w.sqsService.DocsQueueURL()

	messages, err := w.sqsService.ReceiveMessages(ctx, queueURL, w.maxMessages, w.waitTime)
	if err != nil {
		return fmt.Errorf("failed to receive messages: %w", err)
	}

	for _, msg := range messages {
		var processErr error
		switch msg.Message.Type {
		case queue.MessageTypeProtocol:
			processErr = w.processProtocolMessage(ctx, msg.Message)
		case queue.MessageTypeReport:
			processErr = w.processReportMessage(ctx, msg.Message)
		default:
			w.logger.Warnf("Skipping message of unknown type %q", msg.Message.Type)
		}

		if processErr != nil {
			w.logger.Errorf("Failed to process %s message: %v", msg.Message.Type, processErr)
			continue
		}

		// Only delete the message if processing was successful
		if err := w.sqsService.DeleteMessage(ctx, queueURL, msg.ReceiptHandle); err != nil {
			w.logger.Errorf("Failed to delete message: %v", err)
		}
	}

	return nil
}

func (w *DocsWorker) processProtocolMessage(ctx context.Context, msg queue.Message) error {
	entry, err := w.repository.Verification().GetByID(ctx, msg.VerificationID)
	if err != nil {
		return fmt.Errorf("failed to load verification %s: %w", msg.VerificationID, err)
	}

	document := renderProtocol(entry)
	key := storage.ProtocolKey(entry.CompanyID, entry.ID)

	if err := w.documents.Upload(ctx, key, "text/plain", document); err != nil {
		return err
	}

	entry.ProtocolKey = key
	if err := w.repository.Verification().Update(ctx, entry); err != nil {
		return fmt.Errorf("failed to save protocol key for %s: %w", entry.ID, err)
	}

	w.logger.Infof("Generated protocol %s for verification %s", key, entry.ID)
	return nil
}

func (w *DocsWorker) processReportMessage(ctx context.Context, msg queue.Message) error {
	entries, err := w.repository.Verification().List(ctx, domain.VerificationFilter{
		CompanyID: msg.CompanyID,
		DateFrom:  msg.PeriodFrom,
		DateTo:    msg.PeriodTo,
	})
	if err != nil {
		return fmt.Errorf("failed to list verifications for company %s: %w", msg.CompanyID, err)
	}

	report := renderRegistryReport(entries)
	key := storage.ReportKey(msg.CompanyID, msg.PeriodFrom, msg.PeriodTo)

	if err := w.documents.Upload(ctx, key, "text/csv", report); err != nil {
		return err
	}

	w.logger.Infof("Generated registry report %s (%d entries)", key, len(entries))
	return nil
}

func renderProtocol(entry *domain.VerificationEntry) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Verification protocol %s\n", entry.ID)
	fmt.Fprintf(&buf, "Equipment: %s (serial %s, registry %s)\n", entry.EquipmentType, entry.SerialNumber, entry.RegistryNumber)
	fmt.Fprintf(&buf, "Act: %s %s\n", entry.ActSeries, entry.ActNumber)
	fmt.Fprintf(&buf, "Date: %s\n", entry.VerificationDate.Format("2006-01-02"))
	fmt.Fprintf(&buf, "Suitable: %t\n", entry.Suitable)
	return buf.Bytes()
}

func renderRegistryReport(entries []domain.VerificationEntry) []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Write([]string{"id", "equipment_type", "serial_number", "registry_number", "act", "verification_date", "suitable"})
	for i := range entries {
		e := &entries[i]
		w.Write([]string{
			e.ID, e.EquipmentType, e.SerialNumber, e.RegistryNumber,
			e.ActSeries + " " + e.ActNumber,
			e.VerificationDate.Format("2006-01-02"),
			strconv.FormatBool(e.Suitable),
		})
	}
	w.Flush()
	return buf.Bytes()
}
