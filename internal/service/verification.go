package service

import (
	"context"

	"gorm.io/gorm"

	"github.com/verimetr/verimetr-api/internal/api/dto"
	"github.com/verimetr/verimetr-api/internal/domain"
	"github.com/verimetr/verimetr-api/internal/repository"
	"github.com/verimetr/verimetr-api/internal/service/queue"
	"github.com/verimetr/verimetr-api/internal/service/storage"
	"github.com/verimetr/verimetr-api/pkg/logger"
)

// VerificationService records instrument verification results. Each new
// entry consumes one verification slot of the company's quota and enqueues
// protocol generation; the document is rendered asynchronously by the docs
// worker.
type VerificationService struct {
	repo      repository.Repository
	quota     *QuotaService
	sqs       *queue.SQSService
	documents *storage.DocumentStore
	logger    *logger.Logger
}

func NewVerificationService(
	repo repository.Repository,
	quota *QuotaService,
	sqs *queue.SQSService,
	documents *storage.DocumentStore,
	logger *logger.Logger,
) *VerificationService {
	return &VerificationService{
		repo:      repo,
		quota:     quota,
		sqs:       sqs,
		documents: documents,
		logger:    logger,
	}
}

func (s *VerificationService) Create(ctx context.Context, req dto.CreateVerificationRequest) (*dto.VerificationResponse, error) {
	entry := req.ToVerificationEntry()

	err := s.repo.Transaction(ctx, func(txRepo repository.Repository) error {
		if err := s.quota.CheckAvailable(ctx, txRepo, req.CompanyID, domain.QuotaVerifications, 1); err != nil {
			return err
		}

		created, err := txRepo.Verification().Create(ctx, entry)
		if err != nil {
			return err
		}
		entry = created

		return s.quota.ApplyIncrement(ctx, txRepo, req.CompanyID, domain.QuotaVerifications, 1)
	})
	if err != nil {
		return nil, err
	}

	// Protocol rendering happens out of band; a failed enqueue is logged
	// and retried by the caller, the entry itself is already committed.
	if err := s.sqs.SendProtocolMessage(ctx, entry.CompanyID, entry.ID); err != nil {
		s.logger.Errorf("Failed to enqueue protocol generation for verification %s: %v", entry.ID, err)
	}

	return dto.FromVerificationEntry(entry), nil
}

func (s *VerificationService) GetByID(ctx context.Context, id string) (*dto.VerificationResponse, error) {
	entry, err := s.repo.Verification().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.FromVerificationEntry(entry), nil
}

func (s *VerificationService) List(ctx context.Context, filter domain.VerificationFilter) ([]dto.VerificationResponse, error) {
	entries, err := s.repo.Verification().List(ctx, filter)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.VerificationResponse, len(entries))
	for i := range entries {
		responses[i] = *dto.FromVerificationEntry(&entries[i])
	}
	return responses, nil
}

// Delete removes an entry, its stored protocol, and releases its quota slot.
func (s *VerificationService) Delete(ctx context.Context, id string) error {
	entry, err := s.repo.Verification().GetByID(ctx, id)
	if err != nil {
		return err
	}

	err = s.repo.Transaction(ctx, func(txRepo repository.Repository) error {
		deleted, err := txRepo.Verification().Delete(ctx, id)
		if err != nil {
			return err
		}
		if !deleted {
			// A concurrent delete already released the quota slot.
			return gorm.ErrRecordNotFound
		}
		return s.quota.ApplyDecrement(ctx, txRepo, entry.CompanyID, domain.QuotaVerifications, 1)
	})
	if err != nil {
		return err
	}

	if entry.ProtocolKey != "" {
		if err := s.documents.Delete(ctx, entry.ProtocolKey); err != nil {
			s.logger.Warnf("Failed to delete protocol %s: %v", entry.ProtocolKey, err)
		}
	}
	return nil
}

// DownloadProtocol fetches the rendered protocol document for an entry.
func (s *VerificationService) DownloadProtocol(ctx context.Context, id string) ([]byte, string, error) {
	entry, err := s.repo.Verification().GetByID(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if entry.ProtocolKey == "" {
		return nil, "", gorm.ErrRecordNotFound
	}

	data, err := s.documents.Download(ctx, entry.ProtocolKey)
	if err != nil {
		return nil, "", err
	}
	return data, entry.ProtocolKey, nil
}

// ListDocuments returns the object keys of the company's stored protocols
// and registry reports.
func (s *VerificationService) ListDocuments(ctx context.Context, companyID string) ([]string, error) {
	protocols, err := s.documents.ListCompanyDocuments(ctx, storage.ProtocolPrefix(companyID))
	if err != nil {
		return nil, err
	}
	reports, err := s.documents.ListCompanyDocuments(ctx, storage.ReportPrefix(companyID))
	if err != nil {
		return nil, err
	}
	return append(protocols, reports...), nil
}

// RequestReport enqueues a registry export for the company and period.
func (s *VerificationService) RequestReport(ctx context.Context, companyID string, filter domain.VerificationFilter) error {
	return s.sqs.SendReportMessage(ctx, companyID, filter.DateFrom, filter.DateTo)
}
