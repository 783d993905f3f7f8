// Package numbering generates sequential document numbers per company.
package numbering

import (
	"context"
	"fmt"
	"time"

	"github.com/bizbooks/backend/internal/domain/billing"
	"github.com/bizbooks/backend/internal/domain/company"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Strategy produces the next number in a document series for a company
type Strategy interface {
	Next(ctx context.Context, companyID uuid.UUID, docType billing.DocumentType) (string, error)
}

// SeriesCounter reports how many documents of a series exist for a company
type SeriesCounter func(ctx context.Context, companyID uuid.UUID) (int64, error)

// CountStrategy numbers documents by counting existing rows in the series:
// {CODE}-{TYPE}-{YEAR}-{NNNN}, where CODE is derived from the company name.
// When the name yields no code, the company is missing, or the lookup fails,
// the number degrades to {TYPE}-{YEAR}-{NNNN} rather than blocking issuance.
//
// Sequences are scoped to the company, not the year: a count of 12 produces
// suffix 0013 regardless of when the earlier documents were issued.
type CountStrategy struct {
	companies company.Repository
	counters  map[billing.DocumentType]SeriesCounter
	logger    *zap.Logger
	now       func() time.Time
}

// NewCountStrategy creates a CountStrategy backed by the given series counters
func NewCountStrategy(companies company.Repository, counters map[billing.DocumentType]SeriesCounter, logger *zap.Logger) *CountStrategy {
	return &CountStrategy{
		companies: companies,
		counters:  counters,
		logger:    logger,
		now:       time.Now,
	}
}

// Next generates the next number in the series
func (s *CountStrategy) Next(ctx context.Context, companyID uuid.UUID, docType billing.DocumentType) (string, error) {
	counter, ok := s.counters[docType]
	if !ok {
		return "", fmt.Errorf("no series counter registered for document type %s", docType)
	}

	code := ""
	c, err := s.companies.FindByID(ctx, companyID)
	if err != nil {
		s.logger.Warn("company lookup failed, numbering without company code",
			zap.String("company_id", companyID.String()),
			zap.String("doc_type", string(docType)),
			zap.Error(err),
		)
	}
	if c != nil {
		code = c.NumberCode()
	}

	count, err := counter(ctx, companyID)
	if err != nil {
		return "", fmt.Errorf("failed to count %s series: %w", docType, err)
	}

	year := s.now().Year()
	if code == "" {
		return fmt.Sprintf("%s-%d-%04d", docType, year, count+1), nil
	}
	return fmt.Sprintf("%s-%s-%d-%04d", code, docType, year, count+1), nil
}

// ScanStrategy numbers proforma invoices by scanning the existing series for
// the highest PF-{YEAR}-{NNNN} suffix and incrementing it. When the scan
// fails or the stored number does not parse, the suffix falls back to an
// epoch-derived value so generation never blocks issuing a document.
type ScanStrategy struct {
	proformas billing.ProformaRepository
	now       func() time.Time
}

// NewScanStrategy creates a ScanStrategy over the proforma series
func NewScanStrategy(proformas billing.ProformaRepository) *ScanStrategy {
	return &ScanStrategy{
		proformas: proformas,
		now:       time.Now,
	}
}

// Next generates the next proforma number
func (s *ScanStrategy) Next(ctx context.Context, companyID uuid.UUID, docType billing.DocumentType) (string, error) {
	year := s.now().Year()
	prefix := fmt.Sprintf("%s-%d-", billing.DocTypeProforma, year)

	max, err := s.proformas.MaxNumberWithPrefix(ctx, companyID, prefix)
	if err != nil {
		return prefix + s.fallbackSuffix(), nil
	}
	if max == "" {
		return fmt.Sprintf("%s%04d", prefix, 1), nil
	}

	var seq int
	if _, err := fmt.Sscanf(max[len(prefix):], "%d", &seq); err != nil {
		return prefix + s.fallbackSuffix(), nil
	}
	return fmt.Sprintf("%s%04d", prefix, seq+1), nil
}

// fallbackSuffix derives a 4-digit suffix from the current epoch second
func (s *ScanStrategy) fallbackSuffix() string {
	return fmt.Sprintf("%04d", s.now().Unix()%10000)
}
