package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finboard/ledger-engine/internal/apperrors"
	"github.com/finboard/ledger-engine/internal/core/domain"
	portsrepo "github.com/finboard/ledger-engine/internal/core/ports/repositories"
	portssvc "github.com/finboard/ledger-engine/internal/core/ports/services"
	"github.com/finboard/ledger-engine/internal/dto"
)

var (
	ErrUnbalancedEntry         = errors.New("entry debits and credits do not balance")
	ErrZeroAmountEntry         = errors.New("entry totals must be greater than zero")
	ErrEntryMinLines           = errors.New("entry must have at least two lines")
	ErrEntryMinAccounts        = errors.New("entry must affect at least two different accounts")
	ErrLineOneSided            = errors.New("each line must have exactly one of debit or credit set")
	ErrNotEditable             = errors.New("entry is not editable outside draft status")
	ErrAlreadyApproved         = errors.New("entry is already approved")
	ErrCannotCancelPosted      = errors.New("only draft entries can be cancelled")
	ErrGroupAccountNotPostable = errors.New("group accounts cannot be posted to")
	ErrEntryNotFound           = errors.New("journal entry not found")
)

// journalService manages the draft entry workflow. Posted entries are
// immutable facts; everything here operates on drafts only.
type journalService struct {
	BaseService
	journalRepo portsrepo.JournalRepositoryFacade
	ledgerRepo  portsrepo.LedgerReader
	accountSvc  portssvc.AccountReaderSvc
}

// NewJournalService creates a new journal entry workflow service.
func NewJournalService(journalRepo portsrepo.JournalRepositoryFacade, ledgerRepo portsrepo.LedgerReader, accountSvc portssvc.AccountReaderSvc) portssvc.JournalSvcFacade {
	return &journalService{
		journalRepo: journalRepo,
		ledgerRepo:  ledgerRepo,
		accountSvc:  accountSvc,
	}
}

var _ portssvc.JournalSvcFacade = (*journalService)(nil)

// buildLines converts request lines to domain lines, enforcing the one-sided
// positive-amount rule per line and numbering lines in request order.
func buildLines(entryID string, reqLines []dto.EntryLineRequest) ([]domain.JournalEntryLine, error) {
	lines := make([]domain.JournalEntryLine, len(reqLines))
	for i, lr := range reqLines {
		debitSet := lr.Debit.IsPositive()
		creditSet := lr.Credit.IsPositive()
		if lr.Debit.IsNegative() || lr.Credit.IsNegative() {
			return nil, fmt.Errorf("%w: line %d has a negative amount", apperrors.ErrValidation, i+1)
		}
		if debitSet == creditSet {
			return nil, fmt.Errorf("%w: line %d", ErrLineOneSided, i+1)
		}
		lines[i] = domain.JournalEntryLine{
			LineID:      uuid.NewString(),
			EntryID:     entryID,
			LineNumber:  i + 1,
			AccountID:   lr.AccountID,
			Debit:       lr.Debit,
			Credit:      lr.Credit,
			Description: lr.Description,
			CostCenter:  lr.CostCenter,
		}
	}
	return lines, nil
}

// entryTotals sums the two sides of a line set.
func entryTotals(lines []domain.JournalEntryLine) (debit, credit decimal.Decimal) {
	debit = decimal.Zero
	credit = decimal.Zero
	for _, line := range lines {
		debit = debit.Add(line.Debit)
		credit = credit.Add(line.Credit)
	}
	return debit, credit
}

// validateLineSet applies the structural double-entry rules shared by create
// and update: minimum lines and accounts, balance, non-zero totals.
func validateLineSet(lines []domain.JournalEntryLine) error {
	if len(lines) < 2 {
		return ErrEntryMinLines
	}
	accountSet := make(map[string]struct{}, len(lines))
	for _, line := range lines {
		accountSet[line.AccountID] = struct{}{}
	}
	if len(accountSet) < 2 {
		return ErrEntryMinAccounts
	}

	debit, credit := entryTotals(lines)
	if !debit.Equal(credit) {
		return fmt.Errorf("%w: debits %s, credits %s", ErrUnbalancedEntry, debit.String(), credit.String())
	}
	if !debit.IsPositive() {
		return ErrZeroAmountEntry
	}
	return nil
}

// fetchPostableAccounts verifies every account referenced by the lines
// exists, is active, and is not a group account. Returns the accounts keyed
// by ID. Shared by entry validation and the pre-posting re-check.
func fetchPostableAccounts(ctx context.Context, accountSvc portssvc.AccountReaderSvc, lines []domain.JournalEntryLine) (map[string]domain.Account, error) {
	ids := make([]string, 0, len(lines))
	seen := make(map[string]struct{}, len(lines))
	for _, line := range lines {
		if _, ok := seen[line.AccountID]; !ok {
			seen[line.AccountID] = struct{}{}
			ids = append(ids, line.AccountID)
		}
	}

	accounts, err := accountSvc.GetAccountsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch accounts: %w", err)
	}
	for _, id := range ids {
		acc, found := accounts[id]
		if !found {
			return nil, fmt.Errorf("%w: ID %s", ErrAccountNotFound, id)
		}
		if !acc.IsActive {
			return nil, fmt.Errorf("%w: ID %s", ErrAccountInactive, id)
		}
		if acc.IsGroup {
			return nil, fmt.Errorf("%w: ID %s", ErrGroupAccountNotPostable, id)
		}
	}
	return accounts, nil
}

// CreateEntry validates and persists a new entry in DRAFT.
func (s *journalService) CreateEntry(ctx context.Context, req dto.CreateEntryRequest, creatorUserID string) (*domain.JournalEntry, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	entryID := uuid.NewString()
	lines, err := buildLines(entryID, req.Lines)
	if err != nil {
		return nil, err
	}
	if err := validateLineSet(lines); err != nil {
		return nil, err
	}
	if _, err := fetchPostableAccounts(ctx, s.accountSvc, lines); err != nil {
		return nil, err
	}

	number, err := s.journalRepo.NextEntryNumber(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to allocate entry number")
		return nil, fmt.Errorf("failed to allocate entry number: %w", err)
	}

	now := time.Now().UTC()
	totalDebit, totalCredit := entryTotals(lines)
	entry := domain.JournalEntry{
		EntryID:         entryID,
		EntryNumber:     number,
		EntryDate:       req.EntryDate,
		EntryType:       req.EntryType,
		SourceType:      req.SourceType,
		SourceID:        req.SourceID,
		SourceReference: req.SourceReference,
		Description:     req.Description,
		TotalDebit:      totalDebit,
		TotalCredit:     totalCredit,
		Status:          domain.Draft,
		Lines:           lines,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.journalRepo.SaveEntry(ctx, entry); err != nil {
		s.LogError(ctx, err, "Failed to save entry", slog.String("entry_number", number))
		return nil, fmt.Errorf("failed to save entry: %w", err)
	}

	s.LogInfo(ctx, "Journal entry created",
		slog.String("entry_id", entry.EntryID),
		slog.String("entry_number", entry.EntryNumber),
		slog.String("total", totalDebit.String()))
	return &entry, nil
}

// UpdateEntry replaces the header and lines of a draft entry, re-running the
// same validation as create.
func (s *journalService) UpdateEntry(ctx context.Context, entryID string, req dto.UpdateEntryRequest, userID string) (*domain.JournalEntry, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	entry, err := s.getEntry(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if entry.Status != domain.Draft {
		return nil, fmt.Errorf("%w: status is %s", ErrNotEditable, entry.Status)
	}

	if req.EntryDate != nil {
		entry.EntryDate = *req.EntryDate
	}
	if req.Description != nil {
		entry.Description = *req.Description
	}
	if req.Lines != nil {
		lines, err := buildLines(entry.EntryID, req.Lines)
		if err != nil {
			return nil, err
		}
		if err := validateLineSet(lines); err != nil {
			return nil, err
		}
		if _, err := fetchPostableAccounts(ctx, s.accountSvc, lines); err != nil {
			return nil, err
		}
		entry.Lines = lines
		entry.TotalDebit, entry.TotalCredit = entryTotals(lines)
	}

	entry.LastUpdatedAt = time.Now().UTC()
	entry.LastUpdatedBy = userID

	if err := s.journalRepo.UpdateDraftEntry(ctx, *entry); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return nil, fmt.Errorf("%w: entry left draft concurrently", ErrNotEditable)
		}
		s.LogError(ctx, err, "Failed to update entry", slog.String("entry_id", entryID))
		return nil, fmt.Errorf("failed to update entry: %w", err)
	}

	s.LogInfo(ctx, "Journal entry updated", slog.String("entry_id", entryID))
	return entry, nil
}

// ApproveEntry stamps approval metadata on a draft entry. Approval is an
// optional review gate; posting does not require it.
func (s *journalService) ApproveEntry(ctx context.Context, entryID string, approverID string) (*domain.JournalEntry, error) {
	entry, err := s.getEntry(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if entry.Status != domain.Draft {
		return nil, fmt.Errorf("%w: status is %s", ErrNotEditable, entry.Status)
	}
	if entry.ApprovedAt != nil {
		return nil, fmt.Errorf("%w: by %s", ErrAlreadyApproved, entry.ApprovedBy)
	}

	now := time.Now().UTC()
	if err := s.journalRepo.MarkApproved(ctx, entryID, approverID, now); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return nil, fmt.Errorf("%w", ErrAlreadyApproved)
		}
		s.LogError(ctx, err, "Failed to approve entry", slog.String("entry_id", entryID))
		return nil, fmt.Errorf("failed to approve entry: %w", err)
	}

	entry.ApprovedBy = approverID
	entry.ApprovedAt = &now
	s.LogInfo(ctx, "Journal entry approved",
		slog.String("entry_id", entryID),
		slog.String("approver", approverID))
	return entry, nil
}

// CancelEntry transitions a draft entry to CANCELLED.
func (s *journalService) CancelEntry(ctx context.Context, entryID string, reason string, userID string) error {
	entry, err := s.getEntry(ctx, entryID)
	if err != nil {
		return err
	}
	if !entry.Status.CanTransitionTo(domain.Cancelled) {
		return fmt.Errorf("%w: status is %s", ErrCannotCancelPosted, entry.Status)
	}

	if err := s.journalRepo.MarkCancelled(ctx, entryID, reason, userID, time.Now().UTC()); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return fmt.Errorf("%w: entry left draft concurrently", ErrCannotCancelPosted)
		}
		s.LogError(ctx, err, "Failed to cancel entry", slog.String("entry_id", entryID))
		return fmt.Errorf("failed to cancel entry: %w", err)
	}

	s.LogInfo(ctx, "Journal entry cancelled",
		slog.String("entry_id", entryID),
		slog.String("reason", reason))
	return nil
}

// GetEntryByID retrieves an entry with its lines.
func (s *journalService) GetEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	return s.getEntry(ctx, entryID)
}

// GetEntryByNumber retrieves an entry with its lines by entry number.
func (s *journalService) GetEntryByNumber(ctx context.Context, entryNumber string) (*domain.JournalEntry, error) {
	entry, err := s.journalRepo.FindEntryByNumber(ctx, entryNumber)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: number %s", ErrEntryNotFound, entryNumber)
		}
		return nil, err
	}
	return entry, nil
}

// ListEntriesByStatus retrieves entries in the given status, newest first.
func (s *journalService) ListEntriesByStatus(ctx context.Context, status domain.EntryStatus, limit int, offset int) ([]domain.JournalEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.journalRepo.ListEntriesByStatus(ctx, status, limit, offset)
}

// ListLedgerByAccount exposes an account's immutable ledger history.
func (s *journalService) ListLedgerByAccount(ctx context.Context, accountID string, from, to time.Time, limit int, offset int) ([]domain.LedgerEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	return s.ledgerRepo.ListLedgerByAccount(ctx, accountID, from, to, limit, offset)
}

func (s *journalService) getEntry(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	entry, err := s.journalRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: ID %s", ErrEntryNotFound, entryID)
		}
		s.LogError(ctx, err, "Failed to find entry", slog.String("entry_id", entryID))
		return nil, err
	}
	return entry, nil
}
