package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/finboard/ledger-engine/internal/apperrors"
	"github.com/finboard/ledger-engine/internal/core/domain"
	portsrepo "github.com/finboard/ledger-engine/internal/core/ports/repositories"
	portssvc "github.com/finboard/ledger-engine/internal/core/ports/services"
)

var (
	ErrAlreadyPosted      = errors.New("entry is already posted")
	ErrAlreadyReversed    = errors.New("entry is already reversed")
	ErrNotReversible      = errors.New("only posted entries can be reversed")
	ErrReversalOfReversal = errors.New("cannot reverse a reversal entry")
)

// postingService is the ledger posting engine. Every balance change and
// every general-ledger row in the system originates here; the repository
// call it delegates to is a single all-or-nothing database transaction.
type postingService struct {
	BaseService
	journalRepo portsrepo.JournalRepositoryFacade
	periodSvc   portssvc.PeriodSvcFacade
	accountSvc  portssvc.AccountReaderSvc
	guard       *ConsistencyGuard
}

// NewPostingService creates the posting engine.
func NewPostingService(journalRepo portsrepo.JournalRepositoryFacade, periodSvc portssvc.PeriodSvcFacade, accountSvc portssvc.AccountReaderSvc, guard *ConsistencyGuard) portssvc.PostingSvcFacade {
	if guard == nil {
		guard = NewConsistencyGuard()
	}
	return &postingService{
		journalRepo: journalRepo,
		periodSvc:   periodSvc,
		accountSvc:  accountSvc,
		guard:       guard,
	}
}

var _ portssvc.PostingSvcFacade = (*postingService)(nil)

// preparePosting runs every precondition that can be checked outside the
// transaction: entry status, line-set re-validation, account
// postability, period state, and the consistency quarantine. The repository
// re-verifies status and account state under locks, so a race here only
// surfaces as a clean conflict, never as partial state.
func (s *postingService) preparePosting(ctx context.Context, entry *domain.JournalEntry) (*domain.Period, error) {
	switch entry.Status {
	case domain.Draft:
		// proceed
	case domain.Posted, domain.Reversed:
		return nil, fmt.Errorf("%w: %s", ErrAlreadyPosted, entry.EntryID)
	default:
		return nil, fmt.Errorf("%w: entry %s is %s", apperrors.ErrConflict, entry.EntryID, entry.Status)
	}

	if err := validateLineSet(entry.Lines); err != nil {
		// The workflow validated this at create/update time; a failure here
		// means the draft was corrupted and must not reach the ledger.
		return nil, err
	}
	if _, err := fetchPostableAccounts(ctx, s.accountSvc, entry.Lines); err != nil {
		return nil, err
	}

	period, err := s.periodSvc.GetCurrentPeriod(ctx, entry.EntryDate)
	if err != nil {
		return nil, err
	}
	if !period.IsOpen() {
		return nil, fmt.Errorf("%w: period %s", ErrPeriodClosed, period.Code)
	}

	accountIDs := make([]string, 0, len(entry.Lines))
	for _, line := range entry.Lines {
		accountIDs = append(accountIDs, line.AccountID)
	}
	if err := s.guard.CheckPosting(period.PeriodID, accountIDs); err != nil {
		s.LogError(ctx, err, "Posting refused by consistency quarantine",
			slog.String("entry_id", entry.EntryID),
			slog.String("period_id", period.PeriodID))
		return nil, err
	}
	return period, nil
}

// PostEntry atomically converts a draft entry into ledger rows and balance
// changes. Posting an already-posted entry fails with ErrAlreadyPosted; a
// lock timeout fails with apperrors.ErrLockTimeout and leaves no effects.
func (s *postingService) PostEntry(ctx context.Context, entryID string, postedBy string) (*domain.JournalEntry, error) {
	entry, err := s.journalRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: ID %s", ErrEntryNotFound, entryID)
		}
		return nil, err
	}

	period, err := s.preparePosting(ctx, entry)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	rows, err := s.journalRepo.PostEntry(ctx, *entry, *period, postedBy, now)
	if err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return nil, fmt.Errorf("%w: %s", ErrAlreadyPosted, entryID)
		}
		if errors.Is(err, apperrors.ErrLockTimeout) {
			s.LogWarn(ctx, "Posting lock timeout, no effects applied",
				slog.String("entry_id", entryID))
			return nil, err
		}
		s.LogError(ctx, err, "Posting failed", slog.String("entry_id", entryID))
		return nil, fmt.Errorf("failed to post entry %s: %w", entryID, err)
	}

	entry.Status = domain.Posted
	entry.PostedBy = postedBy
	entry.PostedAt = &now
	entry.LastUpdatedAt = now
	entry.LastUpdatedBy = postedBy

	s.LogInfo(ctx, "Journal entry posted",
		slog.String("entry_id", entry.EntryID),
		slog.String("entry_number", entry.EntryNumber),
		slog.String("period_id", period.PeriodID),
		slog.Int("ledger_rows", len(rows)))
	return entry, nil
}

// ReverseEntry creates the offsetting entry for a posted one and posts it
// into the current open period, marking the original REVERSED in the same
// transaction. The original's lines are never touched.
func (s *postingService) ReverseEntry(ctx context.Context, entryID string, userID string) (*domain.JournalEntry, error) {
	original, err := s.journalRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: ID %s", ErrEntryNotFound, entryID)
		}
		return nil, err
	}

	switch {
	case original.Status == domain.Reversed || original.ReversedByEntryID != nil:
		return nil, fmt.Errorf("%w: %s", ErrAlreadyReversed, entryID)
	case original.Status != domain.Posted:
		return nil, fmt.Errorf("%w: status is %s", ErrNotReversible, original.Status)
	case original.ReversesEntryID != nil:
		return nil, fmt.Errorf("%w: %s", ErrReversalOfReversal, entryID)
	}

	now := time.Now().UTC()
	// The reversal is dated today and must land in an open period; reversing
	// into the original's (possibly closed) period would break the period lock.
	period, err := s.periodSvc.GetCurrentPeriod(ctx, now)
	if err != nil {
		return nil, err
	}
	if !period.IsOpen() {
		return nil, fmt.Errorf("%w: period %s", ErrPeriodClosed, period.Code)
	}

	number, err := s.journalRepo.NextEntryNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate entry number for reversal: %w", err)
	}

	reversalID := uuid.NewString()
	lines := make([]domain.JournalEntryLine, len(original.Lines))
	for i, line := range original.Lines {
		lines[i] = domain.JournalEntryLine{
			LineID:      uuid.NewString(),
			EntryID:     reversalID,
			LineNumber:  line.LineNumber,
			AccountID:   line.AccountID,
			Debit:       line.Credit, // swapped
			Credit:      line.Debit,
			Description: line.Description,
			CostCenter:  line.CostCenter,
		}
	}

	reversal := domain.JournalEntry{
		EntryID:         reversalID,
		EntryNumber:     number,
		EntryDate:       now,
		EntryType:       domain.EntrySystem,
		SourceType:      domain.SourceTypeReversal,
		SourceID:        original.EntryID,
		SourceReference: original.EntryNumber,
		Description:     fmt.Sprintf("Reversal of %s: %s", original.EntryNumber, original.Description),
		TotalDebit:      original.TotalCredit,
		TotalCredit:     original.TotalDebit,
		Status:          domain.Draft,
		ReversesEntryID: &original.EntryID,
		Lines:           lines,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	accountIDs := make([]string, 0, len(lines))
	for _, line := range lines {
		accountIDs = append(accountIDs, line.AccountID)
	}
	if err := s.guard.CheckPosting(period.PeriodID, accountIDs); err != nil {
		return nil, err
	}

	rows, err := s.journalRepo.PostReversal(ctx, *original, reversal, *period, userID, now)
	if err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return nil, fmt.Errorf("%w: %s", ErrAlreadyReversed, entryID)
		}
		if errors.Is(err, apperrors.ErrLockTimeout) {
			return nil, err
		}
		s.LogError(ctx, err, "Reversal failed", slog.String("entry_id", entryID))
		return nil, fmt.Errorf("failed to reverse entry %s: %w", entryID, err)
	}

	reversal.Status = domain.Posted
	reversal.PostedBy = userID
	reversal.PostedAt = &now

	s.LogInfo(ctx, "Journal entry reversed",
		slog.String("original_entry_id", original.EntryID),
		slog.String("reversal_entry_id", reversal.EntryID),
		slog.Int("ledger_rows", len(rows)))
	return &reversal, nil
}
