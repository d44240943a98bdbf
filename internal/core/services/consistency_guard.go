package services

import (
	"fmt"
	"sync"

	"github.com/finboard/ledger-engine/internal/apperrors"
)

// ConsistencyGuard quarantines accounts and periods after a structural
// invariant violation has been detected (a trial balance that does not
// balance, a drifted running balance). Posting against a quarantined target
// is refused until an operator has investigated and restarted the process;
// the quarantine is deliberately in-memory only, because the condition it
// flags is a defect, not a durable business state.
type ConsistencyGuard struct {
	mu       sync.RWMutex
	periods  map[string]string // periodID -> reason
	accounts map[string]string // accountID -> reason
}

// NewConsistencyGuard creates an empty guard.
func NewConsistencyGuard() *ConsistencyGuard {
	return &ConsistencyGuard{
		periods:  make(map[string]string),
		accounts: make(map[string]string),
	}
}

// QuarantinePeriod blocks further postings into the period.
func (g *ConsistencyGuard) QuarantinePeriod(periodID, reason string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.periods[periodID] = reason
}

// QuarantineAccount blocks further postings touching the account.
func (g *ConsistencyGuard) QuarantineAccount(accountID, reason string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.accounts[accountID] = reason
}

// CheckPosting returns a consistency error when the period or any of the
// accounts is quarantined.
func (g *ConsistencyGuard) CheckPosting(periodID string, accountIDs []string) error {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if reason, ok := g.periods[periodID]; ok {
		return fmt.Errorf("%w: period %s is quarantined: %s", apperrors.ErrConsistency, periodID, reason)
	}
	for _, id := range accountIDs {
		if reason, ok := g.accounts[id]; ok {
			return fmt.Errorf("%w: account %s is quarantined: %s", apperrors.ErrConsistency, id, reason)
		}
	}
	return nil
}
