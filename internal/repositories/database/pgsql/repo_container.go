package pgsql

import (
	"time"

	portsrepo "github.com/finboard/ledger-engine/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewRepositoryProvider wires all Postgres repositories over a shared
// connection pool. lockTimeout bounds how long a posting transaction waits
// for contended account row locks.
func NewRepositoryProvider(pool *pgxpool.Pool, lockTimeout time.Duration) portsrepo.RepositoryProvider {
	accountRepo := newPgxAccountRepository(pool)

	return portsrepo.RepositoryProvider{
		AccountRepo:        accountRepo,
		PeriodRepo:         newPgxPeriodRepository(pool),
		JournalRepo:        newPgxJournalRepository(pool, accountRepo, lockTimeout),
		LedgerRepo:         newPgxLedgerRepository(pool),
		TrialBalanceRepo:   newPgxTrialBalanceRepository(pool),
		ReconciliationRepo: newPgxReconciliationRepository(pool),
	}
}
