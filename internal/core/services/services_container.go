package services

import (
	portsrepo "github.com/finboard/ledger-engine/internal/core/ports/repositories"
	portssvc "github.com/finboard/ledger-engine/internal/core/ports/services"
)

// NewServiceContainer creates a service container with properly initialized
// dependencies. The consistency guard is shared between reporting (which
// quarantines on invariant violations) and posting (which honors the
// quarantine).
func NewServiceContainer(repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	guard := NewConsistencyGuard()
	container := &portssvc.ServiceContainer{}

	container.Account = NewAccountService(repos.AccountRepo)
	container.Period = NewPeriodService(repos.PeriodRepo)
	container.Journal = NewJournalService(repos.JournalRepo, repos.LedgerRepo, container.Account)
	container.Posting = NewPostingService(repos.JournalRepo, container.Period, container.Account, guard)
	container.Reporting = NewReportingService(repos.LedgerRepo, repos.TrialBalanceRepo, repos.PeriodRepo, repos.AccountRepo, guard)
	container.Reconciliation = NewReconciliationService(repos.ReconciliationRepo, repos.AccountRepo, repos.LedgerRepo)

	return container
}

// Compile-time interface checks.
var (
	_ portssvc.AccountSvcFacade        = (*accountService)(nil)
	_ portssvc.PeriodSvcFacade         = (*periodService)(nil)
	_ portssvc.JournalSvcFacade        = (*journalService)(nil)
	_ portssvc.PostingSvcFacade        = (*postingService)(nil)
	_ portssvc.ReportingSvcFacade      = (*reportingService)(nil)
	_ portssvc.ReconciliationSvcFacade = (*reconciliationService)(nil)
)
