package services

// ServiceContainer holds instances of all the engine services. This is the
// surface callers embed; transport layers live outside this module and talk
// to these facades.
type ServiceContainer struct {
	Account        AccountSvcFacade
	Period         PeriodSvcFacade
	Journal        JournalSvcFacade
	Posting        PostingSvcFacade
	Reporting      ReportingSvcFacade
	Reconciliation ReconciliationSvcFacade
}
