package handlers

// AppHandlers содержит все хэндлеры приложения.
type AppHandlers struct {
	SearchHandler  *SearchHandler
	ReportHandler  *ReportHandler
	CompanyHandler *CompanyHandler
	HealthHandler  *HealthHandler
}
