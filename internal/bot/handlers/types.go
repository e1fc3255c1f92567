package handlers

import (
	"github.com/vladimiradmaev/fluid-helper/internal/interfaces"
)

// Dependencies holds all service dependencies for handlers
type Dependencies struct {
	LoggingSvc  interfaces.LoggingServiceInterface
	SummarySvc  interfaces.SummaryServiceInterface
	ReportSvc   interfaces.ReportServiceInterface
	SettingsSvc interfaces.SettingsServiceInterface
	Days        interfaces.DayResolverInterface
}
