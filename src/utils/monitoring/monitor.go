package monitoring

import (
	"github.com/finvo/bridge/src/utils/monitoring/report"

	"github.com/gin-gonic/gin"
)

// Implemented by component monitors, consumed by tasks and the REST server
type Monitor interface {
	GetReport() *report.Report
	OnGet(c *gin.Context)
	OnGetMetrics(c *gin.Context)
}
