package monitor_bridge

import (
	"net/http"
	"time"

	"github.com/finvo/bridge/src/utils/config"
	"github.com/finvo/bridge/src/utils/monitoring/report"
	"github.com/finvo/bridge/src/utils/task"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Shared monitor for the bridge commands, counters are exported both as
// a JSON report and through a prometheus collector
type Monitor struct {
	*task.Task

	Report report.Report

	registry  *prometheus.Registry
	collector *Collector
}

func NewMonitor(config *config.Config) (self *Monitor) {
	self = new(Monitor)

	self.Task = task.NewTask(config, "monitor").
		WithPeriodicSubtaskFunc(time.Second, self.updateUptime)

	self.Report.Run.State.StartTimestamp.Store(time.Now().Unix())

	self.collector = NewCollector().WithMonitor(self)
	self.registry = prometheus.NewRegistry()
	self.registry.MustRegister(self.collector)

	return
}

func (self *Monitor) GetReport() *report.Report {
	return &self.Report
}

func (self *Monitor) updateUptime() error {
	started := self.Report.Run.State.StartTimestamp.Load()
	self.Report.Run.State.UpForSeconds.Store(uint64(time.Now().Unix() - started))
	return nil
}

func (self *Monitor) OnGet(c *gin.Context) {
	c.JSON(http.StatusOK, &self.Report)
}

func (self *Monitor) OnGetMetrics(c *gin.Context) {
	handler := promhttp.HandlerFor(self.registry, promhttp.HandlerOpts{})
	handler.ServeHTTP(c.Writer, c.Request)
}
