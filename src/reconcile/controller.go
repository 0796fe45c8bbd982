package reconcile

import (
	"github.com/finvo/bridge/src/utils/config"
	"github.com/finvo/bridge/src/utils/eth"
	"github.com/finvo/bridge/src/utils/model"
	"github.com/finvo/bridge/src/utils/monitoring"
	monitor_bridge "github.com/finvo/bridge/src/utils/monitoring/bridge"
	"github.com/finvo/bridge/src/utils/task"
)

// Wires the reconciliation pipeline: poller -> reconciler
type Controller struct {
	*task.Task
}

func NewController(config *config.Config) (self *Controller, err error) {
	self = new(Controller)
	self.Task = task.NewTask(config, "reconcile-controller")

	db, err := model.NewConnection(self.Ctx, config, "reconcile")
	if err != nil {
		return
	}

	client, err := eth.NewClient(config)
	if err != nil {
		return
	}

	monitor := monitor_bridge.NewMonitor(config)
	server := monitoring.NewServer(config).WithMonitor(monitor)

	poller := NewPoller(config).
		WithDB(db).
		WithMonitor(monitor)

	reconciler := NewReconciler(config).
		WithDB(db).
		WithReader(client).
		WithMonitor(monitor).
		WithInputChannel(poller.Output)

	self.Task = self.Task.
		WithSubtask(monitor.Task).
		WithSubtask(server.Task).
		WithSubtask(reconciler.Task).
		WithSubtask(poller.Task)

	return
}
