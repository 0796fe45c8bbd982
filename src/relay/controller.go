package relay

import (
	"github.com/finvo/bridge/src/utils/config"
	"github.com/finvo/bridge/src/utils/eth"
	"github.com/finvo/bridge/src/utils/model"
	"github.com/finvo/bridge/src/utils/monitoring"
	monitor_bridge "github.com/finvo/bridge/src/utils/monitoring/bridge"
	"github.com/finvo/bridge/src/utils/task"
)

// Wires the relay: HTTP server -> validator -> submitter, with the
// audit writer batching entries in the background
type Controller struct {
	*task.Task
}

func NewController(config *config.Config) (self *Controller, err error) {
	self = new(Controller)
	self.Task = task.NewTask(config, "relay-controller")

	db, err := model.NewConnection(self.Ctx, config, "relay")
	if err != nil {
		return
	}

	client, err := eth.NewClient(config)
	if err != nil {
		return
	}
	client, err = client.WithRelayerKey(config.Relayer.PrivateKey, config.Relayer.GasLimit)
	if err != nil {
		return
	}

	monitor := monitor_bridge.NewMonitor(config)
	monitoringServer := monitoring.NewServer(config).WithMonitor(monitor)

	nonces := NewNonceStore(db)

	audit := NewAuditWriter(config).
		WithDB(db).
		WithMonitor(monitor).
		WithRelayerAddress(client.RelayerAddress().Hex())

	validator := NewValidator(config).
		WithNonceStore(nonces)

	submitter := NewSubmitter(config).
		WithClient(client)

	server := NewServer(config).
		WithValidator(validator).
		WithSubmitter(submitter).
		WithNonceStore(nonces).
		WithAuditWriter(audit).
		WithMonitor(monitor)

	self.Task = self.Task.
		WithSubtask(monitor.Task).
		WithSubtask(monitoringServer.Task).
		WithSubtask(audit.Task).
		WithSubtask(server.Task)

	return
}
