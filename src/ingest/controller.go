package ingest

import (
	"github.com/finvo/bridge/src/utils/config"
	"github.com/finvo/bridge/src/utils/eth"
	"github.com/finvo/bridge/src/utils/model"
	"github.com/finvo/bridge/src/utils/monitoring"
	monitor_bridge "github.com/finvo/bridge/src/utils/monitoring/bridge"
	"github.com/finvo/bridge/src/utils/publisher"
	"github.com/finvo/bridge/src/utils/task"
)

// Wires the ingestion pipeline:
// subscriber -> applier -> dispatcher (+ optional Redis notifier)
type Controller struct {
	*task.Task
}

func NewController(config *config.Config) (self *Controller, err error) {
	self = new(Controller)
	self.Task = task.NewTask(config, "ingest-controller")

	db, err := model.NewConnection(self.Ctx, config, "ingest")
	if err != nil {
		return
	}

	client, err := eth.NewClient(config)
	if err != nil {
		return
	}
	client, err = client.WithWebsocket()
	if err != nil {
		return
	}

	monitor := monitor_bridge.NewMonitor(config)
	server := monitoring.NewServer(config).WithMonitor(monitor)

	subscriber := NewSubscriber(config).
		WithDB(db).
		WithClient(client).
		WithMonitor(monitor)

	applier := NewApplier(config).
		WithDB(db).
		WithMonitor(monitor).
		WithInputChannel(subscriber.Output)
	if config.Ingestor.NotifierEnabled {
		applier = applier.WithNotifications(config)
	}

	dispatcher := NewDispatcher(config).
		WithMonitor(monitor).
		WithInputChannel(applier.Output)

	self.Task = self.Task.
		WithSubtask(monitor.Task).
		WithSubtask(server.Task).
		WithSubtask(applier.Task).
		WithSubtask(dispatcher.Task).
		WithSubtask(subscriber.Task).
		// The subscriber finishing outside a requested stop means the live
		// subscription is gone. Stop the whole engine so the process exits
		// and its restart replays the missed blocks.
		WithSubtaskFunc(func() error {
			select {
			case <-subscriber.CtxRunning.Done():
				if !self.IsStopping.Load() {
					self.Log.Error("Subscriber finished, shutting down for a restart to replay the gap")
					self.Stop()
				}
			case <-self.StopChannel:
			}
			return nil
		})

	if config.Ingestor.NotifierEnabled {
		notifier := publisher.NewRedisPublisher[*TokenizedNotification](config, "tokenized-notifier").
			WithChannelName(config.Ingestor.NotifierChannelName).
			WithMonitor(monitor).
			WithInputChannel(applier.Notifications)
		self.Task = self.Task.WithSubtask(notifier.Task)
	}

	return
}
