package keeper

import (
	"github.com/robfig/cron"

	"github.com/api3dao/airkeeper/src/utils/config"
	"github.com/api3dao/airkeeper/src/utils/monitor"
	"github.com/api3dao/airkeeper/src/utils/task"
)

// Controller is the long running mode: update cycles on a schedule plus
// the monitoring REST server
type Controller struct {
	*task.Task
}

func NewController(config *config.Config) (self *Controller, err error) {
	self = new(Controller)
	self.Task = task.NewTask(config, "controller")

	// Monitoring
	mon := monitor.NewMonitor()
	server := monitor.NewServer(config).
		WithMonitor(mon)

	// Scheduled update cycles
	scheduler := cron.New()
	err = scheduler.AddFunc(config.Keeper.Schedule, func() {
		if _, cycleErr := HandlePsp(self.Ctx, config, mon, nil); cycleErr != nil {
			self.Log.WithError(cycleErr).Error("PSP cycle failed")
			mon.GetReport().Errors.CycleFailures.Inc()
		}
		if _, cycleErr := HandleRrp(self.Ctx, config, mon, nil); cycleErr != nil {
			self.Log.WithError(cycleErr).Error("RRP cycle failed")
			mon.GetReport().Errors.CycleFailures.Inc()
		}
	})
	if err != nil {
		return
	}

	// Setup everything, will start upon calling Controller.Start()
	self.Task.
		WithSubtask(mon.Task).
		WithSubtask(server.Task).
		WithOnBeforeStart(func() error {
			scheduler.Start()
			return nil
		}).
		WithOnStop(scheduler.Stop)
	return
}
