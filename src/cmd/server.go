package cmd

import (
	"github.com/spf13/cobra"

	"github.com/api3dao/airkeeper/src/keeper"
	"github.com/api3dao/airkeeper/src/utils/logger"
)

func init() {
	RootCmd.AddCommand(serverCmd)
}

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Run update cycles on a schedule and serve monitoring counters",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		controller, err := keeper.NewController(conf)
		if err != nil {
			return
		}

		err = controller.Start()
		if err != nil {
			return
		}

		select {
		case <-controller.CtxRunning.Done():
		case <-applicationCtx.Done():
		}

		controller.StopWait()

		return
	},
	PostRunE: func(cmd *cobra.Command, args []string) (err error) {
		log := logger.NewSublogger("root-cmd")
		log.Debug("Finished server command")
		applicationCtxCancel()
		return
	},
}
