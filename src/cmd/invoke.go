package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/api3dao/airkeeper/src/keeper"
	"github.com/api3dao/airkeeper/src/utils/logger"
)

func init() {
	RootCmd.AddCommand(invokeCmd)
}

var invokeCmd = &cobra.Command{
	Use:   "invoke",
	Short: "Run one PSP and one RRP beacon update cycle and exit",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		log := logger.NewSublogger("invoke-cmd")

		response, err := keeper.HandlePsp(applicationCtx, conf, nil, nil)
		if err != nil {
			return
		}
		fmt.Println(response.Body)

		response, err = keeper.HandleRrp(applicationCtx, conf, nil, nil)
		if err != nil {
			return
		}
		fmt.Println(response.Body)

		log.Debug("Finished invoke command")
		return
	},
}
