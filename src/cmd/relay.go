package cmd

import (
	"github.com/finvo/bridge/src/relay"

	"github.com/spf13/cobra"
)

func init() {
	RootCmd.AddCommand(relayCmd)
}

var relayCmd = &cobra.Command{
	Use:   "relay",
	Short: "Serve the meta-transaction relay API",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		controller, err := relay.NewController(conf)
		if err != nil {
			return
		}

		err = controller.Start()
		if err != nil {
			return
		}

		select {
		case <-ctx.Done():
		case <-controller.CtxRunning.Done():
		}

		controller.StopWait()
		return
	},
}
