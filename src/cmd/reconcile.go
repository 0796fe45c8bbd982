package cmd

import (
	"github.com/finvo/bridge/src/reconcile"

	"github.com/spf13/cobra"
)

func init() {
	RootCmd.AddCommand(reconcileCmd)
}

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Periodically re-derive escrow statuses from the ledger",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		controller, err := reconcile.NewController(conf)
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
