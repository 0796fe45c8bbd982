package cmd

import (
	"github.com/finvo/bridge/src/ingest"

	"github.com/spf13/cobra"
)

func init() {
	RootCmd.AddCommand(ingestCmd)
}

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Replay and follow tokenization events, apply them to the store",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		controller, err := ingest.NewController(conf)
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
