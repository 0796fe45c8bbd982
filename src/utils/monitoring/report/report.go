package report

type Report struct {
	Run        RunReport        `json:"run"`
	Ingestor   IngestorReport   `json:"ingestor"`
	Reconciler ReconcilerReport `json:"reconciler"`
	Relayer    RelayerReport    `json:"relayer"`
}
