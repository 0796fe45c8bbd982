package relay

// Inbound relay request. The outer router terminates TLS and auth
// sessions, the bridge only sees the signed call and the bearer token.
type CallRequest struct {
	From  string `json:"from" binding:"required"`
	To    string `json:"to" binding:"required"`
	Value string `json:"value"`
	Gas   string `json:"gas"`
	Nonce int64  `json:"nonce"`
	Data  string `json:"data" binding:"required"`
}

type RelayRequest struct {
	Request   CallRequest `json:"request" binding:"required"`
	Signature string      `json:"signature" binding:"required"`
}

type RelayResponse struct {
	Success bool   `json:"success"`
	TxHash  string `json:"txHash,omitempty"`
	GasUsed uint64 `json:"gasUsed,omitempty"`
	Error   string `json:"error,omitempty"`
}

type NonceResponse struct {
	Nonce int64 `json:"nonce"`
}
