package config

import (
	"github.com/spf13/viper"
)

type Contract struct {
	// JSON-RPC endpoint of the ledger node
	RpcUrl string

	// Websocket endpoint, used for live event subscriptions
	WsUrl string

	// Address of the invoice tokenization contract
	Address string

	// Chain id used for transaction signing
	ChainId int64

	// Upper bound for RPC calls per second against the provider
	RpcRequestsPerSecond int
}

func setContractDefaults() {
	viper.SetDefault("Contract.RpcUrl", "http://127.0.0.1:8545")
	viper.SetDefault("Contract.WsUrl", "ws://127.0.0.1:8546")
	viper.SetDefault("Contract.Address", "0x0000000000000000000000000000000000000000")
	viper.SetDefault("Contract.ChainId", 31337)
	viper.SetDefault("Contract.RpcRequestsPerSecond", 10)
}
