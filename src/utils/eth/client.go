package eth

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"math/big"
	"strings"

	"github.com/finvo/bridge/src/utils/config"
	"github.com/finvo/bridge/src/utils/logger"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/sirupsen/logrus"
	"go.uber.org/ratelimit"
)

// ABI of the invoice tokenization contract, narrowed to what the bridge uses
const contractABI = `[
  {
    "type": "event",
    "name": "InvoiceTokenized",
    "inputs": [
      {"name": "invoiceHash", "type": "bytes32", "indexed": true},
      {"name": "tokenId", "type": "uint256", "indexed": false},
      {"name": "seller", "type": "address", "indexed": false},
      {"name": "amount", "type": "uint256", "indexed": false}
    ],
    "anonymous": false
  },
  {
    "type": "function",
    "name": "getEscrow",
    "stateMutability": "view",
    "inputs": [{"name": "invoiceHash", "type": "bytes32"}],
    "outputs": [
      {"name": "seller", "type": "address"},
      {"name": "buyer", "type": "address"},
      {"name": "expiresAt", "type": "uint64"},
      {"name": "buyerConfirmed", "type": "bool"},
      {"name": "sellerConfirmed", "type": "bool"},
      {"name": "disputeRaised", "type": "bool"}
    ]
  },
  {
    "type": "function",
    "name": "executeMetaTransaction",
    "stateMutability": "nonpayable",
    "inputs": [
      {"name": "from", "type": "address"},
      {"name": "functionData", "type": "bytes"},
      {"name": "signature", "type": "bytes"}
    ],
    "outputs": [{"name": "", "type": "bytes"}]
  }
]`

// Gateway to the ledger node. All RPC calls go through a shared
// limiter so the provider's request budget is respected.
type Client struct {
	log *logrus.Entry

	contractConfig *config.Contract

	rpc *ethclient.Client
	ws  *ethclient.Client

	abi     abi.ABI
	address common.Address
	bound   *bind.BoundContract

	limiter ratelimit.Limiter
	chainId *big.Int

	relayerKey *ecdsa.PrivateKey
	gasLimit   uint64
}

func NewClient(config *config.Config) (self *Client, err error) {
	self = new(Client)
	self.log = logger.NewSublogger("eth-client")
	self.contractConfig = &config.Contract
	self.chainId = big.NewInt(config.Contract.ChainId)
	self.address = common.HexToAddress(config.Contract.Address)

	if config.Contract.RpcRequestsPerSecond > 0 {
		self.limiter = ratelimit.New(config.Contract.RpcRequestsPerSecond)
	} else {
		self.limiter = ratelimit.NewUnlimited()
	}

	self.abi, err = abi.JSON(strings.NewReader(contractABI))
	if err != nil {
		self.log.WithError(err).Error("Failed to parse contract ABI")
		return
	}

	self.rpc, err = ethclient.Dial(config.Contract.RpcUrl)
	if err != nil {
		self.log.WithError(err).Error("Failed to dial RPC endpoint")
		return
	}

	self.bound = bind.NewBoundContract(self.address, self.abi, self.rpc, self.rpc, self.rpc)

	return
}

// Opens the websocket connection used for live event subscriptions
func (self *Client) WithWebsocket() (*Client, error) {
	ws, err := ethclient.Dial(self.contractConfig.WsUrl)
	if err != nil {
		self.log.WithError(err).Error("Failed to dial websocket endpoint")
		return self, err
	}
	self.ws = ws
	return self, nil
}

// Loads the funded relayer account used for meta-transaction submission
func (self *Client) WithRelayerKey(privateKeyHex string, gasLimit uint64) (*Client, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(privateKeyHex, "0x"))
	if err != nil {
		self.log.WithError(err).Error("Failed to parse relayer private key")
		return self, err
	}
	self.relayerKey = key
	self.gasLimit = gasLimit
	return self, nil
}

func (self *Client) RelayerAddress() common.Address {
	if self.relayerKey == nil {
		return common.Address{}
	}
	return crypto.PubkeyToAddress(self.relayerKey.PublicKey)
}

func (self *Client) BlockNumber(ctx context.Context) (height uint64, err error) {
	self.limiter.Take()
	return self.rpc.BlockNumber(ctx)
}

// Historical log query for InvoiceTokenized, inclusive on both ends.
// Events are returned in log order.
func (self *Client) FilterTokenized(ctx context.Context, fromBlock, toBlock int64) (events []*TokenizedEvent, err error) {
	self.limiter.Take()

	query := ethereum.FilterQuery{
		FromBlock: big.NewInt(fromBlock),
		ToBlock:   big.NewInt(toBlock),
		Addresses: []common.Address{self.address},
		Topics:    [][]common.Hash{{self.abi.Events[EventInvoiceTokenized].ID}},
	}

	logs, err := self.rpc.FilterLogs(ctx, query)
	if err != nil {
		return
	}

	events = make([]*TokenizedEvent, 0, len(logs))
	for _, lg := range logs {
		var event *TokenizedEvent
		event, err = self.DecodeTokenized(lg)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}

	return
}

// Live subscription to InvoiceTokenized logs over the websocket connection
func (self *Client) SubscribeTokenized(ctx context.Context, sink chan<- types.Log) (sub ethereum.Subscription, err error) {
	if self.ws == nil {
		err = errors.New("websocket connection not configured")
		return
	}

	query := ethereum.FilterQuery{
		Addresses: []common.Address{self.address},
		Topics:    [][]common.Hash{{self.abi.Events[EventInvoiceTokenized].ID}},
	}

	self.limiter.Take()
	return self.ws.SubscribeFilterLogs(ctx, query, sink)
}

func (self *Client) DecodeTokenized(lg types.Log) (event *TokenizedEvent, err error) {
	var raw struct {
		InvoiceHash [32]byte
		TokenId     *big.Int
		Seller      common.Address
		Amount      *big.Int
	}
	err = self.bound.UnpackLog(&raw, EventInvoiceTokenized, lg)
	if err != nil {
		return
	}

	event = &TokenizedEvent{
		InvoiceHash: common.BytesToHash(raw.InvoiceHash[:]),
		TokenId:     raw.TokenId,
		Seller:      raw.Seller,
		Amount:      raw.Amount,
		BlockNumber: lg.BlockNumber,
		TxHash:      lg.TxHash,
	}
	return
}

// Authoritative read of the on-chain escrow structure
func (self *Client) GetEscrow(ctx context.Context, invoiceHash common.Hash) (escrow *EscrowData, err error) {
	self.limiter.Take()

	var out []interface{}
	err = self.bound.Call(&bind.CallOpts{Context: ctx}, &out, "getEscrow", [32]byte(invoiceHash))
	if err != nil {
		return
	}

	escrow = &EscrowData{
		Seller:          *abi.ConvertType(out[0], new(common.Address)).(*common.Address),
		Buyer:           *abi.ConvertType(out[1], new(common.Address)).(*common.Address),
		ExpiresAt:       *abi.ConvertType(out[2], new(uint64)).(*uint64),
		BuyerConfirmed:  *abi.ConvertType(out[3], new(bool)).(*bool),
		SellerConfirmed: *abi.ConvertType(out[4], new(bool)).(*bool),
		DisputeRaised:   *abi.ConvertType(out[5], new(bool)).(*bool),
	}
	return
}

// Submits the user's signed call through the relayer account
func (self *Client) ExecuteMetaTransaction(ctx context.Context, from common.Address, functionData, signature []byte) (tx *types.Transaction, err error) {
	if self.relayerKey == nil {
		err = errors.New("relayer key not configured")
		return
	}

	opts, err := bind.NewKeyedTransactorWithChainID(self.relayerKey, self.chainId)
	if err != nil {
		return
	}
	opts.Context = ctx
	opts.GasLimit = self.gasLimit

	self.limiter.Take()
	return self.bound.Transact(opts, "executeMetaTransaction", from, functionData, signature)
}

// Blocks until the transaction is mined or the context is cancelled.
// A receipt with failed status is reported as ErrExecutionReverted.
func (self *Client) WaitMined(ctx context.Context, tx *types.Transaction) (receipt *types.Receipt, err error) {
	receipt, err = bind.WaitMined(ctx, self.rpc, tx)
	if err != nil {
		return
	}

	if receipt.Status != types.ReceiptStatusSuccessful {
		err = ErrExecutionReverted
		return
	}

	return
}
