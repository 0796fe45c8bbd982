package relay

import (
	"context"
	"net/http"

	"github.com/finvo/bridge/src/utils/config"
	"github.com/finvo/bridge/src/utils/monitoring"
	"github.com/finvo/bridge/src/utils/task"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
)

// HTTP boundary of the relay. The outer router owns TLS and session
// issuance, this server owns validation, submission and auditing.
type Server struct {
	*task.Task

	httpServer *http.Server
	Router     *gin.Engine

	validator *Validator
	submitter *Submitter
	nonces    *NonceStore
	audit     *AuditWriter
	monitor   monitoring.Monitor
}

func NewServer(config *config.Config) (self *Server) {
	self = new(Server)

	self.Task = task.NewTask(config, "relay-server").
		WithSubtaskFunc(self.run).
		WithOnStop(self.stop)

	if !config.IsDevelopment {
		gin.SetMode(gin.ReleaseMode)
	}
	self.Router = gin.New()

	// No write timeout: a relay response waits for the transaction
	// receipt, which can outlast any fixed deadline. The submitter's
	// retry budget bounds how long a request can run.
	self.httpServer = &http.Server{
		Addr:        config.Relayer.ListenAddress,
		Handler:     self.Router,
		ReadTimeout: config.Relayer.ServerRequestTimeout,
	}

	return
}

func (self *Server) WithValidator(v *Validator) *Server {
	self.validator = v
	return self
}

func (self *Server) WithSubmitter(v *Submitter) *Server {
	self.submitter = v
	return self
}

func (self *Server) WithNonceStore(v *NonceStore) *Server {
	self.nonces = v
	return self
}

func (self *Server) WithAuditWriter(v *AuditWriter) *Server {
	self.audit = v
	return self
}

func (self *Server) WithMonitor(v monitoring.Monitor) *Server {
	self.monitor = v
	return self
}

func (self *Server) run() (err error) {
	v1 := self.Router.Group("v1")
	{
		v1.POST("relay", self.onRelay)
		v1.GET("nonce/:address", self.onGetNonce)
	}

	err = self.httpServer.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		self.Log.WithError(err).Error("Failed to start relay server")
		return
	}
	return nil
}

func (self *Server) stop() {
	ctx, cancel := context.WithTimeout(context.Background(), self.Config.StopTimeout)
	defer cancel()

	err := self.httpServer.Shutdown(ctx)
	if err != nil {
		self.Log.WithError(err).Error("Failed to gracefully shutdown relay server")
	}
}

func (self *Server) onRelay(c *gin.Context) {
	self.monitor.GetReport().Relayer.State.RequestsReceived.Inc()

	var request RelayRequest
	err := c.ShouldBindJSON(&request)
	if err != nil {
		self.monitor.GetReport().Relayer.Errors.ValidationRejections.Inc()
		self.audit.Rejected(request.Request.From, &request, "malformed request body")
		c.JSON(http.StatusBadRequest, RelayResponse{Success: false, Error: "malformed request body"})
		return
	}

	call, vErr := self.validator.Validate(self.Ctx, c.GetHeader("Authorization"), &request)
	if vErr != nil {
		switch vErr.Status {
		case http.StatusTooManyRequests:
			self.monitor.GetReport().Relayer.Errors.RateLimited.Inc()
		case http.StatusConflict:
			self.monitor.GetReport().Relayer.Errors.NonceConflicts.Inc()
		default:
			self.monitor.GetReport().Relayer.Errors.ValidationRejections.Inc()
		}
		self.audit.Rejected(request.Request.From, &request, vErr.Message)
		c.JSON(vErr.Status, RelayResponse{Success: false, Error: vErr.Message})
		return
	}

	// Submission is not cancelled by the client disconnecting, once a
	// transaction is broadcast we wait for its receipt
	txHash, gasUsed, err := self.submitter.Submit(self.Ctx, call)
	if err != nil {
		self.monitor.GetReport().Relayer.Errors.SubmissionFailures.Inc()
		self.Log.WithError(err).
			WithField("from", call.From).
			Error("Meta-transaction submission failed")
		self.audit.Failed(call.From.Hex(), &request, err.Error())
		c.JSON(http.StatusInternalServerError, RelayResponse{Success: false, Error: "submission failed, try again"})
		return
	}

	// The nonce moves only after confirmed success. When two requests
	// race on the same nonce exactly one advances, the loser is
	// reported as a conflict.
	advanced, err := self.nonces.AdvanceNonce(self.Ctx, call.From.Hex(), call.Nonce)
	if err != nil {
		self.Log.WithError(err).
			WithField("from", call.From).
			Error("Failed to advance nonce after a relayed transaction")
		self.audit.Failed(call.From.Hex(), &request, "nonce advance failed: "+err.Error())
		c.JSON(http.StatusInternalServerError, RelayResponse{Success: false, Error: "submission failed, try again"})
		return
	}
	if !advanced {
		self.monitor.GetReport().Relayer.Errors.NonceConflicts.Inc()
		self.audit.Rejected(call.From.Hex(), &request, "nonce already used by a concurrent request")
		c.JSON(http.StatusConflict, RelayResponse{Success: false, Error: "invalid nonce"})
		return
	}

	self.monitor.GetReport().Relayer.State.TransactionsRelayed.Inc()
	self.monitor.GetReport().Relayer.State.GasUsedTotal.Add(gasUsed)
	self.audit.Success(call.From.Hex(), &request, txHash, gasUsed)

	c.JSON(http.StatusOK, RelayResponse{Success: true, TxHash: txHash, GasUsed: gasUsed})
}

// Always the stored value, never the in-flight nonce of a concurrent
// request
func (self *Server) onGetNonce(c *gin.Context) {
	address := c.Param("address")
	if !common.IsHexAddress(address) {
		c.JSON(http.StatusBadRequest, RelayResponse{Success: false, Error: "invalid address"})
		return
	}

	nonce, err := self.nonces.GetNonce(self.Ctx, common.HexToAddress(address).Hex())
	if err != nil {
		self.Log.WithError(err).Error("Failed to read nonce")
		c.JSON(http.StatusInternalServerError, RelayResponse{Success: false, Error: "temporary error, try again"})
		return
	}

	c.JSON(http.StatusOK, NonceResponse{Nonce: nonce})
}
