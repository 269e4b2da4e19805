package engine

import (
	"context"
	"log/slog"
	"math/big"
	"math/rand"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rpc"

	"txcourier/internal/chain"
	"txcourier/internal/keys"
	"txcourier/internal/util"
)

// Config tunes one engine instance. Zero values fall back to safe defaults.
type Config struct {
	PollInterval       time.Duration
	NotVisibleBudget   time.Duration
	FeeMultiplier      float64
	GasLimitMultiplier float64
	HTTP               chain.HTTPOptions
}

// Engine runs the full submission pipeline for a single account on a single
// network: build, sign, broadcast, confirm. One engine never submits two
// transactions concurrently; hosts that need parallelism run one engine per
// account.
type Engine struct {
	log      *slog.Logger
	network  chain.Network
	selector *chain.Selector
	account  *keys.Account
	cfg      Config

	rpcClient *rpc.Client
	client    ChainClient
}

func New(network chain.Network, account *keys.Account, rng *rand.Rand, cfg Config, log *slog.Logger) (*Engine, error) {
	selector, err := chain.NewSelector(network, rng)
	if err != nil {
		return nil, err
	}
	rpcClient, ethClient, err := chain.Dial(selector.Active(), cfg.HTTP)
	if err != nil {
		return nil, chainErr("dial endpoint", err)
	}
	log.Info("rpc endpoint connected", "network", network.Name, "endpoint", selector.Active())
	return &Engine{
		log:       log,
		network:   network,
		selector:  selector,
		account:   account,
		cfg:       cfg,
		rpcClient: rpcClient,
		client:    ethClient,
	}, nil
}

// newWithClient wires an engine around an existing client, used by tests.
func newWithClient(network chain.Network, account *keys.Account, selector *chain.Selector, client ChainClient, cfg Config, log *slog.Logger) *Engine {
	return &Engine{
		log:      log,
		network:  network,
		selector: selector,
		account:  account,
		cfg:      cfg,
		client:   client,
	}
}

func (e *Engine) Address() common.Address {
	return e.account.Address()
}

func (e *Engine) Network() chain.Network {
	return e.network
}

// RPC exposes the raw rpc client for read-only helpers outside the engine.
func (e *Engine) RPC() *rpc.Client {
	return e.rpcClient
}

func (e *Engine) Close() {
	if e.rpcClient != nil {
		e.rpcClient.Close()
	}
}

// SendValue submits a plain value transfer and waits for confirmation.
func (e *Engine) SendValue(ctx context.Context, to common.Address, value *big.Int) (*Result, error) {
	return e.Send(ctx, &to, value, nil, 0)
}

// Send runs the pipeline for one transaction: assemble a request from live
// chain state, sign and broadcast it, then poll until a terminal outcome.
// gasLimit 0 lets the submitter estimate. An on-chain revert comes back as a
// Result, not an error.
func (e *Engine) Send(ctx context.Context, to *common.Address, value *big.Int, data []byte, gasLimit uint64) (*Result, error) {
	fees := NewEstimator(e.client, e.cfg.FeeMultiplier)
	builder := NewBuilder(e.client, fees, e.network, e.account.Address())
	req, err := builder.Build(ctx, to, value, data)
	if err != nil {
		return nil, err
	}
	req.GasLimit = gasLimit

	submitter := NewSubmitter(e.client, e.account, e.log, e.cfg.GasLimitMultiplier)
	hash, err := submitter.Submit(ctx, req)
	if err != nil {
		return nil, err
	}
	if hash == (common.Hash{}) {
		// Duplicate-submission race: a peer already holds the transaction.
		return &Result{Outcome: OutcomeConfirmed}, nil
	}

	poller := NewPoller(e.client, e.log, e.cfg.PollInterval, e.cfg.NotVisibleBudget)
	res, err := poller.Wait(ctx, hash)
	if err != nil {
		return nil, err
	}
	switch res.Outcome {
	case OutcomeConfirmed:
		e.log.Info("transaction confirmed",
			"from", e.account.Address().Hex(), "url", e.network.TxURL(hash.Hex()))
	case OutcomeFailed:
		e.log.Warn("transaction reverted on-chain",
			"from", e.account.Address().Hex(), "url", e.network.TxURL(hash.Hex()))
	case OutcomeUnknownStatus:
		e.log.Warn("transaction receipt has non-standard status",
			"tx", hash.Hex(), "status", res.Receipt.Status)
	}
	return res, nil
}

// Balance returns the account's native balance.
func (e *Engine) Balance(ctx context.Context) (*big.Int, error) {
	bal, err := e.client.BalanceAt(ctx, e.account.Address(), nil)
	if err != nil {
		return nil, chainErr("get balance", err)
	}
	return bal, nil
}

// SwapEndpoint moves the engine to a different RPC endpoint. Failover is
// advisory: when the network has no alternate, the current endpoint stays
// active and only a warning is logged.
func (e *Engine) SwapEndpoint(ctx context.Context) {
	e.log.Warn("swapping rpc endpoint", "from", e.account.Address().Hex())
	next, err := e.selector.Swap()
	if err != nil {
		e.log.Error("endpoint swap not possible", "network", e.network.Name, "error", err)
		return
	}
	var rpcClient *rpc.Client
	var client ChainClient
	err = util.Retry(ctx, 2, 500*time.Millisecond, func() error {
		var dialErr error
		rpcClient, client, dialErr = chain.Dial(next, e.cfg.HTTP)
		return dialErr
	})
	if err != nil {
		e.log.Error("endpoint swap dial failed, keeping current endpoint",
			"endpoint", next, "error", err)
		return
	}
	if e.rpcClient != nil {
		e.rpcClient.Close()
	}
	e.rpcClient = rpcClient
	e.client = client
	e.log.Info("endpoint swap succeeded", "endpoint", next, "from", e.account.Address().Hex())
}
