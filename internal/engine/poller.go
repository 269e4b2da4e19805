package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

const (
	defaultPollInterval     = 10 * time.Second
	defaultNotVisibleBudget = 1200 * time.Second
)

// Outcome is the terminal result of one confirmation wait.
type Outcome int

const (
	// OutcomeConfirmed: the transaction executed successfully on-chain.
	OutcomeConfirmed Outcome = iota
	// OutcomeFailed: the transaction was included but reverted. This is a
	// valid chain outcome the caller must branch on, not an engine error.
	OutcomeFailed
	// OutcomeUnknownStatus: the receipt carries a status that is neither
	// success nor failure. Kept as its own terminal outcome instead of
	// retrying or erroring.
	OutcomeUnknownStatus
)

func (o Outcome) String() string {
	switch o {
	case OutcomeConfirmed:
		return "confirmed"
	case OutcomeFailed:
		return "failed"
	case OutcomeUnknownStatus:
		return "unknown-status"
	}
	return "invalid"
}

// Result is returned once per submission attempt.
type Result struct {
	Outcome Outcome
	Hash    common.Hash
	Receipt *types.Receipt
}

func (r *Result) Confirmed() bool {
	return r != nil && r.Outcome == OutcomeConfirmed
}

type pollState int

const (
	statePolling pollState = iota
	stateConfirmed
	stateOnChainFailed
	stateUnknownStatus
	stateNotYetVisible
	stateTransientError
)

// Poller waits for a broadcast transaction to reach a terminal chain state.
//
// Two waiting modes are kept deliberately separate: a receipt that exists but
// is not yet in a block is polled indefinitely, while "not found" lookups and
// transient RPC faults burn a shared not-yet-visible budget. The budget is
// what bounds a misbehaving endpoint without giving up on normal propagation
// delay.
type Poller struct {
	client   ChainClient
	log      *slog.Logger
	interval time.Duration
	budget   time.Duration
	sleep    func(ctx context.Context, d time.Duration) error
}

func NewPoller(client ChainClient, log *slog.Logger, interval, budget time.Duration) *Poller {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	if budget <= 0 {
		budget = defaultNotVisibleBudget
	}
	return &Poller{
		client:   client,
		log:      log,
		interval: interval,
		budget:   budget,
		sleep:    sleepCtx,
	}
}

// Wait polls the receipt for hash until a terminal outcome. It returns a
// Result for every on-chain terminal state, ErrTimeExhausted when the
// transaction never became visible within the budget, and a chain error when
// the wait itself is cancelled.
func (p *Poller) Wait(ctx context.Context, hash common.Hash) (*Result, error) {
	var notVisible time.Duration
	for {
		state, receipt, stepErr := p.step(ctx, hash)
		switch state {
		case stateConfirmed:
			return &Result{Outcome: OutcomeConfirmed, Hash: hash, Receipt: receipt}, nil
		case stateOnChainFailed:
			return &Result{Outcome: OutcomeFailed, Hash: hash, Receipt: receipt}, nil
		case stateUnknownStatus:
			return &Result{Outcome: OutcomeUnknownStatus, Hash: hash, Receipt: receipt}, nil
		case statePolling:
			// Receipt exists but the transaction is still pending; no budget
			// is charged once the node knows the hash.
		case stateNotYetVisible, stateTransientError:
			if state == stateTransientError {
				p.log.Error("receipt lookup failed, retrying",
					"tx", hash.Hex(), "error", normalizeError(stepErr))
			}
			notVisible += p.interval
			if notVisible > p.budget {
				return nil, fmt.Errorf("%w: %s of lookups without a receipt", ErrTimeExhausted, notVisible)
			}
		}
		if err := p.sleep(ctx, p.interval); err != nil {
			return nil, chainErr("wait for confirmation", err)
		}
	}
}

func (p *Poller) step(ctx context.Context, hash common.Hash) (pollState, *types.Receipt, error) {
	receipt, err := p.client.TransactionReceipt(ctx, hash)
	if err != nil {
		if errors.Is(err, ethereum.NotFound) {
			return stateNotYetVisible, nil, err
		}
		return stateTransientError, nil, err
	}
	if receipt.BlockNumber == nil {
		return statePolling, receipt, nil
	}
	switch receipt.Status {
	case types.ReceiptStatusSuccessful:
		return stateConfirmed, receipt, nil
	case types.ReceiptStatusFailed:
		return stateOnChainFailed, receipt, nil
	}
	return stateUnknownStatus, receipt, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
