package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math/big"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/errgroup"

	"txcourier/internal/chain"
	"txcourier/internal/config"
	"txcourier/internal/engine"
	"txcourier/internal/erc20"
	"txcourier/internal/journal"
	"txcourier/internal/keys"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("run stopped", "error", err)
		os.Exit(1)
	}
}

// run executes the configured transfers. Transfers of different accounts run
// concurrently, one engine pipeline per account; transfers of the same
// account stay strictly sequential so nonces advance in order.
func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	store := journal.New(cfg.Journal.Path)

	byAccount := map[string][]config.Transfer{}
	for _, tr := range cfg.Transfers {
		byAccount[tr.Account] = append(byAccount[tr.Account], tr)
	}
	if len(byAccount) == 0 {
		logger.Info("no transfers configured, nothing to do")
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, acct := range cfg.Accounts {
		transfers := byAccount[acct.Name]
		if len(transfers) == 0 {
			continue
		}
		acct := acct
		g.Go(func() error {
			return runAccount(gctx, cfg, logger.With("account", acct.Name), store, acct, transfers)
		})
	}
	return g.Wait()
}

// runAccount drives one account's transfers in order, reusing one engine per
// network. A failed transfer is journaled and the run moves on; only context
// cancellation aborts the loop.
func runAccount(ctx context.Context, cfg *config.Config, logger *slog.Logger, store *journal.Store, acct config.Account, transfers []config.Transfer) error {
	account, err := keys.FromEnv(acct.PrivateKeyEnv)
	if err != nil {
		return fmt.Errorf("account %q: %w", acct.Name, err)
	}

	engines := map[string]*engine.Engine{}
	defer func() {
		for _, eng := range engines {
			eng.Close()
		}
	}()

	for _, tr := range transfers {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		eng := engines[tr.Network]
		if eng == nil {
			eng, err = newEngine(cfg, tr.Network, account, logger)
			if err != nil {
				return err
			}
			engines[tr.Network] = eng
		}
		if err := runTransfer(ctx, logger, store, eng, tr); err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			logger.Error("transfer failed", "network", tr.Network, "to", tr.To, "error", err)
			var chainError *engine.ChainError
			if errors.As(err, &chainError) {
				// The endpoint misbehaved; move off it before the next transfer.
				eng.SwapEndpoint(ctx)
			}
		}
	}
	return nil
}

func newEngine(cfg *config.Config, networkName string, account *keys.Account, logger *slog.Logger) (*engine.Engine, error) {
	netCfg := cfg.Networks[networkName]
	network := chain.Network{
		Name:     networkName,
		ChainID:  netCfg.ChainID,
		RPCs:     netCfg.RPCs,
		Explorer: netCfg.Explorer,
		EIP1559:  netCfg.EIP1559,
	}
	return engine.New(network, account, rand.New(rand.NewSource(time.Now().UnixNano())), engine.Config{
		PollInterval:       cfg.Tx.PollInterval.Duration,
		NotVisibleBudget:   cfg.Tx.NotVisibleTimeout.Duration,
		FeeMultiplier:      cfg.Tx.FeeMultiplier,
		GasLimitMultiplier: cfg.Tx.GasLimitMultiplier,
		HTTP: chain.HTTPOptions{
			Timeout:            cfg.HTTP.RequestTimeout.Duration,
			ProxyURL:           cfg.HTTP.ProxyURL,
			InsecureSkipVerify: cfg.HTTP.InsecureSkipVerify,
			UserAgent:          cfg.HTTP.UserAgent,
		},
	}, logger)
}

func runTransfer(ctx context.Context, logger *slog.Logger, store *journal.Store, eng *engine.Engine, tr config.Transfer) error {
	if !common.IsHexAddress(tr.To) {
		return fmt.Errorf("invalid recipient address %q", tr.To)
	}
	if tr.Token != "" {
		return runTokenTransfer(ctx, logger, store, eng, tr)
	}

	value, ok := new(big.Int).SetString(tr.ValueWei, 10)
	if !ok || value.Sign() < 0 {
		return fmt.Errorf("invalid value_wei %q", tr.ValueWei)
	}

	entry := journal.Entry{
		Network: tr.Network,
		From:    eng.Address().Hex(),
		To:      tr.To,
		Value:   value.String(),
	}
	res, err := eng.SendValue(ctx, common.HexToAddress(tr.To), value)
	return record(logger, store, entry, res, err)
}

// runTokenTransfer moves ERC-20 tokens: it reads the token's decimals and the
// sender's balance before building the transfer calldata, so underfunded
// transfers fail locally instead of reverting on-chain.
func runTokenTransfer(ctx context.Context, logger *slog.Logger, store *journal.Store, eng *engine.Engine, tr config.Transfer) error {
	if !common.IsHexAddress(tr.Token) {
		return fmt.Errorf("invalid token address %q", tr.Token)
	}
	token := common.HexToAddress(tr.Token)

	decimals, err := erc20.Decimals(ctx, eng.RPC(), token)
	if err != nil {
		return fmt.Errorf("token decimals: %w", err)
	}
	amount, err := erc20.ParseUnits(tr.Amount, decimals)
	if err != nil {
		return fmt.Errorf("token amount: %w", err)
	}
	balance, err := erc20.BalanceOf(ctx, eng.RPC(), token, eng.Address())
	if err != nil {
		return fmt.Errorf("token balance: %w", err)
	}
	if balance.Cmp(amount) < 0 {
		return fmt.Errorf("insufficient token balance: have %s, need %s", balance, amount)
	}
	data, err := erc20.TransferData(common.HexToAddress(tr.To), amount)
	if err != nil {
		return err
	}

	entry := journal.Entry{
		Network: tr.Network,
		From:    eng.Address().Hex(),
		To:      tr.To,
		Token:   token.Hex(),
		Value:   amount.String(),
	}
	res, err := eng.Send(ctx, &token, big.NewInt(0), data, 0)
	return record(logger, store, entry, res, err)
}

func record(logger *slog.Logger, store *journal.Store, entry journal.Entry, res *engine.Result, err error) error {
	if err != nil {
		entry.Outcome = "error"
		entry.Error = err.Error()
	} else {
		entry.Outcome = res.Outcome.String()
		if res.Hash != (common.Hash{}) {
			entry.Hash = res.Hash.Hex()
		}
	}
	if jerr := store.Append(entry); jerr != nil {
		logger.Error("journal append failed", "error", jerr)
	}
	return err
}
