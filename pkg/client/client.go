package client

import (
	"context"
	"fmt"
	"time"

	"github.com/fystack/radixium/pkg/event"
	"github.com/fystack/radixium/pkg/eventbridge"
	"github.com/fystack/radixium/pkg/keystore"
	"github.com/fystack/radixium/pkg/logger"
	"github.com/fystack/radixium/pkg/nodeapi"
	"github.com/fystack/radixium/pkg/tracker"
	"github.com/fystack/radixium/pkg/txstore"
	"github.com/fystack/radixium/pkg/types"
	"github.com/fystack/radixium/pkg/wallet"
	"github.com/nats-io/nats.go"
	"github.com/shopspring/decimal"
)

// Options defines configuration options for creating a new RadixClient.
type Options struct {
	// Nodes are candidate node endpoints, probed in order.
	Nodes []string

	// NetworkID pins the expected network; 0 accepts any.
	NetworkID int

	// NetworkHRP prefixes derived account addresses.
	NetworkHRP string

	// Keystore loads credentials during Login. Optional when a Wallet is
	// supplied directly.
	Keystore keystore.Store

	// Wallet is the signing capability. Optional; Login installs a
	// software wallet from the keystore when absent.
	Wallet wallet.Wallet

	// TxStore caches submitted transactions locally. Optional.
	TxStore *txstore.Store

	// NatsConn mirrors tracking events onto NATS subjects. Optional.
	NatsConn *nats.Conn

	// PollInterval is the default status polling period.
	PollInterval time.Duration
}

// RadixClient is the outer facade: one node binding, one wallet, and the
// transaction pipeline entry points.
type RadixClient struct {
	node         *nodeapi.Client
	networkHRP   string
	store        keystore.Store
	wallet       wallet.Wallet
	txStore      *txstore.Store
	bridge       *eventbridge.Bridge
	errs         *event.Hub[error]
	pollInterval time.Duration
}

// New selects a node and assembles the client. A node selection failure is
// returned together with a nil client; it is also published on the
// client's error stream, which has no subscriber at that point.
func New(ctx context.Context, opts Options) (*RadixClient, error) {
	c := &RadixClient{
		networkHRP:   opts.NetworkHRP,
		store:        opts.Keystore,
		wallet:       opts.Wallet,
		txStore:      opts.TxStore,
		errs:         event.NewHub[error](0),
		pollInterval: opts.PollInterval,
	}
	if opts.NatsConn != nil {
		c.bridge = eventbridge.New(opts.NatsConn)
	}

	node, err := nodeapi.PickNode(ctx, opts.Nodes, opts.NetworkID)
	if err != nil {
		c.errs.Publish(err)
		return nil, err
	}
	c.node = node
	return c, nil
}

// Login loads the keystore and installs a software wallet derived from it.
// Hardware wallet users hand the wallet in through Options instead.
func (c *RadixClient) Login(password string) error {
	if c.store == nil {
		return fmt.Errorf("Login: no keystore configured")
	}
	ks, err := c.store.Load(password)
	if err != nil {
		c.errs.Publish(err)
		return fmt.Errorf("Login: %w", err)
	}

	w, err := wallet.NewSoftWallet(ks.Mnemonic, "", c.hrpOf(ks), ks.AccountIndex, ks.AddressIndex)
	if err != nil {
		c.errs.Publish(err)
		return fmt.Errorf("Login: %w", err)
	}
	c.wallet = w
	logger.Info("Logged in", "address", w.ActiveAccount().Address)
	return nil
}

func (c *RadixClient) hrpOf(ks *keystore.Keystore) string {
	if ks.NetworkHRP != "" {
		return ks.NetworkHRP
	}
	return c.networkHRP
}

// Node exposes the typed node facade for read queries.
func (c *RadixClient) Node() *nodeapi.Client {
	return c.node
}

// Wallet returns the active signing capability, nil before Login when none
// was configured.
func (c *RadixClient) Wallet() wallet.Wallet {
	return c.wallet
}

// Errors subscribes to out-of-band failures not tied to one transaction:
// keystore load and wallet setup failures during Login. Node selection
// failures are only returned by New. Nothing is replayed, so only failures
// published after the subscription are delivered.
func (c *RadixClient) Errors() (<-chan error, func()) {
	return c.errs.Subscribe()
}

// ObserveActiveAccount streams the wallet's active account with replay of
// the current value.
func (c *RadixClient) ObserveActiveAccount() (<-chan wallet.Account, func()) {
	return c.wallet.ObserveActiveAccount()
}

// TransferTokens builds, confirms, signs, submits and tracks a token
// transfer from the active account.
func (c *RadixClient) TransferTokens(ctx context.Context, to types.AccountAddress, amount decimal.Decimal, rri types.RRI, opts tracker.Options) (*tracker.Tracking, error) {
	if c.wallet == nil {
		return nil, fmt.Errorf("TransferTokens: no wallet, call Login first or configure one")
	}
	sender := c.wallet.ActiveAccount().Address
	intent := types.NewIntentBuilder().
		TransferTokens(sender, to, amount, rri).
		Build(sender)
	return c.track(ctx, intent, opts)
}

// StakeTokens stakes from the active account to a validator.
func (c *RadixClient) StakeTokens(ctx context.Context, validator types.ValidatorAddress, amount decimal.Decimal, opts tracker.Options) (*tracker.Tracking, error) {
	if c.wallet == nil {
		return nil, fmt.Errorf("StakeTokens: no wallet, call Login first or configure one")
	}
	sender := c.wallet.ActiveAccount().Address
	intent := types.NewIntentBuilder().
		StakeTokens(sender, validator, amount).
		Build(sender)
	return c.track(ctx, intent, opts)
}

// UnstakeTokens requests an unstake from a validator.
func (c *RadixClient) UnstakeTokens(ctx context.Context, validator types.ValidatorAddress, amount decimal.Decimal, opts tracker.Options) (*tracker.Tracking, error) {
	if c.wallet == nil {
		return nil, fmt.Errorf("UnstakeTokens: no wallet, call Login first or configure one")
	}
	sender := c.wallet.ActiveAccount().Address
	intent := types.NewIntentBuilder().
		UnstakeTokens(sender, validator, amount).
		Build(sender)
	return c.track(ctx, intent, opts)
}

// SubmitIntent runs an externally assembled intent through the pipeline.
func (c *RadixClient) SubmitIntent(ctx context.Context, intent types.TransactionIntent, opts tracker.Options) (*tracker.Tracking, error) {
	if c.wallet == nil {
		return nil, fmt.Errorf("SubmitIntent: no wallet, call Login first or configure one")
	}
	return c.track(ctx, intent, opts)
}

func (c *RadixClient) track(ctx context.Context, intent types.TransactionIntent, opts tracker.Options) (*tracker.Tracking, error) {
	if opts.PollInterval == 0 {
		opts.PollInterval = c.pollInterval
	}

	tracking := tracker.Track(ctx, c.node, c.wallet, intent, opts)
	if c.bridge != nil {
		c.bridge.Mirror(tracking)
	}
	if c.txStore != nil {
		c.record(tracking, intent.Sender, intent.Message)
	}
	return tracking, nil
}

// record follows the tracking stream and keeps the local transaction cache
// current. Cache failures are logged, never terminal.
func (c *RadixClient) record(tracking *tracker.Tracking, sender types.AccountAddress, message string) {
	events, cancel := tracking.Events()
	go func() {
		defer cancel()
		for ev := range events {
			switch ev.Phase {
			case types.PhaseSubmitted:
				pending, ok := ev.State.(types.PendingTransaction)
				if !ok {
					continue
				}
				err := c.txStore.Put(txstore.Record{
					TxID:        pending.TxID,
					Sender:      sender,
					Status:      types.TxStatusPending,
					SubmittedAt: time.Now().UTC(),
					Message:     message,
				})
				if err != nil {
					logger.Warn("Failed to cache submitted transaction", "txID", pending.TxID, "error", err)
				}
			case types.PhaseStatusUpdate:
				status, ok := ev.State.(types.TransactionStatus)
				if !ok {
					continue
				}
				if err := c.txStore.UpdateStatus(status.TxID, status.Status); err != nil {
					logger.Warn("Failed to update cached transaction", "txID", status.TxID, "error", err)
				}
			}
		}
	}()
}
