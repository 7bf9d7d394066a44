package wallet

import (
	"context"
	"fmt"

	"github.com/btcsuite/btcd/btcutil/bech32"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/fystack/radixium/pkg/event"
	"github.com/fystack/radixium/pkg/hdpath"
	"github.com/fystack/radixium/pkg/ledger"
	"github.com/fystack/radixium/pkg/logger"
	"github.com/fystack/radixium/pkg/types"
)

// accountAddressVersion prefixes the compressed public key in the bech32
// payload of an account address.
const accountAddressVersion = 0x04

// Account is one derived signing identity.
type Account struct {
	Address   types.AccountAddress
	Path      hdpath.Path
	PublicKey *secp256k1.PublicKey
}

// Wallet is the signing capability the transaction pipeline consumes. The
// pipeline never owns the wallet; it is handed in as a collaborator.
type Wallet interface {
	// Sign produces a signature over the built transaction. nonNativeHRP
	// names the single foreign token involved, "" for native-only.
	Sign(ctx context.Context, built types.BuiltTransaction, nonNativeHRP string) (types.SignedTransaction, error)

	// ActiveAccount returns the account signatures are produced with.
	ActiveAccount() Account

	// ObserveActiveAccount streams the active account; the current value is
	// replayed to late subscribers.
	ObserveActiveAccount() (<-chan Account, func())
}

// AccountAddress derives the bech32 account address for a public key on the
// network identified by hrp (e.g. "rdx" for mainnet).
func AccountAddress(hrp string, publicKey *secp256k1.PublicKey) (types.AccountAddress, error) {
	payload := append([]byte{accountAddressVersion}, publicKey.SerializeCompressed()...)
	converted, err := bech32.ConvertBits(payload, 8, 5, true)
	if err != nil {
		return "", fmt.Errorf("wallet: convert address bits: %w", err)
	}
	encoded, err := bech32.Encode(hrp, converted)
	if err != nil {
		return "", fmt.Errorf("wallet: encode address: %w", err)
	}
	return types.AccountAddress(encoded), nil
}

// LedgerWallet signs on a hardware device through the Radix app driver.
type LedgerWallet struct {
	driver     *ledger.Driver
	networkHRP string
	account    Account
	accounts   *event.Hub[Account]
}

// NewLedgerWallet derives the initial account at m/44'/536'/account'/0/index
// and verifies the device answers.
func NewLedgerWallet(driver *ledger.Driver, networkHRP string, account, index uint32) (*LedgerWallet, error) {
	w := &LedgerWallet{
		driver:     driver,
		networkHRP: networkHRP,
		accounts:   event.NewHub[Account](1),
	}
	if err := w.SwitchAccount(account, index); err != nil {
		return nil, err
	}
	return w, nil
}

// SwitchAccount re-derives the active account at a new path and notifies
// observers.
func (w *LedgerWallet) SwitchAccount(account, index uint32) error {
	path := hdpath.Default(account, index)
	publicKey, err := w.driver.PublicKey(path, false)
	if err != nil {
		return fmt.Errorf("wallet: derive account %s: %w", path, err)
	}
	address, err := AccountAddress(w.networkHRP, publicKey)
	if err != nil {
		return err
	}

	w.account = Account{Address: address, Path: path, PublicKey: publicKey}
	w.accounts.Publish(w.account)
	logger.Info("Active account switched", "address", address, "path", path.String())
	return nil
}

func (w *LedgerWallet) ActiveAccount() Account {
	return w.account
}

func (w *LedgerWallet) ObserveActiveAccount() (<-chan Account, func()) {
	return w.accounts.Subscribe()
}

// Sign drives the on-device sign-tx streaming flow. The user reviews the
// transaction on the device; a rejection surfaces as a device status error.
func (w *LedgerWallet) Sign(ctx context.Context, built types.BuiltTransaction, nonNativeHRP string) (types.SignedTransaction, error) {
	signature, err := w.driver.SignTx(ctx, w.account.Path, built, nonNativeHRP)
	if err != nil {
		return types.SignedTransaction{}, err
	}
	return types.SignedTransaction{
		Built:     built,
		Signature: signature,
		PublicKey: w.account.PublicKey.SerializeCompressed(),
	}, nil
}

var _ Wallet = (*LedgerWallet)(nil)
