package wallet

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/fystack/radixium/pkg/event"
	"github.com/fystack/radixium/pkg/hdpath"
	"github.com/fystack/radixium/pkg/types"
	"github.com/tyler-smith/go-bip32"
	"github.com/tyler-smith/go-bip39"
)

var ErrInvalidMnemonic = errors.New("wallet: invalid mnemonic")

// SoftWallet is the pure-software signing equivalent of the Ledger flow:
// keys derived from a BIP-39 mnemonic, signatures computed locally over the
// double SHA-256 of the built transaction blob.
type SoftWallet struct {
	master     *bip32.Key
	networkHRP string
	privateKey *secp256k1.PrivateKey
	account    Account
	accounts   *event.Hub[Account]
}

// NewSoftWallet derives the initial account from the mnemonic at
// m/44'/536'/account'/0/index.
func NewSoftWallet(mnemonic, passphrase, networkHRP string, account, index uint32) (*SoftWallet, error) {
	if !bip39.IsMnemonicValid(mnemonic) {
		return nil, ErrInvalidMnemonic
	}
	seed := bip39.NewSeed(mnemonic, passphrase)
	master, err := bip32.NewMasterKey(seed)
	if err != nil {
		return nil, fmt.Errorf("wallet: master key: %w", err)
	}

	w := &SoftWallet{
		master:     master,
		networkHRP: networkHRP,
		accounts:   event.NewHub[Account](1),
	}
	if err := w.SwitchAccount(account, index); err != nil {
		return nil, err
	}
	return w, nil
}

// SwitchAccount re-derives the active key at a new path and notifies
// observers.
func (w *SoftWallet) SwitchAccount(account, index uint32) error {
	path := hdpath.Default(account, index)

	key := w.master
	for _, word := range path.HardenedComponents() {
		child, err := key.NewChildKey(word)
		if err != nil {
			return fmt.Errorf("wallet: derive %s: %w", path, err)
		}
		key = child
	}

	privateKey := secp256k1.PrivKeyFromBytes(key.Key)
	address, err := AccountAddress(w.networkHRP, privateKey.PubKey())
	if err != nil {
		return err
	}

	w.privateKey = privateKey
	w.account = Account{Address: address, Path: path, PublicKey: privateKey.PubKey()}
	w.accounts.Publish(w.account)
	return nil
}

func (w *SoftWallet) ActiveAccount() Account {
	return w.account
}

func (w *SoftWallet) ObserveActiveAccount() (<-chan Account, func()) {
	return w.accounts.Subscribe()
}

// Sign hashes the blob with double SHA-256 and signs locally. nonNativeHRP
// is accepted for interface parity; software signing has no display
// constraint, though the one-foreign-token rule is still enforced upstream
// for portability of intents across wallet kinds.
func (w *SoftWallet) Sign(ctx context.Context, built types.BuiltTransaction, nonNativeHRP string) (types.SignedTransaction, error) {
	if err := ctx.Err(); err != nil {
		return types.SignedTransaction{}, err
	}

	first := sha256.Sum256(built.Blob)
	digest := sha256.Sum256(first[:])

	signature := ecdsa.Sign(w.privateKey, digest[:])
	return types.SignedTransaction{
		Built:     built,
		Signature: signature.Serialize(),
		PublicKey: w.account.PublicKey.SerializeCompressed(),
	}, nil
}

var _ Wallet = (*SoftWallet)(nil)
