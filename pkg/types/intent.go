package types

import (
	"github.com/fystack/radixium/pkg/apperr"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// TransactionIntent is the pre-build description of a transaction: the
// ordered actions, the sending account and an optional plaintext message.
type TransactionIntent struct {
	Actions []Action       `json:"actions"`
	Sender  AccountAddress `json:"sender"`
	Message string         `json:"message,omitempty"`
}

// NonNativeHRP returns the human-readable prefix of the single non-native
// token transferred by the intent, or "" when only the native token moves.
// The Ledger app can display at most one foreign token per transaction, so
// two or more distinct non-native names are rejected.
func (i TransactionIntent) NonNativeHRP() (string, error) {
	names := lo.FilterMap(i.Actions, func(a Action, _ int) (string, bool) {
		transfer, ok := a.(TransferAction)
		if !ok || transfer.RRI.IsNative() {
			return "", false
		}
		return transfer.RRI.Name(), true
	})

	distinct := lo.Uniq(names)
	if len(distinct) > 1 {
		return "", apperr.Errorf(apperr.KindMultipleNonNativeRRI,
			"intent transfers %d distinct non-native tokens, the device supports one", len(distinct))
	}
	if len(distinct) == 0 {
		return "", nil
	}
	return distinct[0], nil
}

// IntentBuilder accumulates actions into a TransactionIntent. Every method
// returns the builder itself so calls chain.
type IntentBuilder struct {
	actions []Action
	message string
}

func NewIntentBuilder() *IntentBuilder {
	return &IntentBuilder{}
}

func (b *IntentBuilder) TransferTokens(from, to AccountAddress, amount decimal.Decimal, rri RRI) *IntentBuilder {
	b.actions = append(b.actions, TransferAction{From: from, To: to, Amount: amount, RRI: rri})
	return b
}

func (b *IntentBuilder) StakeTokens(from AccountAddress, validator ValidatorAddress, amount decimal.Decimal) *IntentBuilder {
	b.actions = append(b.actions, StakeAction{From: from, Validator: validator, Amount: amount})
	return b
}

func (b *IntentBuilder) UnstakeTokens(from AccountAddress, validator ValidatorAddress, amount decimal.Decimal) *IntentBuilder {
	b.actions = append(b.actions, UnstakeAction{From: from, Validator: validator, Amount: amount})
	return b
}

func (b *IntentBuilder) Message(message string) *IntentBuilder {
	b.message = message
	return b
}

// Build finalizes the intent for the given sender.
func (b *IntentBuilder) Build(sender AccountAddress) TransactionIntent {
	return TransactionIntent{
		Actions: b.actions,
		Sender:  sender,
		Message: b.message,
	}
}
