package types

import (
	"fmt"

	"github.com/shopspring/decimal"
)

type ActionType string

const (
	ActionTypeTransfer ActionType = "TokenTransfer"
	ActionTypeStake    ActionType = "StakeTokens"
	ActionTypeUnstake  ActionType = "UnstakeTokens"
)

// Action is one step of a transaction intent.
type Action interface {
	Type() ActionType
}

type TransferAction struct {
	From   AccountAddress  `json:"from"`
	To     AccountAddress  `json:"to"`
	Amount decimal.Decimal `json:"amount"`
	RRI    RRI             `json:"rri"`
}

func (TransferAction) Type() ActionType { return ActionTypeTransfer }

type StakeAction struct {
	From      AccountAddress   `json:"from"`
	Validator ValidatorAddress `json:"validator"`
	Amount    decimal.Decimal  `json:"amount"`
}

func (StakeAction) Type() ActionType { return ActionTypeStake }

type UnstakeAction struct {
	From      AccountAddress   `json:"from"`
	Validator ValidatorAddress `json:"validator"`
	Amount    decimal.Decimal  `json:"amount"`
}

func (UnstakeAction) Type() ActionType { return ActionTypeUnstake }

// StakeInputFromUnsafe parses an untyped stake description, e.g. decoded
// from user supplied JSON, into a validated StakeAction.
func StakeInputFromUnsafe(input map[string]any) (StakeAction, error) {
	from, ok := input["from"].(string)
	if !ok || from == "" {
		return StakeAction{}, fmt.Errorf("stake input: missing from address")
	}
	validator, ok := input["validator"].(string)
	if !ok || validator == "" {
		return StakeAction{}, fmt.Errorf("stake input: missing validator address")
	}
	rawAmount, ok := input["amount"].(string)
	if !ok {
		return StakeAction{}, fmt.Errorf("stake input: missing amount")
	}
	amount, err := decimal.NewFromString(rawAmount)
	if err != nil {
		return StakeAction{}, fmt.Errorf("stake input: amount %q: %w", rawAmount, err)
	}
	if !amount.IsPositive() {
		return StakeAction{}, fmt.Errorf("stake input: amount must be positive, got %s", amount)
	}
	return StakeAction{
		From:      AccountAddress(from),
		Validator: ValidatorAddress(validator),
		Amount:    amount,
	}, nil
}
