package nodeapi

import (
	"github.com/fystack/radixium/pkg/types"
	"github.com/shopspring/decimal"
)

type TokenAmount struct {
	RRI    types.RRI       `json:"rri"`
	Amount decimal.Decimal `json:"amount"`
}

type TokenBalances struct {
	Owner         types.AccountAddress `json:"owner"`
	TokenBalances []TokenAmount        `json:"tokenBalances"`
}

type TokenInfo struct {
	RRI         types.RRI       `json:"rri"`
	Name        string          `json:"name"`
	Symbol      string          `json:"symbol"`
	Description string          `json:"description,omitempty"`
	Granularity decimal.Decimal `json:"granularity"`
	Supply      decimal.Decimal `json:"currentSupply"`
	IconURL     string          `json:"iconURL,omitempty"`
	TokenURL    string          `json:"tokenInfoURL,omitempty"`
}

type TransactionHistoryEntry struct {
	TxID        string          `json:"txID"`
	SentAt      string          `json:"sentAt"`
	Fee         decimal.Decimal `json:"fee"`
	Message     string          `json:"message,omitempty"`
	ActionCount int             `json:"actionCount"`
}

type TransactionHistory struct {
	Cursor       string                    `json:"cursor"`
	Transactions []TransactionHistoryEntry `json:"transactions"`
}

type StakePosition struct {
	Validator types.ValidatorAddress `json:"validator"`
	Amount    decimal.Decimal        `json:"amount"`
}

type UnstakePosition struct {
	Validator           types.ValidatorAddress `json:"validator"`
	Amount              decimal.Decimal        `json:"amount"`
	EpochsUntilUnlocked int                    `json:"epochsUntil"`
}

type Validator struct {
	Address        types.ValidatorAddress `json:"address"`
	Name           string                 `json:"name"`
	InfoURL        string                 `json:"infoURL,omitempty"`
	TotalDelegated decimal.Decimal        `json:"totalDelegatedStake"`
	UptimePercent  decimal.Decimal        `json:"uptimePercentage"`
	IsExternal     bool                   `json:"isExternalStakeAccepted"`
	Registered     bool                   `json:"registered"`
}

type TransactionInfo struct {
	TxID    string          `json:"txID"`
	SentAt  string          `json:"sentAt"`
	Fee     decimal.Decimal `json:"fee"`
	Message string          `json:"message,omitempty"`
	Status  types.TxStatus  `json:"status"`
}

// actionPayload is the flattened wire form of a transaction action.
type actionPayload struct {
	Type      types.ActionType       `json:"type"`
	From      types.AccountAddress   `json:"from,omitempty"`
	To        types.AccountAddress   `json:"to,omitempty"`
	Validator types.ValidatorAddress `json:"validator,omitempty"`
	Amount    decimal.Decimal        `json:"amount"`
	RRI       types.RRI              `json:"rri,omitempty"`
}

func actionPayloads(actions []types.Action) []actionPayload {
	out := make([]actionPayload, 0, len(actions))
	for _, a := range actions {
		switch act := a.(type) {
		case types.TransferAction:
			out = append(out, actionPayload{
				Type: act.Type(), From: act.From, To: act.To, Amount: act.Amount, RRI: act.RRI,
			})
		case types.StakeAction:
			out = append(out, actionPayload{
				Type: act.Type(), From: act.From, Validator: act.Validator, Amount: act.Amount,
			})
		case types.UnstakeAction:
			out = append(out, actionPayload{
				Type: act.Type(), From: act.From, Validator: act.Validator, Amount: act.Amount,
			})
		}
	}
	return out
}
