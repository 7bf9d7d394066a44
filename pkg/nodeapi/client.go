package nodeapi

import (
	"context"
	"encoding/hex"
	"fmt"

	"github.com/fystack/radixium/pkg/apperr"
	"github.com/fystack/radixium/pkg/types"
	"github.com/shopspring/decimal"
)

// NetworkID returns the numeric identifier of the network the node serves.
func (c *Client) NetworkID(ctx context.Context) (int, error) {
	var result struct {
		NetworkID int `json:"networkId"`
	}
	if err := c.call(ctx, "radix.networkId", nil, &result); err != nil {
		return 0, apperr.Wrap(apperr.KindNetworkID, err)
	}
	return result.NetworkID, nil
}

// TokenBalances returns every token balance held by the address.
func (c *Client) TokenBalances(ctx context.Context, address types.AccountAddress) (*TokenBalances, error) {
	params := struct {
		Address types.AccountAddress `json:"address"`
	}{address}
	var result TokenBalances
	if err := c.call(ctx, "radix.tokenBalances", params, &result); err != nil {
		return nil, apperr.Wrap(apperr.KindTokenBalances, err)
	}
	return &result, nil
}

// TransactionHistory pages through the address's past transactions.
func (c *Client) TransactionHistory(ctx context.Context, address types.AccountAddress, cursor string, size int) (*TransactionHistory, error) {
	params := struct {
		Address types.AccountAddress `json:"address"`
		Cursor  string               `json:"cursor,omitempty"`
		Size    int                  `json:"size"`
	}{address, cursor, size}
	var result TransactionHistory
	if err := c.call(ctx, "radix.transactionHistory", params, &result); err != nil {
		return nil, apperr.Wrap(apperr.KindTransactionHistory, err)
	}
	return &result, nil
}

// NativeToken describes the network's native token.
func (c *Client) NativeToken(ctx context.Context) (*TokenInfo, error) {
	var result TokenInfo
	if err := c.call(ctx, "radix.nativeToken", nil, &result); err != nil {
		return nil, apperr.Wrap(apperr.KindNativeToken, err)
	}
	return &result, nil
}

// TokenInfo describes the token identified by rri.
func (c *Client) TokenInfo(ctx context.Context, rri types.RRI) (*TokenInfo, error) {
	params := struct {
		RRI types.RRI `json:"rri"`
	}{rri}
	var result TokenInfo
	if err := c.call(ctx, "radix.tokenInfo", params, &result); err != nil {
		return nil, apperr.Wrap(apperr.KindTokenInfo, err)
	}
	return &result, nil
}

// StakePositions lists the address's active stakes.
func (c *Client) StakePositions(ctx context.Context, address types.AccountAddress) ([]StakePosition, error) {
	params := struct {
		Address types.AccountAddress `json:"address"`
	}{address}
	var result []StakePosition
	if err := c.call(ctx, "radix.stakePositions", params, &result); err != nil {
		return nil, apperr.Wrap(apperr.KindStakesForAddress, err)
	}
	return result, nil
}

// UnstakePositions lists the address's pending unstakes.
func (c *Client) UnstakePositions(ctx context.Context, address types.AccountAddress) ([]UnstakePosition, error) {
	params := struct {
		Address types.AccountAddress `json:"address"`
	}{address}
	var result []UnstakePosition
	if err := c.call(ctx, "radix.unstakePositions", params, &result); err != nil {
		return nil, apperr.Wrap(apperr.KindUnstakesForAddress, err)
	}
	return result, nil
}

// Validators returns one page of the registered validator set.
func (c *Client) Validators(ctx context.Context, cursor string, size int) ([]Validator, error) {
	params := struct {
		Cursor string `json:"cursor,omitempty"`
		Size   int    `json:"size"`
	}{cursor, size}
	var result struct {
		Cursor     string      `json:"cursor"`
		Validators []Validator `json:"validators"`
	}
	if err := c.call(ctx, "radix.validators", params, &result); err != nil {
		return nil, apperr.Wrap(apperr.KindValidators, err)
	}
	return result.Validators, nil
}

// LookupValidator fetches one validator by address.
func (c *Client) LookupValidator(ctx context.Context, address types.ValidatorAddress) (*Validator, error) {
	params := struct {
		Address types.ValidatorAddress `json:"validatorAddress"`
	}{address}
	var result Validator
	if err := c.call(ctx, "radix.lookupValidator", params, &result); err != nil {
		return nil, apperr.Wrap(apperr.KindLookupValidator, err)
	}
	return &result, nil
}

// LookupTransaction fetches a transaction by identifier.
func (c *Client) LookupTransaction(ctx context.Context, txID string) (*TransactionInfo, error) {
	params := struct {
		TxID string `json:"txID"`
	}{txID}
	var result TransactionInfo
	if err := c.call(ctx, "radix.lookupTransaction", params, &result); err != nil {
		return nil, apperr.Wrap(apperr.KindLookupTransaction, err)
	}
	return &result, nil
}

// TransactionStatus returns the current status of a submitted transaction.
func (c *Client) TransactionStatus(ctx context.Context, txID string) (*types.TransactionStatus, error) {
	params := struct {
		TxID string `json:"txID"`
	}{txID}
	var result types.TransactionStatus
	if err := c.call(ctx, "radix.statusOfTransaction", params, &result); err != nil {
		return nil, apperr.Wrap(apperr.KindTransactionStatus, err)
	}
	if result.TxID == "" {
		result.TxID = txID
	}
	return &result, nil
}

// NetworkTransactionThroughput returns transactions per second over the
// node's sampling window.
func (c *Client) NetworkTransactionThroughput(ctx context.Context) (decimal.Decimal, error) {
	var result struct {
		TPS decimal.Decimal `json:"tps"`
	}
	if err := c.call(ctx, "radix.networkTransactionThroughput", nil, &result); err != nil {
		return decimal.Zero, apperr.Wrap(apperr.KindNetworkTxThroughput, err)
	}
	return result.TPS, nil
}

// NetworkTransactionDemand returns the current mempool pressure.
func (c *Client) NetworkTransactionDemand(ctx context.Context) (decimal.Decimal, error) {
	var result struct {
		TPS decimal.Decimal `json:"tps"`
	}
	if err := c.call(ctx, "radix.networkTransactionDemand", nil, &result); err != nil {
		return decimal.Zero, apperr.Wrap(apperr.KindNetworkTxDemand, err)
	}
	return result.TPS, nil
}

// BuildTransaction asks the node to serialize the intent into a signable
// instruction stream.
func (c *Client) BuildTransaction(ctx context.Context, intent types.TransactionIntent, sender types.AccountAddress) (*types.BuiltTransaction, error) {
	params := struct {
		Actions  []actionPayload      `json:"actions"`
		FeePayer types.AccountAddress `json:"feePayer"`
		Message  string               `json:"message,omitempty"`
	}{actionPayloads(intent.Actions), sender, intent.Message}

	var result struct {
		Blob             string `json:"blob"`
		InstructionCount int    `json:"instructionCount"`
		Fee              string `json:"fee"`
	}
	if err := c.call(ctx, "radix.buildTransaction", params, &result); err != nil {
		return nil, apperr.Wrap(apperr.KindBuildTxFromIntent, err)
	}

	blob, err := hex.DecodeString(result.Blob)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindBuildTxFromIntent, fmt.Errorf("decode blob: %w", err))
	}
	return &types.BuiltTransaction{
		Blob:             blob,
		InstructionCount: result.InstructionCount,
		ByteCount:        uint32(len(blob)),
	}, nil
}

// FinalizeTransaction submits the signature for validation and receives the
// node-assigned transaction identifier.
func (c *Client) FinalizeTransaction(ctx context.Context, signed types.SignedTransaction) (*types.FinalizedTransaction, error) {
	params := struct {
		Blob      string `json:"blob"`
		Signature string `json:"signatureDER"`
		PublicKey string `json:"publicKeyOfSigner"`
	}{
		Blob:      hex.EncodeToString(signed.Built.Blob),
		Signature: hex.EncodeToString(signed.Signature),
		PublicKey: hex.EncodeToString(signed.PublicKey),
	}
	var result struct {
		TxID string `json:"txID"`
	}
	if err := c.call(ctx, "radix.finalizeTransaction", params, &result); err != nil {
		return nil, apperr.Wrap(apperr.KindFinalizeTx, err)
	}
	return &types.FinalizedTransaction{Signed: signed, TxID: result.TxID}, nil
}

// SubmitTransaction hands the finalized transaction to the network.
func (c *Client) SubmitTransaction(ctx context.Context, finalized types.FinalizedTransaction) (*types.PendingTransaction, error) {
	params := struct {
		TxID      string `json:"txID"`
		Blob      string `json:"blob"`
		Signature string `json:"signatureDER"`
		PublicKey string `json:"publicKeyOfSigner"`
	}{
		TxID:      finalized.TxID,
		Blob:      hex.EncodeToString(finalized.Signed.Built.Blob),
		Signature: hex.EncodeToString(finalized.Signed.Signature),
		PublicKey: hex.EncodeToString(finalized.Signed.PublicKey),
	}
	var result struct {
		TxID string `json:"txID"`
	}
	if err := c.call(ctx, "radix.submitTransaction", params, &result); err != nil {
		return nil, apperr.Wrap(apperr.KindSubmitSignedTx, err)
	}
	if result.TxID == "" {
		result.TxID = finalized.TxID
	}
	return &types.PendingTransaction{TxID: result.TxID}, nil
}
