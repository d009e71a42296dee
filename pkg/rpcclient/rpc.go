package rpcclient

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"

	"github.com/nspcc-dev/near-go/pkg/core/transaction"
	"github.com/nspcc-dev/near-go/pkg/crypto/keys"
	"github.com/nspcc-dev/near-go/pkg/nearrpc"
	"github.com/nspcc-dev/near-go/pkg/nearrpc/result"
	"github.com/nspcc-dev/near-go/pkg/neterr"
	"github.com/nspcc-dev/near-go/pkg/util"
)

// legacyMissingKey is the error text older nodes put into the query result
// for an unknown access key.
const legacyMissingKey = "does not exist while viewing"

// Status returns the node status.
func (c *Client) Status(ctx context.Context) (*result.Status, error) {
	var resp = new(result.Status)
	if err := c.performRequest(ctx, "status", nil, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// LatestBlockHash returns the hash of the latest block known to the node.
func (c *Client) LatestBlockHash(ctx context.Context) (util.CryptoHash, error) {
	st, err := c.Status(ctx)
	if err != nil {
		return util.CryptoHash{}, err
	}
	if st.SyncInfo.LatestBlockHash.IsZero() {
		return util.CryptoHash{}, neterr.Newf(neterr.KindResponseDecode, neterr.StepNone, "status: no latest block hash")
	}
	return st.SyncInfo.LatestBlockHash, nil
}

// ViewAccessKey returns the access key of the account as of the final block.
// Unknown keys are reported as neterr.ErrAccessKeyNotFound.
func (c *Client) ViewAccessKey(ctx context.Context, accountID string, pub *keys.PublicKey) (*result.AccessKeyView, error) {
	if pub == nil {
		return nil, neterr.Newf(neterr.KindInvalidInput, neterr.StepNone, "no public key")
	}
	var (
		params = nearrpc.QueryParams{
			RequestType: nearrpc.RequestViewAccessKey,
			Finality:    nearrpc.FinalityFinal,
			AccountID:   accountID,
			PublicKey:   pub.String(),
		}
		resp = new(result.AccessKeyView)
	)
	err := c.performRequest(ctx, "query", params, resp)
	if err != nil {
		var rpcErr *nearrpc.Error
		if errors.As(err, &rpcErr) && rpcErr.HasCause(nearrpc.CauseUnknownAccessKey) {
			return nil, neterr.Newf(neterr.KindAccessKeyNotFound, neterr.StepNone, "%s for %s: %w", pub, accountID, rpcErr)
		}
		return nil, err
	}
	if resp.Error != "" {
		if strings.Contains(resp.Error, legacyMissingKey) {
			return nil, neterr.Newf(neterr.KindAccessKeyNotFound, neterr.StepNone, "%s for %s: %s", pub, accountID, resp.Error)
		}
		return nil, neterr.New(neterr.KindNetwork, neterr.StepNone, nearrpc.NewError(nearrpc.CauseInternalErrorReason, resp.Error))
	}
	return resp, nil
}

// AccessKeyNonce returns the current nonce of the account's access key.
func (c *Client) AccessKeyNonce(ctx context.Context, accountID string, pub *keys.PublicKey) (uint64, error) {
	ak, err := c.ViewAccessKey(ctx, accountID, pub)
	if err != nil {
		return 0, err
	}
	return ak.Nonce, nil
}

// CallFunction invokes a view method of the contract against the final
// block and returns the raw bytes it returned. Contract execution errors are
// neterr.KindNetwork errors wrapping *nearrpc.Error with the
// CONTRACT_EXECUTION_ERROR cause.
func (c *Client) CallFunction(ctx context.Context, contractID string, method string, args []byte) ([]byte, error) {
	var (
		b64    = base64.StdEncoding.EncodeToString(args)
		params = nearrpc.QueryParams{
			RequestType: nearrpc.RequestCallFunction,
			Finality:    nearrpc.FinalityFinal,
			AccountID:   contractID,
			MethodName:  method,
			ArgsBase64:  &b64,
		}
		resp = new(result.CallResult)
	)
	if err := c.performRequest(ctx, "query", params, resp); err != nil {
		return nil, err
	}
	if resp.Error != "" {
		return nil, neterr.New(neterr.KindNetwork, neterr.StepNone, nearrpc.NewError(nearrpc.CauseContractExecution, resp.Error))
	}
	return resp.Result, nil
}

// BroadcastTxCommit sends the signed transaction and waits until the node
// reports its final execution outcome. An error here doesn't mean the
// transaction wasn't included unless it's a *nearrpc.Error rejecting it.
func (c *Client) BroadcastTxCommit(ctx context.Context, tx *transaction.Signed) (*result.FinalExecutionOutcome, error) {
	b64, err := tx.Base64()
	if err != nil {
		return nil, err
	}
	var resp = new(result.FinalExecutionOutcome)
	if err := c.performRequest(ctx, "broadcast_tx_commit", []any{b64}, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// TxStatus returns the final execution outcome of the transaction sent by
// senderID. An unknown transaction is a neterr.KindNetwork error wrapping
// *nearrpc.Error with the UNKNOWN_TRANSACTION cause.
func (c *Client) TxStatus(ctx context.Context, hash util.CryptoHash, senderID string) (*result.FinalExecutionOutcome, error) {
	var resp = new(result.FinalExecutionOutcome)
	if err := c.performRequest(ctx, "tx", []any{hash.String(), senderID}, resp); err != nil {
		return nil, err
	}
	return resp, nil
}
