/*
Package testnode provides an in-process JSON-RPC node for tests. It keeps
access keys and greeter contracts in memory, decodes submitted transactions,
verifies their signatures and nonces and executes set_greeting/get_greeting
calls.
*/
package testnode

import (
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/nspcc-dev/near-go/pkg/core/transaction"
	"github.com/nspcc-dev/near-go/pkg/crypto/hash"
	"github.com/nspcc-dev/near-go/pkg/crypto/keys"
	"github.com/nspcc-dev/near-go/pkg/nearrpc"
	"github.com/nspcc-dev/near-go/pkg/nearrpc/result"
	"github.com/nspcc-dev/near-go/pkg/util"
)

// Gas burnt by every executed transaction and its receipt.
const (
	TxGasBurnt      = 2428019381096
	ReceiptGasBurnt = 2910375000000
)

// ChainID is reported by the status method.
const ChainID = "testnet"

type rawRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
	ID      json.RawMessage `json:"id"`
}

// Node is a fake NEAR node.
type Node struct {
	srv *httptest.Server

	lock      sync.Mutex
	height    uint64
	blocks    map[util.CryptoHash]uint64
	nonces    map[string]uint64
	greetings map[string]string
	outcomes  map[util.CryptoHash]*result.FinalExecutionOutcome
	sent      []*transaction.Signed
	calls     []string

	legacy       bool
	dropNext     int
	broadcastErr *nearrpc.Error
	rawStatus    json.RawMessage
}

// New starts a Node that is stopped when the test ends.
func New(t testing.TB) *Node {
	n := &Node{
		blocks:    make(map[util.CryptoHash]uint64),
		nonces:    make(map[string]uint64),
		greetings: make(map[string]string),
		outcomes:  make(map[util.CryptoHash]*result.FinalExecutionOutcome),
	}
	n.newBlock()
	n.srv = httptest.NewServer(http.HandlerFunc(n.serveHTTP))
	t.Cleanup(n.srv.Close)
	return n
}

// URL returns the JSON-RPC endpoint.
func (n *Node) URL() string {
	return n.srv.URL
}

func keyID(accountID string, pub string) string {
	return accountID + "/" + pub
}

// AddKey adds the access key of the account with the given nonce.
func (n *Node) AddKey(accountID string, pub *keys.PublicKey, nonce uint64) {
	n.lock.Lock()
	defer n.lock.Unlock()
	n.nonces[keyID(accountID, pub.String())] = nonce
}

// Nonce returns the current nonce of the access key.
func (n *Node) Nonce(accountID string, pub *keys.PublicKey) (uint64, bool) {
	n.lock.Lock()
	defer n.lock.Unlock()
	nonce, ok := n.nonces[keyID(accountID, pub.String())]
	return nonce, ok
}

// Deploy creates a greeter contract with the initial greeting.
func (n *Node) Deploy(contractID string, greeting string) {
	n.lock.Lock()
	defer n.lock.Unlock()
	n.greetings[contractID] = greeting
}

// Greeting returns the greeting stored in the contract.
func (n *Node) Greeting(contractID string) string {
	n.lock.Lock()
	defer n.lock.Unlock()
	return n.greetings[contractID]
}

// LatestBlock returns the hash of the latest block.
func (n *Node) LatestBlock() util.CryptoHash {
	n.lock.Lock()
	defer n.lock.Unlock()
	return blockHash(n.height)
}

// SetLegacyErrors makes the node report query errors in the result the way
// older nodes do.
func (n *Node) SetLegacyErrors(legacy bool) {
	n.lock.Lock()
	defer n.lock.Unlock()
	n.legacy = legacy
}

// DropBroadcasts makes the node execute the next count transactions, but
// close the connection without responding.
func (n *Node) DropBroadcasts(count int) {
	n.lock.Lock()
	defer n.lock.Unlock()
	n.dropNext = count
}

// FailBroadcasts makes the node answer every broadcast with the error
// without executing anything, nil restores normal operation.
func (n *Node) FailBroadcasts(err *nearrpc.Error) {
	n.lock.Lock()
	defer n.lock.Unlock()
	n.broadcastErr = err
}

// ReportStatus makes the node execute broadcast transactions as usual but
// report the given JSON as their final status, nil restores normal
// operation.
func (n *Node) ReportStatus(raw json.RawMessage) {
	n.lock.Lock()
	defer n.lock.Unlock()
	n.rawStatus = raw
}

// Sent returns all transactions accepted for execution.
func (n *Node) Sent() []*transaction.Signed {
	n.lock.Lock()
	defer n.lock.Unlock()
	return append([]*transaction.Signed(nil), n.sent...)
}

// Calls returns the names of all methods called so far.
func (n *Node) Calls() []string {
	n.lock.Lock()
	defer n.lock.Unlock()
	return append([]string(nil), n.calls...)
}

// Outcome returns the outcome of the executed transaction.
func (n *Node) Outcome(h util.CryptoHash) (*result.FinalExecutionOutcome, bool) {
	n.lock.Lock()
	defer n.lock.Unlock()
	o, ok := n.outcomes[h]
	return o, ok
}

func blockHash(height uint64) util.CryptoHash {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], height)
	return hash.Sha256(b[:])
}

// newBlock must be called with the lock held.
func (n *Node) newBlock() util.CryptoHash {
	n.height++
	h := blockHash(n.height)
	n.blocks[h] = n.height
	return h
}

func (n *Node) serveHTTP(w http.ResponseWriter, r *http.Request) {
	var req rawRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeResponse(w, nil, nil, &nearrpc.Error{
			Name:    nearrpc.RequestValidationError,
			Cause:   &nearrpc.ErrorCause{Name: nearrpc.CauseParseError},
			Code:    -32700,
			Message: "Parse error",
		})
		return
	}

	n.lock.Lock()
	defer n.lock.Unlock()
	n.calls = append(n.calls, req.Method)

	var (
		res  any
		rerr *nearrpc.Error
	)
	switch req.Method {
	case "status":
		res = n.status()
	case "query":
		res, rerr = n.query(req.Params)
	case "broadcast_tx_commit":
		var drop bool
		res, drop, rerr = n.broadcast(req.Params)
		if drop {
			hijackAndClose(w)
			return
		}
	case "tx":
		res, rerr = n.txStatus(req.Params)
	default:
		rerr = &nearrpc.Error{
			Name:    nearrpc.RequestValidationError,
			Cause:   &nearrpc.ErrorCause{Name: "METHOD_NOT_FOUND"},
			Code:    -32601,
			Message: "Method not found",
			Data:    mustJSON(req.Method),
		}
	}
	writeResponse(w, req.ID, res, rerr)
}

func hijackAndClose(w http.ResponseWriter) {
	hj, ok := w.(http.Hijacker)
	if !ok {
		panic("can't hijack connection")
	}
	conn, _, err := hj.Hijack()
	if err != nil {
		panic(err)
	}
	_ = conn.Close()
}

func writeResponse(w http.ResponseWriter, id json.RawMessage, res any, rerr *nearrpc.Error) {
	var resp = struct {
		JSONRPC string          `json:"jsonrpc"`
		ID      json.RawMessage `json:"id"`
		Result  any             `json:"result,omitempty"`
		Error   *nearrpc.Error  `json:"error,omitempty"`
	}{
		JSONRPC: nearrpc.JSONRPCVersion,
		ID:      id,
		Error:   rerr,
	}
	if rerr == nil {
		resp.Result = res
	}
	if resp.ID == nil {
		resp.ID = json.RawMessage("null")
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func mustJSON(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}

func handlerError(cause string, info any, data string) *nearrpc.Error {
	e := nearrpc.NewError(cause, "Server error")
	if info != nil {
		e.Cause.Info = mustJSON(info)
	}
	e.Data = mustJSON(data)
	return e
}

func (n *Node) status() *result.Status {
	return &result.Status{
		ChainID:         ChainID,
		ProtocolVersion: 73,
		SyncInfo: result.SyncInfo{
			LatestBlockHash:   blockHash(n.height),
			LatestBlockHeight: n.height,
		},
	}
}

func (n *Node) header() result.QueryHeader {
	return result.QueryHeader{BlockHeight: n.height, BlockHash: blockHash(n.height)}
}

func (n *Node) query(params json.RawMessage) (any, *nearrpc.Error) {
	var p nearrpc.QueryParams
	if err := json.Unmarshal(params, &p); err != nil || p.Finality == "" {
		return nil, &nearrpc.Error{
			Name:    nearrpc.RequestValidationError,
			Cause:   &nearrpc.ErrorCause{Name: nearrpc.CauseParseError},
			Code:    -32700,
			Message: "Parse error",
			Data:    mustJSON(fmt.Sprintf("bad query params: %s", params)),
		}
	}
	switch p.RequestType {
	case nearrpc.RequestViewAccessKey:
		nonce, ok := n.nonces[keyID(p.AccountID, p.PublicKey)]
		if !ok {
			msg := fmt.Sprintf("access key %s does not exist while viewing", p.PublicKey)
			if n.legacy {
				return &result.AccessKeyView{QueryHeader: result.QueryHeader{
					BlockHeight: n.height, BlockHash: blockHash(n.height), Error: msg,
				}}, nil
			}
			return nil, handlerError(nearrpc.CauseUnknownAccessKey, map[string]any{
				"public_key":   p.PublicKey,
				"block_height": n.height,
				"block_hash":   blockHash(n.height),
			}, msg)
		}
		return &result.AccessKeyView{
			QueryHeader: n.header(),
			Nonce:       nonce,
			Permission:  json.RawMessage(`"FullAccess"`),
		}, nil
	case nearrpc.RequestCallFunction:
		if p.ArgsBase64 == nil {
			return nil, handlerError(nearrpc.CauseParseError, nil, "args_base64 is missing")
		}
		if _, err := base64.StdEncoding.DecodeString(*p.ArgsBase64); err != nil {
			return nil, handlerError(nearrpc.CauseParseError, nil, err.Error())
		}
		greeting, ok := n.greetings[p.AccountID]
		if !ok {
			return nil, handlerError(nearrpc.CauseUnknownAccount, map[string]any{
				"requested_account_id": p.AccountID,
			}, fmt.Sprintf("account %s does not exist while viewing", p.AccountID))
		}
		if p.MethodName != "get_greeting" {
			msg := "wasm execution failed with error: MethodResolveError(MethodNotFound)"
			if n.legacy {
				return &result.CallResult{QueryHeader: result.QueryHeader{
					BlockHeight: n.height, BlockHash: blockHash(n.height), Error: msg,
				}, Result: result.Bytes{}, Logs: []string{}}, nil
			}
			return nil, handlerError(nearrpc.CauseContractExecution, map[string]any{
				"vm_error": msg,
			}, msg)
		}
		return &result.CallResult{
			QueryHeader: n.header(),
			Result:      result.Bytes(mustJSON(greeting)),
			Logs:        []string{},
		}, nil
	}
	return nil, handlerError("UNSUPPORTED_REQUEST", nil, p.RequestType)
}

func invalidTx(info any) *nearrpc.Error {
	return handlerError(nearrpc.CauseInvalidTransaction, map[string]any{
		"TxExecutionError": map[string]any{"InvalidTxError": info},
	}, "")
}

func (n *Node) broadcast(params json.RawMessage) (*result.FinalExecutionOutcome, bool, *nearrpc.Error) {
	if n.broadcastErr != nil {
		return nil, false, n.broadcastErr
	}
	var args []string
	if err := json.Unmarshal(params, &args); err != nil || len(args) != 1 {
		return nil, false, handlerError(nearrpc.CauseParseError, nil, "one base64 transaction expected")
	}
	raw, err := base64.StdEncoding.DecodeString(args[0])
	if err != nil {
		return nil, false, handlerError(nearrpc.CauseParseError, nil, err.Error())
	}
	tx, err := transaction.NewSignedFromBytes(raw)
	if err != nil {
		return nil, false, handlerError(nearrpc.CauseParseError, nil, err.Error())
	}
	if !tx.Verify() {
		return nil, false, invalidTx("InvalidSignature")
	}
	// Resubmission of the same transaction is idempotent.
	if out, ok := n.outcomes[tx.Hash()]; ok {
		return out, false, nil
	}
	var (
		t   = tx.Transaction
		kid = keyID(t.SignerID, t.PublicKey.String())
	)
	nonce, ok := n.nonces[kid]
	if !ok {
		return nil, false, invalidTx(map[string]any{"InvalidAccessKeyError": map[string]any{
			"AccessKeyNotFound": map[string]any{"account_id": t.SignerID, "public_key": t.PublicKey.String()},
		}})
	}
	if t.Nonce <= nonce {
		return nil, false, invalidTx(map[string]any{"InvalidNonce": map[string]any{
			"tx_nonce": t.Nonce, "ak_nonce": nonce,
		}})
	}
	if _, ok := n.blocks[t.BlockHash]; !ok {
		return nil, false, invalidTx("Expired")
	}

	n.nonces[kid] = t.Nonce
	n.sent = append(n.sent, tx)
	included := n.newBlock()
	status := n.execute(t)
	if n.rawStatus != nil {
		status = result.ExecutionStatus{Raw: n.rawStatus}
	}
	h := tx.Hash()
	out := &result.FinalExecutionOutcome{
		Status: status,
		Transaction: result.TransactionView{
			SignerID:   t.SignerID,
			PublicKey:  t.PublicKey.String(),
			Nonce:      t.Nonce,
			ReceiverID: t.ReceiverID,
			Signature:  tx.Signature.String(),
			Hash:       h,
		},
		TransactionOutcome: result.ExecutionOutcomeWithID{
			ID:        h,
			BlockHash: included,
			Outcome: result.ExecutionOutcome{
				Logs:        []string{},
				ReceiptIDs:  []util.CryptoHash{hash.Sha256(h[:])},
				GasBurnt:    TxGasBurnt,
				TokensBurnt: "242801938109600000000",
				ExecutorID:  t.SignerID,
				Status:      result.ExecutionStatus{Kind: result.StatusSuccessReceiptID, SuccessReceiptID: hash.Sha256(h[:])},
			},
		},
		ReceiptsOutcome: []result.ExecutionOutcomeWithID{{
			ID:        hash.Sha256(h[:]),
			BlockHash: included,
			Outcome: result.ExecutionOutcome{
				Logs:        []string{},
				ReceiptIDs:  []util.CryptoHash{},
				GasBurnt:    ReceiptGasBurnt,
				TokensBurnt: "291037500000000000000",
				ExecutorID:  t.ReceiverID,
				Status:      status,
			},
		}},
	}
	n.outcomes[h] = out
	if n.dropNext > 0 {
		n.dropNext--
		return out, true, nil
	}
	return out, false, nil
}

func failure(kind any) result.ExecutionStatus {
	return result.ExecutionStatus{
		Kind: result.StatusFailure,
		Failure: mustJSON(map[string]any{
			"ActionError": map[string]any{"index": 0, "kind": kind},
		}),
	}
}

// execute runs the function call, it must be called with the lock held.
func (n *Node) execute(t *transaction.Transaction) result.ExecutionStatus {
	if _, ok := n.greetings[t.ReceiverID]; !ok {
		return failure(map[string]any{"AccountDoesNotExist": map[string]any{"account_id": t.ReceiverID}})
	}
	call := t.Actions[0].FunctionCall
	switch call.MethodName {
	case "set_greeting":
		var args struct {
			Greeting *string `json:"greeting"`
		}
		if err := json.Unmarshal(call.Args, &args); err != nil || args.Greeting == nil {
			return failure(map[string]any{"FunctionCallError": map[string]any{
				"ExecutionError": "Smart contract panicked: Failed to deserialize input from JSON.",
			}})
		}
		n.greetings[t.ReceiverID] = *args.Greeting
		return result.ExecutionStatus{Kind: result.StatusSuccessValue, SuccessValue: []byte{}}
	case "get_greeting":
		return result.ExecutionStatus{Kind: result.StatusSuccessValue, SuccessValue: mustJSON(n.greetings[t.ReceiverID])}
	default:
		return failure(map[string]any{"FunctionCallError": map[string]any{
			"MethodResolveError": "MethodNotFound",
		}})
	}
}

func (n *Node) txStatus(params json.RawMessage) (*result.FinalExecutionOutcome, *nearrpc.Error) {
	var args []string
	if err := json.Unmarshal(params, &args); err != nil || len(args) != 2 {
		return nil, handlerError(nearrpc.CauseParseError, nil, "hash and sender expected")
	}
	h, err := util.CryptoHashDecodeString(args[0])
	if err != nil {
		return nil, handlerError(nearrpc.CauseParseError, nil, err.Error())
	}
	out, ok := n.outcomes[h]
	if !ok || out.Transaction.SignerID != args[1] {
		return nil, handlerError(nearrpc.CauseUnknownTransaction, map[string]any{
			"requested_transaction_hash": h,
		}, fmt.Sprintf("Transaction %s doesn't exist", h))
	}
	return out, nil
}
