/*
Package invoker provides a convenient wrapper to perform read-only contract
calls via RPC client.

Calls are executed against the final block, they don't produce transactions
and don't change the state of the chain.
*/
package invoker

import (
	"context"
	"encoding/json"
	"strings"
	"unicode/utf8"

	"github.com/nspcc-dev/near-go/pkg/neterr"
)

// RPCInvoke is a set of RPC methods needed to execute view calls.
type RPCInvoke interface {
	CallFunction(ctx context.Context, contractID string, method string, args []byte) ([]byte, error)
}

// Invoker allows to execute view methods of contracts using RPC client. It
// uses regular Go types for call arguments, but doesn't do anything with the
// result of invocation except for text decoding helpers, that's left for
// upper (contract) layer to deal with.
type Invoker struct {
	client RPCInvoke
}

// New creates an Invoker.
func New(client RPCInvoke) *Invoker {
	return &Invoker{client}
}

// EncodeArgs converts call arguments into bytes passed to the contract. []byte
// and json.RawMessage are used as is, nil means an empty JSON object and
// anything else is marshaled to JSON.
func EncodeArgs(args any) ([]byte, error) {
	switch a := args.(type) {
	case nil:
		return []byte("{}"), nil
	case []byte:
		return a, nil
	case json.RawMessage:
		return a, nil
	case string:
		if !json.Valid([]byte(a)) {
			return nil, neterr.Newf(neterr.KindInvalidInput, neterr.StepValidateInput, "arguments are not valid JSON: %q", a)
		}
		return []byte(a), nil
	}
	b, err := json.Marshal(args)
	if err != nil {
		return nil, neterr.New(neterr.KindInvalidInput, neterr.StepValidateInput, err)
	}
	return b, nil
}

// Call invokes a view method of the contract with the given arguments (see
// EncodeArgs) and returns the result as is.
func (v *Invoker) Call(ctx context.Context, contract string, method string, args any) ([]byte, error) {
	if contract == "" || method == "" {
		return nil, neterr.Newf(neterr.KindInvalidInput, neterr.StepValidateInput, "empty contract or method")
	}
	b, err := EncodeArgs(args)
	if err != nil {
		return nil, err
	}
	res, err := v.client.CallFunction(ctx, contract, method, b)
	if err != nil {
		return nil, neterr.WithStep(err, neterr.StepQuery)
	}
	return res, nil
}

// CallText is Call followed by DecodeText.
func (v *Invoker) CallText(ctx context.Context, contract string, method string, args any) (string, error) {
	res, err := v.Call(ctx, contract, method, args)
	if err != nil {
		return "", err
	}
	return DecodeText(res)
}

// DecodeText extracts a text value from the call result. The structured
// forms are tried first: a JSON string or a JSON object with a single string
// field (like {"greeting": "hi"}). Anything else that is valid UTF-8 is
// taken as raw text with surrounding quotes removed. Other data is a
// neterr.ErrResponseDecode error.
func DecodeText(raw []byte) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err == nil && len(obj) == 1 {
		for _, v := range obj {
			if err := json.Unmarshal(v, &s); err == nil {
				return s, nil
			}
		}
	}
	if !utf8.Valid(raw) {
		return "", neterr.Newf(neterr.KindResponseDecode, neterr.StepQuery, "result is neither JSON nor UTF-8 text (%d bytes)", len(raw))
	}
	return strings.Trim(string(raw), `"`), nil
}
