/*
Package nearrpc contains a set of types used for JSON-RPC communication with
NEAR nodes. It defines basic request/response types and the structured error
returned by the node.
*/
package nearrpc

import (
	"encoding/json"
)

const (
	// JSONRPCVersion is the only JSON-RPC protocol version supported.
	JSONRPCVersion = "2.0"
)

// Finality values accepted by query methods.
const (
	FinalityFinal      = "final"
	FinalityOptimistic = "optimistic"
)

// Query request types used by this package.
const (
	RequestViewAccessKey = "view_access_key"
	RequestCallFunction  = "call_function"
)

type (
	// Request represents JSON-RPC request. Params are method-specific: NEAR
	// accepts positional (array) parameters for most methods and named
	// (object) parameters for query.
	Request struct {
		// JSONRPC is the protocol version, only valid when it contains JSONRPCVersion.
		JSONRPC string `json:"jsonrpc"`
		// Method is the method being called.
		Method string `json:"method"`
		Params any    `json:"params"`
		// ID is an identifier associated with this request, the client uses
		// numeric identifiers.
		ID uint64 `json:"id"`
	}

	// Header is a generic JSON-RPC 2.0 response header (ID and JSON-RPC version).
	Header struct {
		ID      json.RawMessage `json:"id"`
		JSONRPC string          `json:"jsonrpc"`
	}

	// HeaderAndError adds an Error (that can be empty) to the Header.
	HeaderAndError struct {
		Header
		Error *Error `json:"error,omitempty"`
	}

	// Response represents a standard raw JSON-RPC 2.0
	// response: http://www.jsonrpc.org/specification#response_object.
	Response struct {
		HeaderAndError
		Result json.RawMessage `json:"result,omitempty"`
	}

	// QueryParams are named parameters of the query method.
	QueryParams struct {
		RequestType string `json:"request_type"`
		Finality    string `json:"finality"`
		AccountID   string `json:"account_id"`
		PublicKey   string `json:"public_key,omitempty"`
		MethodName  string `json:"method_name,omitempty"`
		// ArgsBase64 is only used for call_function and must be present
		// there even when empty.
		ArgsBase64 *string `json:"args_base64,omitempty"`
	}
)
