package result

import (
	"bytes"
	"encoding/base64"
	"encoding/json"

	"github.com/nspcc-dev/near-go/pkg/util"
)

// StatusKind is the recognized shape of an execution status.
type StatusKind byte

// Known status shapes. Anything else (including NotStarted and Started which
// are not final) is StatusUnknown.
const (
	StatusUnknown StatusKind = iota
	StatusSuccessValue
	StatusSuccessReceiptID
	StatusFailure
)

// Status field names as they appear on the wire.
const (
	successValueField     = "SuccessValue"
	successReceiptIDField = "SuccessReceiptId"
	failureField          = "Failure"
)

// String implements the fmt.Stringer interface.
func (k StatusKind) String() string {
	switch k {
	case StatusSuccessValue:
		return successValueField
	case StatusSuccessReceiptID:
		return successReceiptIDField
	case StatusFailure:
		return failureField
	default:
		return "Unknown"
	}
}

// ExecutionStatus is a transaction or receipt execution status. It's
// serialized either as a bare string ("NotStarted") or as an object with a
// single field named after the status. Raw always keeps the original JSON so
// that unrecognized statuses are never lost.
type ExecutionStatus struct {
	Kind StatusKind
	// SuccessValue is the decoded return value for StatusSuccessValue.
	SuccessValue []byte
	// SuccessReceiptID is set for StatusSuccessReceiptID.
	SuccessReceiptID util.CryptoHash
	// Failure is the error description for StatusFailure.
	Failure json.RawMessage
	Raw     json.RawMessage
}

// IsSuccess returns true for both success shapes.
func (s ExecutionStatus) IsSuccess() bool {
	return s.Kind == StatusSuccessValue || s.Kind == StatusSuccessReceiptID
}

// Name returns the status name, for unknown statuses it's the name found in
// the JSON if any.
func (s ExecutionStatus) Name() string {
	if s.Kind != StatusUnknown {
		return s.Kind.String()
	}
	var str string
	if json.Unmarshal(s.Raw, &str) == nil {
		return str
	}
	var obj map[string]json.RawMessage
	if json.Unmarshal(s.Raw, &obj) == nil && len(obj) == 1 {
		for k := range obj {
			return k
		}
	}
	return StatusUnknown.String()
}

// FailureMessage returns a human-readable failure description: the first
// "ExecutionError" string found in the failure or the compact failure JSON.
func (s ExecutionStatus) FailureMessage() string {
	if s.Kind != StatusFailure {
		return ""
	}
	var v any
	if err := json.Unmarshal(s.Failure, &v); err == nil {
		if msg, ok := findString(v, "ExecutionError"); ok {
			return msg
		}
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, s.Failure); err != nil {
		return string(s.Failure)
	}
	return buf.String()
}

func findString(v any, key string) (string, bool) {
	switch v := v.(type) {
	case map[string]any:
		if s, ok := v[key].(string); ok {
			return s, true
		}
		for _, e := range v {
			if s, ok := findString(e, key); ok {
				return s, true
			}
		}
	case []any:
		for _, e := range v {
			if s, ok := findString(e, key); ok {
				return s, true
			}
		}
	}
	return "", false
}

// MarshalJSON implements the json.Marshaler interface.
func (s ExecutionStatus) MarshalJSON() ([]byte, error) {
	switch s.Kind {
	case StatusSuccessValue:
		return json.Marshal(map[string]string{successValueField: base64.StdEncoding.EncodeToString(s.SuccessValue)})
	case StatusSuccessReceiptID:
		return json.Marshal(map[string]util.CryptoHash{successReceiptIDField: s.SuccessReceiptID})
	case StatusFailure:
		return json.Marshal(map[string]json.RawMessage{failureField: s.Failure})
	}
	if len(s.Raw) == 0 {
		return []byte("null"), nil
	}
	return s.Raw, nil
}

// UnmarshalJSON implements the json.Unmarshaler interface. Unknown and
// malformed shapes are not an error, they're kept in Raw with StatusUnknown
// kind.
func (s *ExecutionStatus) UnmarshalJSON(data []byte) error {
	*s = ExecutionStatus{Raw: append(json.RawMessage{}, data...)}

	var obj map[string]json.RawMessage
	if json.Unmarshal(data, &obj) != nil || len(obj) != 1 {
		return nil
	}
	if v, ok := obj[successValueField]; ok {
		var b64 string
		if json.Unmarshal(v, &b64) != nil {
			return nil
		}
		val, err := base64.StdEncoding.DecodeString(b64)
		if err != nil {
			return nil
		}
		s.Kind = StatusSuccessValue
		s.SuccessValue = val
	} else if v, ok := obj[successReceiptIDField]; ok {
		var id util.CryptoHash
		if json.Unmarshal(v, &id) != nil {
			return nil
		}
		s.Kind = StatusSuccessReceiptID
		s.SuccessReceiptID = id
	} else if v, ok := obj[failureField]; ok {
		s.Kind = StatusFailure
		s.Failure = v
	}
	return nil
}

// ExecutionOutcome is the result of a transaction or receipt execution.
type ExecutionOutcome struct {
	Logs        []string          `json:"logs"`
	ReceiptIDs  []util.CryptoHash `json:"receipt_ids"`
	GasBurnt    uint64            `json:"gas_burnt"`
	TokensBurnt string            `json:"tokens_burnt"`
	ExecutorID  string            `json:"executor_id"`
	Status      ExecutionStatus   `json:"status"`
}

// ExecutionOutcomeWithID is an ExecutionOutcome with the hash of the
// transaction or receipt it belongs to and the block it was included in.
type ExecutionOutcomeWithID struct {
	ID        util.CryptoHash  `json:"id"`
	BlockHash util.CryptoHash  `json:"block_hash"`
	Outcome   ExecutionOutcome `json:"outcome"`
}

// TransactionView is the transaction as reported back by the node.
type TransactionView struct {
	SignerID   string          `json:"signer_id"`
	PublicKey  string          `json:"public_key"`
	Nonce      uint64          `json:"nonce"`
	ReceiverID string          `json:"receiver_id"`
	Signature  string          `json:"signature"`
	Hash       util.CryptoHash `json:"hash"`
}

// FinalExecutionOutcome is the result of broadcast_tx_commit and tx methods.
type FinalExecutionOutcome struct {
	Status             ExecutionStatus          `json:"status"`
	Transaction        TransactionView          `json:"transaction"`
	TransactionOutcome ExecutionOutcomeWithID   `json:"transaction_outcome"`
	ReceiptsOutcome    []ExecutionOutcomeWithID `json:"receipts_outcome"`
}

// GasBurnt returns the total amount of gas burnt by the transaction and all
// of its receipts.
func (o *FinalExecutionOutcome) GasBurnt() uint64 {
	var total = o.TransactionOutcome.Outcome.GasBurnt
	for i := range o.ReceiptsOutcome {
		total += o.ReceiptsOutcome[i].Outcome.GasBurnt
	}
	return total
}

// Logs returns the logs of all receipts in execution order.
func (o *FinalExecutionOutcome) Logs() []string {
	var logs = append([]string{}, o.TransactionOutcome.Outcome.Logs...)
	for i := range o.ReceiptsOutcome {
		logs = append(logs, o.ReceiptsOutcome[i].Outcome.Logs...)
	}
	return logs
}
