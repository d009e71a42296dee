package result

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

const outcomeTemplate = `{
  "status": %s,
  "transaction": {
    "signer_id": "alice.testnet",
    "public_key": "ed25519:8fWHD35Rjd78yeowShh9GwhRudRtLLsGCRjZtgPjAtw9",
    "nonce": 12,
    "receiver_id": "greeter.testnet",
    "actions": [{"FunctionCall": {"method_name": "set_greeting", "args": "eyJncmVldGluZyI6ImhpIn0=", "gas": 30000000000000, "deposit": "0"}}],
    "signature": "ed25519:3s1dvMqNDCByoMnDnkhB4GPjTSXCRt4nt3Af5n1RX8W7aJ2FC6MfRf5BNXZ52EBifNJnNVBsGvke6GRYuaEYJXt5",
    "hash": "8fWHD35Rjd78yeowShh9GwhRudRtLLsGCRjZtgPjAtw9"
  },
  "transaction_outcome": {
    "proof": [],
    "block_hash": "4DzrMJoKp9cS3BJqkZSxd4nbtKkWrbhHZSrMyRF7XfvK",
    "id": "8fWHD35Rjd78yeowShh9GwhRudRtLLsGCRjZtgPjAtw9",
    "outcome": {
      "logs": [],
      "receipt_ids": ["FGq1Z5x8BBkHdwk9zT8fvgSAJhmAGBeqzwWJPbxYSzsM"],
      "gas_burnt": 2428019381096,
      "tokens_burnt": "242801938109600000000",
      "executor_id": "alice.testnet",
      "status": {"SuccessReceiptId": "FGq1Z5x8BBkHdwk9zT8fvgSAJhmAGBeqzwWJPbxYSzsM"}
    }
  },
  "receipts_outcome": [{
    "proof": [],
    "block_hash": "8R6J8ANxrXxzjfXV6R2AmGFsN7Fs9Am7fvyE5RNaqWSA",
    "id": "FGq1Z5x8BBkHdwk9zT8fvgSAJhmAGBeqzwWJPbxYSzsM",
    "outcome": {
      "logs": ["Saving greeting hi"],
      "receipt_ids": [],
      "gas_burnt": 2910375000000,
      "tokens_burnt": "291037500000000000000",
      "executor_id": "greeter.testnet",
      "status": {"SuccessValue": ""}
    }
  }]
}`

func decodeOutcome(t *testing.T, status string) *FinalExecutionOutcome {
	var o = new(FinalExecutionOutcome)
	require.NoError(t, json.Unmarshal([]byte(fmt.Sprintf(outcomeTemplate, status)), o))
	return o
}

func TestFinalExecutionOutcome(t *testing.T) {
	o := decodeOutcome(t, `{"SuccessValue": "ImhpIg=="}`)
	require.Equal(t, StatusSuccessValue, o.Status.Kind)
	require.True(t, o.Status.IsSuccess())
	require.Equal(t, []byte(`"hi"`), o.Status.SuccessValue)
	require.Equal(t, uint64(2428019381096+2910375000000), o.GasBurnt())
	require.Equal(t, []string{"Saving greeting hi"}, o.Logs())
	require.Equal(t, uint64(12), o.Transaction.Nonce)
	require.Equal(t, "4DzrMJoKp9cS3BJqkZSxd4nbtKkWrbhHZSrMyRF7XfvK", o.TransactionOutcome.BlockHash.String())
	require.Equal(t, StatusSuccessReceiptID, o.TransactionOutcome.Outcome.Status.Kind)
	require.Equal(t, o.ReceiptsOutcome[0].ID, o.TransactionOutcome.Outcome.Status.SuccessReceiptID)
}

func TestExecutionStatus(t *testing.T) {
	var testCases = []struct {
		name    string
		raw     string
		kind    StatusKind
		success bool
		sname   string
	}{
		{"success value", `{"SuccessValue": ""}`, StatusSuccessValue, true, "SuccessValue"},
		{"receipt", `{"SuccessReceiptId": "FGq1Z5x8BBkHdwk9zT8fvgSAJhmAGBeqzwWJPbxYSzsM"}`, StatusSuccessReceiptID, true, "SuccessReceiptId"},
		{"failure", `{"Failure": {"ActionError": {"index": 0, "kind": {"FunctionCallError": {"ExecutionError": "Smart contract panicked: oops"}}}}}`, StatusFailure, false, "Failure"},
		{"not started", `"NotStarted"`, StatusUnknown, false, "NotStarted"},
		{"started", `"Started"`, StatusUnknown, false, "Started"},
		{"new shape", `{"Postponed": {"until": 5}}`, StatusUnknown, false, "Postponed"},
		{"garbage", `42`, StatusUnknown, false, "Unknown"},
		{"bad success value", `{"SuccessValue": "!!notbase64"}`, StatusUnknown, false, "SuccessValue"},
		{"non-string success value", `{"SuccessValue": 5}`, StatusUnknown, false, "SuccessValue"},
		{"bad receipt", `{"SuccessReceiptId": "0OIl"}`, StatusUnknown, false, "SuccessReceiptId"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var s ExecutionStatus
			require.NoError(t, json.Unmarshal([]byte(tc.raw), &s))
			require.Equal(t, tc.kind, s.Kind)
			require.Equal(t, tc.success, s.IsSuccess())
			require.Equal(t, tc.sname, s.Name())
			require.JSONEq(t, tc.raw, string(s.Raw))

			data, err := json.Marshal(s)
			require.NoError(t, err)
			var actual ExecutionStatus
			require.NoError(t, json.Unmarshal(data, &actual))
			require.Equal(t, s.Kind, actual.Kind)
		})
	}
}

func TestFinalExecutionOutcomeMalformedStatus(t *testing.T) {
	o := decodeOutcome(t, `{"SuccessValue": "!!notbase64"}`)
	require.Equal(t, StatusUnknown, o.Status.Kind)
	require.False(t, o.Status.IsSuccess())
	require.JSONEq(t, `{"SuccessValue": "!!notbase64"}`, string(o.Status.Raw))
	require.Equal(t, uint64(2428019381096+2910375000000), o.GasBurnt())
	require.Equal(t, "4DzrMJoKp9cS3BJqkZSxd4nbtKkWrbhHZSrMyRF7XfvK", o.TransactionOutcome.BlockHash.String())
}

func TestFailureMessage(t *testing.T) {
	o := decodeOutcome(t, `{"Failure": {"ActionError": {"index": 0, "kind": {"FunctionCallError": {"ExecutionError": "Smart contract panicked: oops"}}}}}`)
	require.Equal(t, StatusFailure, o.Status.Kind)
	require.Equal(t, "Smart contract panicked: oops", o.Status.FailureMessage())
	require.NotZero(t, o.GasBurnt())

	o = decodeOutcome(t, `{"Failure": {"InvalidTxError": "Expired"}}`)
	require.Equal(t, `{"InvalidTxError":"Expired"}`, o.Status.FailureMessage())

	o = decodeOutcome(t, `{"SuccessValue": ""}`)
	require.Equal(t, "", o.Status.FailureMessage())
}

func TestCallResult(t *testing.T) {
	var r CallResult
	require.NoError(t, json.Unmarshal([]byte(`{"result": [34, 104, 105, 34], "logs": [], "block_height": 17, "block_hash": "4DzrMJoKp9cS3BJqkZSxd4nbtKkWrbhHZSrMyRF7XfvK"}`), &r))
	require.Equal(t, Bytes(`"hi"`), r.Result)
	require.Equal(t, uint64(17), r.BlockHeight)
	require.Empty(t, r.Error)

	data, err := json.Marshal(r.Result)
	require.NoError(t, err)
	require.Equal(t, `[34,104,105,34]`, string(data))

	require.Error(t, json.Unmarshal([]byte(`{"result": [256]}`), &r))
	require.Error(t, json.Unmarshal([]byte(`{"result": "aGk="}`), &r))
}

func TestAccessKeyView(t *testing.T) {
	var v AccessKeyView
	require.NoError(t, json.Unmarshal([]byte(`{"nonce": 85, "permission": "FullAccess", "block_height": 19884918, "block_hash": "GGJQ8yjmo7aEoj8ZpAhGehnq9BSWFx4xswHYzDwwAP2n"}`), &v))
	require.Equal(t, uint64(85), v.Nonce)
	require.Empty(t, v.Error)

	require.NoError(t, json.Unmarshal([]byte(`{"error": "access key ed25519:xxx does not exist while viewing", "logs": [], "block_height": 1, "block_hash": "GGJQ8yjmo7aEoj8ZpAhGehnq9BSWFx4xswHYzDwwAP2n"}`), &v))
	require.Contains(t, v.Error, "does not exist")
}
