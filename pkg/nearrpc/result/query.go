package result

import (
	"encoding/json"
	"fmt"

	"github.com/nspcc-dev/near-go/pkg/util"
)

// QueryHeader is common to all query results. Error is set by older nodes
// instead of returning a JSON-RPC error for some failures (like a missing
// access key).
type QueryHeader struct {
	BlockHeight uint64          `json:"block_height"`
	BlockHash   util.CryptoHash `json:"block_hash"`
	Error       string          `json:"error,omitempty"`
}

// AccessKeyView is the result of the view_access_key query.
type AccessKeyView struct {
	QueryHeader
	Nonce      uint64          `json:"nonce"`
	Permission json.RawMessage `json:"permission,omitempty"`
}

// CallResult is the result of the call_function query.
type CallResult struct {
	QueryHeader
	Result Bytes    `json:"result"`
	Logs   []string `json:"logs"`
}

// Bytes is a byte slice serialized as an array of numbers which is the way
// the node returns function call results.
type Bytes []byte

// MarshalJSON implements the json.Marshaler interface.
func (b Bytes) MarshalJSON() ([]byte, error) {
	var arr = make([]uint16, len(b))
	for i := range b {
		arr[i] = uint16(b[i])
	}
	return json.Marshal(arr)
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (b *Bytes) UnmarshalJSON(data []byte) error {
	var arr []int
	if err := json.Unmarshal(data, &arr); err != nil {
		return err
	}
	res := make([]byte, len(arr))
	for i, v := range arr {
		if v < 0 || v > 255 {
			return fmt.Errorf("byte #%d is out of range: %d", i, v)
		}
		res[i] = byte(v)
	}
	*b = res
	return nil
}
