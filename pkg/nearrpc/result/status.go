/*
Package result contains the types of JSON-RPC method results returned by
NEAR nodes.
*/
package result

import (
	"github.com/nspcc-dev/near-go/pkg/util"
)

// Status is the result of the status call, only the fields used by the
// client are decoded.
type Status struct {
	ChainID         string   `json:"chain_id"`
	ProtocolVersion uint32   `json:"protocol_version"`
	SyncInfo        SyncInfo `json:"sync_info"`
}

// SyncInfo describes the node's view of the chain head.
type SyncInfo struct {
	LatestBlockHash   util.CryptoHash `json:"latest_block_hash"`
	LatestBlockHeight uint64          `json:"latest_block_height"`
	LatestBlockTime   string          `json:"latest_block_time,omitempty"`
	Syncing           bool            `json:"syncing"`
}
