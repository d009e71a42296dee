package journal

import (
	"time"

	"github.com/nspcc-dev/near-go/pkg/io"
	"github.com/nspcc-dev/near-go/pkg/util"
)

// Entry is a submission with unknown fate.
type Entry struct {
	Hash       util.CryptoHash
	Network    string
	SignerID   string
	ReceiverID string
	Method     string
	Nonce      uint64
	// Block is the block hash the transaction refers to.
	Block util.CryptoHash
	// Time is when the submission was made, millisecond precision.
	Time time.Time
	// Message is the transport error.
	Message string
}

// EncodeBinary implements the io.Encodable interface.
func (e *Entry) EncodeBinary(w *io.BinWriter) {
	w.WriteBytes(e.Hash[:])
	w.WriteString(e.Network)
	w.WriteString(e.SignerID)
	w.WriteString(e.ReceiverID)
	w.WriteString(e.Method)
	w.WriteU64LE(e.Nonce)
	w.WriteBytes(e.Block[:])
	w.WriteU64LE(uint64(e.Time.UnixMilli()))
	w.WriteString(e.Message)
}

// DecodeBinary implements the io.Decodable interface.
func (e *Entry) DecodeBinary(r *io.BinReader) {
	r.ReadBytes(e.Hash[:])
	e.Network = r.ReadString()
	e.SignerID = r.ReadString()
	e.ReceiverID = r.ReadString()
	e.Method = r.ReadString()
	e.Nonce = r.ReadU64LE()
	r.ReadBytes(e.Block[:])
	e.Time = time.UnixMilli(int64(r.ReadU64LE()))
	e.Message = r.ReadString()
}
