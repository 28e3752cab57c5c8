package pipeline

import "sync"

// drainBufPool hands out fixed-size buffers used to discard a response body
// we don't otherwise care about (HEAD/DELETE/PUT/BATCH-DELETE all read a
// small ack body), so the underlying connection can return to the keep-alive
// pool instead of being closed.
//
// Adapted directly from the teacher's cluster/bufpool.go, collapsed from a
// multi-bucket size-classed pool (needed there for widely varying framed RPC
// payloads) down to one bucket, since every caller here drains a body whose
// size is unknown in advance and doesn't need an exact-length slice back.
var drainBufPool = sync.Pool{
	New: func() any {
		b := make([]byte, 32<<10)
		return b
	},
}

func getDrainBuf() []byte {
	return drainBufPool.Get().([]byte)
}

func putDrainBuf(b []byte) {
	drainBufPool.Put(b) //nolint:staticcheck // fixed-size slice, safe to reuse as-is
}
