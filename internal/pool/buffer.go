// Package pool provides reusable copy buffers for streaming operations.
// Bundle downloads and archive extraction move file bytes through io.Copy
// style loops; pooling the intermediate buffers keeps large batches from
// churning the allocator.
package pool

import (
	"sync"
)

// CopyBufferSize is the size of pooled stream-copy buffers (64KB).
const CopyBufferSize = 64 * 1024

var copyBuffers = &sync.Pool{
	New: func() any {
		buf := make([]byte, CopyBufferSize)
		return &buf
	},
}

// GetCopyBuffer returns a copy buffer from the pool. The caller is
// responsible for returning it with PutCopyBuffer.
func GetCopyBuffer() []byte {
	return *copyBuffers.Get().(*[]byte)
}

// PutCopyBuffer returns a buffer to the pool. The buffer must not be used
// after this call.
func PutCopyBuffer(buf []byte) {
	if cap(buf) != CopyBufferSize {
		return
	}
	buf = buf[:CopyBufferSize]
	copyBuffers.Put(&buf)
}
