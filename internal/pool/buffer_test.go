package pool

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCopyBufferRoundTrip(t *testing.T) {
	buf := GetCopyBuffer()
	assert.Len(t, buf, CopyBufferSize)
	PutCopyBuffer(buf)

	again := GetCopyBuffer()
	assert.Len(t, again, CopyBufferSize)
	PutCopyBuffer(again)
}

func TestPutCopyBufferRejectsForeignSizes(t *testing.T) {
	// Must not panic or poison the pool.
	PutCopyBuffer(make([]byte, 10))
	buf := GetCopyBuffer()
	assert.Len(t, buf, CopyBufferSize)
	PutCopyBuffer(buf)
}
