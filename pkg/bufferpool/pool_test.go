package bufferpool

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetReturnsFullSizeBuffer(t *testing.T) {
	p := New(1024)

	buf := p.Get()
	assert.Len(t, *buf, 1024)

	*buf = (*buf)[:10]
	p.Put(buf)

	again := p.Get()
	assert.Len(t, *again, 1024)
}

func TestDefaultSize(t *testing.T) {
	p := New(0)
	assert.Equal(t, DefaultSize, p.Size())
}

func TestPutIgnoresSmallBuffers(t *testing.T) {
	p := New(64)
	small := make([]byte, 8)
	p.Put(&small)
	assert.Len(t, *p.Get(), 64)
}
