// Package bufferpool hands out fixed-size byte buffers for chunked I/O.
package bufferpool

import "sync"

const DefaultSize = 256 * 1024

type Pool struct {
	size int
	pool sync.Pool
}

func New(size int) *Pool {
	if size <= 0 {
		size = DefaultSize
	}
	p := &Pool{size: size}
	p.pool.New = func() any {
		buf := make([]byte, size)
		return &buf
	}
	return p
}

// Get returns a buffer of exactly Size bytes. Callers must Put it back.
func (p *Pool) Get() *[]byte {
	buf := p.pool.Get().(*[]byte)
	*buf = (*buf)[:p.size]
	return buf
}

func (p *Pool) Put(buf *[]byte) {
	if buf == nil || cap(*buf) < p.size {
		return
	}
	p.pool.Put(buf)
}

func (p *Pool) Size() int {
	return p.size
}
