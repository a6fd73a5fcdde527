package transfer

import "sync"

// bufferPool recycles part buffers of a single size.
// Buffers of any other size are allocated and left to the GC.
type bufferPool struct {
	size int64
	pool sync.Pool
}

func newBufferPool(size int64) *bufferPool {
	bp := &bufferPool{size: size}
	bp.pool.New = func() any {
		buf := make([]byte, size)
		return &buf
	}
	return bp
}

// get returns a buffer of length n
func (bp *bufferPool) get(n int64) []byte {
	if n > bp.size {
		return make([]byte, n)
	}
	bufPtr := bp.pool.Get().(*[]byte)
	return (*bufPtr)[:n]
}

func (bp *bufferPool) put(buf []byte) {
	if int64(cap(buf)) != bp.size {
		return
	}
	buf = buf[:cap(buf)]
	bp.pool.Put(&buf)
}
