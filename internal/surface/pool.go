package surface

import (
	"fmt"
	"image"
	"sync"

	"github.com/bnema/keyviz/internal/color"
	"github.com/rajveermalviya/go-wayland/wayland/client"
	"golang.org/x/sys/unix"
)

const maxPooledBuffers = 3

// pooledBuffer is one memfd-backed SHM buffer plus the RGBA view onto its
// mapping that the paint step draws into.
type pooledBuffer struct {
	wlBuffer *client.Buffer
	wlPool   *client.ShmPool
	fd       int
	data     []byte
	img      *image.RGBA
	inUse    bool
}

// bufferPool hands out up to maxPooledBuffers SHM buffers of a single
// current size, recreating all of them whenever the negotiated size
// changes. Allocation and release mirror the memfd/mmap technique used
// elsewhere in this codebase's lineage for transparent overlay surfaces.
type bufferPool struct {
	mu      sync.Mutex
	shm     *client.Shm
	width   int32
	height  int32
	stride  int32
	buffers []*pooledBuffer
}

func newBufferPool(shm *client.Shm) *bufferPool {
	return &bufferPool{shm: shm}
}

// Resize discards all existing buffers and adopts a new target size; the
// next Acquire call allocates fresh ones lazily.
func (p *bufferPool) Resize(width, height int32) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if width == p.width && height == p.height {
		return
	}
	for _, b := range p.buffers {
		p.destroyBuffer(b)
	}
	p.buffers = nil
	p.width = width
	p.height = height
	p.stride = width * 4
}

// Acquire returns a free buffer for the current size, allocating a new one
// if under the pool limit, or nil if every buffer is currently owned by the
// compositor.
func (p *bufferPool) Acquire() (*pooledBuffer, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, b := range p.buffers {
		if !b.inUse {
			b.inUse = true
			return b, nil
		}
	}
	if len(p.buffers) >= maxPooledBuffers {
		return nil, nil
	}

	b, err := p.allocate()
	if err != nil {
		return nil, err
	}
	b.inUse = true
	p.buffers = append(p.buffers, b)
	return b, nil
}

// Release marks a buffer free again, called from the compositor's
// buffer-release event.
func (p *bufferPool) Release(wlBuffer *client.Buffer) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, b := range p.buffers {
		if b.wlBuffer == wlBuffer {
			b.inUse = false
			return
		}
	}
}

func (p *bufferPool) allocate() (*pooledBuffer, error) {
	size := int(p.stride) * int(p.height)
	if size <= 0 {
		return nil, fmt.Errorf("refusing to allocate a zero-size buffer")
	}

	fd, err := unix.MemfdCreate("keyviz-overlay", unix.MFD_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("memfd_create: %w", err)
	}
	if err := unix.Ftruncate(fd, int64(size)); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("ftruncate: %w", err)
	}
	data, err := unix.Mmap(fd, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("mmap: %w", err)
	}

	wlPool, err := p.shm.CreatePool(uintptr(fd), int32(size))
	if err != nil {
		unix.Munmap(data)
		unix.Close(fd)
		return nil, fmt.Errorf("create shm pool: %w", err)
	}

	wlBuffer, err := wlPool.CreateBuffer(0, p.width, p.height, p.stride, client.ShmFormatArgb8888)
	if err != nil {
		wlPool.Destroy()
		unix.Munmap(data)
		unix.Close(fd)
		return nil, fmt.Errorf("create buffer: %w", err)
	}
	wlBuffer.AddReleaseHandler(func(client.BufferReleaseEvent) {
		p.Release(wlBuffer)
	})

	img := &image.RGBA{
		Pix:    data,
		Stride: int(p.stride),
		Rect:   image.Rect(0, 0, int(p.width), int(p.height)),
	}

	return &pooledBuffer{wlBuffer: wlBuffer, wlPool: wlPool, fd: fd, data: data, img: img}, nil
}

func (p *bufferPool) destroyBuffer(b *pooledBuffer) {
	_ = b.wlBuffer.Destroy()
	_ = b.wlPool.Destroy()
	_ = unix.Munmap(b.data)
	_ = unix.Close(b.fd)
}

// Close releases every pooled buffer.
func (p *bufferPool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, b := range p.buffers {
		p.destroyBuffer(b)
	}
	p.buffers = nil
}

// fillBackground zero-fills an image with a flat color. img's Pix backs the
// mmap'd WL_SHM_FORMAT_ARGB8888 buffer directly, which is a little-endian
// 0xAARRGGBB word — B,G,R,A in memory, not image.RGBA's native R,G,B,A — so
// the channels are written swapped.
func fillBackground(img *image.RGBA, c color.ARGB) {
	r, g, b, a := c.RGBA()
	bounds := img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		rowStart := img.PixOffset(bounds.Min.X, y)
		for x := 0; x < bounds.Dx(); x++ {
			off := rowStart + x*4
			img.Pix[off+0] = b
			img.Pix[off+1] = g
			img.Pix[off+2] = r
			img.Pix[off+3] = a
		}
	}
}
