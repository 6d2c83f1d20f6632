package tracer

import (
	"fmt"
	"image"
	"image/color"
	"sync"
)

// A frame of display-ready RGB pixels stored in row-major order. Tracers
// render into private buffers and copy complete blocks in while holding the
// framebuffer lock.
type FrameBuffer struct {
	sync.Mutex

	W, H uint32

	// 3 bytes per pixel.
	Pix []uint8
}

// Allocate a new framebuffer.
func NewFrameBuffer(w, h uint32) *FrameBuffer {
	return &FrameBuffer{
		W:   w,
		H:   h,
		Pix: make([]uint8, 3*int(w)*int(h)),
	}
}

// Get the color of pixel (x, y).
func (fb *FrameBuffer) At(x, y uint32) [3]uint8 {
	offset := 3 * (int(y)*int(fb.W) + int(x))
	return [3]uint8{fb.Pix[offset], fb.Pix[offset+1], fb.Pix[offset+2]}
}

// Copy a rendered column block into the framebuffer. The block stores
// blockW x H pixels in row-major order.
func (fb *FrameBuffer) CopyBlock(blockX, blockW uint32, block []uint8) error {
	if blockX+blockW > fb.W {
		return fmt.Errorf("framebuffer: block [%d, %d) exceeds frame width %d", blockX, blockX+blockW, fb.W)
	}
	rowBytes := 3 * int(blockW)
	if len(block) != rowBytes*int(fb.H) {
		return fmt.Errorf("framebuffer: expected block with %d bytes; got %d", rowBytes*int(fb.H), len(block))
	}

	fb.Lock()
	defer fb.Unlock()
	for y := 0; y < int(fb.H); y++ {
		dst := 3 * (y*int(fb.W) + int(blockX))
		copy(fb.Pix[dst:dst+rowBytes], block[y*rowBytes:(y+1)*rowBytes])
	}
	return nil
}

// Reset all pixels to black.
func (fb *FrameBuffer) Clear() {
	fb.Lock()
	defer fb.Unlock()
	for i := range fb.Pix {
		fb.Pix[i] = 0
	}
}

// Convert framebuffer contents to an opaque RGBA image.
func (fb *FrameBuffer) Image() *image.RGBA {
	fb.Lock()
	defer fb.Unlock()

	img := image.NewRGBA(image.Rect(0, 0, int(fb.W), int(fb.H)))
	for y := 0; y < int(fb.H); y++ {
		for x := 0; x < int(fb.W); x++ {
			offset := 3 * (y*int(fb.W) + x)
			img.SetRGBA(x, y, color.RGBA{fb.Pix[offset], fb.Pix[offset+1], fb.Pix[offset+2], 255})
		}
	}
	return img
}
