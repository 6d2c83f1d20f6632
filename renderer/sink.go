package renderer

import (
	"bufio"
	"fmt"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/achilleasa/cpupath/tracer"
	"github.com/klauspost/compress/zstd"
)

// Write framebuffer contents to a file. The image format is selected by the
// file extension (.png or .ppm). A trailing .zst extension compresses the
// encoded image with zstd.
func SaveFrame(frameBuffer *tracer.FrameBuffer, imgFile string) error {
	formatName := strings.ToLower(imgFile)
	compress := strings.HasSuffix(formatName, ".zst")
	formatName = strings.TrimSuffix(formatName, ".zst")

	var encode func(io.Writer, *tracer.FrameBuffer) error
	switch ext := filepath.Ext(formatName); ext {
	case ".png":
		encode = EncodePNG
	case ".ppm":
		encode = EncodePPM
	default:
		return fmt.Errorf("renderer: unsupported image format %q", ext)
	}

	f, err := os.Create(imgFile)
	if err != nil {
		return fmt.Errorf("renderer: could not create %s: %w", imgFile, err)
	}

	if compress {
		err = encodeCompressed(f, frameBuffer, encode)
	} else {
		err = encode(f, frameBuffer)
	}
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	return err
}

func encodeCompressed(w io.Writer, frameBuffer *tracer.FrameBuffer, encode func(io.Writer, *tracer.FrameBuffer) error) error {
	zw, err := zstd.NewWriter(w)
	if err != nil {
		return err
	}

	err = encode(zw, frameBuffer)
	if closeErr := zw.Close(); err == nil {
		err = closeErr
	}
	return err
}

// Encode framebuffer contents as a PNG image.
func EncodePNG(w io.Writer, frameBuffer *tracer.FrameBuffer) error {
	return png.Encode(w, frameBuffer.Image())
}

// Encode framebuffer contents as a binary (P6) PPM image.
func EncodePPM(w io.Writer, frameBuffer *tracer.FrameBuffer) error {
	frameBuffer.Lock()
	defer frameBuffer.Unlock()

	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "P6\n%d %d\n255\n", frameBuffer.W, frameBuffer.H); err != nil {
		return err
	}
	if _, err := bw.Write(frameBuffer.Pix); err != nil {
		return err
	}
	return bw.Flush()
}
