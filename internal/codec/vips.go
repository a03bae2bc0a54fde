package codec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"golang.org/x/image/tiff"
)

const (
	defaultVipsTimeout = 2 * time.Minute
	// defaultMaxPixels bounds a single decoded frame (~100 MP).
	defaultMaxPixels = 100_000_000
)

// VipsDecoder decodes HEIC/HEIF by piping the payload through
// `vips copy` and reading an uncompressed TIFF back from stdout.
type VipsDecoder struct {
	vipsPath    string
	isAvailable bool
	timeout     time.Duration
	maxPixels   int
}

// NewVipsDecoder resolves the vips binary. A configured path wins if it
// exists; otherwise PATH is searched. The decoder is still returned when
// vips is missing, and reports ErrUnavailable on use.
func NewVipsDecoder(configuredPath string, timeout time.Duration) *VipsDecoder {
	var foundPath string

	if configuredPath != "" && configuredPath != "vips" {
		if _, err := os.Stat(configuredPath); err == nil {
			foundPath = configuredPath
		}
	}
	if foundPath == "" {
		if p, err := exec.LookPath("vips"); err == nil {
			foundPath = p
		}
	}

	if timeout <= 0 {
		timeout = defaultVipsTimeout
	}

	return &VipsDecoder{
		vipsPath:    foundPath,
		isAvailable: foundPath != "",
		timeout:     timeout,
		maxPixels:   defaultMaxPixels,
	}
}

// Available reports whether a vips binary was found.
func (d *VipsDecoder) Available() bool {
	return d.isAvailable
}

// Path returns the resolved vips binary, or "".
func (d *VipsDecoder) Path() string {
	return d.vipsPath
}

func (d *VipsDecoder) Decode(ctx context.Context, data []byte) (image.Image, error) {
	if !d.isAvailable {
		return nil, fmt.Errorf("%w: vips not found. %s", ErrUnavailable, InstallHint())
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	runCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, d.vipsPath, "copy", "[descriptor=0]", ".tif[compression=none]")

	var outBuf, errBuf bytes.Buffer
	cmd.Stdin = bytes.NewReader(data)
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf

	if err := cmd.Run(); err != nil {
		// The caller's context ending is not a property of this file.
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, ctx.Err())
		}
		var execErr *exec.Error
		if errors.As(err, &execErr) {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		if runCtx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("%w: vips timed out after %s", ErrConversion, d.timeout)
		}
		return nil, fmt.Errorf("%w: vips copy failed: %v, stderr: %s", ErrConversion, err, strings.TrimSpace(errBuf.String()))
	}

	return d.decodeTIFF(outBuf.Bytes())
}

func (d *VipsDecoder) decodeTIFF(data []byte) (image.Image, error) {
	cfg, err := tiff.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: unreadable vips output: %v", ErrConversion, err)
	}
	if d.maxPixels > 0 && cfg.Width*cfg.Height > d.maxPixels {
		return nil, fmt.Errorf("%w: image %dx%d exceeds %d pixels", ErrConversion, cfg.Width, cfg.Height, d.maxPixels)
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: decode vips output: %v", ErrConversion, err)
	}
	return img, nil
}
