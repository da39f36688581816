package imaging

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"sync"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/errgroup"

	"github.com/akeil/coursedoc/internal/logging"
)

// Decoded is a decoded raster image.
type Decoded struct {
	Image  image.Image
	Format string
}

// Width returns the width in pixels.
func (d Decoded) Width() int {
	return d.Image.Bounds().Dx()
}

// Height returns the height in pixels.
func (d Decoded) Height() int {
	return d.Image.Bounds().Dy()
}

// Decode decodes an encoded image.
//
// Decoding runs in a separate goroutine; if ctx is done before decoding
// completes, the context error is returned.
func Decode(ctx context.Context, data []byte) (Decoded, error) {
	if err := ctx.Err(); err != nil {
		return Decoded{}, err
	}

	type result struct {
		d   Decoded
		err error
	}
	rv := make(chan result, 1)

	go func() {
		defer func() {
			x := recover()
			if x != nil {
				rv <- result{err: fmt.Errorf("recovered from: %v", x)}
			}
		}()
		img, format, err := image.Decode(bytes.NewReader(data))
		rv <- result{Decoded{img, format}, err}
	}()

	select {
	case <-ctx.Done():
		return Decoded{}, ctx.Err()
	case r := <-rv:
		if r.err == nil && (r.d.Width() == 0 || r.d.Height() == 0) {
			return Decoded{}, fmt.Errorf("image has no pixels")
		}
		return r.d, r.err
	}
}

type entry struct {
	done chan struct{}
	d    Decoded
	err  error
}

// A Decoder decodes a set of images concurrently and hands out the results
// by key.
//
// Prefetch starts decoding in the background; Get waits for a single result.
// A Decoder is safe for concurrent use.
type Decoder struct {
	limit   int
	mx      sync.Mutex
	entries map[string]*entry
}

// NewDecoder creates a decoder that runs at most limit decodes at once.
func NewDecoder(limit int) *Decoder {
	if limit < 1 {
		limit = 1
	}
	return &Decoder{
		limit:   limit,
		entries: make(map[string]*entry),
	}
}

// Prefetch decodes the given images in the background.
// Keys that are already known are skipped.
//
// The returned function waits until all started decodes have finished.
func (d *Decoder) Prefetch(ctx context.Context, images map[string][]byte) func() {
	var group errgroup.Group
	group.SetLimit(d.limit)

	for key, data := range images {
		e, created := d.entry(key)
		if !created {
			continue
		}
		key, data := key, data
		group.Go(func() error {
			logging.Debug("Decode image %q (%d bytes)", key, len(data))
			e.d, e.err = Decode(ctx, data)
			close(e.done)
			return nil
		})
	}

	return func() {
		group.Wait()
	}
}

// Get returns the decoded image for key, waiting for a pending decode.
//
// If key was never prefetched, data is decoded synchronously.
func (d *Decoder) Get(ctx context.Context, key string, data []byte) (Decoded, error) {
	e, created := d.entry(key)
	if created {
		e.d, e.err = Decode(ctx, data)
		close(e.done)
	}

	select {
	case <-ctx.Done():
		return Decoded{}, ctx.Err()
	case <-e.done:
		return e.d, e.err
	}
}

func (d *Decoder) entry(key string) (*entry, bool) {
	d.mx.Lock()
	defer d.mx.Unlock()
	e, ok := d.entries[key]
	if ok {
		return e, false
	}
	e = &entry{done: make(chan struct{})}
	d.entries[key] = e
	return e, true
}
