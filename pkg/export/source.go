package export

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/akeil/coursedoc"
	"github.com/akeil/coursedoc/internal/imaging"
	"github.com/akeil/coursedoc/internal/logging"
	"github.com/akeil/coursedoc/pkg/layout"
)

// imageSource hands decoded images to the layout engine.
// Images are taken from a prefetching decoder, downscaled and re-encoded
// for embedding. Re-encoded images are kept in the cache, if there is one.
type imageSource struct {
	dec     *imaging.Decoder
	maxSide int
	cache   coursedoc.Cache
}

func (s *imageSource) prefetch(ctx context.Context, sections []coursedoc.Section) func() {
	images := make(map[string][]byte)
	for _, sec := range coursedoc.Filter(sections, coursedoc.IsImage) {
		data, err := sec.ImageData()
		if err != nil {
			continue
		}
		images[sec.ID] = data
	}
	logging.Debug("Prefetch %d images", len(images))
	return s.dec.Prefetch(ctx, images)
}

func (s *imageSource) Image(ctx context.Context, sec coursedoc.Section) (layout.Asset, error) {
	data, err := sec.ImageData()
	if err != nil {
		return layout.Asset{}, coursedoc.NewDecodeError(sec.ID, err)
	}

	d, err := s.dec.Get(ctx, sec.ID, data)
	if err != nil {
		return layout.Asset{}, coursedoc.NewDecodeError(sec.ID, err)
	}

	a := layout.Asset{
		Key:    sec.ID,
		Width:  d.Width(),
		Height: d.Height(),
	}

	key := s.cacheKey(data)
	if enc, ok := s.cached(key); ok {
		a.Data = enc
		a.Format = embedFormat(enc)
		return a, nil
	}

	img := imaging.Downscale(d.Image, s.maxSide)
	a.Data, a.Format, err = imaging.Encode(img, d.Format)
	if err != nil {
		return layout.Asset{}, coursedoc.NewDecodeError(sec.ID, err)
	}

	if s.cache != nil {
		err = s.cache.Put(key, bytes.NewReader(a.Data))
		if err != nil {
			logging.Warning("Failed to cache image for section %q: %v", sec.ID, err)
		}
	}
	return a, nil
}

// cacheKey identifies the re-encoded form of an image payload.
func (s *imageSource) cacheKey(data []byte) string {
	sum := sha256.Sum256(data)
	return fmt.Sprintf("%s-%d", hex.EncodeToString(sum[:]), s.maxSide)
}

func (s *imageSource) cached(key string) ([]byte, bool) {
	if s.cache == nil {
		return nil, false
	}
	r, err := s.cache.Get(key)
	if err != nil {
		return nil, false
	}
	defer r.Close()

	enc, err := io.ReadAll(r)
	if err != nil || len(enc) == 0 {
		return nil, false
	}
	return enc, true
}

// embedFormat tells the two formats written by imaging.Encode apart.
func embedFormat(data []byte) string {
	if bytes.HasPrefix(data, []byte{0xff, 0xd8}) {
		return "JPG"
	}
	return "PNG"
}
