package media

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"path/filepath"
	"time"

	"github.com/cavaliergopher/grab/v3"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

type thumbnail struct {
	Url string `json:"url"`
}

func grabGet(path, url string) error {
	_, err := grab.Get(path, url)
	return err
}

// Gallery downloads every image of a picture post into the scratch directory
// and returns their paths in post order. Individual fetch failures are
// skipped; only an empty result is an error.
func (e *Extractor) Gallery(ctx context.Context, url string) ([]string, error) {
	out, err := e.probe(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("media: gallery probe, %w (%s)", err, url)
	}
	var meta struct {
		Thumbnails []thumbnail `json:"thumbnails"`
	}
	if err := json.Unmarshal(out, &meta); err != nil {
		return nil, fmt.Errorf("media: gallery probe decode, %w (%s)", err, url)
	}
	if len(meta.Thumbnails) == 0 {
		return nil, fmt.Errorf("media: gallery without images (%s)", url)
	}

	id := uuid.NewString()
	paths := make([]string, 0, len(meta.Thumbnails))
	for i, thumb := range meta.Thumbnails {
		if i > 0 {
			time.Sleep(time.Millisecond * time.Duration(100+rand.Intn(200)))
		}
		path := filepath.Join(e.dir, fmt.Sprintf("image_%s_%d.jpg", id, i))
		if err := e.get(path, thumb.Url); err != nil {
			slog.Error("media#gallery", "url", url, "image", thumb.Url, "err", err)
			continue
		}
		paths = append(paths, path)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("media: gallery, no image could be fetched (%s)", url)
	}
	return paths, nil
}
