package media

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/lrstanley/go-ytdlp"
)

// Kind is the classification of a link, decided from a metadata-only probe.
type Kind string

const (
	KindVideo        Kind = "video"
	KindImage        Kind = "image"
	KindUndetermined Kind = "undetermined"
)

const (
	formatBest      = "best"
	formatBestHD    = "bestvideo+bestaudio/best"
	formatBestAudio = "bestaudio/best"
)

var tiktokLink = regexp.MustCompile(`(https?://)?(www\.)?(vm\.tiktok\.com|tiktok\.com)/`)

// SupportedLink reports whether url points at the platform at all.
// Anything else is rejected before a single network call is made.
func SupportedLink(url string) bool {
	return tiktokLink.MatchString(url)
}

type fetchOpts struct {
	format string
	output string
	audio  bool
}

// Extractor materializes posts through the yt-dlp binary into the scratch
// directory. probe/fetch/get are swappable for tests.
type Extractor struct {
	dir   string
	probe func(ctx context.Context, url string) ([]byte, error)
	fetch func(ctx context.Context, url string, opts fetchOpts) error
	get   func(path, url string) error
}

func NewExtractor(scratchDir string) *Extractor {
	return &Extractor{
		dir:   scratchDir,
		probe: ytdlpProbe,
		fetch: ytdlpFetch,
		get:   grabGet,
	}
}

func ytdlpProbe(ctx context.Context, url string) ([]byte, error) {
	res, err := ytdlp.New().
		Quiet().
		NoWarnings().
		SkipDownload().
		DumpSingleJSON().
		Run(ctx, url)
	if err != nil {
		return nil, err
	}
	return []byte(res.Stdout), nil
}

func ytdlpFetch(ctx context.Context, url string, opts fetchOpts) error {
	cmd := ytdlp.New().
		Quiet().
		NoWarnings().
		NoPlaylist().
		Format(opts.format).
		Output(opts.output)
	if opts.audio {
		cmd = cmd.ExtractAudio().AudioFormat("mp3")
	}
	_, err := cmd.Run(ctx, url)
	return err
}

// Classify runs a metadata-only probe: a playable-formats field means video,
// a thumbnails field means an image post. Any failure yields KindUndetermined,
// never an error.
func (e *Extractor) Classify(ctx context.Context, url string) Kind {
	if !SupportedLink(url) {
		return KindUndetermined
	}
	out, err := e.probe(ctx, url)
	if err != nil {
		slog.Error("media#classify", "url", url, "err", err)
		return KindUndetermined
	}
	var meta map[string]json.RawMessage
	if err := json.Unmarshal(out, &meta); err != nil {
		slog.Error("media#classify", "url", url, "err", err)
		return KindUndetermined
	}
	if _, ok := meta["formats"]; ok {
		return KindVideo
	}
	if _, ok := meta["thumbnails"]; ok {
		return KindImage
	}
	return KindUndetermined
}

// DownloadVideo saves the post's video and returns its path. hd requests the
// best combined video+audio format instead of the platform default.
func (e *Extractor) DownloadVideo(ctx context.Context, url string, hd bool) (string, error) {
	format := formatBest
	if hd {
		format = formatBestHD
	}
	path := filepath.Join(e.dir, fmt.Sprintf("video_%s.mp4", uuid.NewString()))
	if err := e.fetch(ctx, url, fetchOpts{format: format, output: path}); err != nil {
		return "", fmt.Errorf("media: download video, %w (%s)", err, url)
	}
	return materialized(path)
}

// DownloadAudio saves the post's best audio-only stream as mp3.
func (e *Extractor) DownloadAudio(ctx context.Context, url string) (string, error) {
	path := filepath.Join(e.dir, fmt.Sprintf("audio_%s.mp3", uuid.NewString()))
	if err := e.fetch(ctx, url, fetchOpts{format: formatBestAudio, output: path, audio: true}); err != nil {
		return "", fmt.Errorf("media: download audio, %w (%s)", err, url)
	}
	return materialized(path)
}

// Existence of the output path is the sole success criterion; yt-dlp exiting
// zero without producing a file still counts as failure.
func materialized(path string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("media: missing output, %w (%s)", err, path)
	}
	return path, nil
}
