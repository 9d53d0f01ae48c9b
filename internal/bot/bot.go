package bot

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/cavaliergopher/grab/v3"
	"github.com/goccy/go-yaml"
	"github.com/kittenbark/nanodb"
	"github.com/kittenbark/tg"
	"tikget/internal/media"
	"tikget/internal/store"
)

const tiktokUserAgent = "Mozilla/5.0 (Linux; Android 14; RMX3710 Build/UKQ1.230924.001; wv) AppleWebKit/537.36 (KHTML, like Gecko) Version/4.0 Chrome/133.0.6943.137 Mobile Safari/537.36 trill_390003 BytedanceWebview/d8a21c6"

// Extractor is the media side of the bot: classification plus downloads.
type Extractor interface {
	Classify(ctx context.Context, url string) media.Kind
	DownloadVideo(ctx context.Context, url string, hd bool) (string, error)
	DownloadAudio(ctx context.Context, url string) (string, error)
	Gallery(ctx context.Context, url string) ([]string, error)
}

type Bot struct {
	cfg       *Config
	tg        *tg.Bot
	store     *store.Store
	extractor Extractor
	pool      *media.Pool
	errors    *nanodb.DBCache[*DownloadError, *yaml.Encoder, *yaml.Decoder]
}

func New(configPath string) (*Bot, error) {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	if err := checkBinaries(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cfg.ScratchDir(), os.ModePerm); err != nil {
		return nil, fmt.Errorf("mkdir: scratch dir, %w", err)
	}

	errorsDb, err := nanodb.Fromf[*DownloadError](cfg.Errors, yamlNewEncoder, yamlNewDecoder)
	if err != nil {
		return nil, fmt.Errorf("errors: open journal, %w", err)
	}

	api := tg.New(&tg.Config{Token: cfg.Token, ApiURL: cfg.TelegramURL, TimeoutHandle: -1})
	if _, err := tg.GetMe(api.Context()); err != nil {
		return nil, fmt.Errorf("get me: %w", err)
	}

	grab.DefaultClient.UserAgent = tiktokUserAgent
	return &Bot{
		cfg:       cfg,
		tg:        api,
		store:     store.Open(cfg.AllowedUsers, cfg.Preferences),
		extractor: media.NewExtractor(cfg.ScratchDir()),
		pool:      media.NewPool(cfg.Workers, cfg.QueueSize),
		errors:    errorsDb,
	}, nil
}

// Start registers the handlers and long-polls until the process dies.
// Commands are matched first; any other message is treated as a candidate
// link, and button presses land in the choice handler.
func (b *Bot) Start() {
	slog.Info("bot#start", "admin", b.cfg.Admin, "workers", b.cfg.Workers)
	b.tg.
		OnError(tg.OnErrorLog).
		Scheduler().
		Command("/start", tg.Synced(b.handleStart)).
		Command("/help", tg.Synced(b.handleHelp)).
		Command("/admin", tg.Synced(b.handleAdmin)).
		Command("/errors", tg.Synced(b.handleErrors)).
		Command("/du", tg.Synced(b.handleDu)).
		Branch(tg.OnCallback, tg.Synced(b.handleChoice)).
		Branch(tg.OnMessage, tg.Synced(b.handleLink)).
		Start()
}

func (b *Bot) isOperator(id int64) bool {
	return id == b.cfg.Admin
}

// The operator is implicitly authorized and never stored in the allow-list.
func (b *Bot) authorized(id int64) bool {
	return b.isOperator(id) || b.store.Allowed(id)
}

func yamlNewEncoder(w io.Writer) *yaml.Encoder {
	return yaml.NewEncoder(w)
}

func yamlNewDecoder(r io.Reader) *yaml.Decoder {
	return yaml.NewDecoder(r)
}
