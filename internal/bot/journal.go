package bot

import (
	"log/slog"
	"time"
)

// DownloadError is one journal record; the operator reads them via /errors.
type DownloadError struct {
	Url    string    `yaml:"url"`
	ChatId int64     `yaml:"chat"`
	Choice string    `yaml:"choice"`
	Error  string    `yaml:"error"`
	At     time.Time `yaml:"at"`
}

// journal records a failed download. Keys are RFC3339Nano timestamps so a
// lexicographic sort is chronological.
func (b *Bot) journal(chatId int64, choice string, url string, cause error) {
	rec := &DownloadError{
		Url:    url,
		ChatId: chatId,
		Choice: choice,
		Error:  cause.Error(),
		At:     time.Now().UTC(),
	}
	if err := b.errors.Add(rec.At.Format(time.RFC3339Nano), rec); err != nil {
		slog.Error("bot#journal", "url", url, "err", err)
	}
}
