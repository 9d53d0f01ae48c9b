package bot

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"strings"

	"github.com/kittenbark/tg"
	"github.com/kittenbark/tgmedia/tgvideo"
	"tikget/internal/media"
)

const (
	choiceVideoHD = "video_hd"
	choiceAudio   = "audio"
	choiceImage   = "image"
)

const helpText = "📚 How to use the TikTok bot:\n\n" +
	"1️⃣ Send a TikTok link.\n" +
	"2️⃣ Pick what to download: video, audio, or images.\n\n" +
	"🎛 Commands:\n" +
	"/help - this message.\n" +
	"/admin - allowed-users management (admin only).\n\n" +
	"Anyone who sends /start gets access; the admin can revoke it with /admin remove."

func greeting(name string) string {
	switch rand.Intn(3) {
	case 0:
		return fmt.Sprintf("Hey %s! 😊", name)
	case 1:
		return fmt.Sprintf("Welcome %s! 😃", name)
	default:
		return "Happy to see you here! 👍"
	}
}

func firstName(user *tg.User) string {
	if user.FirstName == "" {
		return "friend"
	}
	return user.FirstName
}

// handleStart greets the caller. First contact from a non-operator user
// registers them in the allow-list; a repeat /start is a no-op.
func (b *Bot) handleStart(ctx context.Context, upd *tg.Update) error {
	msg := upd.Message
	if msg.From == nil {
		return nil
	}
	if b.isOperator(msg.From.Id) {
		_, err := tg.SendMessage(ctx, msg.Chat.Id, fmt.Sprintf("👑 Hello admin %s, good to see you again!", firstName(msg.From)))
		return err
	}

	added, err := b.store.Add(msg.From.Id)
	if err != nil {
		slog.Error("bot#register", "user", msg.From.Id, "err", err)
	} else if added {
		slog.Info("bot#register", "user", msg.From.Id)
	}
	_, err = tg.SendMessage(ctx, msg.Chat.Id, greeting(firstName(msg.From)))
	return err
}

func (b *Bot) handleHelp(ctx context.Context, upd *tg.Update) error {
	_, err := tg.SendMessage(ctx, upd.Message.Chat.Id, helpText)
	return err
}

// handleLink does the cheap checks inline (authorization, link admission),
// then moves the metadata probe onto the pool so a slow probe never stalls
// update handling.
func (b *Bot) handleLink(ctx context.Context, upd *tg.Update) error {
	msg := upd.Message
	if msg.From == nil || msg.Text == "" {
		return nil
	}
	// Unregistered commands are not candidate links.
	if strings.HasPrefix(msg.Text, "/") {
		return nil
	}
	if !b.authorized(msg.From.Id) {
		_, err := tg.SendMessage(ctx, msg.Chat.Id, "❌ Access denied.")
		return err
	}

	url := strings.TrimSpace(msg.Text)
	if !media.SupportedLink(url) {
		_, err := tg.SendMessage(ctx, msg.Chat.Id, "❌ Invalid TikTok link.")
		return err
	}

	chatId := msg.Chat.Id
	b.pool.Submit(func() { b.offerChoices(b.tg.Context(), chatId, url) })
	return nil
}

// choiceKeyboard builds the buttons for a classified link; the callback
// tokens carry the whole pending request. Undetermined links get no keyboard.
func choiceKeyboard(kind media.Kind, url string) *tg.InlineKeyboardMarkup {
	switch kind {
	case media.KindVideo:
		return &tg.InlineKeyboardMarkup{InlineKeyboard: [][]*tg.InlineKeyboardButton{{
			{Text: "Video HD", CallbackData: choiceVideoHD + "|" + url},
			{Text: "Audio (MP3)", CallbackData: choiceAudio + "|" + url},
		}}}
	case media.KindImage:
		return &tg.InlineKeyboardMarkup{InlineKeyboard: [][]*tg.InlineKeyboardButton{{
			{Text: "Download images", CallbackData: choiceImage + "|" + url},
		}}}
	default:
		return nil
	}
}

func (b *Bot) offerChoices(ctx context.Context, chatId int64, url string) {
	keyboard := choiceKeyboard(b.extractor.Classify(ctx, url), url)
	if keyboard == nil {
		if _, err := tg.SendMessage(ctx, chatId, "❌ Couldn't detect the media type."); err != nil {
			slog.Error("bot#classify_reply", "url", url, "err", err)
		}
		return
	}

	_, err := tg.SendMessage(ctx, chatId, "🎥 What do you want to download?", &tg.OptSendMessage{ReplyMarkup: keyboard})
	if err != nil {
		slog.Error("bot#offer", "url", url, "err", err)
	}
}

// parseToken splits a callback token back into the pending choice and its
// url. The token is the only state the flow keeps between the button message
// and the press.
func parseToken(data string) (choice string, url string, err error) {
	choice, url, found := strings.Cut(data, "|")
	if !found {
		return "", "", fmt.Errorf("bot: callback token without separator (%q)", data)
	}
	switch choice {
	case choiceVideoHD, choiceAudio, choiceImage:
		return choice, url, nil
	default:
		return "", "", fmt.Errorf("bot: unknown choice %q", choice)
	}
}

func (b *Bot) handleChoice(ctx context.Context, upd *tg.Update) error {
	query := upd.CallbackQuery
	if query == nil || query.Message == nil {
		return nil
	}
	if _, err := tg.AnswerCallbackQuery(ctx, query.Id); err != nil {
		slog.Error("bot#answer_callback", "query", query.Id, "err", err)
	}

	chatId := query.Message.Chat.Id
	choice, url, err := parseToken(query.Data)
	if err != nil {
		slog.Error("bot#choice", "data", query.Data, "err", err)
		_, err := tg.SendMessage(ctx, chatId, "❌ Invalid callback data.")
		return err
	}

	b.pool.Submit(func() { b.deliver(b.tg.Context(), chatId, choice, url) })
	return nil
}

// deliver runs on the pool: download, send, always clean up the scratch file.
func (b *Bot) deliver(ctx context.Context, chatId int64, choice string, url string) {
	switch choice {
	case choiceVideoHD:
		path, err := b.extractor.DownloadVideo(ctx, url, true)
		if err != nil {
			b.failDownload(ctx, chatId, choice, url, err)
			return
		}
		sendArtifact(path, func() error {
			_, err := tgvideo.Send(ctx, chatId, path, &tg.OptSendVideo{})
			return err
		})
	case choiceAudio:
		path, err := b.extractor.DownloadAudio(ctx, url)
		if err != nil {
			b.failDownload(ctx, chatId, choice, url, err)
			return
		}
		sendArtifact(path, func() error {
			_, err := tg.SendAudio(ctx, chatId, tg.FromDisk(path))
			return err
		})
	case choiceImage:
		paths, err := b.extractor.Gallery(ctx, url)
		if err != nil {
			b.failDownload(ctx, chatId, choice, url, err)
			return
		}
		for _, path := range paths {
			sendArtifact(path, func() error {
				_, err := tg.SendPhoto(ctx, chatId, tg.FromDisk(path))
				return err
			})
		}
	}
}

func (b *Bot) failDownload(ctx context.Context, chatId int64, choice string, url string, cause error) {
	slog.Error("bot#download", "choice", choice, "url", url, "err", cause)
	b.journal(chatId, choice, url, cause)
	if _, err := tg.SendMessage(ctx, chatId, "❌ Download failed, please try again later."); err != nil {
		slog.Error("bot#download_reply", "chat", chatId, "err", err)
	}
}

// sendArtifact owns the scratch file from here on: it is removed whether the
// send worked or not.
func sendArtifact(path string, send func() error) {
	defer func() {
		if err := os.Remove(path); err != nil {
			slog.Error("bot#cleanup", "path", path, "err", err)
		}
	}()
	if err := send(); err != nil {
		slog.Error("bot#send", "path", path, "err", err)
	}
}
