package bot

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/kittenbark/tg"
)

const adminDenied = "❌ Access restricted to the administrator."

func (b *Bot) handleAdmin(ctx context.Context, upd *tg.Update) error {
	msg := upd.Message
	if msg.From == nil || !b.isOperator(msg.From.Id) {
		_, err := tg.SendMessage(ctx, msg.Chat.Id, adminDenied)
		return err
	}

	_, err := tg.SendMessage(ctx, msg.Chat.Id, b.adminResponse(strings.Fields(msg.Text)[1:]))
	return err
}

// adminResponse implements the /admin sub-commands against the allow-list.
func (b *Bot) adminResponse(args []string) string {
	if len(args) == 0 {
		lines := []string{"📋 Currently allowed users:"}
		for _, id := range b.store.List() {
			lines = append(lines, fmt.Sprintf("- %d", id))
		}
		lines = append(lines,
			"",
			"⚙️ Admin commands:",
			"/admin add <user_id> - allow a user.",
			"/admin remove <user_id> - revoke a user.",
		)
		return strings.Join(lines, "\n")
	}

	if len(args) != 2 {
		return "❌ Invalid admin command."
	}
	id, err := strconv.ParseInt(args[1], 10, 64)
	switch strings.ToLower(args[0]) {
	case "add":
		if err != nil {
			return "❌ Invalid user ID."
		}
		added, err := b.store.Add(id)
		if err != nil {
			return fmt.Sprintf("❌ Couldn't save the allow-list: %v", err)
		}
		if !added {
			return "⚠️ The user is already allowed."
		}
		return fmt.Sprintf("✅ User %d added.", id)
	case "remove":
		if err != nil {
			return "❌ Invalid user ID."
		}
		removed, err := b.store.Remove(id)
		if err != nil {
			return fmt.Sprintf("❌ Couldn't save the allow-list: %v", err)
		}
		if !removed {
			return "⚠️ The user is not in the list."
		}
		return fmt.Sprintf("✅ User %d removed.", id)
	default:
		return "❌ Invalid admin command."
	}
}

// handleErrors dumps the most recent download-error journal entries.
func (b *Bot) handleErrors(ctx context.Context, upd *tg.Update) error {
	msg := upd.Message
	if msg.From == nil || !b.isOperator(msg.From.Id) {
		_, err := tg.SendMessage(ctx, msg.Chat.Id, adminDenied)
		return err
	}

	keys, err := b.errors.KeysSnapshot()
	if err != nil {
		return fmt.Errorf("errors: keys snapshot, %w", err)
	}
	if len(keys) == 0 {
		_, err := tg.SendMessage(ctx, msg.Chat.Id, "No download errors recorded.")
		return err
	}

	const limit = 20
	slices.Sort(keys)
	if len(keys) > limit {
		keys = keys[len(keys)-limit:]
	}
	lines := make([]string, 0, len(keys))
	for _, key := range keys {
		rec, err := b.errors.Get(key)
		if err != nil {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s %s %s: %s", rec.At.Format(time.DateTime), rec.Choice, rec.Url, rec.Error))
	}
	_, err = tg.SendMessage(ctx, msg.Chat.Id, strings.Join(lines, "\n"))
	return err
}

// handleDu reports how much scratch space transient downloads are holding.
func (b *Bot) handleDu(ctx context.Context, upd *tg.Update) error {
	msg := upd.Message
	if msg.From == nil || !b.isOperator(msg.From.Id) {
		_, err := tg.SendMessage(ctx, msg.Chat.Id, adminDenied)
		return err
	}

	_, err := tg.SendMessage(
		ctx,
		msg.Chat.Id,
		fmt.Sprintf("%s: %s", b.cfg.ScratchDir(), du(b.cfg.ScratchDir())),
		&tg.OptSendMessage{ReplyParameters: &tg.ReplyParameters{MessageId: msg.MessageId}},
	)
	return err
}

func du(dir string) string {
	size := int64(0)
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		size += info.Size()
		return nil
	})
	if err != nil {
		return err.Error()
	}
	return humanSize(size)
}

func humanSize(size int64) string {
	const unit = 1024
	div, exp := int64(1), 0
	for n := size; unit < n; n /= unit {
		div *= unit
		exp++
	}
	units := []string{"B", "KB", "MB", "GB", "TB", "PB"}
	return fmt.Sprintf("%.2f%s", float64(size)/float64(div), units[exp])
}
