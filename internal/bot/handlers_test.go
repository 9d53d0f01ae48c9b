package bot

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/kittenbark/tg"
	"tikget/internal/media"
)

func TestChoiceKeyboardVideoOffersExactlyTwoTokens(t *testing.T) {
	const url = "https://www.tiktok.com/@x/video/123"

	keyboard := choiceKeyboard(media.KindVideo, url)
	if keyboard == nil {
		t.Fatalf("choiceKeyboard(video) = nil")
	}
	tokens := []string{}
	for _, row := range keyboard.InlineKeyboard {
		for _, button := range row {
			tokens = append(tokens, button.CallbackData)
		}
	}
	want := []string{"video_hd|" + url, "audio|" + url}
	if len(tokens) != len(want) {
		t.Fatalf("tokens = %v, expected %v", tokens, want)
	}
	for i := range want {
		if tokens[i] != want[i] {
			t.Errorf("tokens[%d] = %q, expected %q", i, tokens[i], want[i])
		}
	}
}

func TestChoiceKeyboardImage(t *testing.T) {
	const url = "https://www.tiktok.com/@x/photo/123"

	keyboard := choiceKeyboard(media.KindImage, url)
	if keyboard == nil {
		t.Fatalf("choiceKeyboard(image) = nil")
	}
	if rows := len(keyboard.InlineKeyboard); rows != 1 || len(keyboard.InlineKeyboard[0]) != 1 {
		t.Fatalf("keyboard = %v, expected a single button", keyboard.InlineKeyboard)
	}
	if got := keyboard.InlineKeyboard[0][0].CallbackData; got != "image|"+url {
		t.Errorf("CallbackData = %q, expected %q", got, "image|"+url)
	}
}

func TestChoiceKeyboardUndetermined(t *testing.T) {
	if keyboard := choiceKeyboard(media.KindUndetermined, "https://www.tiktok.com/@x/video/123"); keyboard != nil {
		t.Errorf("choiceKeyboard(undetermined) = %v, expected nil", keyboard)
	}
}

func TestGreetingIsOneOfThreeVariants(t *testing.T) {
	variants := []string{"Hey Jo! 😊", "Welcome Jo! 😃", "Happy to see you here! 👍"}
	for range 50 {
		got := greeting("Jo")
		if !slices.Contains(variants, got) {
			t.Fatalf("greeting(\"Jo\") = %q, not a fixed variant", got)
		}
	}
}

func TestParseToken(t *testing.T) {
	tests := []struct {
		data   string
		choice string
		url    string
		ok     bool
	}{
		{"video_hd|https://www.tiktok.com/@x/video/1", "video_hd", "https://www.tiktok.com/@x/video/1", true},
		{"audio|https://vm.tiktok.com/ZM1/", "audio", "https://vm.tiktok.com/ZM1/", true},
		{"image|https://www.tiktok.com/@x/photo/1", "image", "https://www.tiktok.com/@x/photo/1", true},
		{"video_hd https://www.tiktok.com/@x/video/1", "", "", false},
		{"banana|https://www.tiktok.com/@x/video/1", "", "", false},
		{"", "", "", false},
	}

	for _, test := range tests {
		choice, url, err := parseToken(test.data)
		if test.ok && err != nil {
			t.Errorf("parseToken(%q) err = %v, expected nil", test.data, err)
			continue
		}
		if !test.ok {
			if err == nil {
				t.Errorf("parseToken(%q) err = nil, expected failure", test.data)
			}
			continue
		}
		if choice != test.choice || url != test.url {
			t.Errorf("parseToken(%q) = (%q, %q), expected (%q, %q)", test.data, choice, url, test.choice, test.url)
		}
	}
}

func TestHandleLinkIgnoresCommands(t *testing.T) {
	b := adminBot(t)

	// A nil pool would hang and a background ctx cannot send replies, so any
	// fall-through past the command check fails this test.
	upd := &tg.Update{Message: &tg.Message{Text: "/foo", From: &tg.User{Id: 1000}}}
	if err := b.handleLink(context.Background(), upd); err != nil {
		t.Errorf("handleLink(/foo) err = %v, expected nil without any reply", err)
	}
}

func TestSendArtifactRemovesFile(t *testing.T) {
	dir := t.TempDir()

	sent := filepath.Join(dir, "video_ok.mp4")
	if err := os.WriteFile(sent, []byte("media"), 0o644); err != nil {
		t.Fatal(err)
	}
	sendArtifact(sent, func() error { return nil })
	if _, err := os.Stat(sent); !os.IsNotExist(err) {
		t.Errorf("scratch file still exists after successful send")
	}

	failed := filepath.Join(dir, "video_fail.mp4")
	if err := os.WriteFile(failed, []byte("media"), 0o644); err != nil {
		t.Fatal(err)
	}
	sendArtifact(failed, func() error { return os.ErrDeadlineExceeded })
	if _, err := os.Stat(failed); !os.IsNotExist(err) {
		t.Errorf("scratch file still exists after failed send")
	}
}
