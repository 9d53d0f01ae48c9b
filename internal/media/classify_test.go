package media

import (
	"context"
	"errors"
	"testing"
)

func TestSupportedLink(t *testing.T) {
	tests := []struct {
		url      string
		expected bool
	}{
		{"https://www.tiktok.com/@x/video/123", true},
		{"https://tiktok.com/@x/video/123", true},
		{"http://vm.tiktok.com/ZM123/", true},
		{"vm.tiktok.com/ZM123/", true},
		{"tiktok.com/@x", true},
		{"https://www.youtube.com/watch?v=123", false},
		{"hello there", false},
		{"", false},
	}

	for _, test := range tests {
		if got := SupportedLink(test.url); got != test.expected {
			t.Errorf("SupportedLink(%q) = %t, expected %t", test.url, got, test.expected)
		}
	}
}

func TestClassifyUnsupportedLinkSkipsProbe(t *testing.T) {
	probes := 0
	e := &Extractor{probe: func(ctx context.Context, url string) ([]byte, error) {
		probes++
		return []byte(`{}`), nil
	}}

	if got := e.Classify(context.Background(), "https://example.com/clip"); got != KindUndetermined {
		t.Errorf("Classify = %s, expected %s", got, KindUndetermined)
	}
	if probes != 0 {
		t.Errorf("probe invocations = %d, expected 0", probes)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		out      string
		err      error
		expected Kind
	}{
		{"formats means video", `{"formats":[{"format_id":"0"}],"thumbnails":[]}`, nil, KindVideo},
		{"thumbnails means image", `{"id":"1","thumbnails":[{"url":"https://x/1.jpg"}]}`, nil, KindImage},
		{"neither field", `{"id":"1"}`, nil, KindUndetermined},
		{"probe failure", ``, errors.New("unsupported url"), KindUndetermined},
		{"malformed metadata", `formats: nope`, nil, KindUndetermined},
	}

	for _, test := range tests {
		e := &Extractor{probe: func(ctx context.Context, url string) ([]byte, error) {
			return []byte(test.out), test.err
		}}
		if got := e.Classify(context.Background(), "https://www.tiktok.com/@x/video/1"); got != test.expected {
			t.Errorf("%s: Classify = %s, expected %s", test.name, got, test.expected)
		}
	}
}
