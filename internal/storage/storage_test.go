package storage

import (
	"strings"
	"testing"
)

func TestVoiceClipKeyLayout(t *testing.T) {
	key := VoiceClipKey("athlete1", "sess1", "audio/wav")
	if !strings.HasPrefix(key, "voice/athlete1/sess1/") || !strings.HasSuffix(key, ".wav") {
		t.Fatalf("unexpected key %q", key)
	}
	other := VoiceClipKey("athlete1", "sess1", "audio/wav")
	if key == other {
		t.Fatalf("expected unique keys, got %q twice", key)
	}
}

func TestExtensionFor(t *testing.T) {
	cases := map[string]string{
		"audio/mpeg":               "mp3",
		"audio/webm; codecs=opus":  "webm",
		"AUDIO/OGG":                "ogg",
		"application/octet-stream": "bin",
		"":                         "bin",
	}
	for contentType, want := range cases {
		if got := extensionFor(contentType); got != want {
			t.Errorf("extensionFor(%q) = %q, want %q", contentType, got, want)
		}
	}
}
