package normalization

import "testing"

func TestFrameType(t *testing.T) {
	cases := map[string]string{
		"auth":      "auth",
		"register":  "auth",
		"REGISTER":  "auth",
		" Login ":   "auth",
		"message":   "message",
		"msg":       "message",
		"pong":      "pong",
		"  PONG  ":  "pong",
		"subscribe": "subscribe",
		"":          "",
	}
	for raw, want := range cases {
		if got := FrameType(raw); got != want {
			t.Fatalf("FrameType(%q) = %q, want %q", raw, got, want)
		}
	}
}

func TestFirstNonEmpty(t *testing.T) {
	if got := FirstNonEmpty("", "  ", "a", "b"); got != "a" {
		t.Fatalf("expected first non empty value, got %q", got)
	}
	if got := FirstNonEmpty("", "  "); got != "" {
		t.Fatalf("expected empty result, got %q", got)
	}
}
