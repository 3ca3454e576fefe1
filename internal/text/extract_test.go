package text_test

import (
	"testing"

	"github.com/castellanbot/castellan/internal/text"
)

func TestExtractURLs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  int
	}{
		{
			name:  "no urls",
			input: "hello everyone, how are you doing today?",
			want:  0,
		},
		{
			name:  "single https url",
			input: "check https://example.com please",
			want:  1,
		},
		{
			name:  "two urls",
			input: "Check out https://bit.ly/a and https://scam.xyz",
			want:  2,
		},
		{
			name:  "www prefix without scheme",
			input: "visit www.example.com for details",
			want:  1,
		},
		{
			name:  "bare domain token",
			input: "my site example.org has it",
			want:  1,
		},
		{
			name:  "empty string",
			input: "",
			want:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := text.ExtractURLs(tt.input)
			if len(got) != tt.want {
				t.Errorf("ExtractURLs(%q) = %v (len %d), want %d urls", tt.input, got, len(got), tt.want)
			}
		})
	}
}

func TestExtractTLD(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		url  string
		want string
	}{
		{name: "https url", url: "https://scam.xyz", want: "xyz"},
		{name: "no scheme", url: "phishing.ru", want: "ru"},
		{name: "with path", url: "https://example.com/path?q=1", want: "com"},
		{name: "www prefix", url: "www.example.co.uk", want: "co.uk"},
		{name: "unparseable", url: "http://%zz", want: ""},
		{name: "empty", url: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := text.ExtractTLD(tt.url); got != tt.want {
				t.Errorf("ExtractTLD(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}

func TestHasInviteLink(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{name: "joinchat link", input: "join us https://t.me/joinchat/abc123", want: true},
		{name: "plus link", input: "https://t.me/+SecretGroup", want: true},
		{name: "telegram.me joinchat", input: "telegram.me/joinchat/xyz", want: true},
		{name: "uppercase", input: "T.ME/JOINCHAT/ABC", want: true},
		{name: "plain channel link", input: "https://t.me/somechannel", want: false},
		{name: "no link", input: "just a normal message", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := text.HasInviteLink(tt.input); got != tt.want {
				t.Errorf("HasInviteLink(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestHasURLShortener(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		urls []string
		want bool
	}{
		{name: "bitly", urls: []string{"https://bit.ly/abc123"}, want: true},
		{name: "bitly with www", urls: []string{"https://www.bit.ly/abc"}, want: true},
		{name: "no scheme", urls: []string{"tinyurl.com/xyz"}, want: true},
		{name: "regular domain", urls: []string{"https://example.com"}, want: false},
		{name: "shortener as subdomain of other host", urls: []string{"https://bit.ly.evil.com/x"}, want: false},
		{name: "empty", urls: nil, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := text.HasURLShortener(tt.urls); got != tt.want {
				t.Errorf("HasURLShortener(%v) = %v, want %v", tt.urls, got, tt.want)
			}
		})
	}
}

func TestHasUnicodeTricks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{name: "plain text", input: "hello world", want: false},
		{name: "zero width space", input: "he\u200bllo", want: true},
		{name: "zero width joiner", input: "fr\u200dee", want: true},
		{name: "word joiner", input: "a\u2060b", want: true},
		{name: "zero width no-break space", input: "fr\ufeffee", want: true},
		{name: "rtl override", input: "abc\u202edef", want: true},
		{name: "excessive combining marks", input: "á̂̃̄", want: true},
		{name: "occasional accent", input: "café au lait, s'il vous plaît", want: false},
		{name: "empty", input: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := text.HasUnicodeTricks(tt.input); got != tt.want {
				t.Errorf("HasUnicodeTricks(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestHasNonEnglishText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		input     string
		threshold float64
		want      bool
	}{
		{name: "english text", input: "hello dear friends", threshold: 0.3, want: false},
		{name: "cyrillic text", input: "привет дорогие друзья", threshold: 0.3, want: true},
		{name: "arabic text", input: "مرحبا بالجميع", threshold: 0.3, want: true},
		{name: "cjk text", input: "大家好欢迎来到我们的频道", threshold: 0.3, want: true},
		{name: "mixed below threshold", input: "hello friends привет", threshold: 0.5, want: false},
		{name: "digits and punctuation only", input: "1234 !!! ???", threshold: 0.3, want: false},
		{name: "empty after stripping", input: "   ", threshold: 0.3, want: false},
		{name: "empty string", input: "", threshold: 0.3, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := text.HasNonEnglishText(tt.input, tt.threshold); got != tt.want {
				t.Errorf("HasNonEnglishText(%q, %v) = %v, want %v", tt.input, tt.threshold, got, tt.want)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "lowercase and trim", input: "  Hello World  ", want: "hello world"},
		{name: "zero width removed", input: "fr\u200bee mo\u200dney", want: "free money"},
		{name: "zero width no-break space removed", input: "fr\ufeffee", want: "free"},
		{name: "rtl override removed", input: "abc\u202edef", want: "abcdef"},
		{name: "nfkc compatibility fold", input: "ＦＲＥＥ", want: "free"},
		{name: "empty", input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := text.Normalize(tt.input); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestMessageText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		text    string
		caption string
		want    string
	}{
		{name: "text only", text: "hello", caption: "", want: "hello"},
		{name: "caption only", text: "", caption: "a photo", want: "a photo"},
		{name: "both", text: "hello", caption: "a photo", want: "hello a photo"},
		{name: "neither", text: "", caption: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := text.MessageText(tt.text, tt.caption); got != tt.want {
				t.Errorf("MessageText(%q, %q) = %q, want %q", tt.text, tt.caption, got, tt.want)
			}
		})
	}
}
