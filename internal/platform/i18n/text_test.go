package i18n

import (
	"testing"
)

func TestNormalizeLocale(t *testing.T) {
	tests := []struct {
		name    string
		locale  string
		want    string
		wantErr bool
	}{
		{name: "canonical", locale: "en-US", want: "en-US"},
		{name: "underscore separator", locale: "en_us", want: "en-US"},
		{name: "lowercase region", locale: "pt-br", want: "pt-BR"},
		{name: "language only", locale: "de", want: "de"},
		{name: "padded", locale: "  fr  ", want: "fr"},
		{name: "empty", locale: "", wantErr: true},
		{name: "garbage", locale: "!!", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeLocale(tt.locale)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("NormalizeLocale(%q) expected error", tt.locale)
				}
				return
			}
			if err != nil {
				t.Fatalf("NormalizeLocale(%q) error = %v", tt.locale, err)
			}
			if got != tt.want {
				t.Fatalf("NormalizeLocale(%q) = %q, want %q", tt.locale, got, tt.want)
			}
		})
	}
}

func TestNewTextCanonicalizesKeys(t *testing.T) {
	text, err := NewText(map[string]string{
		"en_us": "The Clearing",
		"pt-br": "A Clareira",
		"de":    "",
	})
	if err != nil {
		t.Fatalf("new text: %v", err)
	}
	if len(text) != 2 {
		t.Fatalf("expected blank values dropped, got %d entries", len(text))
	}
	if text["en-US"] != "The Clearing" {
		t.Fatalf("expected canonical en-US key, got %+v", text)
	}
	if text["pt-BR"] != "A Clareira" {
		t.Fatalf("expected canonical pt-BR key, got %+v", text)
	}
}

func TestNewTextRejectsInvalidLocale(t *testing.T) {
	if _, err := NewText(map[string]string{"??": "value"}); err == nil {
		t.Fatal("expected error for invalid locale key")
	}
}

func TestResolve(t *testing.T) {
	text := Text{
		"en-US": "The Clearing",
		"pt-BR": "A Clareira",
	}

	tests := []struct {
		name   string
		locale string
		want   string
	}{
		{name: "exact match", locale: "pt-BR", want: "A Clareira"},
		{name: "matcher falls back by language", locale: "pt", want: "A Clareira"},
		{name: "unknown locale falls back to base", locale: "ja", want: "The Clearing"},
		{name: "invalid locale falls back to base", locale: "!!", want: "The Clearing"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := text.Resolve(tt.locale)
			if !ok {
				t.Fatalf("Resolve(%q) reported no value", tt.locale)
			}
			if got != tt.want {
				t.Fatalf("Resolve(%q) = %q, want %q", tt.locale, got, tt.want)
			}
		})
	}
}

func TestResolveWithoutBaseLocalePicksDeterministicVariant(t *testing.T) {
	text := Text{"pt-BR": "A Clareira", "de": "Die Lichtung"}
	got, ok := text.Resolve("ja")
	if !ok {
		t.Fatal("expected a fallback variant")
	}
	if got != "Die Lichtung" {
		t.Fatalf("expected lowest tag order fallback, got %q", got)
	}
}

func TestResolveEmptyText(t *testing.T) {
	var text Text
	if _, ok := text.Resolve("en-US"); ok {
		t.Fatal("expected no value for empty text")
	}
}

func TestMergeOverridesWin(t *testing.T) {
	base := Text{"en-US": "The Clearing", "de": "Die Lichtung"}
	override := Text{"en-US": "The Sunken Clearing"}

	merged := base.Merge(override)
	if merged["en-US"] != "The Sunken Clearing" {
		t.Fatalf("expected override to win, got %q", merged["en-US"])
	}
	if merged["de"] != "Die Lichtung" {
		t.Fatalf("expected base entry preserved, got %q", merged["de"])
	}
	if base["en-US"] != "The Clearing" {
		t.Fatal("expected base to stay unmodified")
	}
}
