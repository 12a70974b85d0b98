package i18n

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
)

func TestParseAcceptLanguage(t *testing.T) {
	tests := []struct {
		header string
		want   Locale
	}{
		{"", LocaleEn},
		{"ko", LocaleKo},
		{"ko-KR,ko;q=0.9,en-US;q=0.8", LocaleKo},
		{"en-US,en;q=0.9", LocaleEn},
		{"fr-FR,fr;q=0.9", LocaleEn}, // unsupported → fallback
		{"fr-FR,ko;q=0.5", LocaleKo},
	}

	for _, tt := range tests {
		got := ParseAcceptLanguage(tt.header)
		if got != tt.want {
			t.Errorf("ParseAcceptLanguage(%q) = %q, want %q", tt.header, got, tt.want)
		}
	}
}

func TestBundleTranslation(t *testing.T) {
	b := NewDefaultBundle()

	if got := b.T(LocaleEn, "validation.invalid_price"); got != "Invalid Price" {
		t.Errorf("en invalid_price = %q", got)
	}
	if got := b.T(LocaleKo, "validation.invalid_price"); got != "가격 오류" {
		t.Errorf("ko invalid_price = %q", got)
	}

	// ko has no auto reply text, falls back to en
	if got := b.T(LocaleKo, "chat.auto_reply"); got != "Yes, it's still available! When would you like to meet?" {
		t.Errorf("ko auto_reply fallback = %q", got)
	}

	if got := b.T(LocaleEn, "unknown.key"); got != "unknown.key" {
		t.Errorf("unknown key = %q, want key itself", got)
	}

	if got := b.T(LocaleEn, "chat.greeting", "Desk Lamp"); got != "Hello! I'm interested in your \"Desk Lamp\". Is it still available?" {
		t.Errorf("greeting with args = %q", got)
	}
}

func TestLoadDirOverrides(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "en.json"), []byte(`{"chat.empty":"Nothing here"}`), 0o600); err != nil {
		t.Fatal(err)
	}

	b := NewDefaultBundle()
	if err := b.LoadDir(dir); err != nil {
		t.Fatal(err)
	}
	if got := b.T(LocaleEn, "chat.empty"); got != "Nothing here" {
		t.Errorf("override = %q", got)
	}
	if got := b.T(LocaleEn, "listing.created"); got != "Your item has been listed on the marketplace" {
		t.Errorf("untouched key = %q", got)
	}
}

func TestLoadFSYAMLCatalog(t *testing.T) {
	fsys := fstest.MapFS{
		"ko.yaml":   {Data: []byte("chat.empty: \"대화 없음\"\n")},
		"README.md": {Data: []byte("ignored")},
	}

	b := NewDefaultBundle()
	if err := b.LoadFS(fsys); err != nil {
		t.Fatal(err)
	}
	if got := b.T(LocaleKo, "chat.empty"); got != "대화 없음" {
		t.Errorf("yaml override = %q", got)
	}

	bad := fstest.MapFS{"en.json": {Data: []byte("{")}}
	if err := NewBundle(LocaleEn).LoadFS(bad); err == nil {
		t.Error("expected parse error")
	}
}
