package types

import "testing"

func TestCompactStringRoundTrip(t *testing.T) {
	cases := []CompositeSymbolID{
		{FileID: 1, LocalSymbolID: 1},
		{FileID: 42, LocalSymbolID: 7},
		{FileID: 1 << 20, LocalSymbolID: 1 << 10},
	}
	for _, id := range cases {
		enc := id.CompactString()
		got, err := ParseCompactString(enc)
		if err != nil {
			t.Fatalf("ParseCompactString(%q): %v", enc, err)
		}
		if !got.Equals(id) {
			t.Errorf("round trip mismatch: got %+v, want %+v", got, id)
		}
	}
}

func TestCompactStringEmptyForZeroValue(t *testing.T) {
	if s := (CompositeSymbolID{}).CompactString(); s != "" {
		t.Errorf("expected empty string for zero-value ID, got %q", s)
	}
}

func TestParseCompactStringRejectsInvalidChar(t *testing.T) {
	if _, err := ParseCompactString("abc!"); err == nil {
		t.Error("expected error for invalid character")
	}
}

func TestParseCompactStringRejectsEmpty(t *testing.T) {
	if _, err := ParseCompactString(""); err == nil {
		t.Error("expected error for empty string")
	}
}

func TestCompositeSymbolIDEquals(t *testing.T) {
	a := NewCompositeSymbolID(3, 9)
	b := NewCompositeSymbolID(3, 9)
	c := NewCompositeSymbolID(3, 10)
	if !a.Equals(b) {
		t.Error("expected equal IDs to compare equal")
	}
	if a.Equals(c) {
		t.Error("expected different IDs to compare unequal")
	}
}

func TestCompositeSymbolIDIsValid(t *testing.T) {
	if (CompositeSymbolID{}).IsValid() {
		t.Error("zero-value ID should not be valid")
	}
	if !NewCompositeSymbolID(1, 0).IsValid() {
		t.Error("non-zero FileID should be valid")
	}
}

func TestLanguageForPath(t *testing.T) {
	cases := map[string]Language{
		"main.go":       LanguageGo,
		"a/b/c.py":      LanguagePython,
		"index.tsx":     LanguageTSX,
		"lib.rs":        LanguageRust,
		"README.md":     LanguageUnknown,
		"noextension":   LanguageUnknown,
		"Server.CS":     LanguageCSharp, // extension match is case-insensitive
	}
	for path, want := range cases {
		if got := LanguageForPath(path); got != want {
			t.Errorf("LanguageForPath(%q) = %q, want %q", path, got, want)
		}
	}
}

func TestFQNSeparatorDefaultsPerLanguage(t *testing.T) {
	if sep := LanguageRust.FQNSeparator(); sep != "::" {
		t.Errorf("Rust separator = %q, want ::", sep)
	}
	if sep := LanguageGo.FQNSeparator(); sep != "." {
		t.Errorf("Go separator = %q, want .", sep)
	}
	if sep := LanguageUnknown.FQNSeparator(); sep != "." {
		t.Errorf("unregistered language separator = %q, want . (default)", sep)
	}
}
