package i18n

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"empty defaults", "", "en"},
		{"exact match", "de", "de"},
		{"uppercase", "DE", "de"},
		{"padded", "  fr  ", "fr"},
		{"region falls back to base", "de-AT", "de"},
		{"underscore region", "es_MX", "es"},
		{"unsupported base", "pt-BR", "en"},
		{"garbage defaults", "xx", "en"},
		{"default with region", "en-GB", "en"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Normalize(tc.in); got != tc.want {
				t.Fatalf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestLanguagesDefaultFirst(t *testing.T) {
	langs := Languages()
	if len(langs) == 0 {
		t.Fatal("empty catalog")
	}
	if !langs[0].IsDefault || langs[0].Code != DefaultLang {
		t.Fatalf("first language = %+v, want default %q", langs[0], DefaultLang)
	}
	for _, l := range langs[1:] {
		if l.IsDefault {
			t.Fatalf("unexpected second default %q", l.Code)
		}
	}
}

func TestIsSupported(t *testing.T) {
	if !IsSupported("en") || !IsSupported("fr") {
		t.Fatal("supported codes rejected")
	}
	if IsSupported("DE") {
		t.Fatal("IsSupported must be exact match, got true for DE")
	}
	if IsSupported("xx") {
		t.Fatal("unsupported code accepted")
	}
}
