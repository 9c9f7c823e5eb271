package listing

import "testing"

func TestCleanText(t *testing.T) {
	cases := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"  Moby Dick  ", "Moby Dick"},
		{"It�s a classic", "It's a classic"},
		{"“Quoted” – dashed — long…", `"Quoted" - dashed - long...`},
		{"• bullet © mark", "- bullet (c) mark"},
		{"donâ€™t", "don't"},
		{1851, "1851"},
		{3.5, "3.5"},
	}
	for _, c := range cases {
		if got := CleanText(c.in); got != c.want {
			t.Fatalf("CleanText(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	cases := []struct {
		in    string
		limit int
		want  string
	}{
		{"short", 50, "short"},
		{"exactly-ten", 11, "exactly-ten"},
		{"a very long title that goes on", 10, "a very..."},
		{"trailing  spaces  here padded", 20, "trailing  spaces..."},
		{"abcdef", 3, "abc"},
		{"abcdef", 2, "ab"},
		{"日本語のタイトルです長い", 8, "日本語のタ..."},
	}
	for _, c := range cases {
		got := Truncate(c.in, c.limit)
		if got != c.want {
			t.Fatalf("Truncate(%q, %d) = %q, want %q", c.in, c.limit, got, c.want)
		}
		if again := Truncate(got, c.limit); again != got {
			t.Fatalf("Truncate not idempotent at limit %d: %q -> %q", c.limit, got, again)
		}
	}
}

func TestTruncateKeepsShortTextVerbatim(t *testing.T) {
	if got := Truncate("", 10); got != "" {
		t.Fatalf("got %q", got)
	}
	if got := Truncate("abc", 0); got != "" {
		t.Fatalf("limit 0 should hard-cut to empty, got %q", got)
	}
}
