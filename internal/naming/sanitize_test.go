package naming

import (
	"regexp"
	"strings"
	"testing"
)

func TestSanitize(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "genome1", "genome1"},
		{"spaces and punctuation", "My Genome #1!!", "My_Genome_1"},
		{"apostrophe", "Acme Corp's Sample!", "Acme_Corp_s_Sample"},
		{"dots preserved", "strain.v2", "strain.v2"},
		{"trailing dot stripped", "sample.", "sample"},
		{"run collapsed", "a   ---   b", "a_b"},
		{"unicode", "köli höli", "k_li_h_li"},
		{"empty", "", ""},
		{"only punctuation", "!!!", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Sanitize(tc.in); got != tc.want {
				t.Fatalf("Sanitize(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestSanitizeTruncatesTo63(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("a", 100) + "!"
	got := Sanitize(long)
	if len(got) != 63 {
		t.Fatalf("expected 63 characters, got %d", len(got))
	}
}

func TestSanitizeAlphabetAndIdempotence(t *testing.T) {
	t.Parallel()

	safe := regexp.MustCompile(`^[0-9a-zA-Z_.]*$`)
	inputs := []string{
		"My Genome #1!!",
		"  leading and trailing  ",
		"Escherichia coli K-12 (MG1655)",
		strings.Repeat("x y", 60),
	}
	for _, in := range inputs {
		got := Sanitize(in)
		if !safe.MatchString(got) {
			t.Fatalf("Sanitize(%q) = %q contains unsafe characters", in, got)
		}
		if len(got) > 0 && !isAlphanumeric(got[len(got)-1]) {
			t.Fatalf("Sanitize(%q) = %q ends in a non-alphanumeric", in, got)
		}
		if again := Sanitize(got); again != got {
			t.Fatalf("Sanitize not idempotent: %q -> %q", got, again)
		}
	}
}
