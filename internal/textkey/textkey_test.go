package textkey

import (
	"strings"
	"testing"
)

func TestNormalize_CollapsesAndTrims(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Hello World", "hello world"},
		{"  Hello   World  ", "hello world"},
		{"0812 3456 7890", "0812 3456 7890"},
		{"0812\t3456\n7890", "0812 3456 7890"},
		{"MiXeD CaSe", "mixed case"},
		{"", ""},
		{"   \t\n  ", ""},
		{"punctuation, stays!", "punctuation, stays!"},
		{"emoji 👍 stays", "emoji 👍 stays"},
	}
	for _, c := range cases {
		if got := Normalize(c.in); got != c.want {
			t.Errorf("Normalize(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	samples := []string{
		"  Hello   World  ",
		"0812-3456-7890",
		"already normal",
		"ПрИвІт  Світ",
		"",
	}
	for _, s := range samples {
		once := Normalize(s)
		if twice := Normalize(once); twice != once {
			t.Errorf("Normalize not idempotent for %q: %q vs %q", s, once, twice)
		}
	}
}

func TestFingerprint_DeterministicAndDistinct(t *testing.T) {
	a := Fingerprint("hello world")
	b := Fingerprint("hello world")
	if a != b {
		t.Fatalf("same key produced different fingerprints: %s vs %s", a, b)
	}
	if len(a) != 64 || strings.ToLower(a) != a {
		t.Fatalf("fingerprint should be 64 lowercase hex chars, got %q", a)
	}
	if c := Fingerprint("hello world!"); c == a {
		t.Fatalf("one-character difference should change the fingerprint")
	}
}

func TestFingerprint_AgreesAfterNormalization(t *testing.T) {
	variants := []string{"0812-3456-7890", "0812-3456-7890 ", "  0812-3456-7890"}
	want := Fingerprint(Normalize(variants[0]))
	for _, v := range variants {
		if got := Fingerprint(Normalize(v)); got != want {
			t.Errorf("normalized variants should share a fingerprint: %q → %s", v, got)
		}
	}
}
