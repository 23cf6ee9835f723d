package wordlist

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestASCIILetters(t *testing.T) {
	if !ASCIILetters("hello") {
		t.Fatalf("expected hello to pass")
	}
	for _, word := range []string{"", "résumé", "naïve", "don’t", "co-op", "Hello"} {
		if ASCIILetters(word) {
			t.Fatalf("expected %q to be rejected", word)
		}
	}
}

func TestFilter(t *testing.T) {
	got, err := Filter([]string{"ok", "no-way", "fine"}, ASCIILetters)
	if err != nil {
		t.Fatalf("filter: %v", err)
	}
	if strings.Join(got, ",") != "ok,fine" {
		t.Fatalf("unexpected words %v", got)
	}
	if _, err := Filter([]string{"x-y"}, ASCIILetters); err == nil {
		t.Fatalf("expected error when nothing is left")
	}
}

func TestDefaultWords(t *testing.T) {
	words := Default()
	if len(words) < 100 {
		t.Fatalf("expected a sizable built-in list, got %d", len(words))
	}
	for _, w := range words {
		if !ASCIILetters(w) {
			t.Fatalf("built-in word %q is not plain ascii", w)
		}
	}
}

func TestLoadWords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "words.txt")
	if err := os.WriteFile(path, []byte("# header\nalpha\n\n beta \n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	words, err := LoadWords(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(words) != 2 || words[1] != "beta" {
		t.Fatalf("unexpected words %v", words)
	}
	empty := filepath.Join(t.TempDir(), "empty.txt")
	if err := os.WriteFile(empty, []byte("\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadWords(empty); err == nil {
		t.Fatalf("expected error for empty list")
	}
}
