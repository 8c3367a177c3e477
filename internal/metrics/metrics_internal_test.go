package metrics

import (
	"slices"
	"testing"
)

func TestBleuTokens(t *testing.T) {
	tests := []struct {
		line string
		want []string
	}{
		{"Halo, dunia!", []string{"Halo", ",", "dunia", "!"}},
		{"harga 3.5 juta.", []string{"harga", "3.5", "juta", "."}},
		{"(Jakarta) &amp; Bogor", []string{"(", "Jakarta", ")", "&", "Bogor"}},
		{"tahun 2020-2021", []string{"tahun", "2020", "-", "2021"}},
	}

	for _, tt := range tests {
		if got := bleuTokens(tt.line); !slices.Equal(got, tt.want) {
			t.Fatalf("bleuTokens(%q) = %q, want %q", tt.line, got, tt.want)
		}
	}
}

func TestLCSLength(t *testing.T) {
	a := []string{"a", "b", "c", "d", "e"}
	b := []string{"a", "c", "e", "x"}

	if got := lcsLength(a, b); got != 3 {
		t.Fatalf("expected LCS of 3, got %d", got)
	}

	if got := lcsLength(nil, b); got != 0 {
		t.Fatalf("expected LCS of 0, got %d", got)
	}
}

func TestSplitSentences(t *testing.T) {
	got := splitSentences("Harga naik. Warga protes!  Apa solusinya?\nBelum ada")
	want := []string{"Harga naik.", "Warga protes!", "Apa solusinya?", "Belum ada"}

	if !slices.Equal(got, want) {
		t.Fatalf("unexpected sentences: %q", got)
	}

	if got := splitSentences("   "); len(got) != 0 {
		t.Fatalf("expected no sentences, got %q", got)
	}
}

func TestCosine(t *testing.T) {
	if got := cosine([]float64{1, 0}, []float64{0, 1}); got != 0 {
		t.Fatalf("expected orthogonal vectors to score 0, got %v", got)
	}

	if got := cosine([]float64{1, 2}, []float64{1}); got != 0 {
		t.Fatalf("expected mismatched dimensions to score 0, got %v", got)
	}

	if got := cosine([]float64{0, 0}, []float64{1, 1}); got != 0 {
		t.Fatalf("expected zero vector to score 0, got %v", got)
	}
}
