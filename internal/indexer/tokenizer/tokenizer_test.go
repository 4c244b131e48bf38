package tokenizer

import "testing"

func TestTokenize(t *testing.T) {
	tokens := Tokenize("The Cats and the dogs were running!")
	want := []string{"cat", "dog", "runn"}
	if len(tokens) != len(want) {
		t.Fatalf("Tokenize() = %v, want terms %v", tokens, want)
	}
	for i, tok := range tokens {
		if tok.Term != want[i] || tok.Position != i {
			t.Errorf("token %d = %+v, want {%s %d}", i, tok, want[i], i)
		}
	}
}

func TestFrequencies(t *testing.T) {
	freqs, n := Frequencies("cat cat dog, the cat")
	if n != 4 {
		t.Errorf("token count = %d, want 4", n)
	}
	if freqs["cat"] != 3 || freqs["dog"] != 1 {
		t.Errorf("Frequencies() = %v", freqs)
	}
	if _, ok := freqs["the"]; ok {
		t.Error("stop-word counted")
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Cats", "cat"},
		{"dog", "dog"},
		{"The", "the"},
		{" X ", "x"},
		{"classes", "class"},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
