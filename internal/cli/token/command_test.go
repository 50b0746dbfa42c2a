package token

import "testing"

func TestMask(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"":                 "",
		"short":            "*****",
		"12345678":         "********",
		"abcdefghij":       "abcd**ghij",
		"abcd1234efgh5678": "abcd********5678",
	}
	for input, want := range tests {
		if got := Mask(input); got != want {
			t.Fatalf("Mask(%q) = %q, want %q", input, got, want)
		}
	}
}
