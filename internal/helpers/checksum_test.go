package helpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShortSHA256(t *testing.T) {
	t.Parallel()

	const helloWorld = "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"

	tests := []struct {
		name string
		in   string
		n    int
		want string
	}{
		{"empty input", "", 12, "e3b0c44298fc"},
		{"expression id", "hello world", 12, helloWorld[:12]},
		{"full digest", "hello world", 0, helloWorld},
		{"negative length", "hello world", -1, helloWorld},
		{"oversized length", "hello world", 100, helloWorld},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ShortSHA256([]byte(tt.in), tt.n))
		})
	}
}
