package normalize

import (
	"testing"

	"github.com/matsen/citeline/internal/reference"
)

func TestNormalizeAbstract(t *testing.T) {
	tests := []struct {
		name  string
		input reference.AbstractText
		want  string
	}{
		{"absent", nil, " "},
		{"empty", reference.AbstractText{}, " "},
		{"single section", reference.AbstractText{"Zika virus spread."}, "Zika virus spread."},
		{"structured abstract keeps first", reference.AbstractText{"Background.", "Methods.", "Results."}, "Background."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeAbstract(tt.input); got != tt.want {
				t.Errorf("NormalizeAbstract() = %q, want %q", got, tt.want)
			}
		})
	}
}
