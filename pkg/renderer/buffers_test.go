package renderer

import "testing"

func TestPlanes_MinSamplesRows(t *testing.T) {
	p := NewPlanes(2, 4)
	for y := 0; y < 4; y++ {
		for x := 0; x < 2; x++ {
			p.Samples[p.Index(x, y)] = uint32(y + 1)
		}
	}

	tests := []struct {
		name     string
		phase    int
		step     int
		expected uint32
	}{
		{"All rows", 0, 1, 1},
		{"Even rows", 0, 2, 1},
		{"Odd rows", 1, 2, 2},
		{"Last row only", 3, 4, 4},
		{"Phase past height", 5, 6, ^uint32(0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.MinSamplesRows(tt.phase, tt.step); got != tt.expected {
				t.Errorf("Expected %d, got %d", tt.expected, got)
			}
		})
	}
}

func TestPlanes_MinSamples(t *testing.T) {
	p := NewPlanes(3, 2)
	for i := range p.Samples {
		p.Samples[i] = 7
	}
	p.Samples[4] = 2
	if got := p.MinSamples(); got != 2 {
		t.Errorf("Expected 2, got %d", got)
	}
}
