package noise

import (
	"sync"

	"github.com/ojrac/opensimplex-go"
)

// Field is fractal simplex noise normalized to [0,1]. Safe for concurrent use.
type Field struct {
	n opensimplex.Noise
}

func New(seed int64) *Field {
	return &Field{n: opensimplex.New(seed)}
}

var (
	defaultOnce  sync.Once
	defaultField *Field
)

// Default is the seed-0 field used where output must not depend on the world seed.
func Default() *Field {
	defaultOnce.Do(func() { defaultField = New(0) })
	return defaultField
}

func (f *Field) Octave2(x, y float64, octaves int, persistence, lacunarity float64) float64 {
	freq, amp, norm := 1.0, 1.0, 1.0
	total := f.n.Eval2(x, y)
	for i := 1; i < octaves; i++ {
		freq *= lacunarity
		amp *= persistence
		norm += amp
		total += f.n.Eval2(x*freq, y*freq) * amp
	}
	return clamp01((1 + total/norm) / 2)
}

func (f *Field) Octave3(x, y, z float64, octaves int, persistence, lacunarity float64) float64 {
	freq, amp, norm := 1.0, 1.0, 1.0
	total := f.n.Eval3(x, y, z)
	for i := 1; i < octaves; i++ {
		freq *= lacunarity
		amp *= persistence
		norm += amp
		total += f.n.Eval3(x*freq, y*freq, z*freq) * amp
	}
	return clamp01((1 + total/norm) / 2)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
