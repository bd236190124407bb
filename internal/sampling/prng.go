package sampling

// Mulberry32 is a deterministic 32-bit PRNG. Given the same seed it produces
// the identical sequence of floats on every machine and every run, which is
// what makes a recorded sampling configuration sufficient to reproduce its
// sample. Each sampling execution constructs its own generator; the type is
// never shared across concurrent calls.
type Mulberry32 struct {
	state uint32
}

// mulberryIncrement is the fixed Weyl-sequence increment of the Mulberry32
// algorithm. Changing it changes every historical sample.
const mulberryIncrement = 0x6D2B79F5

// NewMulberry32 creates a generator seeded with the given value.
func NewMulberry32(seed uint32) *Mulberry32 {
	return &Mulberry32{state: seed}
}

// Next returns the next float in [0,1). The mixing relies on uint32
// wraparound, which Go provides natively.
func (g *Mulberry32) Next() float64 {
	g.state += mulberryIncrement
	t := g.state
	t = (t ^ t>>15) * (t | 1)
	t ^= t + (t^t>>7)*(t|61)
	return float64(t^t>>14) / (1 << 32)
}

// Intn returns a uniform int in [0,n). n must be positive.
func (g *Mulberry32) Intn(n int) int {
	return int(g.Next() * float64(n))
}
