package sampling

import (
	"math"
	"testing"
)

// Reference sequences for the first five draws of a seed. Any drift here
// breaks reproducibility of previously issued samples.
var mulberryReference = map[uint32][]float64{
	1:   {0.6270739405881613, 0.002735721180215478, 0.5274470399599522, 0.9810509674716741, 0.9683778982143849},
	42:  {0.6011037519201636, 0.44829055899754167, 0.8524657934904099, 0.6697340414393693, 0.17481389874592423},
	123: {0.7872516233474016, 0.1785435655619949, 0.49531551403924823, 0.23136196262203157, 0.375791602069512},
}

func TestMulberry32_ReferenceSequences(t *testing.T) {
	for seed, want := range mulberryReference {
		g := NewMulberry32(seed)
		for i, w := range want {
			got := g.Next()
			if math.Abs(got-w) > 1e-15 {
				t.Errorf("seed %d draw %d = %v, want %v", seed, i, got, w)
			}
		}
	}
}

func TestMulberry32_Deterministic(t *testing.T) {
	a := NewMulberry32(987654)
	b := NewMulberry32(987654)
	for i := 0; i < 1000; i++ {
		va, vb := a.Next(), b.Next()
		if va != vb {
			t.Fatalf("draw %d diverged: %v vs %v", i, va, vb)
		}
	}
}

func TestMulberry32_Range(t *testing.T) {
	g := NewMulberry32(7)
	for i := 0; i < 10000; i++ {
		v := g.Next()
		if v < 0 || v >= 1 {
			t.Fatalf("draw %d = %v out of [0,1)", i, v)
		}
	}
}

func TestMulberry32_SeedsDiffer(t *testing.T) {
	a := NewMulberry32(1)
	b := NewMulberry32(2)
	same := true
	for i := 0; i < 10; i++ {
		if a.Next() != b.Next() {
			same = false
			break
		}
	}
	if same {
		t.Error("seeds 1 and 2 produced identical first 10 draws")
	}
}

func TestMulberry32_Intn(t *testing.T) {
	g := NewMulberry32(99)
	counts := make([]int, 5)
	for i := 0; i < 5000; i++ {
		v := g.Intn(5)
		if v < 0 || v >= 5 {
			t.Fatalf("Intn(5) = %d out of range", v)
		}
		counts[v]++
	}
	for bucket, c := range counts {
		if c == 0 {
			t.Errorf("bucket %d never hit in 5000 draws", bucket)
		}
	}
}
