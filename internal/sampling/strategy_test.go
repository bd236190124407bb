package sampling

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSimpleRandomIndices_Reference(t *testing.T) {
	got := SimpleRandomIndices(NewMulberry32(1), 10, 3)
	if diff := cmp.Diff([]int{7, 8, 3}, got); diff != "" {
		t.Errorf("selection mismatch (-want +got):\n%s", diff)
	}
}

func TestSimpleRandomIndices_Distinct(t *testing.T) {
	got := SimpleRandomIndices(NewMulberry32(5), 100, 40)
	if len(got) != 40 {
		t.Fatalf("got %d indices, want 40", len(got))
	}
	seen := make(map[int]bool)
	for _, i := range got {
		if i < 0 || i >= 100 {
			t.Fatalf("index %d out of range", i)
		}
		if seen[i] {
			t.Fatalf("index %d selected twice", i)
		}
		seen[i] = true
	}
}

func TestSimpleRandomIndices_TakeAll(t *testing.T) {
	got := SimpleRandomIndices(NewMulberry32(5), 4, 10)
	if len(got) != 4 {
		t.Errorf("got %d indices, want all 4", len(got))
	}
}

func TestSimpleRandomIndices_Empty(t *testing.T) {
	if got := SimpleRandomIndices(NewMulberry32(1), 0, 3); got != nil {
		t.Errorf("empty candidates: got %v", got)
	}
	if got := SimpleRandomIndices(NewMulberry32(1), 5, 0); got != nil {
		t.Errorf("zero size: got %v", got)
	}
}

func TestSystematicIndices_FixedStart(t *testing.T) {
	got := SystematicIndices(NewMulberry32(7), 10, 3, false, 0)
	if diff := cmp.Diff([]int{0, 3, 6}, got); diff != "" {
		t.Errorf("selection mismatch (-want +got):\n%s", diff)
	}
	got = SystematicIndices(NewMulberry32(7), 10, 4, false, 0)
	if diff := cmp.Diff([]int{0, 2, 5, 7}, got); diff != "" {
		t.Errorf("selection mismatch (-want +got):\n%s", diff)
	}
}

func TestSystematicIndices_RandomStart(t *testing.T) {
	// Interval ceil(10/3)=4; seed 1's first draw lands offset 2, seed 4's
	// lands offset 3.
	got := SystematicIndices(NewMulberry32(1), 10, 3, true, 0)
	if diff := cmp.Diff([]int{2, 5, 8}, got); diff != "" {
		t.Errorf("seed 1 mismatch (-want +got):\n%s", diff)
	}
	got = SystematicIndices(NewMulberry32(4), 10, 3, true, 0)
	if diff := cmp.Diff([]int{3, 6, 9}, got); diff != "" {
		t.Errorf("seed 4 mismatch (-want +got):\n%s", diff)
	}
}

func TestSystematicIndices_ExplicitStep(t *testing.T) {
	got := SystematicIndices(NewMulberry32(7), 10, 3, false, 2)
	if diff := cmp.Diff([]int{0, 2, 4}, got); diff != "" {
		t.Errorf("selection mismatch (-want +got):\n%s", diff)
	}
}

func TestSystematicIndices_WrappingStep(t *testing.T) {
	// A step that divides into the population wraps back onto its starting
	// position; the walk must stop there instead of re-drawing the same
	// rows. 10/gcd(10,5)=2 distinct positions, 12/gcd(12,3)=4.
	got := SystematicIndices(NewMulberry32(1), 10, 6, false, 5)
	if diff := cmp.Diff([]int{0, 5}, got); diff != "" {
		t.Errorf("n=10 step=5 mismatch (-want +got):\n%s", diff)
	}
	got = SystematicIndices(NewMulberry32(1), 10, 4, false, 5)
	if diff := cmp.Diff([]int{0, 5}, got); diff != "" {
		t.Errorf("n=10 step=5 k=4 mismatch (-want +got):\n%s", diff)
	}
	got = SystematicIndices(NewMulberry32(1), 12, 8, false, 3)
	if diff := cmp.Diff([]int{0, 3, 6, 9}, got); diff != "" {
		t.Errorf("n=12 step=3 mismatch (-want +got):\n%s", diff)
	}
	// A step coprime with n reaches every position, so k is honored.
	got = SystematicIndices(NewMulberry32(1), 10, 4, false, 7)
	if diff := cmp.Diff([]int{0, 7, 4, 1}, got); diff != "" {
		t.Errorf("n=10 step=7 mismatch (-want +got):\n%s", diff)
	}
}

func TestSampleData_WrappingStepDistinctRows(t *testing.T) {
	rows := make([]Row, 10)
	for i := range rows {
		rows[i] = Row{"id": float64(i)}
	}
	step := 5
	size := 6
	cfg := Config{
		Method:         MethodSystematic,
		Seed:           1,
		IDField:        "id",
		SampleSize:     &size,
		SystematicStep: &step,
	}
	result, err := SampleData(rows, cfg, nil)
	if err != nil {
		t.Fatalf("SampleData: %v", err)
	}
	seen := make(map[float64]bool)
	for _, r := range result.Sample {
		id := r["id"].(float64)
		if seen[id] {
			t.Fatalf("row %v drawn twice", id)
		}
		seen[id] = true
	}
	if len(result.Sample) != 2 {
		t.Errorf("got %d rows, want the 2 distinct positions step 5 reaches in 10", len(result.Sample))
	}
	if got := result.Summary.SampledSize; got != len(result.Sample) {
		t.Errorf("summary sampled size %d, want %d", got, len(result.Sample))
	}
}

func TestSystematicIndices_FullCoverage(t *testing.T) {
	// size >= n returns the whole range in original order without touching
	// the generator.
	g := NewMulberry32(3)
	got := SystematicIndices(g, 4, 4, true, 0)
	if diff := cmp.Diff([]int{0, 1, 2, 3}, got); diff != "" {
		t.Errorf("selection mismatch (-want +got):\n%s", diff)
	}
	if first := g.Next(); first != NewMulberry32(3).Next() {
		t.Error("full coverage consumed the generator")
	}
}
