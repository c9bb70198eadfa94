package budget

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/theirongolddev/mobius/internal/model"
)

func cats(pcts ...float64) []model.Category {
	out := make([]model.Category, len(pcts))
	for i, p := range pcts {
		out[i] = model.Category{ID: string(rune('a' + i)), Name: string(rune('A' + i)), Percentage: p}
	}
	return out
}

func percentages(cs []model.Category) []float64 {
	out := make([]float64, len(cs))
	for i, c := range cs {
		out[i] = c.Percentage
	}
	return out
}

func TestRebalance_ReducesOthersProportionally(t *testing.T) {
	got := Rebalance(cats(50, 30, 20), 0, 70)

	want := []float64{70, 18, 12}
	for i, p := range percentages(got) {
		if p != want[i] {
			t.Fatalf("percentages = %v, want %v", percentages(got), want)
		}
	}
	if total := TotalPercentage(got); total != 100 {
		t.Fatalf("total = %.0f, want 100", total)
	}
}

func TestRebalance_DoesNotAliasInput(t *testing.T) {
	in := cats(50, 30, 20)
	out := Rebalance(in, 1, 60)

	if in[0].Percentage != 50 || in[1].Percentage != 30 || in[2].Percentage != 20 {
		t.Fatalf("input modified: %v", percentages(in))
	}
	out[0].Percentage = 1
	if in[0].Percentage == 1 {
		t.Fatal("output shares backing array with input")
	}
}

func TestRebalance_UnderAllocationLeftAlone(t *testing.T) {
	got := Rebalance(cats(50, 30, 20), 0, 30)

	want := []float64{30, 30, 20}
	for i, p := range percentages(got) {
		if p != want[i] {
			t.Fatalf("percentages = %v, want %v", percentages(got), want)
		}
	}
	if missing := MissingPercentage(got); missing != 20 {
		t.Fatalf("MissingPercentage = %.0f, want 20", missing)
	}
	if IsAllocationValid(got) {
		t.Fatal("80% allocation reported valid")
	}
}

func TestRebalance_OthersAtZeroKeepsExcess(t *testing.T) {
	got := Rebalance(cats(10, 0, 0), 0, 120)

	if total := TotalPercentage(got); total != 120 {
		t.Fatalf("total = %.0f, want 120 (nothing to take from)", total)
	}
	if IsAllocationValid(got) {
		t.Fatal("120% allocation reported valid")
	}
}

func TestRebalance_FractionalSharesRoundToWholeReductions(t *testing.T) {
	got := Rebalance(cats(0.4, 0.4, 0.4, 0.4, 98.4), 4, 100)

	for i := range 4 {
		if got[i].Percentage != 0.4 {
			t.Fatalf("category %d = %v, want 0.4 (reduction rounds to 0)", i, got[i].Percentage)
		}
	}
	if total := TotalPercentage(got); math.Abs(total-101.6) > 1e-9 {
		t.Fatalf("total = %v, want 101.6", total)
	}
	if IsAllocationValid(got) {
		t.Fatal("101.6% allocation reported valid")
	}
}

func TestRebalance_IndexOutOfRange(t *testing.T) {
	got := Rebalance(cats(50, 50), 5, 10)
	if got[0].Percentage != 50 || got[1].Percentage != 50 {
		t.Fatalf("percentages = %v, want unchanged", percentages(got))
	}
}

func TestRebalance_Invariants(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 42))
	for i := 0; i < 2000; i++ {
		in := cats(float64(r.IntN(101)), float64(r.IntN(101)), float64(r.IntN(101)))
		idx := r.IntN(len(in))
		pct := float64(r.IntN(101))

		sumOthers := TotalPercentage(in) - in[idx].Percentage
		out := Rebalance(in, idx, pct)

		for _, c := range out {
			if c.Percentage < 0 {
				t.Fatalf("Rebalance(%v, %d, %.0f) produced negative share: %v",
					percentages(in), idx, pct, percentages(out))
			}
		}
		if sumOthers > 0 && TotalPercentage(out) > 100+AllocationTolerance {
			t.Fatalf("Rebalance(%v, %d, %.0f) total = %.0f, want <= 101",
				percentages(in), idx, pct, TotalPercentage(out))
		}
	}
}

func TestIsAllocationValid(t *testing.T) {
	tests := []struct {
		pcts []float64
		want bool
	}{
		{[]float64{50, 30, 20}, true},
		{[]float64{50, 30, 19}, true},
		{[]float64{50, 30, 21}, true},
		{[]float64{50, 30, 18}, false},
		{[]float64{60, 30, 20}, false},
		{nil, false},
	}
	for _, tt := range tests {
		if got := IsAllocationValid(cats(tt.pcts...)); got != tt.want {
			t.Errorf("IsAllocationValid(%v) = %v, want %v", tt.pcts, got, tt.want)
		}
	}
}

func TestClampPercentage(t *testing.T) {
	tests := []struct{ in, want float64 }{
		{-5, 0},
		{0, 0},
		{42.5, 42.5},
		{100, 100},
		{130, 100},
	}
	for _, tt := range tests {
		if got := ClampPercentage(tt.in); got != tt.want {
			t.Errorf("ClampPercentage(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
