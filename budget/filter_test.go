package budget

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
)

// Capacity 1.0, consume 0.5 -> Continue remaining 0.5, consume 0.6 ->
// OutOfBudget remaining 0.5.
func TestFilter_PureDPArithmetic(t *testing.T) {
	f := NewFilter(Finite(1.0))

	status := f.CheckAndConsume(Finite(0.5))
	assert.Equal(t, Continue, status)
	assert.Equal(t, Finite(0.5), f.RemainingBudget())

	status = f.CheckAndConsume(Finite(0.6))
	assert.Equal(t, OutOfBudget, status)
	assert.Equal(t, Finite(0.5), f.RemainingBudget())
}

func TestFilter_InfiniteFilterAlwaysContinues(t *testing.T) {
	f := NewFilter(Infinite())

	assert.Equal(t, Continue, f.CheckAndConsume(Finite(1e9)))
	assert.Equal(t, Continue, f.CheckAndConsume(Infinite()))
	assert.True(t, f.RemainingBudget().IsInfinite())
}

func TestFilter_FiniteFilterRejectsInfiniteRequest(t *testing.T) {
	f := NewFilter(Finite(3.0))

	status := f.CheckAndConsume(Infinite())
	assert.Equal(t, OutOfBudget, status)
	assert.Equal(t, Finite(3.0), f.RemainingBudget())
}

func TestFilter_ExactBoundaryConsumesToZero(t *testing.T) {
	f := NewFilter(Finite(2.0))

	assert.Equal(t, Continue, f.CheckAndConsume(Finite(2.0)))
	assert.Equal(t, Finite(0.0), f.RemainingBudget())
	assert.Equal(t, OutOfBudget, f.CheckAndConsume(Finite(0.0000001)))
}

// TestFilter_Conservation checks the core pure-DP accounting invariant:
// after any sequence of check-and-consume calls, the sum of successful
// debits never exceeds capacity, and remaining == capacity - sum(successful
// debits).
func TestFilter_Conservation(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	properties := gopter.NewProperties(parameters)

	properties.Property("remaining = capacity - sum(successful debits)", prop.ForAll(
		func(capacity float64, requests []float64) bool {
			f := NewFilter(Finite(capacity))
			var spent float64
			for _, r := range requests {
				if r < 0 {
					r = -r
				}
				status := f.CheckAndConsume(Finite(r))
				if status == Continue {
					spent += r
				}
			}
			remaining := f.RemainingBudget()
			if remaining.IsInfinite() {
				return false
			}
			const eps = 1e-9
			diff := remaining.Epsilon() - (capacity - spent)
			if diff < 0 {
				diff = -diff
			}
			return diff < eps && remaining.Epsilon() >= -eps
		},
		gen.Float64Range(0, 1000),
		gen.SliceOf(gen.Float64Range(0, 100)),
	))

	properties.TestingRun(t)
}

// TestFilter_OutOfBudgetNeverMutates checks that a rejected request never
// changes the filter's remaining budget.
func TestFilter_OutOfBudgetNeverMutates(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	properties := gopter.NewProperties(parameters)

	properties.Property("OutOfBudget leaves remaining unchanged", prop.ForAll(
		func(capacity, request float64) bool {
			if request <= capacity {
				// Not the case under test; skip by trivially passing.
				return true
			}
			f := NewFilter(Finite(capacity))
			before := f.RemainingBudget()
			status := f.CheckAndConsume(Finite(request))
			return status == OutOfBudget && f.RemainingBudget().Equal(before)
		},
		gen.Float64Range(0, 100),
		gen.Float64Range(0, 1000),
	))

	properties.TestingRun(t)
}

// FuzzFilterCheckAndConsume exercises the never-negative invariant the way
// the teacher's Fuzz_JSONCodec_Decode_Unpack fuzzes the codec: throw
// arbitrary sequences of requests at a filter and assert the invariant
// never breaks, regardless of how implausible the inputs are.
func FuzzFilterCheckAndConsume(f *testing.F) {
	f.Add(1.0, 0.5, 0.6)
	f.Add(0.0, 0.0, 0.0)
	f.Add(3.0, 1.0, 1.0)

	f.Fuzz(func(t *testing.T, capacity, r1, r2 float64) {
		if capacity < 0 || r1 < 0 || r2 < 0 {
			t.Skip()
		}
		filt := NewFilter(Finite(capacity))
		filt.CheckAndConsume(Finite(r1))
		filt.CheckAndConsume(Finite(r2))
		remaining := filt.RemainingBudget()
		if remaining.IsInfinite() {
			t.Fatal("finite filter became infinite")
		}
		if remaining.Epsilon() < -1e-9 {
			t.Fatalf("remaining went negative: %v", remaining.Epsilon())
		}
	})
}
