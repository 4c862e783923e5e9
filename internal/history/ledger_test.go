package history

import (
	"fmt"
	"testing"

	"archedit/internal/domain"
)

func step(n int) Step {
	return Step{Image: domain.BlobRef{Key: fmt.Sprintf("k%d", n)}, Instruction: fmt.Sprintf("edit %d", n)}
}

func TestNewLedgerIsEmpty(t *testing.T) {
	l := NewLedger()
	if l.Len() != 0 || l.Pointer() != -1 {
		t.Fatalf("len=%d pointer=%d", l.Len(), l.Pointer())
	}
	if _, ok := l.Current(); ok {
		t.Fatal("empty ledger has no current step")
	}
}

func TestAppendTruncatesAfterPointer(t *testing.T) {
	for n := 1; n <= 5; n++ {
		for p := 0; p < n; p++ {
			t.Run(fmt.Sprintf("n=%d p=%d", n, p), func(t *testing.T) {
				l := NewLedger()
				for i := 0; i < n; i++ {
					l.Append(step(i))
				}
				if _, ok := l.Select(p); !ok {
					t.Fatalf("Select(%d) failed", p)
				}
				l.Append(step(99))
				if l.Len() != p+2 {
					t.Fatalf("len = %d, want %d", l.Len(), p+2)
				}
				if l.Pointer() != p+1 {
					t.Fatalf("pointer = %d, want %d", l.Pointer(), p+1)
				}
				steps := l.Steps()
				for i := 0; i <= p; i++ {
					if steps[i] != step(i) {
						t.Fatalf("step %d = %+v, want %+v", i, steps[i], step(i))
					}
				}
				if steps[p+1] != step(99) {
					t.Fatalf("last step = %+v", steps[p+1])
				}
			})
		}
	}
}

func TestSelectOutOfRangeIsNoop(t *testing.T) {
	l := NewLedger()
	l.Append(step(0))
	l.Append(step(1))
	for _, i := range []int{-1, 2, 10} {
		if _, ok := l.Select(i); ok {
			t.Fatalf("Select(%d) succeeded", i)
		}
		if l.Pointer() != 1 || l.Len() != 2 {
			t.Fatalf("Select(%d) changed ledger: pointer=%d len=%d", i, l.Pointer(), l.Len())
		}
	}
	got, ok := l.Select(0)
	if !ok || got != step(0) || l.Pointer() != 0 {
		t.Fatalf("Select(0) = %+v %v pointer=%d", got, ok, l.Pointer())
	}
}

func TestStepsReturnsCopy(t *testing.T) {
	l := NewLedger()
	l.Append(step(0))
	steps := l.Steps()
	steps[0].Instruction = "mutated"
	if cur, _ := l.Current(); cur.Instruction != "edit 0" {
		t.Fatalf("ledger mutated through copy: %+v", cur)
	}
}

func TestReset(t *testing.T) {
	l := NewLedger()
	l.Append(step(0))
	l.Append(step(1))
	l.Reset()
	if l.Len() != 0 || l.Pointer() != -1 {
		t.Fatalf("after reset len=%d pointer=%d", l.Len(), l.Pointer())
	}
	l.Append(step(2))
	if l.Len() != 1 || l.Pointer() != 0 {
		t.Fatalf("append after reset len=%d pointer=%d", l.Len(), l.Pointer())
	}
}
