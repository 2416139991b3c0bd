package history

import (
	"errors"
	"testing"

	"github.com/dshills/undocalc/internal/engine/accumulator"
)

// Helper to create a history with an observer that records every value
func newTestHistory(opts ...Option) (*History, *[]int64) {
	acc := accumulator.New(0)
	var values []int64
	acc.Attach(accumulator.ObserverFunc(func(c accumulator.Change) {
		values = append(values, c.Value)
	}))
	return New(acc, opts...), &values
}

func mustCompute(t *testing.T, h *History, op accumulator.Operator, operand int64) {
	t.Helper()
	if err := h.Compute(op, operand); err != nil {
		t.Fatalf("Compute(%v, %d) failed: %v", op, operand, err)
	}
}

func equalValues(got, want []int64) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

// fakeCommand counts calls and can be told to fail.
type fakeCommand struct {
	executed    int
	unexecuted  int
	failExecute bool
	failUndo    bool
}

func (f *fakeCommand) Execute() error {
	if f.failExecute {
		return errors.New("execute failed")
	}
	f.executed++
	return nil
}

func (f *fakeCommand) Unexecute() error {
	if f.failUndo {
		return errors.New("unexecute failed")
	}
	f.unexecuted++
	return nil
}

func (f *fakeCommand) Description() string { return "fake" }

// Scenario Tests

func TestCalculatorScenario(t *testing.T) {
	h, values := newTestHistory()

	mustCompute(t, h, accumulator.Add, 100)
	mustCompute(t, h, accumulator.Subtract, 50)
	mustCompute(t, h, accumulator.Multiply, 10)
	mustCompute(t, h, accumulator.Divide, 2)

	if !equalValues(*values, []int64{100, 50, 500, 250}) {
		t.Fatalf("compute values = %v", *values)
	}

	*values = nil
	n, err := h.Undo(4)
	if err != nil {
		t.Fatalf("Undo failed: %v", err)
	}
	if n != 4 {
		t.Errorf("Undo(4) undid %d, want 4", n)
	}
	if !equalValues(*values, []int64{500, 50, 100, 0}) {
		t.Errorf("undo values = %v, want [500 50 100 0]", *values)
	}
	if h.Cursor() != 0 {
		t.Errorf("cursor = %d, want 0", h.Cursor())
	}

	*values = nil
	n, err = h.Redo(3)
	if err != nil {
		t.Fatalf("Redo failed: %v", err)
	}
	if n != 3 {
		t.Errorf("Redo(3) redid %d, want 3", n)
	}
	if !equalValues(*values, []int64{100, 50, 500}) {
		t.Errorf("redo values = %v, want [100 50 500]", *values)
	}

	// The last compute sits past the reference boundary
	*values = nil
	n, err = h.Redo(1)
	if err != nil {
		t.Fatalf("Redo failed: %v", err)
	}
	if n != 0 || len(*values) != 0 {
		t.Errorf("Redo(1) at boundary redid %d (values %v), want 0", n, *values)
	}
	if got := h.Accumulator().Value(); got != 500 {
		t.Errorf("value = %d, want 500", got)
	}
}

func TestCalculatorScenarioExactBoundary(t *testing.T) {
	h, values := newTestHistory(WithRedoBoundary(BoundaryExact))

	mustCompute(t, h, accumulator.Add, 100)
	mustCompute(t, h, accumulator.Subtract, 50)
	mustCompute(t, h, accumulator.Multiply, 10)
	mustCompute(t, h, accumulator.Divide, 2)

	if _, err := h.Undo(4); err != nil {
		t.Fatalf("Undo failed: %v", err)
	}

	*values = nil
	n, err := h.Redo(4)
	if err != nil {
		t.Fatalf("Redo failed: %v", err)
	}
	if n != 4 {
		t.Errorf("Redo(4) redid %d, want 4", n)
	}
	if !equalValues(*values, []int64{100, 50, 500, 250}) {
		t.Errorf("redo values = %v, want [100 50 500 250]", *values)
	}
	if h.Cursor() != h.Len() {
		t.Errorf("cursor = %d, want %d", h.Cursor(), h.Len())
	}
}

// Undo/Redo Tests

func TestUndoRedoRoundTrip(t *testing.T) {
	ops := []struct {
		op      accumulator.Operator
		operand int64
	}{
		{accumulator.Add, 7},
		{accumulator.Multiply, 6},
		{accumulator.Subtract, 2},
		{accumulator.Multiply, -3},
		{accumulator.Add, 11},
	}

	for levels := 0; levels <= len(ops); levels++ {
		h, _ := newTestHistory(WithRedoBoundary(BoundaryExact))
		for _, o := range ops {
			mustCompute(t, h, o.op, o.operand)
		}
		before := h.Accumulator().Value()

		if n, err := h.Undo(levels); err != nil || n != levels {
			t.Fatalf("Undo(%d) = %d, %v", levels, n, err)
		}
		if n, err := h.Redo(levels); err != nil || n != levels {
			t.Fatalf("Redo(%d) = %d, %v", levels, n, err)
		}
		if got := h.Accumulator().Value(); got != before {
			t.Errorf("levels %d: value = %d, want %d", levels, got, before)
		}
	}
}

func TestReferenceBoundaryBlocksLastEntry(t *testing.T) {
	h, _ := newTestHistory()
	mustCompute(t, h, accumulator.Add, 1)
	mustCompute(t, h, accumulator.Add, 2)
	mustCompute(t, h, accumulator.Add, 3)

	// Undoing only the newest compute leaves nothing redoable
	if _, err := h.Undo(1); err != nil {
		t.Fatalf("Undo failed: %v", err)
	}
	if h.CanRedo() {
		t.Error("CanRedo should be false one entry from the end")
	}
	if n, _ := h.Redo(1); n != 0 {
		t.Errorf("Redo(1) = %d, want 0", n)
	}
	if got := h.Accumulator().Value(); got != 3 {
		t.Errorf("value = %d, want 3", got)
	}

	if _, err := h.Undo(2); err != nil {
		t.Fatalf("Undo failed: %v", err)
	}
	if got := h.RedoCount(); got != 2 {
		t.Errorf("RedoCount() = %d, want 2", got)
	}
	if n, _ := h.Redo(5); n != 2 {
		t.Errorf("Redo(5) = %d, want 2", n)
	}
	if got := h.Accumulator().Value(); got != 3 {
		t.Errorf("value = %d, want 3", got)
	}
}

func TestUndoPastStart(t *testing.T) {
	h, _ := newTestHistory()
	mustCompute(t, h, accumulator.Add, 10)
	mustCompute(t, h, accumulator.Add, 5)

	n, err := h.Undo(10)
	if err != nil {
		t.Fatalf("Undo failed: %v", err)
	}
	if n != 2 {
		t.Errorf("Undo(10) = %d, want 2", n)
	}
	if h.Cursor() != 0 {
		t.Errorf("cursor = %d, want 0", h.Cursor())
	}
	if h.Accumulator().Value() != 0 {
		t.Errorf("value = %d, want 0", h.Accumulator().Value())
	}

	n, err = h.Undo(1)
	if err != nil || n != 0 {
		t.Errorf("Undo at start = %d, %v; want 0, nil", n, err)
	}
}

func TestUndoRedoEmpty(t *testing.T) {
	h, values := newTestHistory()

	if n, err := h.Undo(3); n != 0 || err != nil {
		t.Errorf("Undo on empty = %d, %v", n, err)
	}
	if n, err := h.Redo(3); n != 0 || err != nil {
		t.Errorf("Redo on empty = %d, %v", n, err)
	}
	if len(*values) != 0 {
		t.Errorf("observer saw %v", *values)
	}
	if h.CanUndo() || h.CanRedo() {
		t.Error("empty history should have nothing to undo or redo")
	}
}

func TestNegativeLevels(t *testing.T) {
	h, _ := newTestHistory()
	mustCompute(t, h, accumulator.Add, 1)

	if n, _ := h.Undo(-1); n != 0 {
		t.Errorf("Undo(-1) = %d, want 0", n)
	}
	if h.Cursor() != 1 {
		t.Errorf("cursor = %d, want 1", h.Cursor())
	}
}

func TestComputeDropsRedoTail(t *testing.T) {
	h, _ := newTestHistory(WithRedoBoundary(BoundaryExact))
	mustCompute(t, h, accumulator.Add, 1)
	mustCompute(t, h, accumulator.Add, 2)
	mustCompute(t, h, accumulator.Add, 3)

	if _, err := h.Undo(2); err != nil {
		t.Fatalf("Undo failed: %v", err)
	}
	mustCompute(t, h, accumulator.Add, 10)

	if h.Len() != 2 {
		t.Errorf("Len() = %d, want 2", h.Len())
	}
	if h.Cursor() != 2 {
		t.Errorf("cursor = %d, want 2", h.Cursor())
	}
	if h.CanRedo() {
		t.Error("redo tail should be gone")
	}
	if got := h.Accumulator().Value(); got != 11 {
		t.Errorf("value = %d, want 11", got)
	}

	entries := h.Entries()
	if entries[0].Description != "+ 1" || entries[1].Description != "+ 10" {
		t.Errorf("entries = %+v", entries)
	}
}

// Error Tests

func TestComputeDivisionByZero(t *testing.T) {
	h, _ := newTestHistory()
	mustCompute(t, h, accumulator.Add, 9)

	err := h.Compute(accumulator.Divide, 0)
	if !errors.Is(err, accumulator.ErrDivisionByZero) {
		t.Fatalf("Compute(/, 0) error = %v, want ErrDivisionByZero", err)
	}
	if h.Len() != 1 || h.Cursor() != 1 {
		t.Errorf("log changed: len %d cursor %d", h.Len(), h.Cursor())
	}
	if h.Accumulator().Value() != 9 {
		t.Errorf("value = %d, want 9", h.Accumulator().Value())
	}
}

func TestUndoMultiplyByZero(t *testing.T) {
	h, _ := newTestHistory()
	mustCompute(t, h, accumulator.Add, 5)
	mustCompute(t, h, accumulator.Multiply, 0)

	n, err := h.Undo(2)
	if !errors.Is(err, accumulator.ErrDivisionByZero) {
		t.Fatalf("Undo error = %v, want ErrDivisionByZero", err)
	}
	if n != 0 {
		t.Errorf("Undo undid %d before failing, want 0", n)
	}
	if h.Cursor() != 2 {
		t.Errorf("cursor = %d, want 2", h.Cursor())
	}
	if h.Accumulator().Value() != 0 {
		t.Errorf("value = %d, want 0", h.Accumulator().Value())
	}
}

func TestComputeInvalidOperator(t *testing.T) {
	h, _ := newTestHistory()
	err := h.Compute(accumulator.Operator(0), 1)
	if !errors.Is(err, accumulator.ErrInvalidOperator) {
		t.Errorf("Compute with invalid operator error = %v", err)
	}
	if h.Len() != 0 {
		t.Errorf("Len() = %d, want 0", h.Len())
	}
}

func TestRedoFailureKeepsCursor(t *testing.T) {
	h, _ := newTestHistory(WithRedoBoundary(BoundaryExact))
	first := &fakeCommand{}
	second := &fakeCommand{}
	if err := h.Execute(first); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if err := h.Execute(second); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if _, err := h.Undo(2); err != nil {
		t.Fatalf("Undo failed: %v", err)
	}

	second.failExecute = true
	n, err := h.Redo(2)
	if err == nil {
		t.Fatal("Redo should fail on second entry")
	}
	if n != 1 {
		t.Errorf("Redo redid %d before failing, want 1", n)
	}
	if h.Cursor() != 1 {
		t.Errorf("cursor = %d, want 1", h.Cursor())
	}
}

func TestExecuteNil(t *testing.T) {
	h, _ := newTestHistory()
	if err := h.Execute(nil); !errors.Is(err, ErrNilCommand) {
		t.Errorf("Execute(nil) error = %v", err)
	}
}

func TestExecuteFailureNotRecorded(t *testing.T) {
	h, _ := newTestHistory()
	if err := h.Execute(&fakeCommand{failExecute: true}); err == nil {
		t.Fatal("expected error")
	}
	if h.Len() != 0 {
		t.Errorf("Len() = %d, want 0", h.Len())
	}
}

// Log Management Tests

func TestMaxEntries(t *testing.T) {
	h, _ := newTestHistory(WithMaxEntries(3))
	for i := int64(1); i <= 5; i++ {
		mustCompute(t, h, accumulator.Add, i)
	}

	if h.Len() != 3 {
		t.Errorf("Len() = %d, want 3", h.Len())
	}
	if h.Cursor() != 3 {
		t.Errorf("cursor = %d, want 3", h.Cursor())
	}

	n, _ := h.Undo(10)
	if n != 3 {
		t.Errorf("Undo(10) = %d, want 3", n)
	}
	// 15 - (5 + 4 + 3)
	if got := h.Accumulator().Value(); got != 3 {
		t.Errorf("value = %d, want 3", got)
	}
}

func TestSetMaxEntries(t *testing.T) {
	h, _ := newTestHistory()
	for i := int64(0); i < 10; i++ {
		mustCompute(t, h, accumulator.Add, 1)
	}

	h.SetMaxEntries(4)
	if h.Len() != 4 || h.Cursor() != 4 {
		t.Errorf("after SetMaxEntries: len %d cursor %d", h.Len(), h.Cursor())
	}
	if h.MaxEntries() != 4 {
		t.Errorf("MaxEntries() = %d, want 4", h.MaxEntries())
	}

	h.SetMaxEntries(0)
	if h.MaxEntries() != DefaultMaxEntries {
		t.Errorf("MaxEntries() = %d, want default", h.MaxEntries())
	}
}

func TestClear(t *testing.T) {
	h, _ := newTestHistory()
	mustCompute(t, h, accumulator.Add, 4)
	mustCompute(t, h, accumulator.Add, 4)

	h.Clear()

	if h.Len() != 0 || h.Cursor() != 0 {
		t.Errorf("after Clear: len %d cursor %d", h.Len(), h.Cursor())
	}
	if h.Accumulator().Value() != 8 {
		t.Errorf("Clear should not touch the value, got %d", h.Accumulator().Value())
	}
}

func TestEntries(t *testing.T) {
	h, _ := newTestHistory()
	mustCompute(t, h, accumulator.Add, 100)
	mustCompute(t, h, accumulator.Multiply, 2)
	mustCompute(t, h, accumulator.Subtract, 1)
	if _, err := h.Undo(1); err != nil {
		t.Fatalf("Undo failed: %v", err)
	}

	entries := h.Entries()
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}
	wantDesc := []string{"+ 100", "* 2", "- 1"}
	wantApplied := []bool{true, true, false}
	for i, e := range entries {
		if e.Description != wantDesc[i] {
			t.Errorf("entry %d description = %q, want %q", i, e.Description, wantDesc[i])
		}
		if e.Applied != wantApplied[i] {
			t.Errorf("entry %d applied = %v, want %v", i, e.Applied, wantApplied[i])
		}
		if e.Timestamp.IsZero() {
			t.Errorf("entry %d has no timestamp", i)
		}
	}
}

func TestPeek(t *testing.T) {
	h, _ := newTestHistory(WithRedoBoundary(BoundaryExact))

	if _, ok := h.PeekUndo(); ok {
		t.Error("PeekUndo on empty history should return false")
	}

	mustCompute(t, h, accumulator.Add, 3)
	mustCompute(t, h, accumulator.Multiply, 4)

	info, ok := h.PeekUndo()
	if !ok || info.Description != "* 4" {
		t.Errorf("PeekUndo = %+v, %v", info, ok)
	}
	if _, ok := h.PeekRedo(); ok {
		t.Error("PeekRedo should return false at end of log")
	}

	_, _ = h.Undo(1)
	info, ok = h.PeekRedo()
	if !ok || info.Description != "* 4" {
		t.Errorf("PeekRedo = %+v, %v", info, ok)
	}
}

func TestParseRedoBoundary(t *testing.T) {
	tests := []struct {
		in   string
		want RedoBoundary
		ok   bool
	}{
		{"reference", BoundaryReference, true},
		{"exact", BoundaryExact, true},
		{"", BoundaryReference, false},
		{"bogus", BoundaryReference, false},
	}

	for _, tt := range tests {
		got, ok := ParseRedoBoundary(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseRedoBoundary(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
	if BoundaryExact.String() != "exact" || BoundaryReference.String() != "reference" {
		t.Error("RedoBoundary.String mismatch")
	}
}

func TestObserverCanReadHistory(t *testing.T) {
	acc := accumulator.New(0)
	h := New(acc)
	var cursors []int
	acc.Attach(accumulator.ObserverFunc(func(accumulator.Change) {
		cursors = append(cursors, h.Cursor())
	}))

	mustCompute(t, h, accumulator.Add, 1)
	mustCompute(t, h, accumulator.Add, 1)
	_, _ = h.Undo(1)

	// Compute reports before recording, undo after moving the cursor
	want := []int{0, 1, 1}
	if len(cursors) != len(want) {
		t.Fatalf("cursors = %v, want %v", cursors, want)
	}
	for i := range want {
		if cursors[i] != want[i] {
			t.Errorf("cursors = %v, want %v", cursors, want)
			break
		}
	}
}
