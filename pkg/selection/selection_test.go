package selection

import (
	"errors"
	"testing"
)

// mustNew creates a selection or fails the test.
func mustNew(t *testing.T, shape [3]int) *Selection {
	t.Helper()
	s, err := New(shape)
	if err != nil {
		t.Fatalf("Failed to create selection: %v", err)
	}
	return s
}

// onesBlock returns an all-ones block of the given shape.
func onesBlock(shape [3]int) *Block {
	b := NewBlock(shape)
	for i := range b.Data {
		b.Data[i] = 1
	}
	return b
}

func TestNewRejectsNegativeShape(t *testing.T) {
	if _, err := New([3]int{10, -1, 10}); err == nil {
		t.Fatal("expected an error for a negative dimension")
	}
}

func TestNewFromMask(t *testing.T) {
	shape := [3]int{4, 4, 4}

	t.Run("WrongLength", func(t *testing.T) {
		_, err := NewFromMask(shape, make([]uint8, 10))
		var incompatible *IncompatibleArrayError
		if !errors.As(err, &incompatible) {
			t.Fatalf("error = %v, want IncompatibleArrayError", err)
		}
	})

	t.Run("BadValues", func(t *testing.T) {
		mask := make([]uint8, 64)
		mask[3] = 2
		_, err := NewFromMask(shape, mask)
		var incompatible *IncompatibleArrayError
		if !errors.As(err, &incompatible) {
			t.Fatalf("error = %v, want IncompatibleArrayError", err)
		}
	})

	t.Run("TakesOwnership", func(t *testing.T) {
		mask := make([]uint8, 64)
		mask[0] = 1
		s, err := NewFromMask(shape, mask)
		if err != nil {
			t.Fatalf("NewFromMask failed: %v", err)
		}
		if !s.Selected(0, 0, 0) {
			t.Error("voxel (0,0,0) should be selected")
		}
		if s.SelectionSize() != 1 {
			t.Errorf("selection size = %d, want 1", s.SelectionSize())
		}
	})
}

// TestSelectBlockConcrete verifies the concrete block-select law: a size-3
// block at (5,5,5) selects exactly the 27 voxels with coordinates in {4,5,6}.
func TestSelectBlockConcrete(t *testing.T) {
	s := mustNew(t, [3]int{10, 10, 10})

	if err := s.SelectBlock([3]int{5, 5, 5}, 3, []int{0, 1, 2}); err != nil {
		t.Fatalf("SelectBlock failed: %v", err)
	}

	if got := s.SelectionSize(); got != 27 {
		t.Errorf("selection size = %d, want 27", got)
	}

	in := func(c int) bool { return c >= 4 && c <= 6 }
	for z := 0; z < 10; z++ {
		for y := 0; y < 10; y++ {
			for x := 0; x < 10; x++ {
				want := in(x) && in(y) && in(z)
				if got := s.Selected(x, y, z); got != want {
					t.Errorf("voxel (%d,%d,%d) selected = %v, want %v", x, y, z, got, want)
				}
			}
		}
	}
}

// TestZeroBlockNoOp verifies that every mutator treats a zero-sized block as
// a complete no-op: neither the mask nor the change record move.
func TestZeroBlockNoOp(t *testing.T) {
	s := mustNew(t, [3]int{5, 5, 5})
	if err := s.SelectBlock([3]int{2, 2, 2}, 2, []int{0, 1, 2}); err != nil {
		t.Fatalf("SelectBlock failed: %v", err)
	}

	before := s.MaskCopy()
	record := s.LastChange()
	empty := &Block{}

	notified := false
	s.Register("test", func() { notified = true })

	mutators := map[string]func() error{
		"SetSelection":        func() error { return s.SetSelection(empty, [3]int{1, 1, 1}) },
		"ReplaceSelection":    func() error { return s.ReplaceSelection(empty, [3]int{1, 1, 1}) },
		"AddToSelection":      func() error { return s.AddToSelection(empty, [3]int{1, 1, 1}) },
		"RemoveFromSelection": func() error { return s.RemoveFromSelection(empty, [3]int{1, 1, 1}) },
	}

	for name, mutate := range mutators {
		if err := mutate(); err != nil {
			t.Errorf("%s with empty block returned error: %v", name, err)
		}
	}

	after := s.MaskCopy()
	for i := range before {
		if before[i] != after[i] {
			t.Fatal("mask changed after zero-sized mutations")
		}
	}
	if s.LastChange() != record {
		t.Error("change record was updated by a zero-sized mutation")
	}
	if notified {
		t.Error("listeners fired for a zero-sized mutation")
	}
}

// TestInverseLaw verifies that adding then removing the same block returns an
// all-clear mask to all-clear.
func TestInverseLaw(t *testing.T) {
	s := mustNew(t, [3]int{8, 8, 8})
	b := onesBlock([3]int{3, 2, 4})
	offset := [3]int{2, 3, 1}

	if err := s.AddToSelection(b, offset); err != nil {
		t.Fatalf("AddToSelection failed: %v", err)
	}
	if s.SelectionSize() != 24 {
		t.Fatalf("selection size = %d, want 24", s.SelectionSize())
	}

	if err := s.RemoveFromSelection(b, offset); err != nil {
		t.Fatalf("RemoveFromSelection failed: %v", err)
	}
	if s.SelectionSize() != 0 {
		t.Errorf("selection size after inverse = %d, want 0", s.SelectionSize())
	}
}

func TestSetSelectionRecord(t *testing.T) {
	s := mustNew(t, [3]int{6, 6, 6})
	if err := s.SelectBlock([3]int{2, 2, 2}, 2, []int{0, 1, 2}); err != nil {
		t.Fatalf("SelectBlock failed: %v", err)
	}

	b := NewBlock([3]int{2, 2, 2})
	b.Set(0, 0, 0, 1)
	offset := [3]int{2, 2, 2}

	if err := s.SetSelection(b, offset); err != nil {
		t.Fatalf("SetSelection failed: %v", err)
	}

	change := s.LastChange()
	if change == nil {
		t.Fatal("no change record after SetSelection")
	}
	if change.Offset != offset {
		t.Errorf("record offset = %v, want %v", change.Offset, offset)
	}
	if change.Old.Shape != b.Shape || change.New.Shape != b.Shape {
		t.Errorf("record shapes = %v/%v, want %v", change.Old.Shape, change.New.Shape, b.Shape)
	}

	// The previous block selection filled this region; the set overwrote
	// everything but (2,2,2).
	if change.Old.At(0, 0, 0) != 1 || change.Old.At(1, 1, 1) != 1 {
		t.Error("old snapshot should hold the pre-mutation values")
	}
	if change.New.At(0, 0, 0) != 1 || change.New.At(1, 1, 1) != 0 {
		t.Error("new snapshot should hold the post-mutation values")
	}
}

// TestRemoveIsMaskedClear verifies that RemoveFromSelection only clears
// voxels where the block is non-zero.
func TestRemoveIsMaskedClear(t *testing.T) {
	s := mustNew(t, [3]int{4, 4, 4})
	if err := s.AddToSelection(onesBlock([3]int{2, 2, 2}), [3]int{0, 0, 0}); err != nil {
		t.Fatalf("AddToSelection failed: %v", err)
	}

	// Only one non-zero voxel in the removal block.
	b := NewBlock([3]int{2, 2, 2})
	b.Set(0, 0, 0, 1)
	if err := s.RemoveFromSelection(b, [3]int{0, 0, 0}); err != nil {
		t.Fatalf("RemoveFromSelection failed: %v", err)
	}

	if s.Selected(0, 0, 0) {
		t.Error("voxel (0,0,0) should have been deselected")
	}
	if !s.Selected(1, 0, 0) || !s.Selected(1, 1, 1) {
		t.Error("voxels under zero block values must stay selected")
	}
}

// TestReplaceRecordCoversWholeMask verifies the replace semantics: the change
// record describes the entire mask at offset (0,0,0), so the discarded prior
// selection is recoverable.
func TestReplaceRecordCoversWholeMask(t *testing.T) {
	shape := [3]int{5, 5, 5}
	s := mustNew(t, shape)
	if err := s.SelectBlock([3]int{0, 0, 0}, 1, []int{0, 1, 2}); err != nil {
		t.Fatalf("SelectBlock failed: %v", err)
	}

	if err := s.ReplaceSelection(onesBlock([3]int{1, 1, 1}), [3]int{4, 4, 4}); err != nil {
		t.Fatalf("ReplaceSelection failed: %v", err)
	}

	if s.Selected(0, 0, 0) {
		t.Error("prior selection must be discarded by a replace")
	}
	if !s.Selected(4, 4, 4) {
		t.Error("replaced region should be selected")
	}

	change := s.LastChange()
	if change.Offset != [3]int{0, 0, 0} {
		t.Errorf("record offset = %v, want (0,0,0)", change.Offset)
	}
	if change.Old.Shape != shape || change.New.Shape != shape {
		t.Errorf("record shapes = %v/%v, want %v", change.Old.Shape, change.New.Shape, shape)
	}
	if change.Old.At(0, 0, 0) != 1 {
		t.Error("old snapshot should record the discarded selection")
	}
	if change.New.At(4, 4, 4) != 1 || change.New.At(0, 0, 0) != 0 {
		t.Error("new snapshot should record the replacement")
	}
}

// TestClearIdempotent verifies that a second consecutive clear is a no-op:
// no change record update, no notification.
func TestClearIdempotent(t *testing.T) {
	s := mustNew(t, [3]int{4, 4, 4})
	if err := s.SelectBlock([3]int{1, 1, 1}, 2, []int{0, 1, 2}); err != nil {
		t.Fatalf("SelectBlock failed: %v", err)
	}

	notifications := 0
	s.Register("count", func() { notifications++ })

	s.ClearSelection()
	if s.SelectionSize() != 0 {
		t.Fatalf("selection size after clear = %d, want 0", s.SelectionSize())
	}
	first := s.LastChange()
	if first == nil || first.Offset != [3]int{0, 0, 0} || first.Old.Shape != s.Shape() {
		t.Fatal("clear should record a whole-mask change at offset (0,0,0)")
	}
	if notifications != 1 {
		t.Fatalf("notifications after first clear = %d, want 1", notifications)
	}

	s.ClearSelection()
	if s.LastChange() != first {
		t.Error("second clear must not update the change record")
	}
	if notifications != 1 {
		t.Errorf("notifications after second clear = %d, want 1", notifications)
	}

	// Any other mutation re-arms the clear.
	if err := s.SelectBlock([3]int{1, 1, 1}, 2, []int{0, 1, 2}); err != nil {
		t.Fatalf("SelectBlock failed: %v", err)
	}
	s.ClearSelection()
	if notifications != 3 {
		t.Errorf("notifications = %d, want 3", notifications)
	}
}

// TestChangeRecordSnapshots verifies that change record blocks do not alias
// the live mask.
func TestChangeRecordSnapshots(t *testing.T) {
	s := mustNew(t, [3]int{4, 4, 4})
	if err := s.AddToSelection(onesBlock([3]int{2, 2, 2}), [3]int{0, 0, 0}); err != nil {
		t.Fatalf("AddToSelection failed: %v", err)
	}

	record := s.LastChange()
	s.ClearSelection()

	if record.New.At(0, 0, 0) != 1 {
		t.Error("change record must be a snapshot, not an alias of the mask")
	}
}

func TestInvalidBlock(t *testing.T) {
	s := mustNew(t, [3]int{4, 4, 4})

	cases := map[string]struct {
		block  *Block
		offset [3]int
	}{
		"NilBlock":       {nil, [3]int{0, 0, 0}},
		"NegativeOffset": {onesBlock([3]int{2, 2, 2}), [3]int{-1, 0, 0}},
		"OutOfBounds":    {onesBlock([3]int{2, 2, 2}), [3]int{3, 3, 3}},
		"ShortData":      {&Block{Shape: [3]int{2, 2, 2}, Data: make([]uint8, 4)}, [3]int{0, 0, 0}},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			err := s.AddToSelection(tc.block, tc.offset)
			var invalid *InvalidBlockError
			if !errors.As(err, &invalid) {
				t.Fatalf("error = %v, want InvalidBlockError", err)
			}
			if s.SelectionSize() != 0 || s.LastChange() != nil {
				t.Error("failed mutation must not change observable state")
			}
		})
	}
}

func TestNotifications(t *testing.T) {
	s := mustNew(t, [3]int{4, 4, 4})

	count := 0
	s.Register("count", func() { count++ })

	if err := s.SelectBlock([3]int{1, 1, 1}, 2, []int{0, 1, 2}); err != nil {
		t.Fatalf("SelectBlock failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("notifications = %d, want 1", count)
	}

	t.Run("SuspendCoalesces", func(t *testing.T) {
		s.SuspendNotifications()
		if err := s.SelectBlock([3]int{2, 2, 2}, 2, []int{0, 1, 2}); err != nil {
			t.Fatalf("SelectBlock failed: %v", err)
		}
		s.ClearSelection()
		if count != 1 {
			t.Fatalf("notifications during suspension = %d, want 1", count)
		}

		s.ResumeNotifications()
		if count != 2 {
			t.Errorf("notifications after resume = %d, want 2", count)
		}

		// A resume with no suspended mutation fires nothing.
		s.SuspendNotifications()
		s.ResumeNotifications()
		if count != 2 {
			t.Errorf("notifications after idle suspend/resume = %d, want 2", count)
		}
	})

	t.Run("Deregister", func(t *testing.T) {
		s.Deregister("count")
		if err := s.SelectBlock([3]int{1, 1, 1}, 2, []int{0, 1, 2}); err != nil {
			t.Fatalf("SelectBlock failed: %v", err)
		}
		if count != 2 {
			t.Errorf("deregistered listener still fired: count = %d", count)
		}
	})
}

func TestTransferSelectionUnimplemented(t *testing.T) {
	s := mustNew(t, [3]int{4, 4, 4})
	if err := s.TransferSelection(nil); !errors.Is(err, ErrUnimplemented) {
		t.Errorf("TransferSelection error = %v, want ErrUnimplemented", err)
	}
}

func TestMaskCopyIsSnapshot(t *testing.T) {
	s := mustNew(t, [3]int{3, 3, 3})
	snap := s.MaskCopy()
	if err := s.SelectBlock([3]int{1, 1, 1}, 1, []int{0, 1, 2}); err != nil {
		t.Fatalf("SelectBlock failed: %v", err)
	}
	for _, v := range snap {
		if v != 0 {
			t.Fatal("MaskCopy must not alias the live mask")
		}
	}
}
