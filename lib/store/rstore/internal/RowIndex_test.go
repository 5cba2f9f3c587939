package internal

import (
	"reflect"
	"testing"
)

// TestAppendAndPosition tests that appended keys get consecutive positions
func TestAppendAndPosition(t *testing.T) {
	ix := NewRowIndex()

	for i, key := range []string{"a", "b", "c"} {
		if p := ix.Append(key); p != i {
			t.Errorf("Append(%q) = %v, want %v", key, p, i)
		}
	}

	if ix.Len() != 3 {
		t.Errorf("Len() = %v, want 3", ix.Len())
	}

	for i, key := range []string{"a", "b", "c"} {
		p, ok := ix.PositionOf(key)
		if !ok || p != i {
			t.Errorf("PositionOf(%q) = %v, %v, want %v, true", key, p, ok, i)
		}
	}

	if _, ok := ix.PositionOf("missing"); ok {
		t.Errorf("PositionOf(missing) reported a position for an absent key")
	}
}

// TestRemove tests the renumbering of later keys
func TestRemove(t *testing.T) {
	tests := []struct {
		name      string
		remove    string
		wantPos   int
		wantKeys  []string
		positions map[string]int
	}{
		{
			name:      "First key",
			remove:    "a",
			wantPos:   0,
			wantKeys:  []string{"b", "c", "d"},
			positions: map[string]int{"b": 0, "c": 1, "d": 2},
		},
		{
			name:      "Middle key",
			remove:    "b",
			wantPos:   1,
			wantKeys:  []string{"a", "c", "d"},
			positions: map[string]int{"a": 0, "c": 1, "d": 2},
		},
		{
			name:      "Last key",
			remove:    "d",
			wantPos:   3,
			wantKeys:  []string{"a", "b", "c"},
			positions: map[string]int{"a": 0, "b": 1, "c": 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ix := NewRowIndex()
			for _, key := range []string{"a", "b", "c", "d"} {
				ix.Append(key)
			}

			p, ok := ix.Remove(tt.remove)
			if !ok || p != tt.wantPos {
				t.Fatalf("Remove(%q) = %v, %v, want %v, true", tt.remove, p, ok, tt.wantPos)
			}

			if got := ix.Keys(); !reflect.DeepEqual(got, tt.wantKeys) {
				t.Errorf("Keys() = %v, want %v", got, tt.wantKeys)
			}

			for key, want := range tt.positions {
				if got, ok := ix.PositionOf(key); !ok || got != want {
					t.Errorf("PositionOf(%q) = %v, %v, want %v, true", key, got, ok, want)
				}
			}

			if _, ok := ix.PositionOf(tt.remove); ok {
				t.Errorf("Removed key %q still has a position", tt.remove)
			}
		})
	}
}

// TestRemoveAbsent tests that removing an unknown key is a no-op
func TestRemoveAbsent(t *testing.T) {
	ix := NewRowIndex()
	ix.Append("a")

	if _, ok := ix.Remove("missing"); ok {
		t.Errorf("Remove(missing) reported success for an absent key")
	}
	if ix.Len() != 1 {
		t.Errorf("Len() = %v after no-op remove, want 1", ix.Len())
	}
}

// TestKeysIsCopy tests that mutating the returned slice leaves the index intact
func TestKeysIsCopy(t *testing.T) {
	ix := NewRowIndex()
	ix.Append("a")
	ix.Append("b")

	keys := ix.Keys()
	keys[0] = "tampered"

	if got := ix.Keys(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("Keys() = %v after caller mutation, want [a b]", got)
	}
}

// TestClear tests that a cleared index can be reused
func TestClear(t *testing.T) {
	ix := NewRowIndex()
	ix.Append("a")
	ix.Append("b")

	ix.Clear()

	if ix.Len() != 0 {
		t.Errorf("Len() = %v after Clear, want 0", ix.Len())
	}
	if _, ok := ix.PositionOf("a"); ok {
		t.Errorf("PositionOf(a) reported a position after Clear")
	}
	if p := ix.Append("x"); p != 0 {
		t.Errorf("Append after Clear = %v, want 0", p)
	}
}
