package fixedpoint

import "testing"

func TestFromIntToInt(t *testing.T) {
	if got := FromInt(3); got != 48 {
		t.Fatalf("FromInt(3) = %d, want 48", got)
	}
	if got := ToInt(48); got != 3 {
		t.Fatalf("ToInt(48) = %d, want 3", got)
	}
}

func TestMulDiv(t *testing.T) {
	if got := MulDiv(1<<40, 3, 2); got != (1<<40)*3/2 {
		t.Fatalf("MulDiv overflowed or mismatched: %d", got)
	}
}

func TestNarrow(t *testing.T) {
	if n, ok := Narrow(12345); !ok || n != 12345 {
		t.Fatalf("Narrow(12345) = (%d,%v)", n, ok)
	}
	if _, ok := Narrow(int64(1) << 40); ok {
		t.Fatalf("Narrow should reject overflowing value")
	}
}

func TestNarrowClamp(t *testing.T) {
	if got := NarrowClamp(int64(1) << 40); got != (1<<31 - 1) {
		t.Fatalf("NarrowClamp overflow = %d", got)
	}
	if got := NarrowClamp(-(int64(1) << 40)); got != -(1 << 31) {
		t.Fatalf("NarrowClamp underflow = %d", got)
	}
}
