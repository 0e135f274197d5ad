package irtype

import "testing"

func TestLcaReflexive(t *testing.T) {
	for _, ty := range []Type{Int32, Double, Bool, Any} {
		if got := Lca(ty, ty); got != ty {
			t.Errorf("Lca(%s, %s) = %s, want %s", ty, ty, got, ty)
		}
	}
}

func TestLcaWithAny(t *testing.T) {
	if got := Lca(Any, Int32); got != Any {
		t.Errorf("Lca(Any, Int32) = %s, want Any", got)
	}
}

func TestLcaCommutative(t *testing.T) {
	pairs := [][2]Type{{Int8, Double}, {Single, Int32}, {Bool, Char}}
	for _, p := range pairs {
		a, b := Lca(p[0], p[1]), Lca(p[1], p[0])
		if a != b {
			t.Errorf("Lca not commutative for %s/%s: %s vs %s", p[0], p[1], a, b)
		}
	}
}

func TestLcaIntegerWidening(t *testing.T) {
	if got := Lca(Int8, Int32); got != Int32 {
		t.Errorf("Lca(Int8, Int32) = %s, want Int32", got)
	}
	if got := Lca(Int8, Uint8); got != Any {
		t.Errorf("Lca(Int8, Uint8) = %s, want Any (disjoint integer families)", got)
	}
}

func TestPointerRoundTrip(t *testing.T) {
	p, ok := PointerTo(Double)
	if !ok {
		t.Fatal("expected a pointer type for Double")
	}
	base, ok := p.PointeeOf()
	if !ok || base != Double {
		t.Errorf("PointeeOf(PointerTo(Double)) = (%s, %v), want (Double, true)", base, ok)
	}
}
