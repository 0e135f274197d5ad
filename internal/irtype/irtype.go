// Package irtype implements the closed IR scalar/pointer type set (§6.2) and
// the join-semilattice used to compute least-common-ancestor types for
// conversion insertion and phi result typing (§4.2).
package irtype

// Type is a member of the closed IR type set. Every Type other than Any has
// exactly one parent in the lattice; Any is the lattice root.
type Type uint

const (
	Any Type = iota
	Void

	Single
	Double
	LongDouble

	Int8
	Int16
	Int32
	Int64
	Uint8
	Uint16
	Uint32
	Uint64

	Char
	Wchar
	Char16
	Char32

	Bool

	Complex64  // complex<single>
	Complex128 // complex<double>

	PtrSingle
	PtrDouble
	PtrLongDouble
	PtrInt8
	PtrInt16
	PtrInt32
	PtrInt64
	PtrUint8
	PtrUint16
	PtrUint32
	PtrUint64
	PtrChar
	PtrWchar
	PtrChar16
	PtrChar32
	PtrBool
	PtrComplex64
	PtrComplex128
)

var names = map[Type]string{
	Any: "any", Void: "void",
	Single: "single", Double: "double", LongDouble: "long double",
	Int8: "int8", Int16: "int16", Int32: "int32", Int64: "int64",
	Uint8: "uint8", Uint16: "uint16", Uint32: "uint32", Uint64: "uint64",
	Char: "char", Wchar: "wchar", Char16: "char16", Char32: "char32",
	Bool:       "bool",
	Complex64:  "complex<single>",
	Complex128: "complex<double>",

	PtrSingle: "single*", PtrDouble: "double*", PtrLongDouble: "long double*",
	PtrInt8: "int8*", PtrInt16: "int16*", PtrInt32: "int32*", PtrInt64: "int64*",
	PtrUint8: "uint8*", PtrUint16: "uint16*", PtrUint32: "uint32*", PtrUint64: "uint64*",
	PtrChar: "char*", PtrWchar: "wchar*", PtrChar16: "char16*", PtrChar32: "char32*",
	PtrBool:       "bool*",
	PtrComplex64:  "complex<single>*",
	PtrComplex128: "complex<double>*",
}

// parent maps every non-Any type to its immediate lattice ancestor. Void has
// no descendants and, like the character, bool, complex and pointer types,
// is a direct child of Any, so Lca(Void, t) is Any for every t other than
// Void.
var parent = map[Type]Type{
	Void: Any,

	// floating point widens single -> double -> long double -> any
	LongDouble: Any,
	Double:     LongDouble,
	Single:     Double,

	// signed/unsigned integers widen narrow -> wide -> any
	Int64: Any,
	Int32: Int64,
	Int16: Int32,
	Int8:  Int16,

	Uint64: Any,
	Uint32: Uint64,
	Uint16: Uint32,
	Uint8:  Uint16,

	Char: Any, Wchar: Any, Char16: Any, Char32: Any,
	Bool:       Any,
	Complex64:  Any,
	Complex128: Any,

	PtrSingle: Any, PtrDouble: Any, PtrLongDouble: Any,
	PtrInt8: Any, PtrInt16: Any, PtrInt32: Any, PtrInt64: Any,
	PtrUint8: Any, PtrUint16: Any, PtrUint32: Any, PtrUint64: Any,
	PtrChar: Any, PtrWchar: Any, PtrChar16: Any, PtrChar32: Any,
	PtrBool:       Any,
	PtrComplex64:  Any,
	PtrComplex128: Any,
}

// ptrBase maps a pointer type to the scalar type it points to, the inverse
// of PointerTo.
var ptrBase = map[Type]Type{
	PtrSingle: Single, PtrDouble: Double, PtrLongDouble: LongDouble,
	PtrInt8: Int8, PtrInt16: Int16, PtrInt32: Int32, PtrInt64: Int64,
	PtrUint8: Uint8, PtrUint16: Uint16, PtrUint32: Uint32, PtrUint64: Uint64,
	PtrChar: Char, PtrWchar: Wchar, PtrChar16: Char16, PtrChar32: Char32,
	PtrBool:       Bool,
	PtrComplex64:  Complex64,
	PtrComplex128: Complex128,
}

var ptrOf map[Type]Type

func init() {
	ptrOf = make(map[Type]Type, len(ptrBase))
	for p, base := range ptrBase {
		ptrOf[base] = p
	}
}

func (t Type) String() string {
	if n, ok := names[t]; ok {
		return n
	}
	return "unknown"
}

// IsPointer reports whether t is one of the pointer forms.
func (t Type) IsPointer() bool {
	_, ok := ptrBase[t]
	return ok
}

// PointeeOf returns the scalar type t points to, if t is a pointer type.
func (t Type) PointeeOf() (Type, bool) {
	b, ok := ptrBase[t]
	return b, ok
}

// PointerTo returns the pointer type for scalar type t, if one exists.
func PointerTo(t Type) (Type, bool) {
	p, ok := ptrOf[t]
	return p, ok
}

// depth returns the distance from t to Any, used to walk both operands of
// lca up to a common ancestor.
func depth(t Type) int {
	d := 0
	for t != Any {
		t = parent[t]
		d++
	}
	return d
}

// Lca returns the least common ancestor of t and u in the type lattice.
// Lca(t, t) == t; Lca(Any, t) == Any; Lca is commutative and associative
// because every type has exactly one parent, so the lattice is a tree with
// a single root (Any).
func Lca(t, u Type) Type {
	if t == u {
		return t
	}
	dt, du := depth(t), depth(u)
	for dt > du {
		t = parent[t]
		dt--
	}
	for du > dt {
		u = parent[u]
		du--
	}
	for t != u {
		t = parent[t]
		u = parent[u]
	}
	return t
}
