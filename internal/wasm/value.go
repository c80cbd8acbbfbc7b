package wasm

import (
	"fmt"
	"math"

	"github.com/student/wazeroir-slots/api"
)

// ValueType is an alias of api.ValueType, kept local so engine code does not
// need to import api for this one type.
type ValueType = api.ValueType

const (
	ValueTypeI32       = api.ValueTypeI32
	ValueTypeI64       = api.ValueTypeI64
	ValueTypeF32       = api.ValueTypeF32
	ValueTypeF64       = api.ValueTypeF64
	ValueTypeV128      = api.ValueTypeV128
	ValueTypeFuncref   = api.ValueTypeFuncref
	ValueTypeExternref = api.ValueTypeExternref
)

// Reference is an opaque reference value: either the null reference, a
// function address, or an externally-owned value handed back verbatim.
type Reference struct {
	// IsNull is true for ref.null.
	IsNull bool
	// FuncIndex is valid when the reference is a funcref; it is the index
	// into the owning module's function address space.
	FuncIndex uint32
	// Extern is valid when the reference is an externref; wazero's
	// convention (kept from the teacher) represents externref as an
	// opaque uintptr supplied by the embedder.
	Extern uintptr
	// IsFunc discriminates FuncIndex from Extern; both zero values are
	// otherwise ambiguous with the null reference.
	IsFunc bool
}

// NullReference is the ref.null value.
var NullReference = Reference{IsNull: true}

// Val is a tagged runtime value: the spec's boundary-crossing
// representation used for call parameters/results, globals, and values
// marshaled to/from the WASI dispatcher. Within the hot interpreter loop,
// values instead live untagged in the per-type SlotFile arrays; Val exists
// only at the edges, matching spec.md §3's Val/Num/Ref union.
type Val struct {
	Type ValueType
	num  uint64 // bit pattern for I32/I64/F32/F64/V128-lo
	v128 uint64
	ref  Reference
}

// TypeMismatchError is returned by Val accessors when the stored type does
// not match the requested one. The spec treats this as a trap when it
// originates from WASI/embedder marshaling, and as an engine invariant
// violation when it could occur only as an interpreter bug.
type TypeMismatchError struct {
	Want, Have ValueType
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("type mismatch: want %s, have %s", api.ValueTypeName(e.Want), api.ValueTypeName(e.Have))
}

func ValI32(v int32) Val { return Val{Type: ValueTypeI32, num: uint64(uint32(v))} }
func ValI64(v int64) Val { return Val{Type: ValueTypeI64, num: uint64(v)} }
func ValF32(v float32) Val {
	return Val{Type: ValueTypeF32, num: uint64(math.Float32bits(v))}
}
func ValF64(v float64) Val { return Val{Type: ValueTypeF64, num: math.Float64bits(v)} }
func ValRef(r Reference) Val {
	t := ValueTypeFuncref
	return Val{Type: t, ref: r}
}
func ValExternref(r Reference) Val { return Val{Type: ValueTypeExternref, ref: r} }

func (v Val) AsI32() (int32, error) {
	if v.Type != ValueTypeI32 {
		return 0, &TypeMismatchError{ValueTypeI32, v.Type}
	}
	return int32(uint32(v.num)), nil
}

func (v Val) AsI64() (int64, error) {
	if v.Type != ValueTypeI64 {
		return 0, &TypeMismatchError{ValueTypeI64, v.Type}
	}
	return int64(v.num), nil
}

func (v Val) AsF32() (float32, error) {
	if v.Type != ValueTypeF32 {
		return 0, &TypeMismatchError{ValueTypeF32, v.Type}
	}
	return math.Float32frombits(uint32(v.num)), nil
}

func (v Val) AsF64() (float64, error) {
	if v.Type != ValueTypeF64 {
		return 0, &TypeMismatchError{ValueTypeF64, v.Type}
	}
	return math.Float64frombits(v.num), nil
}

func (v Val) AsRef() (Reference, error) {
	if v.Type != ValueTypeFuncref && v.Type != ValueTypeExternref {
		return Reference{}, &TypeMismatchError{ValueTypeFuncref, v.Type}
	}
	return v.ref, nil
}

// Bits returns the raw 64-bit pattern for numeric types, matching the
// embedder API's uint64-encoded calling convention (api.EncodeI32 etc).
func (v Val) Bits() uint64 {
	switch v.Type {
	case ValueTypeFuncref, ValueTypeExternref:
		if v.ref.IsNull {
			return 0
		}
		if v.ref.IsFunc {
			return uint64(v.ref.FuncIndex)
		}
		return uint64(v.ref.Extern)
	default:
		return v.num
	}
}

// DefaultValue returns the zero value for a ValueType, used to initialize
// declared locals (spec.md §3 Frame).
func DefaultValue(t ValueType) Val {
	switch t {
	case ValueTypeI32:
		return ValI32(0)
	case ValueTypeI64:
		return ValI64(0)
	case ValueTypeF32:
		return ValF32(0)
	case ValueTypeF64:
		return ValF64(0)
	case ValueTypeV128:
		return Val{Type: ValueTypeV128}
	case ValueTypeFuncref, ValueTypeExternref:
		return Val{Type: t, ref: NullReference}
	default:
		return Val{}
	}
}

// ValFromUint64 builds a Val from the embedder's uint64 encoding plus its
// static type, the inverse of Val.Bits.
func ValFromUint64(t ValueType, bits uint64) Val {
	switch t {
	case ValueTypeFuncref:
		if bits == 0 {
			return Val{Type: t, ref: NullReference}
		}
		return Val{Type: t, ref: Reference{IsFunc: true, FuncIndex: uint32(bits)}}
	case ValueTypeExternref:
		if bits == 0 {
			return Val{Type: t, ref: NullReference}
		}
		return Val{Type: t, ref: Reference{Extern: uintptr(bits)}}
	default:
		return Val{Type: t, num: bits}
	}
}
