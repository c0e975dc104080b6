package libchannel

import (
	"math"
	"unsafe"
)

// Kind tags the payload stored in a Value. The numeric values are part of
// the surface and are never interpreted by the library itself; a Value is
// copied through a channel whole, tag included.
type Kind int32

const (
	Int8 Kind = iota
	Int16
	Int32
	Int64
	Float
	Double
	Pointer
)

// Value is the carrier moved through channels. One machine word holds every
// scalar payload; pointers get their own word so the garbage collector can
// see them. Scalars narrower than 64 bits are stored zero- or sign-extended
// and truncated again on the way out, so a round trip is bit-exact.
type Value struct {
	Kind Kind
	bits uint64
	ptr  unsafe.Pointer
}

func Int8Val(v int8) Value   { return Value{Kind: Int8, bits: uint64(v)} }
func Int16Val(v int16) Value { return Value{Kind: Int16, bits: uint64(v)} }
func Int32Val(v int32) Value { return Value{Kind: Int32, bits: uint64(v)} }
func Int64Val(v int64) Value { return Value{Kind: Int64, bits: uint64(v)} }
func FloatVal(v float32) Value {
	return Value{Kind: Float, bits: uint64(math.Float32bits(v))}
}
func DoubleVal(v float64) Value {
	return Value{Kind: Double, bits: math.Float64bits(v)}
}
func PointerVal(p unsafe.Pointer) Value { return Value{Kind: Pointer, ptr: p} }

func (v Value) Int8() int8              { return int8(v.bits) }
func (v Value) Int16() int16            { return int16(v.bits) }
func (v Value) Int32() int32            { return int32(v.bits) }
func (v Value) Int64() int64            { return int64(v.bits) }
func (v Value) Float() float32          { return math.Float32frombits(uint32(v.bits)) }
func (v Value) Double() float64         { return math.Float64frombits(v.bits) }
func (v Value) Pointer() unsafe.Pointer { return v.ptr }
