package dungeonecs

import (
	"reflect"
	"unsafe"
)

// column is one typed array, matched to a single field's primitive type.
// Growth and row access are grounded on delaneyj-arche's archetype column
// technique: a reflect.ArrayOf buffer gives us a contiguous, GC-tracked
// block of the right Go primitive type, and an unsafe.Pointer into it
// gives O(1) typed reads/writes without boxing every value.
type column struct {
	prim     PrimitiveType
	goType   reflect.Type
	buf      reflect.Value
	ptr      unsafe.Pointer
	itemSize uintptr
}

func primitiveGoType(p PrimitiveType) reflect.Type {
	switch p {
	case PrimBool:
		return reflect.TypeOf(false)
	case PrimI8:
		return reflect.TypeOf(int8(0))
	case PrimI16:
		return reflect.TypeOf(int16(0))
	case PrimI32:
		return reflect.TypeOf(int32(0))
	case PrimU8:
		return reflect.TypeOf(uint8(0))
	case PrimU16:
		return reflect.TypeOf(uint16(0))
	case PrimU32, PrimString, PrimEntity:
		return reflect.TypeOf(uint32(0))
	case PrimF32:
		return reflect.TypeOf(float32(0))
	case PrimF64:
		return reflect.TypeOf(float64(0))
	default:
		panic("dungeonecs: unknown primitive type")
	}
}

func newColumn(prim PrimitiveType, capacity int) *column {
	if capacity < 1 {
		capacity = 1
	}
	goType := primitiveGoType(prim)
	buf := reflect.New(reflect.ArrayOf(capacity, goType)).Elem()
	return &column{
		prim:     prim,
		goType:   goType,
		buf:      buf,
		ptr:      buf.Addr().UnsafePointer(),
		itemSize: goType.Size(),
	}
}

func (c *column) grow(newCapacity int) {
	newBuf := reflect.New(reflect.ArrayOf(newCapacity, c.goType)).Elem()
	reflect.Copy(newBuf, c.buf)
	c.buf = newBuf
	c.ptr = newBuf.Addr().UnsafePointer()
}

func (c *column) at(row int) unsafe.Pointer {
	return unsafe.Add(c.ptr, uintptr(row)*c.itemSize)
}

func (c *column) copyRow(dst, src int) {
	if dst == src {
		return
	}
	dstPtr := c.at(dst)
	srcPtr := c.at(src)
	dstSlice := unsafe.Slice((*byte)(dstPtr), c.itemSize)
	srcSlice := unsafe.Slice((*byte)(srcPtr), c.itemSize)
	copy(dstSlice, srcSlice)
}

func copyColumnRow(dst *column, dstRow int, src *column, srcRow int) {
	dstPtr := dst.at(dstRow)
	srcPtr := src.at(srcRow)
	dstSlice := unsafe.Slice((*byte)(dstPtr), dst.itemSize)
	srcSlice := unsafe.Slice((*byte)(srcPtr), src.itemSize)
	copy(dstSlice, srcSlice)
}

// columnSlice reinterprets the column's live prefix ([0, length)) as a []T.
// The caller is responsible for T matching the column's primitive Go type;
// Column enforces that by comparing T with the column's Go type.
func columnSlice[T any](c *column, length int) []T {
	return unsafe.Slice((*T)(c.ptr), length)
}

// GetAny reads the value at row as the boxed Go type matching its
// primitive kind.
func (c *column) GetAny(row int) any {
	switch c.prim {
	case PrimBool:
		return *(*bool)(c.at(row))
	case PrimI8:
		return *(*int8)(c.at(row))
	case PrimI16:
		return *(*int16)(c.at(row))
	case PrimI32:
		return *(*int32)(c.at(row))
	case PrimU8:
		return *(*uint8)(c.at(row))
	case PrimU16:
		return *(*uint16)(c.at(row))
	case PrimU32, PrimString, PrimEntity:
		return *(*uint32)(c.at(row))
	case PrimF32:
		return *(*float32)(c.at(row))
	case PrimF64:
		return *(*float64)(c.at(row))
	default:
		return nil
	}
}

// SetAny writes v, coercing common numeric Go literal kinds (e.g. an
// untyped `10` arriving as `int`) into the column's primitive type.
func (c *column) SetAny(row int, v any) error {
	ptr := c.at(row)
	switch c.prim {
	case PrimBool:
		b, ok := v.(bool)
		if !ok {
			return errBadValue
		}
		*(*bool)(ptr) = b
	case PrimI8:
		n, ok := asInt64(v)
		if !ok {
			return errBadValue
		}
		*(*int8)(ptr) = int8(n)
	case PrimI16:
		n, ok := asInt64(v)
		if !ok {
			return errBadValue
		}
		*(*int16)(ptr) = int16(n)
	case PrimI32:
		n, ok := asInt64(v)
		if !ok {
			return errBadValue
		}
		*(*int32)(ptr) = int32(n)
	case PrimU8:
		n, ok := asUint64(v)
		if !ok {
			return errBadValue
		}
		*(*uint8)(ptr) = uint8(n)
	case PrimU16:
		n, ok := asUint64(v)
		if !ok {
			return errBadValue
		}
		*(*uint16)(ptr) = uint16(n)
	case PrimU32, PrimString, PrimEntity:
		n, ok := asUint64(v)
		if !ok {
			return errBadValue
		}
		*(*uint32)(ptr) = uint32(n)
	case PrimF32:
		f, ok := asFloat64(v)
		if !ok {
			return errBadValue
		}
		*(*float32)(ptr) = float32(f)
	case PrimF64:
		f, ok := asFloat64(v)
		if !ok {
			return errBadValue
		}
		*(*float64)(ptr) = f
	default:
		return errBadValue
	}
	return nil
}

func (c *column) zero(row int) {
	ptr := c.at(row)
	b := unsafe.Slice((*byte)(ptr), c.itemSize)
	for i := range b {
		b[i] = 0
	}
}

var errBadValue = columnValueError{}

type columnValueError struct{}

func (columnValueError) Error() string { return "value does not match column's declared type" }

func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		return int64(n), true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		return int64(n), true
	case float32:
		return int64(n), true
	case float64:
		return int64(n), true
	default:
		return 0, false
	}
}

func asUint64(v any) (uint64, bool) {
	if e, ok := v.(Entity); ok {
		return uint64(e), true
	}
	n, ok := asInt64(v)
	if !ok {
		return 0, false
	}
	return uint64(n), true
}

func asFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		n2, ok := asInt64(v)
		return float64(n2), ok
	}
}
