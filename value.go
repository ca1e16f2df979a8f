package glog

import (
	"bytes"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"time"

	"github.com/davecgh/go-spew/spew"
)

// dumper renders composite operands compactly for check messages
var dumper = &spew.ConfigState{
	Indent:                  " ",
	MaxDepth:                10,
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

// renderValue converts a check operand to the text used in failure messages.
// Scalars render like fmt's %v, everything else goes through spew.
func renderValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "nil"
	case string:
		return val
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case uint64:
		return strconv.FormatUint(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case []byte:
		return fmt.Sprintf("%x", val)
	case time.Time:
		return val.Format(time.RFC3339Nano)
	case error:
		return val.Error()
	case fmt.Stringer:
		return val.String()
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Bool, reflect.String:
		return fmt.Sprint(v)
	}

	var b bytes.Buffer
	dumper.Fdump(&b, v)
	return string(bytes.TrimSpace(b.Bytes()))
}

// number holds a numeric operand exactly as a signed, unsigned or float value
type number struct {
	kind numKind
	i    int64
	u    uint64
	f    float64
}

type numKind int

const (
	numInt numKind = iota + 1
	numUint
	numFloat
)

func toNumber(v any) (number, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return number{kind: numInt, i: rv.Int()}, true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return number{kind: numUint, u: rv.Uint()}, true
	case reflect.Float32, reflect.Float64:
		return number{kind: numFloat, f: rv.Float()}, true
	}
	return number{}, false
}

// compareNumbers orders two numbers of any kind without lossy conversion
// between int64 and uint64. ok is false when either value is NaN.
func compareNumbers(a, b number) (int, bool) {
	switch {
	case a.kind == numInt && b.kind == numInt:
		return cmpOrdered(a.i, b.i), true
	case a.kind == numUint && b.kind == numUint:
		return cmpOrdered(a.u, b.u), true
	case a.kind == numInt && b.kind == numUint:
		if a.i < 0 {
			return -1, true
		}
		return cmpOrdered(uint64(a.i), b.u), true
	case a.kind == numUint && b.kind == numInt:
		if b.i < 0 {
			return 1, true
		}
		return cmpOrdered(a.u, uint64(b.i)), true
	}
	af, bf := a.float(), b.float()
	if math.IsNaN(af) || math.IsNaN(bf) {
		return 0, false
	}
	return cmpOrdered(af, bf), true
}

func (n number) float() float64 {
	switch n.kind {
	case numInt:
		return float64(n.i)
	case numUint:
		return float64(n.u)
	default:
		return n.f
	}
}

func cmpOrdered[T int64 | uint64 | float64 | string](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// compareValues orders a and b. ok is false when the pair has no natural order.
func compareValues(a, b any) (int, bool) {
	if na, ok := toNumber(a); ok {
		if nb, ok := toNumber(b); ok {
			return compareNumbers(na, nb)
		}
		return 0, false
	}
	if ta, ok := a.(time.Time); ok {
		if tb, ok := b.(time.Time); ok {
			return ta.Compare(tb), true
		}
		return 0, false
	}
	ra, rb := reflect.ValueOf(a), reflect.ValueOf(b)
	if ra.Kind() == reflect.String && rb.Kind() == reflect.String {
		return cmpOrdered(ra.String(), rb.String()), true
	}
	return 0, false
}

// equalValues compares numbers by value, times by instant, everything else deeply
func equalValues(a, b any) bool {
	if c, ok := compareValues(a, b); ok {
		return c == 0
	}
	return reflect.DeepEqual(a, b)
}

// isNil reports whether v is nil or a nil pointer, map, slice, chan, func or interface
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.Interface, reflect.UnsafePointer:
		return rv.IsNil()
	}
	return false
}
