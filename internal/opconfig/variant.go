package opconfig

import "fmt"

// ArgKind classifies an external operator argument, or the kind of a
// default value held in a Variant.
type ArgKind int

// Supported argument kinds.
const (
	ArgTensor ArgKind = iota
	ArgInt
	ArgFloat
	ArgBool
	ArgIntList
	ArgFloatList
	ArgBoolList
)

// String returns the YAML spelling of the kind.
func (k ArgKind) String() string {
	switch k {
	case ArgTensor:
		return "tensor"
	case ArgInt:
		return "int"
	case ArgFloat:
		return "float"
	case ArgBool:
		return "bool"
	case ArgIntList:
		return "int_list"
	case ArgFloatList:
		return "float_list"
	case ArgBoolList:
		return "bool_list"
	default:
		return "unknown"
	}
}

func parseArgKind(s string) (ArgKind, error) {
	switch s {
	case "tensor":
		return ArgTensor, nil
	case "int":
		return ArgInt, nil
	case "float":
		return ArgFloat, nil
	case "bool":
		return ArgBool, nil
	case "int_list":
		return ArgIntList, nil
	case "float_list":
		return ArgFloatList, nil
	case "bool_list":
		return ArgBoolList, nil
	default:
		return 0, fmt.Errorf("unknown argument kind %q", s)
	}
}

// Variant is a tagged default value. One Variant holds a value of exactly
// one kind; accessors report ok=false for a kind mismatch rather than
// converting. Heterogeneous defaults live in a single name-keyed map
// instead of one map per primitive type.
type Variant struct {
	kind ArgKind
	i    int64
	f    float64
	b    bool
	il   []int64
	fl   []float64
	bl   []bool
}

// IntVariant wraps an integer default.
func IntVariant(v int64) Variant { return Variant{kind: ArgInt, i: v} }

// FloatVariant wraps a float default.
func FloatVariant(v float64) Variant { return Variant{kind: ArgFloat, f: v} }

// BoolVariant wraps a bool default.
func BoolVariant(v bool) Variant { return Variant{kind: ArgBool, b: v} }

// IntListVariant wraps an integer-list default.
func IntListVariant(v []int64) Variant { return Variant{kind: ArgIntList, il: v} }

// FloatListVariant wraps a float-list default.
func FloatListVariant(v []float64) Variant { return Variant{kind: ArgFloatList, fl: v} }

// BoolListVariant wraps a bool-list default.
func BoolListVariant(v []bool) Variant { return Variant{kind: ArgBoolList, bl: v} }

// Kind returns the kind of value the variant holds.
func (v Variant) Kind() ArgKind { return v.kind }

// Int returns the integer value, ok=false if the variant is not an int.
func (v Variant) Int() (int64, bool) { return v.i, v.kind == ArgInt }

// Float returns the float value, ok=false if the variant is not a float.
func (v Variant) Float() (float64, bool) { return v.f, v.kind == ArgFloat }

// Bool returns the bool value, ok=false if the variant is not a bool.
func (v Variant) Bool() (bool, bool) { return v.b, v.kind == ArgBool }

// IntList returns the integer list, ok=false if the variant is not one.
func (v Variant) IntList() ([]int64, bool) { return v.il, v.kind == ArgIntList }

// FloatList returns the float list, ok=false if the variant is not one.
func (v Variant) FloatList() ([]float64, bool) { return v.fl, v.kind == ArgFloatList }

// BoolList returns the bool list, ok=false if the variant is not one.
func (v Variant) BoolList() ([]bool, bool) { return v.bl, v.kind == ArgBoolList }
