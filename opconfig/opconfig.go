// Copyright 2026 Loom ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package opconfig provides the public API for the external-operator
// configuration table: argument declarations, gradient wiring, output type
// inference, and default values for operators implemented outside the
// graph runtime.
package opconfig

import (
	"github.com/loom-ml/loom/internal/opconfig"
)

// Table maps external operator names to their configurations.
type Table = opconfig.Table

// Config describes one external operator pair (forward + backward).
type Config = opconfig.Config

// Argument is one declared argument of an external operator.
type Argument = opconfig.Argument

// ArgKind classifies an external operator argument.
type ArgKind = opconfig.ArgKind

// Argument kinds.
const (
	ArgTensor    ArgKind = opconfig.ArgTensor
	ArgInt       ArgKind = opconfig.ArgInt
	ArgFloat     ArgKind = opconfig.ArgFloat
	ArgBool      ArgKind = opconfig.ArgBool
	ArgIntList   ArgKind = opconfig.ArgIntList
	ArgFloatList ArgKind = opconfig.ArgFloatList
	ArgBoolList  ArgKind = opconfig.ArgBoolList
)

// BackwardSourceKind says where one backward-operator input comes from.
type BackwardSourceKind = opconfig.BackwardSourceKind

// Backward input sources.
const (
	GradOutput    BackwardSourceKind = opconfig.GradOutput
	ForwardInput  BackwardSourceKind = opconfig.ForwardInput
	ForwardOutput BackwardSourceKind = opconfig.ForwardOutput
)

// BackwardSource wires one backward-operator input to its origin.
type BackwardSource = opconfig.BackwardSource

// TypeInferKind says how to infer one forward output's element type.
type TypeInferKind = opconfig.TypeInferKind

// Output type inference rules.
const (
	PropagateFromInput TypeInferKind = opconfig.PropagateFromInput
	ConcreteType       TypeInferKind = opconfig.ConcreteType
)

// OutputTypeRule describes type inference for one forward output.
type OutputTypeRule = opconfig.OutputTypeRule

// Variant is a tagged default value.
type Variant = opconfig.Variant

// Builtin parses the embedded operator table.
func Builtin() *Table {
	return opconfig.Builtin()
}

// Parse reads an operator table from YAML.
func Parse(data []byte) (*Table, error) {
	return opconfig.Parse(data)
}
