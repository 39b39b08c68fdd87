package sema

import "github.com/blendsdk/blend65-sub015/pkg/types"

// intrinsicSig describes one built-in intrinsic's call shape for the type
// checker, per spec.md §4.4's intrinsic lowering table (the same names
// pkg/il's Op* intrinsic opcodes are named after). Intrinsics are callable
// syntactically like any other function but are never declared as
// FunctionDecls, so they need their own lookup table rather than living in
// funcSigs.
type intrinsicSig struct {
	params []*types.Type // nil element means "any type accepted"
	ret    *types.Type
}

var intrinsics = map[string]intrinsicSig{
	"peek":           {params: []*types.Type{types.WordType}, ret: types.ByteType},
	"poke":           {params: []*types.Type{types.WordType, types.ByteType}, ret: types.VoidType},
	"peekw":          {params: []*types.Type{types.WordType}, ret: types.WordType},
	"pokew":          {params: []*types.Type{types.WordType, types.WordType}, ret: types.VoidType},
	"lo":             {params: []*types.Type{types.WordType}, ret: types.ByteType},
	"hi":             {params: []*types.Type{types.WordType}, ret: types.ByteType},
	"sei":            {params: nil, ret: types.VoidType},
	"cli":            {params: nil, ret: types.VoidType},
	"nop":            {params: nil, ret: types.VoidType},
	"brk":            {params: nil, ret: types.VoidType},
	"pha":            {params: nil, ret: types.VoidType},
	"pla":            {params: nil, ret: types.VoidType},
	"php":            {params: nil, ret: types.VoidType},
	"plp":            {params: nil, ret: types.VoidType},
	"barrier":        {params: nil, ret: types.VoidType},
	"volatile_read":  {params: []*types.Type{types.WordType}, ret: types.ByteType},
	"volatile_write": {params: []*types.Type{types.WordType, types.ByteType}, ret: types.VoidType},
	// sizeof(T) and length(arr) take one argument each whose legality
	// (a type name, or an array-typed expression) is checked ad hoc rather
	// than through the params table below.
	"sizeof": {params: []*types.Type{nil}, ret: types.WordType},
	"length": {params: []*types.Type{nil}, ret: types.WordType},
}

func isIntrinsic(name string) bool {
	_, ok := intrinsics[name]

	return ok
}
