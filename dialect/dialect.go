// Package dialect supplies a concrete instantiation of the external
// collaborators the decompiler core consumes but does not itself define:
// the opcode-metadata table and the bytecode input (bytes plus its literal,
// local and aux tables). Per the core's contract these are host-supplied;
// dialect is the host used by this repository's tests, golden fixtures and
// command-line tool, modelled on the bytecode dialect of a stack-based
// scripting-language compiler (the one this decompiler targets).
package dialect

import "fmt"

// OperandKind identifies how an instruction operand is encoded in the
// bytecode stream and how it is resolved to a usable value.
type OperandKind uint8

const (
	// NONE must never appear in an opcode's operand kinds; it exists only as
	// the zero value so a missing OperandKind entry is detectable.
	NONE OperandKind = iota
	INT1
	INT4
	UINT1
	UINT4
	IDX4
	LVT1
	LVT4
	AUX4
)

func (k OperandKind) String() string {
	switch k {
	case NONE:
		return "none"
	case INT1:
		return "int1"
	case INT4:
		return "int4"
	case UINT1:
		return "uint1"
	case UINT4:
		return "uint4"
	case IDX4:
		return "idx4"
	case LVT1:
		return "lvt1"
	case LVT4:
		return "lvt4"
	case AUX4:
		return "aux4"
	default:
		return fmt.Sprintf("illegal operand kind (%d)", k)
	}
}

// Width returns the number of bytes this operand kind occupies in the
// bytecode stream, not counting the leading opcode byte.
func (k OperandKind) Width() int {
	switch k {
	case INT1, UINT1, LVT1:
		return 1
	case INT4, UINT4, IDX4, LVT4, AUX4:
		return 4
	default:
		return 0
	}
}

// OpMeta describes one opcode: its name, total encoded size (including the
// leading opcode byte), the ordered operand kinds it carries, and its effect
// on operand-stack depth.
type OpMeta struct {
	Name         string
	TotalBytes   int
	OperandKinds []OperandKind
	StackEffect  int8
}

// VariableStackEffect marks an opcode whose stack effect depends on its
// operand value (it pops a variable number of arguments and pushes one
// result), mirroring the teacher's own variableStackEffect sentinel.
const VariableStackEffect int8 = 0x7f

// the six opcodes that transfer control; IsJump uses these names to
// recognise which instructions get a TargetLoc.
const (
	OpJump1      = "jump1"
	OpJump4      = "jump4"
	OpJumpTrue1  = "jumpTrue1"
	OpJumpTrue4  = "jumpTrue4"
	OpJumpFalse1 = "jumpFalse1"
	OpJumpFalse4 = "jumpFalse4"
)

// IsJump reports whether name is one of the six jump opcodes.
func IsJump(name string) bool {
	switch name {
	case OpJump1, OpJump4, OpJumpTrue1, OpJumpTrue4, OpJumpFalse1, OpJumpFalse4:
		return true
	}
	return false
}

func meta(name string, kinds ...OperandKind) OpMeta {
	total := 1
	for _, k := range kinds {
		total += k.Width()
	}
	effect, ok := stackEffects[name]
	if !ok {
		panic("dialect: missing stack effect entry for opcode " + name)
	}
	return OpMeta{Name: name, TotalBytes: total, OperandKinds: kinds, StackEffect: effect}
}

// stackEffects records the effect on operand-stack depth of each opcode this
// dialect defines, the same role the teacher's stackEffect array plays for
// its own bytecode. Opcodes that pop a variable, operand-carried number of
// arguments (and push exactly one result) use VariableStackEffect; Lint
// computes their actual effect from the UINT operand instead.
var stackEffects = map[string]int8{
	"nop":              0,
	"push1":            +1,
	"push4":            +1,
	"pop":              -1,
	"dup":              +1,
	"done":             -1,
	"invokeStk1":       VariableStackEffect,
	"invokeStk4":       VariableStackEffect,
	"list":             VariableStackEffect,
	"listLength":       0,
	"incrStkImm":       0,
	"incrScalar1Imm":   +1,
	"incrScalarStkImm": 0,
	"variable":         0,
	"jump1":            0,
	"jump4":            0,
	"jumpTrue1":        -1,
	"jumpTrue4":        -1,
	"jumpFalse1":       -1,
	"jumpFalse4":       -1,
	"loadStk":          0,
	"loadScalarStk":    0,
	"loadArrayStk":     -1,
	"loadScalar1":      +1,
	"loadArray1":       0,
	"storeStk":         -1,
	"storeScalarStk":   -1,
	"storeArrayStk":    -2,
	"storeScalar1":     0,
	"storeArray1":      -1,
	"gt":               -1,
	"lt":               -1,
	"ge":               -1,
	"le":               -1,
	"eq":               -1,
	"neq":              -1,
	"add":              -1,
	"not":              0,
	"concat1":          VariableStackEffect,
	"returnImm":        -1,
	"tryCvtToNumeric":  0,
	"startCommand":     0,
	"beginCatch4":      0,
	"endCatch":         0,
	"pushResult":       +1,
	"pushReturnCode":   +1,
	"reverse":          0,
	"foreach_start4":   +1,
	"foreach_step4":    +1,
}

// OpcodeTable is an indexable opcode_byte -> OpMeta table, as consumed by
// the instruction decoder.
type OpcodeTable map[byte]OpMeta

// Lookup returns the metadata for op, and whether it is known.
func (t OpcodeTable) Lookup(op byte) (OpMeta, bool) {
	m, ok := t[op]
	return m, ok
}

// names, in opcode-byte order, of the dialect this decompiler targets. The
// order is arbitrary beyond grouping related opcodes together; unlike the
// source compiler's Opcode iota block, no VM executes this table, so the
// exact byte values only need to be self-consistent within Parse/Format.
var opcodeOrder = []struct {
	name  string
	kinds []OperandKind
}{
	{"nop", nil},
	{"push1", []OperandKind{UINT1}},
	{"push4", []OperandKind{UINT4}},
	{"pop", nil},
	{"dup", nil},
	{"done", nil},
	{"invokeStk1", []OperandKind{UINT1}},
	{"invokeStk4", []OperandKind{UINT4}},
	{"list", []OperandKind{UINT4}},
	{"listLength", nil},
	{"incrStkImm", []OperandKind{INT1}},
	{"incrScalar1Imm", []OperandKind{LVT1, INT1}},
	{"incrScalarStkImm", []OperandKind{INT1}},
	{"variable", []OperandKind{LVT1}},
	{"jump1", []OperandKind{INT1}},
	{"jump4", []OperandKind{INT4}},
	{"jumpTrue1", []OperandKind{INT1}},
	{"jumpTrue4", []OperandKind{INT4}},
	{"jumpFalse1", []OperandKind{INT1}},
	{"jumpFalse4", []OperandKind{INT4}},
	{"loadStk", nil},
	{"loadScalarStk", nil},
	{"loadArrayStk", nil},
	{"loadScalar1", []OperandKind{LVT1}},
	{"loadArray1", []OperandKind{LVT1}},
	{"storeStk", nil},
	{"storeScalarStk", nil},
	{"storeArrayStk", nil},
	{"storeScalar1", []OperandKind{LVT1}},
	{"storeArray1", []OperandKind{LVT1}},
	{"gt", nil},
	{"lt", nil},
	{"ge", nil},
	{"le", nil},
	{"eq", nil},
	{"neq", nil},
	{"add", nil},
	{"not", nil},
	{"concat1", []OperandKind{UINT1}},
	{"returnImm", []OperandKind{UINT1, UINT1}},
	{"tryCvtToNumeric", nil},
	{"startCommand", []OperandKind{IDX4}},
	{"beginCatch4", []OperandKind{UINT4}},
	{"endCatch", nil},
	{"pushResult", nil},
	{"pushReturnCode", nil},
	{"reverse", []OperandKind{UINT1}},
	{"foreach_start4", []OperandKind{AUX4}},
	{"foreach_step4", []OperandKind{AUX4}},
}

// NewOpcodeTable builds the opcode metadata table for the dialect this
// decompiler targets. The host application would normally supply this; it
// is built once here so the rest of the repository (tests, cmd/decompile)
// has a concrete table to exercise the core against.
func NewOpcodeTable() OpcodeTable {
	t := make(OpcodeTable, len(opcodeOrder))
	for i, e := range opcodeOrder {
		t[byte(i)] = meta(e.name, e.kinds...)
	}
	return t
}

// reverse name -> byte lookup, used by the assembler (dialect.Parse).
func reverseOpcodeTable(t OpcodeTable) map[string]byte {
	m := make(map[string]byte, len(t))
	for b, meta := range t {
		m[meta.Name] = b
	}
	return m
}

// AuxTag identifies the kind of an auxiliary record. Currently only
// ForeachInfo is defined, as per the core's data model.
type AuxTag uint8

const (
	// TagForeachInfo marks an aux record carrying the variable-name lists of
	// a foreach loop.
	TagForeachInfo AuxTag = iota
)

func (t AuxTag) String() string {
	switch t {
	case TagForeachInfo:
		return "ForeachInfo"
	default:
		return fmt.Sprintf("illegal aux tag (%d)", t)
	}
}

// Aux is one entry of the aux table: a tagged variant whose VarList holds
// raw local-variable indices (not yet resolved to names — that happens when
// the instruction decoder resolves an AUX4 operand via
// Cursor.ResolveForeachInfoAt).
type Aux struct {
	Tag     AuxTag
	VarList [][]int // indices into Input.Locals, one list per foreach variable group
}

// ForeachInfo is the resolved form of a TagForeachInfo aux record: every
// variable index has been translated to its local-variable name.
type ForeachInfo struct {
	Vars [][]string
}

// Input is the bytecode plus its three auxiliary tables, as consumed by the
// core (spec's external interface). Literals, Locals and Auxes are typed
// lookups the host is responsible for decoding; the cursor package's Cursor
// does nothing but index into them.
type Input struct {
	Bytes    []byte
	Literals []string
	Locals   []string
	Auxes    []Aux
}
