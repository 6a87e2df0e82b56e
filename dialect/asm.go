package dialect

import (
	"fmt"
	"strconv"
	"strings"
)

// Parse reads the line-oriented assembly text format this repository's
// tests, golden fixtures and command-line tool use to describe a bytecode
// program, and assembles it into an Input ready for the decompiler core.
// The format has four sections, each introduced by a ".literals",
// ".locals", ".aux" or ".code" header line:
//
//	.literals
//	"foo"
//	""
//	.locals
//	x
//	y
//	.aux
//	foreach {x} {y}
//	.code
//	push1 0
//	variable x
//	jump1 4
//
// Literal lines are double-quoted with \\, \n, \t and \" recognised.
// Locals are bare names. An aux line lists one or more brace-delimited
// groups of local names, building a ForeachInfo-shaped record. Code lines
// are an opcode name followed by its operands: integers for INT/UINT/IDX
// kinds, a local name for LVT kinds (resolved against .locals), and an
// integer aux-table index for AUX4.
func Parse(text string) (Input, error) {
	table := NewOpcodeTable()
	rev := reverseOpcodeTable(table)

	var in Input
	localIndex := make(map[string]int)

	section := ""
	var codeLines []string
	for lineNo, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, ".") {
			section = line
			continue
		}
		switch section {
		case ".literals":
			lit, err := parseQuotedLiteral(line)
			if err != nil {
				return Input{}, fmt.Errorf("line %d: %w", lineNo+1, err)
			}
			in.Literals = append(in.Literals, lit)
		case ".locals":
			localIndex[line] = len(in.Locals)
			in.Locals = append(in.Locals, line)
		case ".aux":
			aux, err := parseAuxLine(line, localIndex)
			if err != nil {
				return Input{}, fmt.Errorf("line %d: %w", lineNo+1, err)
			}
			in.Auxes = append(in.Auxes, aux)
		case ".code":
			codeLines = append(codeLines, line)
		default:
			return Input{}, fmt.Errorf("line %d: content outside of a section", lineNo+1)
		}
	}

	bytes, err := assemble(codeLines, table, rev, localIndex)
	if err != nil {
		return Input{}, err
	}
	in.Bytes = bytes
	return in, nil
}

func parseQuotedLiteral(line string) (string, error) {
	if len(line) < 2 || line[0] != '"' || line[len(line)-1] != '"' {
		return "", fmt.Errorf("literal %q must be double-quoted", line)
	}
	body := line[1 : len(line)-1]
	var b strings.Builder
	esc := false
	for _, r := range body {
		if esc {
			switch r {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case '\\':
				b.WriteByte('\\')
			case '"':
				b.WriteByte('"')
			default:
				return "", fmt.Errorf("literal %q has unknown escape \\%c", line, r)
			}
			esc = false
			continue
		}
		if r == '\\' {
			esc = true
			continue
		}
		b.WriteRune(r)
	}
	if esc {
		return "", fmt.Errorf("literal %q ends mid-escape", line)
	}
	return b.String(), nil
}

func parseAuxLine(line string, localIndex map[string]int) (Aux, error) {
	var varList [][]int
	rest := line
	for {
		rest = strings.TrimSpace(rest)
		if rest == "" {
			break
		}
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			break
		}
		close := strings.IndexByte(rest, '}')
		if close < open {
			return Aux{}, fmt.Errorf("aux line %q has an unbalanced brace group", line)
		}
		group := strings.Fields(rest[open+1 : close])
		idxs := make([]int, len(group))
		for i, name := range group {
			idx, ok := localIndex[name]
			if !ok {
				return Aux{}, fmt.Errorf("aux line %q references unknown local %q", line, name)
			}
			idxs[i] = idx
		}
		varList = append(varList, idxs)
		rest = rest[close+1:]
	}
	return Aux{Tag: TagForeachInfo, VarList: varList}, nil
}

func assemble(lines []string, table OpcodeTable, rev map[string]byte, localIndex map[string]int) ([]byte, error) {
	var out []byte
	for lineNo, line := range lines {
		fields := strings.Fields(line)
		name := fields[0]
		args := fields[1:]

		op, ok := rev[name]
		if !ok {
			return nil, fmt.Errorf("code line %d: unknown opcode %q", lineNo+1, name)
		}
		meta := table[op]
		if len(args) != len(meta.OperandKinds) {
			return nil, fmt.Errorf("code line %d: %s wants %d operand(s), got %d", lineNo+1, name, len(meta.OperandKinds), len(args))
		}

		out = append(out, op)
		for i, kind := range meta.OperandKinds {
			tok := args[i]
			var v int64
			switch kind {
			case LVT1, LVT4:
				idx, ok := localIndex[tok]
				if !ok {
					return nil, fmt.Errorf("code line %d: unknown local %q", lineNo+1, tok)
				}
				v = int64(idx)
			default:
				n, err := strconv.ParseInt(tok, 10, 64)
				if err != nil {
					return nil, fmt.Errorf("code line %d: bad integer operand %q: %w", lineNo+1, tok, err)
				}
				v = n
			}
			out = appendOperand(out, kind, v)
		}
	}
	return out, nil
}

func appendOperand(out []byte, kind OperandKind, v int64) []byte {
	switch kind.Width() {
	case 1:
		return append(out, byte(v))
	case 4:
		return append(out, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
	default:
		return out
	}
}

// Format is the reverse of Parse: it disassembles in.Bytes against table
// and renders the same four-section text format Parse reads, so a bytecode
// buffer built or captured elsewhere can be inspected and round-tripped
// through the assembler by hand. It decodes in.Bytes itself rather than
// going through the decoder/cursor packages, since those import dialect and
// would make a dependency cycle of it.
func Format(in Input, table OpcodeTable) (string, error) {
	var b strings.Builder

	if len(in.Literals) > 0 {
		b.WriteString(".literals\n")
		for _, lit := range in.Literals {
			b.WriteString(formatQuotedLiteral(lit))
			b.WriteByte('\n')
		}
	}
	if len(in.Locals) > 0 {
		b.WriteString(".locals\n")
		for _, name := range in.Locals {
			b.WriteString(name)
			b.WriteByte('\n')
		}
	}
	if len(in.Auxes) > 0 {
		b.WriteString(".aux\n")
		for _, aux := range in.Auxes {
			line, err := formatAuxLine(aux, in.Locals)
			if err != nil {
				return "", err
			}
			b.WriteString(line)
			b.WriteByte('\n')
		}
	}

	code, err := disassemble(in.Bytes, table, in.Locals)
	if err != nil {
		return "", err
	}
	if len(code) > 0 {
		b.WriteString(".code\n")
		for _, line := range code {
			b.WriteString(line)
			b.WriteByte('\n')
		}
	}
	return b.String(), nil
}

func formatQuotedLiteral(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

func formatAuxLine(a Aux, locals []string) (string, error) {
	groups := make([]string, len(a.VarList))
	for i, idxs := range a.VarList {
		names := make([]string, len(idxs))
		for j, idx := range idxs {
			if idx < 0 || idx >= len(locals) {
				return "", fmt.Errorf("aux group %d: local index %d out of range", i, idx)
			}
			names[j] = locals[idx]
		}
		groups[i] = "{" + strings.Join(names, " ") + "}"
	}
	return strings.Join(groups, " "), nil
}

// disassemble walks code against table, rendering one line per instruction:
// the opcode name followed by its operands in Parse's own syntax (a local
// name for LVT kinds, a decimal integer otherwise).
func disassemble(code []byte, table OpcodeTable, locals []string) ([]string, error) {
	var lines []string
	pos := 0
	for pos < len(code) {
		opByte := code[pos]
		meta, ok := table.Lookup(opByte)
		if !ok {
			return nil, fmt.Errorf("offset %d: unknown opcode byte %d", pos, opByte)
		}
		pos++

		fields := []string{meta.Name}
		for _, kind := range meta.OperandKinds {
			width := kind.Width()
			if pos+width > len(code) {
				return nil, fmt.Errorf("offset %d: truncated %s operand for %s", pos, kind, meta.Name)
			}
			raw := code[pos : pos+width]
			pos += width

			tok, err := formatOperand(kind, raw, locals)
			if err != nil {
				return nil, fmt.Errorf("offset %d: %w", pos-width, err)
			}
			fields = append(fields, tok)
		}
		lines = append(lines, strings.Join(fields, " "))
	}
	return lines, nil
}

func formatOperand(kind OperandKind, raw []byte, locals []string) (string, error) {
	switch kind {
	case LVT1, LVT4:
		idx := int(decodeUint(raw))
		if idx < 0 || idx >= len(locals) {
			return "", fmt.Errorf("local index %d out of range", idx)
		}
		return locals[idx], nil
	case INT1, INT4, IDX4:
		return strconv.FormatInt(decodeInt(raw), 10), nil
	case UINT1, UINT4, AUX4:
		return strconv.FormatUint(decodeUint(raw), 10), nil
	default:
		return "", fmt.Errorf("unsupported operand kind %s", kind)
	}
}

func decodeUint(b []byte) uint64 {
	switch len(b) {
	case 1:
		return uint64(b[0])
	case 4:
		return uint64(b[0])<<24 | uint64(b[1])<<16 | uint64(b[2])<<8 | uint64(b[3])
	default:
		return 0
	}
}

func decodeInt(b []byte) int64 {
	switch len(b) {
	case 1:
		return int64(int8(b[0]))
	case 4:
		return int64(int32(decodeUint(b)))
	default:
		return 0
	}
}
