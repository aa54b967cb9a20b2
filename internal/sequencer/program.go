package sequencer

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrBadOpcode = errors.New("sequencer: bad opcode")
	ErrTruncated = errors.New("sequencer: truncated program")
	ErrSyntax    = errors.New("sequencer: syntax error")
)

// Opcode is the first byte of every program instruction.
type Opcode uint8

const (
	OpNop  Opcode = iota // nop
	OpLoop               // loop: return to the start of the program
	OpNote               // note channel note velocity duration
	OpRest               // rest duration
)

var opInfo = [...]struct {
	name string
	size int
}{
	OpNop:  {"nop", 1},
	OpLoop: {"loop", 1},
	OpNote: {"note", 5},
	OpRest: {"rest", 2},
}

// Size returns the encoded length of the instruction, or 0 for an unknown
// opcode.
func (op Opcode) Size() int {
	if int(op) < len(opInfo) {
		return opInfo[op].size
	}
	return 0
}

func (op Opcode) String() string {
	if int(op) < len(opInfo) {
		return opInfo[op].name
	}
	return fmt.Sprintf("op(%d)", uint8(op))
}

// Note durations in ticks.
const (
	Whole        = 64
	Half         = 32
	Quarter      = 16
	Eighth       = 8
	Sixteenth    = 4
	ThirtySecond = 2
	SixtyFourth  = 1
)

// Validate checks that prog is a non-empty sequence of whole instructions.
func Validate(prog []byte) error {
	if len(prog) == 0 {
		return fmt.Errorf("%w: empty", ErrTruncated)
	}
	for pc := 0; pc < len(prog); {
		op := Opcode(prog[pc])
		n := op.Size()
		if n == 0 {
			return fmt.Errorf("%w %d at offset %d", ErrBadOpcode, prog[pc], pc)
		}
		if pc+n > len(prog) {
			return fmt.Errorf("%w: %s at offset %d needs %d bytes, %d left", ErrTruncated, op, pc, n, len(prog)-pc)
		}
		pc += n
	}
	return nil
}

// Metronome returns a 4/4 click on ch: an accented A4 followed by three C4s,
// each a sixteenth note then a rest to the end of the beat.
func Metronome(ch uint8) []byte {
	var prog []byte
	for _, note := range []uint8{69, 60, 60, 60} {
		prog = append(prog,
			byte(OpNote), ch, note, 100, Sixteenth,
			byte(OpRest), Quarter-Sixteenth,
		)
	}
	return append(prog, byte(OpLoop))
}

// Assemble compiles the text form of a program. Each statement is an opcode
// name followed by its decimal operands; statements are separated by
// newlines or semicolons and '#' starts a comment:
//
//	note 1 69 100 4   # channel note velocity duration
//	rest 12
//	loop
func Assemble(src string) ([]byte, error) {
	var prog []byte
	for lineNo, line := range strings.Split(src, "\n") {
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		for stmt := range strings.SplitSeq(line, ";") {
			fields := strings.Fields(stmt)
			if len(fields) == 0 {
				continue
			}
			code, err := assemble(fields)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo+1, err)
			}
			prog = append(prog, code...)
		}
	}
	if err := Validate(prog); err != nil {
		return nil, err
	}
	return prog, nil
}

func assemble(fields []string) ([]byte, error) {
	name := strings.ToLower(fields[0])
	for op, info := range opInfo {
		if info.name != name {
			continue
		}
		if len(fields) != info.size {
			return nil, fmt.Errorf("%w: %s takes %d operands, got %d", ErrSyntax, name, info.size-1, len(fields)-1)
		}
		code := []byte{byte(op)}
		for _, f := range fields[1:] {
			v, err := strconv.ParseUint(f, 10, 8)
			if err != nil {
				return nil, fmt.Errorf("%w: %s operand %q is not 0..255", ErrSyntax, name, f)
			}
			code = append(code, byte(v))
		}
		return code, nil
	}
	return nil, fmt.Errorf("%w: unknown opcode %q", ErrSyntax, fields[0])
}

// Disassemble renders a valid program in the form accepted by Assemble, one
// instruction per line.
func Disassemble(prog []byte) string {
	var b strings.Builder
	for pc := 0; pc < len(prog); {
		op := Opcode(prog[pc])
		n := op.Size()
		if n == 0 || pc+n > len(prog) {
			fmt.Fprintf(&b, "# bad %d at %d\n", prog[pc], pc)
			break
		}
		b.WriteString(op.String())
		for _, v := range prog[pc+1 : pc+n] {
			b.WriteByte(' ')
			b.WriteString(strconv.Itoa(int(v)))
		}
		b.WriteByte('\n')
		pc += n
	}
	return b.String()
}
