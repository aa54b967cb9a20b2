package sequencer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetronomeProgram(t *testing.T) {
	want := []byte{
		2, 1, 69, 100, 4,
		3, 12,
		2, 1, 60, 100, 4,
		3, 12,
		2, 1, 60, 100, 4,
		3, 12,
		2, 1, 60, 100, 4,
		3, 12,
		1,
	}
	assert.Equal(t, want, Metronome(1))
	assert.NoError(t, Validate(want))
}

func TestAssembleRoundTrip(t *testing.T) {
	prog, err := Assemble(Disassemble(Metronome(5)))
	require.NoError(t, err)
	assert.Equal(t, Metronome(5), prog)
}

func TestAssemble(t *testing.T) {
	src := `
# two notes
NOTE 0 60 127 8 ; rest 8
nop   # spacer
loop
`
	prog, err := Assemble(src)
	require.NoError(t, err)
	assert.Equal(t, []byte{2, 0, 60, 127, 8, 3, 8, 0, 1}, prog)
}

func TestAssembleErrors(t *testing.T) {
	tests := map[string]string{
		"unknown opcode":  "jump 3",
		"missing operand": "rest",
		"extra operand":   "loop 1",
		"out of range":    "note 0 300 1 1",
		"not a number":    "rest x",
	}
	for name, src := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Assemble("nop\n" + src)
			assert.ErrorIs(t, err, ErrSyntax)
			assert.Contains(t, err.Error(), "line 2")
		})
	}

	_, err := Assemble("# nothing")
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestOpcodeString(t *testing.T) {
	assert.Equal(t, "note", OpNote.String())
	assert.Equal(t, "op(7)", Opcode(7).String())
	assert.Zero(t, Opcode(7).Size())
}

func TestDisassembleBadProgram(t *testing.T) {
	assert.Equal(t, "nop\n# bad 9 at 1\n", Disassemble([]byte{0, 9}))
}
