package sequencer

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noteEvent struct {
	block int
	on    bool
	ch    uint8
	note  uint8
	vel   uint8
}

// recordingSink notes which block each note event arrived in.
type recordingSink struct {
	block  int
	events []noteEvent
}

func (r *recordingSink) NoteOn(ch, note, vel uint8) {
	r.events = append(r.events, noteEvent{r.block, true, ch, note, vel})
}

func (r *recordingSink) NoteOff(ch, note, vel uint8) {
	r.events = append(r.events, noteEvent{r.block, false, ch, note, 0})
}

// run executes n blocks, numbering them from 1.
func (r *recordingSink) run(s *Sequencer, n int) {
	for range n {
		r.block++
		s.Exec()
	}
}

// 32 kHz with 125 frame blocks is 256 blocks per second. At 120 BPM a tick
// is 1/32 s, so ticks fall every 8 blocks; the strict comparison puts tick n
// on block 8n+1.
const (
	testRate  = 32000
	testBlock = 125
)

// oneTickPerBlock is the tempo at which a tick lasts exactly one second, so
// with one second blocks tick n lands on block n+1.
const oneTickPerBlock = 60.0 / TicksPerBeat

func TestMetronomeTiming(t *testing.T) {
	sink := &recordingSink{}
	s, err := New(sink, testRate, testBlock)
	require.NoError(t, err)
	s.Start()
	sink.run(s, 8*33)

	want := []noteEvent{
		{9, true, 1, 69, 100},
		{33, false, 1, 69, 0},
		{137, true, 1, 60, 100},
		{161, false, 1, 60, 0},
	}
	require.GreaterOrEqual(t, len(sink.events), len(want))
	assert.Equal(t, want, sink.events[:len(want)])
	assert.EqualValues(t, 32, s.Ticks())
}

func TestMetronomeLoops(t *testing.T) {
	sink := &recordingSink{}
	loops := 0
	s, err := New(sink, testRate, testBlock, WithLoopHook(func() { loops++ }))
	require.NoError(t, err)
	s.Start()
	// four beats of 16 ticks, one tick for the loop op, then the first note
	sink.run(s, 8*66+1)
	assert.Equal(t, 1, loops)
	last := sink.events[len(sink.events)-1]
	assert.Equal(t, noteEvent{8*65 + 1 + 8, true, 1, 69, 100}, last)
}

func TestNoteOffPrecedesNextNote(t *testing.T) {
	prog, err := Assemble("note 0 60 90 2; note 0 62 90 1; loop")
	require.NoError(t, err)
	sink := &recordingSink{}
	s, err := New(sink, 1000, 1000, WithProgram(prog), WithBPM(oneTickPerBlock))
	require.NoError(t, err)
	s.Start()
	sink.run(s, 6)
	assert.Equal(t, []noteEvent{
		{2, true, 0, 60, 90},
		{3, false, 0, 60, 0},
		{4, true, 0, 62, 90},
		{4, false, 0, 62, 0},
		{6, true, 0, 60, 90},
	}, sink.events[:5])
}

func TestTicksCountWhileStopped(t *testing.T) {
	sink := &recordingSink{}
	s, err := New(sink, testRate, testBlock)
	require.NoError(t, err)
	sink.run(s, 8*10+1)
	assert.EqualValues(t, 10, s.Ticks())
	assert.Empty(t, sink.events)
	assert.False(t, s.Running())
}

func TestStopReleasesNote(t *testing.T) {
	sink := &recordingSink{}
	s, err := New(sink, testRate, testBlock)
	require.NoError(t, err)
	s.Toggle()
	assert.True(t, s.Running())
	sink.run(s, 9)
	require.Len(t, sink.events, 1)

	s.Toggle()
	assert.False(t, s.Running())
	require.Len(t, sink.events, 2)
	assert.Equal(t, noteEvent{9, false, 1, 69, 0}, sink.events[1])

	// restarting begins at the top of the program
	s.Start()
	sink.run(s, 8)
	require.Len(t, sink.events, 3)
	assert.Equal(t, uint8(69), sink.events[2].note)
	assert.True(t, sink.events[2].on)
}

func TestLongBlocksRunSeveralTicks(t *testing.T) {
	prog, err := Assemble("nop; nop; nop; nop; note 2 40 1 1; loop")
	require.NoError(t, err)
	sink := &recordingSink{}
	// one block is 0.1 s; a tick at 120 BPM is 1/32 s
	s, err := New(sink, 1000, 100, WithProgram(prog))
	require.NoError(t, err)
	s.Start()
	sink.run(s, 2)
	assert.EqualValues(t, 6, s.Ticks())
	assert.Equal(t, []noteEvent{{2, true, 2, 40, 1}, {2, false, 2, 40, 0}}, sink.events)
}

func TestZeroDurationIsOneTick(t *testing.T) {
	prog := []byte{byte(OpRest), 0, byte(OpNote), 0, 1, 1, 0, byte(OpLoop)}
	sink := &recordingSink{}
	s, err := New(sink, 1000, 1000, WithProgram(prog), WithBPM(oneTickPerBlock))
	require.NoError(t, err)
	s.Start()
	sink.run(s, 3)
	assert.Equal(t, []noteEvent{{3, true, 0, 1, 1}, {3, false, 0, 1, 0}}, sink.events)
}

func TestSetBPM(t *testing.T) {
	s, err := New(&recordingSink{}, testRate, testBlock)
	require.NoError(t, err)
	assert.Equal(t, float64(DefaultBPM), s.BPM())
	require.NoError(t, s.SetBPM(240))
	assert.InDelta(t, 60.0/(240*16), s.secsPerTick, 1e-12)
	assert.Error(t, s.SetBPM(0))
	assert.Error(t, s.SetBPM(-10))

	_, err = New(&recordingSink{}, 0, testBlock)
	assert.Error(t, err)
	_, err = New(&recordingSink{}, testRate, testBlock, WithBPM(0))
	assert.Error(t, err)
}

func TestLoadRejectsBadPrograms(t *testing.T) {
	s, err := New(&recordingSink{}, testRate, testBlock)
	require.NoError(t, err)
	assert.ErrorIs(t, s.Load([]byte{9}), ErrBadOpcode)
	assert.ErrorIs(t, s.Load([]byte{byte(OpNote), 1, 2}), ErrTruncated)
	assert.ErrorIs(t, s.Load(nil), ErrTruncated)
	assert.Equal(t, Metronome(1), s.Program())

	_, err = New(&recordingSink{}, testRate, testBlock, WithProgram([]byte{byte(OpRest)}))
	assert.ErrorIs(t, err, ErrTruncated)
}

func BenchmarkExec(b *testing.B) {
	s, _ := New(&recordingSink{}, 48000, 64, WithBPM(600))
	s.Start()
	for b.Loop() {
		s.Exec()
	}
}

func ExampleDisassemble() {
	fmt.Print(Disassemble(Metronome(3)[:7]))
	// Output:
	// note 3 69 100 4
	// rest 12
}
