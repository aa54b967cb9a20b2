package event

import (
	"runtime"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/gomidi/midi/v2"
)

func TestNewQueueCapacity(t *testing.T) {
	for _, c := range []int{0, 1, 3, 12} {
		_, err := NewQueue(c)
		assert.ErrorIs(t, err, ErrCapacity, "capacity %d", c)
	}
	q, err := NewQueue(16)
	require.NoError(t, err)
	assert.Equal(t, 16, q.Cap())
	assert.Equal(t, 0, q.Len())
}

func TestQueueFIFO(t *testing.T) {
	q, err := NewQueue(16)
	require.NoError(t, err)
	for i := 0; i < q.Cap()-1; i++ {
		require.NoError(t, q.Put(NewKeyDown(i)))
	}
	assert.Equal(t, 15, q.Len())
	for i := 0; i < q.Cap()-1; i++ {
		e, ok := q.Get()
		require.True(t, ok)
		assert.Equal(t, KeyDown, e.Kind)
		assert.Equal(t, i, e.Key)
	}
	_, ok := q.Get()
	assert.False(t, ok)
}

func TestQueueFull(t *testing.T) {
	q, err := NewQueue(8, WithLocker(&sync.Mutex{}))
	require.NoError(t, err)
	for i := 0; i < q.Cap(); i++ {
		require.NoError(t, q.Put(NewKeyUp(i)))
	}
	assert.ErrorIs(t, q.Put(NewKeyUp(99)), ErrQueueFull)

	// draining one slot makes room for exactly one more
	e, ok := q.Get()
	require.True(t, ok)
	assert.Equal(t, 0, e.Key)
	require.NoError(t, q.Put(NewKeyUp(8)))
	assert.ErrorIs(t, q.Put(NewKeyUp(9)), ErrQueueFull)
}

func TestQueueWraps(t *testing.T) {
	q, err := NewQueue(4)
	require.NoError(t, err)
	next := 0
	for round := 0; round < 100; round++ {
		require.NoError(t, q.Put(NewKeyDown(round*2)))
		require.NoError(t, q.Put(NewKeyDown(round*2+1)))
		for range 2 {
			e, ok := q.Get()
			require.True(t, ok)
			require.Equal(t, next, e.Key)
			next++
		}
	}
}

func TestQueueConcurrentProducer(t *testing.T) {
	const n = 10000
	q, err := NewQueue(64)
	require.NoError(t, err)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < n; {
			if q.Put(NewKeyDown(i)) != nil {
				runtime.Gosched()
				continue
			}
			i++
		}
	}()

	for want := 0; want < n; {
		e, ok := q.Get()
		if !ok {
			runtime.Gosched()
			continue
		}
		require.Equal(t, want, e.Key)
		want++
	}
	wg.Wait()
}

func TestMIDIPacking(t *testing.T) {
	msg := midi.NoteOn(1, 60, 100)
	e := NewMIDI(msg)
	assert.Equal(t, Midi, e.Kind)
	assert.Equal(t, uint32(0x913c64), e.Msg)

	var buf [3]byte
	got := Unpack(e.Msg, &buf)
	var ch, key, vel uint8
	require.True(t, got.GetNoteStart(&ch, &key, &vel))
	assert.Equal(t, []uint8{1, 60, 100}, []uint8{ch, key, vel})

	// two byte messages are zero padded
	assert.Equal(t, uint32(0xc00500), Pack(midi.ProgramChange(0, 5)))
}

func TestEventString(t *testing.T) {
	assert.Equal(t, "key-down 2", NewKeyDown(2).String())
	assert.Equal(t, "midi 903c40", NewMIDI(midi.NoteOn(0, 60, 64)).String())
	assert.Equal(t, "audio 256", NewAudioBlockReady(make([]int16, 256)).String())
	assert.Equal(t, "none", Event{}.String())
}

func BenchmarkPutGet(b *testing.B) {
	q, _ := NewQueue(16)
	e := NewKeyDown(1)
	b.ReportAllocs()
	for b.Loop() {
		_ = q.Put(e)
		q.Get()
	}
}
