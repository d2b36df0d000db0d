package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakePlayer struct {
	source   string
	ready    bool
	position float64
	paused   bool
	seeks    []float64
	loads    []string
}

func (p *fakePlayer) Source() string    { return p.source }
func (p *fakePlayer) Ready() bool       { return p.ready }
func (p *fakePlayer) Position() float64 { return p.position }
func (p *fakePlayer) Paused() bool      { return p.paused }
func (p *fakePlayer) Play()             { p.paused = false }
func (p *fakePlayer) Pause()            { p.paused = true }
func (p *fakePlayer) Seek(position float64) {
	p.seeks = append(p.seeks, position)
	p.position = position
}

func (p *fakePlayer) Load(video string) {
	p.loads = append(p.loads, video)
	p.source = video
	p.ready = false
	p.position = 0
}

func TestNeedsSeek(t *testing.T) {
	assert.True(t, NeedsSeek(10.4, 11.6))
	assert.False(t, NeedsSeek(10.4, 11.2))
	assert.False(t, NeedsSeek(11.6, 10.6))
	assert.True(t, NeedsSeek(0, 1.01))
}

func TestApplySnapsOnlyOutsideTolerance(t *testing.T) {
	tests := []struct {
		name      string
		local     float64
		remote    float64
		wantSeeks []float64
		wantPos   float64
	}{
		{"outside tolerance", 10.4, 11.6, []float64{11.6}, 11.6},
		{"within tolerance", 10.4, 11.2, nil, 10.4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &fakePlayer{source: "vid.mp4", ready: true, position: tt.local, paused: true}
			New(p).Apply(State{CurrentVideo: "vid.mp4", Playing: true, CurrentTime: tt.remote})

			assert.Equal(t, tt.wantSeeks, p.seeks)
			assert.Equal(t, tt.wantPos, p.position)
			assert.False(t, p.paused)
		})
	}
}

func TestApplySwitchesMediaAndDefersUntilReady(t *testing.T) {
	p := &fakePlayer{source: "old.mp4", ready: true, position: 30}
	r := New(p)

	r.Apply(State{CurrentVideo: "new.mp4", Playing: true, CurrentTime: 5})
	assert.Equal(t, []string{"new.mp4"}, p.loads)
	assert.Empty(t, p.seeks)

	// a newer state arrives while loading; only it is applied
	r.Apply(State{CurrentVideo: "new.mp4", Playing: false, CurrentTime: 8})
	assert.Len(t, p.loads, 1)
	pending, ok := r.Pending()
	assert.True(t, ok)
	assert.Equal(t, 8.0, pending.CurrentTime)

	p.ready = true
	r.OnReady()

	assert.Equal(t, []float64{8}, p.seeks)
	assert.True(t, p.paused)
	_, ok = r.Pending()
	assert.False(t, ok)

	r.OnReady()
	assert.Len(t, p.seeks, 1)
}
