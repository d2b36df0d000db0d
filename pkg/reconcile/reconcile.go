// Package reconcile applies authoritative playback state to a local player.
// A local position within Tolerance of the authoritative one is left alone
// so network latency does not cause visible jumps.
package reconcile

import (
	"math"
	"sync"
)

const Tolerance = 1.0

type State struct {
	CurrentVideo string  `json:"currentVideo"`
	Playing      bool    `json:"playing"`
	CurrentTime  float64 `json:"currentTime"`
}

type Player interface {
	Source() string
	Load(video string)
	// Ready reports whether Position can be trusted.
	Ready() bool
	Position() float64
	Seek(position float64)
	Paused() bool
	Play()
	Pause()
}

func NeedsSeek(local, authoritative float64) bool {
	return math.Abs(local-authoritative) > Tolerance
}

type Reconciler struct {
	player  Player
	pending *State
	mu      sync.Mutex
}

func New(player Player) *Reconciler {
	return &Reconciler{player: player}
}

// Apply switches media if needed and then aligns position and play state.
// If the player is not ready the state is kept until OnReady, replacing any
// state that was already waiting.
func (r *Reconciler) Apply(state State) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if state.CurrentVideo != "" && r.player.Source() != state.CurrentVideo {
		r.player.Load(state.CurrentVideo)
	}

	if !r.player.Ready() {
		r.pending = &state
		return
	}

	r.pending = nil
	r.align(state)
}

func (r *Reconciler) OnReady() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.pending == nil || !r.player.Ready() {
		return
	}

	state := *r.pending
	r.pending = nil
	r.align(state)
}

func (r *Reconciler) Pending() (State, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.pending == nil {
		return State{}, false
	}

	return *r.pending, true
}

func (r *Reconciler) align(state State) {
	if NeedsSeek(r.player.Position(), state.CurrentTime) {
		r.player.Seek(state.CurrentTime)
	}

	switch {
	case state.Playing && r.player.Paused():
		r.player.Play()
	case !state.Playing && !r.player.Paused():
		r.player.Pause()
	}
}
