package domain

import (
	"encoding/json"
	"time"
)

// Playback is the authoritative playback position of a room.
// CurrentTime only moves forward on its own while Playing is set.
type Playback struct {
	CurrentVideo string
	Playing      bool
	CurrentTime  float64
	LastUpdate   time.Time
}

func NewPlayback(now time.Time) Playback {
	return Playback{
		CurrentVideo: "",
		Playing:      false,
		CurrentTime:  0,
		LastUpdate:   now,
	}
}

func (p *Playback) Select(video string, now time.Time) {
	p.CurrentVideo = video
	p.CurrentTime = 0
	p.Playing = false
	p.LastUpdate = now
}

func (p *Playback) Play(currentTime float64, now time.Time) {
	p.Playing = true
	p.CurrentTime = clampTime(currentTime)
	p.LastUpdate = now
}

// Pause leaves LastUpdate untouched.
func (p *Playback) Pause(currentTime float64) {
	p.Playing = false
	p.CurrentTime = clampTime(currentTime)
}

func (p *Playback) Seek(currentTime float64, now time.Time) {
	p.CurrentTime = clampTime(currentTime)
	p.LastUpdate = now
}

// Advance extrapolates CurrentTime up to now. It is a no-op while paused
// and when now is not after LastUpdate.
func (p *Playback) Advance(now time.Time) {
	if !p.Playing {
		return
	}

	elapsed := now.Sub(p.LastUpdate)
	if elapsed <= 0 {
		return
	}

	p.CurrentTime += elapsed.Seconds()
	p.LastUpdate = now
}

func clampTime(t float64) float64 {
	if t < 0 {
		return 0
	}

	return t
}

type playbackJSON struct {
	CurrentVideo string  `json:"currentVideo"`
	Playing      bool    `json:"playing"`
	CurrentTime  float64 `json:"currentTime"`
	LastUpdate   int64   `json:"lastUpdate"`
}

func (p Playback) MarshalJSON() ([]byte, error) {
	return json.Marshal(playbackJSON{
		CurrentVideo: p.CurrentVideo,
		Playing:      p.Playing,
		CurrentTime:  p.CurrentTime,
		LastUpdate:   p.LastUpdate.UnixMilli(),
	})
}

func (p *Playback) UnmarshalJSON(data []byte) error {
	var v playbackJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}

	p.CurrentVideo = v.CurrentVideo
	p.Playing = v.Playing
	p.CurrentTime = v.CurrentTime
	p.LastUpdate = time.UnixMilli(v.LastUpdate)
	return nil
}
