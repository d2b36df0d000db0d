package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlaybackTransitions(t *testing.T) {
	start := time.Unix(100, 0)
	p := NewPlayback(start)

	p.Select("/media/vid.mp4", start)
	assert.Equal(t, "/media/vid.mp4", p.CurrentVideo)
	assert.False(t, p.Playing)
	assert.Zero(t, p.CurrentTime)

	playAt := start.Add(2 * time.Second)
	p.Play(4, playAt)
	assert.True(t, p.Playing)
	assert.Equal(t, 4.0, p.CurrentTime)
	assert.Equal(t, playAt, p.LastUpdate)

	pauseAt := playAt.Add(time.Second)
	p.Pause(5)
	assert.False(t, p.Playing)
	assert.Equal(t, 5.0, p.CurrentTime)
	assert.Equal(t, playAt, p.LastUpdate, "pause must not touch lastUpdate")

	p.Seek(30, pauseAt)
	assert.Equal(t, 30.0, p.CurrentTime)
	assert.Equal(t, pauseAt, p.LastUpdate)
	assert.False(t, p.Playing)
}

func TestPlaybackNegativeTimeClamped(t *testing.T) {
	p := NewPlayback(time.Unix(0, 0))
	p.Seek(-3, time.Unix(1, 0))
	assert.Zero(t, p.CurrentTime)
}

func TestPlaybackAdvance(t *testing.T) {
	start := time.Unix(0, 0)

	t.Run("playing", func(t *testing.T) {
		p := NewPlayback(start)
		p.Play(10, start)
		p.Advance(start.Add(1500 * time.Millisecond))
		assert.InDelta(t, 11.5, p.CurrentTime, 1e-9)
		assert.Equal(t, start.Add(1500*time.Millisecond), p.LastUpdate)
	})

	t.Run("paused", func(t *testing.T) {
		p := NewPlayback(start)
		p.Seek(10, start)
		for i := 1; i <= 5; i++ {
			p.Advance(start.Add(time.Duration(i) * time.Second))
		}
		assert.Equal(t, 10.0, p.CurrentTime)
		assert.Equal(t, start, p.LastUpdate)
	})

	t.Run("clock behind", func(t *testing.T) {
		p := NewPlayback(start)
		p.Play(10, start)
		p.Advance(start.Add(-time.Second))
		assert.Equal(t, 10.0, p.CurrentTime)
	})
}

func TestPlaybackJSON(t *testing.T) {
	p := Playback{
		CurrentVideo: "vid.mp4",
		Playing:      true,
		CurrentTime:  3,
		LastUpdate:   time.UnixMilli(1700000000123),
	}

	data, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"currentVideo":"vid.mp4","playing":true,"currentTime":3,"lastUpdate":1700000000123}`, string(data))

	var decoded Playback
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, p.CurrentVideo, decoded.CurrentVideo)
	assert.True(t, p.LastUpdate.Equal(decoded.LastUpdate))
}
