package models

import (
	"time"

	"github.com/synheart/synheart-monitor/internal/alert"
	"github.com/synheart/synheart-monitor/internal/history"
	"github.com/synheart/synheart-monitor/internal/vitals"
	"github.com/synheart/synheart-monitor/internal/waveform"
)

// SchemaVersion identifies the display frame format
const SchemaVersion = "monitor.frame.v1"

// Frame is one update pushed to display clients
type Frame struct {
	SchemaVersion string           `json:"schema_version"`
	FrameID       string           `json:"frame_id"`
	Timestamp     string           `json:"ts"`
	Session       Session          `json:"session"`
	Vitals        vitals.State     `json:"vitals"`
	Alerts        alert.Assessment `json:"alerts"`
	Waveforms     *Waveforms       `json:"waveforms,omitempty"`
	Review        []history.Entry  `json:"review,omitempty"`
	Meta          Meta             `json:"meta"`
}

// Session describes the running monitor
type Session struct {
	RunID string `json:"run_id"`
	Seed  int64  `json:"seed"`
	Mode  string `json:"mode"`
}

// Waveforms carries a batch of trace samples
type Waveforms struct {
	SampleRate float64 `json:"sample_rate_hz"`
	waveform.Samples
}

// Meta contains additional frame metadata
type Meta struct {
	Sequence int64 `json:"sequence"`
	// Coalesced counts earlier frames folded into this one for a slow display
	Coalesced int `json:"coalesced,omitempty"`
}

// NewFrame creates a frame for a snapshot with the current timestamp
func NewFrame(frameID string, session Session, state vitals.State, sequence int64) Frame {
	session.Mode = state.Mode().String()
	return Frame{
		SchemaVersion: SchemaVersion,
		FrameID:       frameID,
		Timestamp:     time.Now().UTC().Format(time.RFC3339Nano),
		Session:       session,
		Vitals:        state,
		Alerts:        alert.Evaluate(state),
		Meta: Meta{
			Sequence: sequence,
		},
	}
}

// Coalesce folds an undelivered frame into the newer one. The result carries
// the newer numerics, alerts and review, and the trace samples of both in
// order, keeping at most maxSamples per channel (zero keeps all).
func Coalesce(older, newer Frame, maxSamples int) Frame {
	out := newer
	out.Meta.Coalesced = older.Meta.Coalesced + newer.Meta.Coalesced + 1

	switch {
	case older.Waveforms == nil:
	case newer.Waveforms == nil:
		w := *older.Waveforms
		out.Waveforms = &w
	default:
		out.Waveforms = &Waveforms{
			SampleRate: newer.Waveforms.SampleRate,
			Samples: waveform.Samples{
				ECG:   joinTail(older.Waveforms.ECG, newer.Waveforms.ECG, maxSamples),
				Resp:  joinTail(older.Waveforms.Resp, newer.Waveforms.Resp, maxSamples),
				Pleth: joinTail(older.Waveforms.Pleth, newer.Waveforms.Pleth, maxSamples),
			},
		}
	}
	return out
}

func joinTail(a, b []float64, max int) []float64 {
	joined := make([]float64, 0, len(a)+len(b))
	joined = append(joined, a...)
	joined = append(joined, b...)
	if max > 0 && len(joined) > max {
		joined = joined[len(joined)-max:]
	}
	return joined
}
