package models

import (
	"encoding/json"
	"testing"

	"github.com/synheart/synheart-monitor/internal/rhythm"
	"github.com/synheart/synheart-monitor/internal/vitals"
	"github.com/synheart/synheart-monitor/internal/waveform"
)

func TestNewFrame(t *testing.T) {
	state := vitals.FromProfile(rhythm.Builtin().Lookup(rhythm.VT))
	frame := NewFrame("test-frame-id", Session{RunID: "test-run", Seed: 42}, state, 123)

	if frame.SchemaVersion != SchemaVersion {
		t.Errorf("Expected schema version %q, got %s", SchemaVersion, frame.SchemaVersion)
	}
	if frame.FrameID != "test-frame-id" {
		t.Errorf("Expected frame ID 'test-frame-id', got %s", frame.FrameID)
	}
	if frame.Meta.Sequence != 123 {
		t.Errorf("Expected sequence 123, got %d", frame.Meta.Sequence)
	}
	if frame.Session.Mode != "rhythm" {
		t.Errorf("Expected mode 'rhythm', got %s", frame.Session.Mode)
	}
	if !frame.Alerts.Critical {
		t.Error("Expected VT frame to be critical")
	}
}

func TestFrameJSONMarshaling(t *testing.T) {
	state := vitals.FromProfile(rhythm.Builtin().Lookup(rhythm.NSR))
	state.Manual = true
	frame := NewFrame("f-1", Session{RunID: "run"}, state, 1)
	frame.Waveforms = &Waveforms{
		SampleRate: 250,
		Samples:    waveform.Samples{ECG: []float64{0, 0.5}},
	}

	data, err := json.Marshal(frame)
	if err != nil {
		t.Fatalf("Failed to marshal frame: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Failed to unmarshal frame: %v", err)
	}

	v := decoded["vitals"].(map[string]interface{})
	if v["hr"].(float64) != 75 {
		t.Errorf("Expected hr 75, got %v", v["hr"])
	}
	if v["manual"] != true {
		t.Errorf("Expected manual true, got %v", v["manual"])
	}
	if v["ecg_style"] != "nsr" {
		t.Errorf("Expected ecg_style nsr, got %v", v["ecg_style"])
	}

	wf := decoded["waveforms"].(map[string]interface{})
	if wf["sample_rate_hz"].(float64) != 250 {
		t.Errorf("Expected sample rate 250, got %v", wf["sample_rate_hz"])
	}
	if len(wf["ecg"].([]interface{})) != 2 {
		t.Errorf("Expected 2 ecg samples, got %v", wf["ecg"])
	}

	if decoded["session"].(map[string]interface{})["mode"] != "manual" {
		t.Errorf("Expected manual mode in session")
	}
}

func waveFrame(id string, seq int64, from, n int) Frame {
	f := Frame{FrameID: id, Meta: Meta{Sequence: seq}}
	f.Waveforms = &Waveforms{SampleRate: 250}
	for i := from; i < from+n; i++ {
		f.Waveforms.ECG = append(f.Waveforms.ECG, float64(i))
		f.Waveforms.Resp = append(f.Waveforms.Resp, float64(i))
		f.Waveforms.Pleth = append(f.Waveforms.Pleth, float64(i))
	}
	return f
}

func TestCoalesce_KeepsNewestNumericsAndAllSamples(t *testing.T) {
	older := waveFrame("a", 1, 0, 3)
	older.Vitals.HeartRate = 70
	newer := waveFrame("b", 2, 3, 3)
	newer.Vitals.HeartRate = 180

	got := Coalesce(older, newer, 0)

	if got.FrameID != "b" || got.Meta.Sequence != 2 || got.Vitals.HeartRate != 180 {
		t.Errorf("Expected newest frame identity and vitals, got %s/%d/%d", got.FrameID, got.Meta.Sequence, got.Vitals.HeartRate)
	}
	if got.Meta.Coalesced != 1 {
		t.Errorf("Expected 1 coalesced frame, got %d", got.Meta.Coalesced)
	}
	for i, v := range got.Waveforms.ECG {
		if v != float64(i) {
			t.Fatalf("Expected continuous ecg samples, got %v", got.Waveforms.ECG)
		}
	}
	if len(got.Waveforms.Pleth) != 6 || len(got.Waveforms.Resp) != 6 {
		t.Errorf("Expected 6 samples per channel, got %d and %d", len(got.Waveforms.Resp), len(got.Waveforms.Pleth))
	}

	// inputs must not be aliased
	got.Waveforms.ECG[0] = 99
	if newer.Waveforms.ECG[0] != 3 || older.Waveforms.ECG[0] != 0 {
		t.Error("Expected coalesced samples to be a copy")
	}
}

func TestCoalesce_TrimsToNewestSamples(t *testing.T) {
	got := Coalesce(waveFrame("a", 1, 0, 4), waveFrame("b", 2, 4, 4), 5)

	want := []float64{3, 4, 5, 6, 7}
	if len(got.Waveforms.ECG) != len(want) {
		t.Fatalf("Expected %v, got %v", want, got.Waveforms.ECG)
	}
	for i := range want {
		if got.Waveforms.ECG[i] != want[i] {
			t.Fatalf("Expected %v, got %v", want, got.Waveforms.ECG)
		}
	}
}

func TestCoalesce_CountsChainsAndKeepsOlderTraces(t *testing.T) {
	first := Coalesce(waveFrame("a", 1, 0, 2), waveFrame("b", 2, 2, 2), 0)
	numericOnly := Frame{FrameID: "c", Meta: Meta{Sequence: 3}}

	got := Coalesce(first, numericOnly, 0)
	if got.Meta.Coalesced != 2 {
		t.Errorf("Expected 2 coalesced frames, got %d", got.Meta.Coalesced)
	}
	if got.Waveforms == nil || len(got.Waveforms.ECG) != 4 {
		t.Errorf("Expected older traces to be carried, got %+v", got.Waveforms)
	}
}
