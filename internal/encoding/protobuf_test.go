package encoding

import (
	"encoding/json"
	"errors"
	"testing"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/synheart/synheart-monitor/internal/models"
	"github.com/synheart/synheart-monitor/internal/rhythm"
	"github.com/synheart/synheart-monitor/internal/vitals"
	"github.com/synheart/synheart-monitor/internal/waveform"
)

func testFrame() models.Frame {
	state := vitals.FromProfile(rhythm.Builtin().Lookup(rhythm.VT))
	frame := models.NewFrame("test-123", models.Session{RunID: "run-1", Seed: 42}, state, 1)
	frame.Timestamp = "2025-01-02T10:00:00Z"
	return frame
}

func TestProtobufEncoder_Vitals(t *testing.T) {
	enc := NewProtobufEncoder()

	data, err := enc.Encode(testFrame())
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	var pb structpb.Struct
	if err := proto.Unmarshal(data, &pb); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	fields := pb.GetFields()
	if fields["schema_version"].GetStringValue() != models.SchemaVersion {
		t.Errorf("schema version = %q, want %s", fields["schema_version"].GetStringValue(), models.SchemaVersion)
	}
	if fields["frame_id"].GetStringValue() != "test-123" {
		t.Errorf("frame_id = %q, want test-123", fields["frame_id"].GetStringValue())
	}

	v := fields["vitals"].GetStructValue().GetFields()
	if v["hr"].GetNumberValue() != 180 {
		t.Errorf("vitals.hr = %v, want 180", v["hr"].GetNumberValue())
	}
	if v["rhythm"].GetStringValue() != "VT" {
		t.Errorf("vitals.rhythm = %q, want VT", v["rhythm"].GetStringValue())
	}
	bp := v["bp"].GetStructValue().GetFields()
	if bp["sys"].GetNumberValue() != 90 || bp["dia"].GetNumberValue() != 60 {
		t.Errorf("vitals.bp = %v/%v, want 90/60", bp["sys"].GetNumberValue(), bp["dia"].GetNumberValue())
	}

	alerts := fields["alerts"].GetStructValue().GetFields()
	if !alerts["critical"].GetBoolValue() {
		t.Error("alerts.critical = false, want true")
	}
}

func TestProtobufEncoder_Waveforms(t *testing.T) {
	enc := NewProtobufEncoder()
	frame := testFrame()
	frame.Waveforms = &models.Waveforms{
		SampleRate: 250,
		Samples:    waveform.Samples{ECG: []float64{0.1, -0.2, 0.9}},
	}

	data, err := enc.Encode(frame)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	var pb structpb.Struct
	if err := proto.Unmarshal(data, &pb); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	ecg := pb.GetFields()["waveforms"].GetStructValue().GetFields()["ecg"].GetListValue().GetValues()
	if len(ecg) != 3 {
		t.Fatalf("expected 3 ecg samples, got %d", len(ecg))
	}
	if ecg[2].GetNumberValue() != 0.9 {
		t.Errorf("ecg[2] = %v, want 0.9", ecg[2].GetNumberValue())
	}
}

func TestJSONEncoder(t *testing.T) {
	enc := NewJSONEncoder()
	data, err := enc.Encode(testFrame())
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	var decoded models.Frame
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if decoded.Vitals.HeartRate != 180 {
		t.Errorf("hr = %d, want 180", decoded.Vitals.HeartRate)
	}
}

func TestProtobufEncoder_ContentType(t *testing.T) {
	enc := NewProtobufEncoder()
	if ct := enc.ContentType(); ct != "application/x-protobuf" {
		t.Errorf("content type = %q, want application/x-protobuf", ct)
	}
}

func TestNewEncoder_Factory(t *testing.T) {
	jsonEnc := NewEncoder(FormatJSON)
	if jsonEnc.ContentType() != "application/json" {
		t.Errorf("json encoder content type = %q", jsonEnc.ContentType())
	}

	protoEnc := NewEncoder(FormatProtobuf)
	if protoEnc.ContentType() != "application/x-protobuf" {
		t.Errorf("protobuf encoder content type = %q", protoEnc.ContentType())
	}
	if jsonEnc.Binary() || !protoEnc.Binary() {
		t.Error("only protobuf frames are binary")
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"json", FormatJSON},
		{" Protobuf ", FormatProtobuf},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
		}
	}

	if _, err := ParseFormat("xml"); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("expected ErrUnknownFormat for xml, got %v", err)
	}
}
