package rhythm

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input string
		want  ID
		ok    bool
	}{
		{"NSR", NSR, true},
		{" vt ", VT, true},
		{"av-block", AVBlock, true},
		{"AV_BLOCK", AVBlock, true},
		{"avblock", AVBlock, true},
		{"asystole", ASYSTOLE, true},
		{"torsades", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, err := Parse(tt.input)
		if !tt.ok {
			assert.ErrorIs(t, err, ErrUnknownRhythm, "Parse(%q)", tt.input)
			continue
		}
		require.NoError(t, err, "Parse(%q)", tt.input)
		assert.Equal(t, tt.want, got)
	}
}

func TestBuiltinTable(t *testing.T) {
	table := Builtin()

	for _, id := range All() {
		p := table.Lookup(id)
		assert.Equal(t, id, p.ID)
		assert.NotEmpty(t, p.Description)
	}

	vt := table.Lookup(VT)
	assert.Equal(t, 180, vt.HeartRate)
	assert.Equal(t, 88, vt.SpO2)
	assert.Equal(t, 24, vt.RespirationRate)
	assert.Equal(t, BloodPressure{Systolic: 90, Diastolic: 60}, vt.BloodPressure)
	assert.Equal(t, ECGVT, vt.ECG)
	assert.Equal(t, RespRapid, vt.Resp)
	assert.Equal(t, SpO2Weak, vt.SpO2Wave)

	nsr := table.Lookup(Default)
	assert.Equal(t, 75, nsr.HeartRate)
	assert.Equal(t, BloodPressure{Systolic: 120, Diastolic: 80}, nsr.BloodPressure)

	asystole := table.Lookup(ASYSTOLE)
	assert.Zero(t, asystole.HeartRate)
	assert.Equal(t, ECGFlat, asystole.ECG)
}

func TestLookupUnknownPanics(t *testing.T) {
	assert.Panics(t, func() { Builtin().Lookup(ID("TORSADES")) })
}

func TestParseTable_Validation(t *testing.T) {
	base := string(embeddedProfiles)

	tests := []struct {
		name    string
		doc     string
		wantErr string
	}{
		{
			name:    "missing rhythm",
			doc:     strings.Replace(base, "id: PACED", "id: NSR", 1),
			wantErr: "duplicate profile",
		},
		{
			name:    "unknown style",
			doc:     strings.Replace(base, "ecg: vt", "ecg: torsades", 1),
			wantErr: "unknown ecg style",
		},
		{
			name:    "negative value",
			doc:     strings.Replace(base, "heart_rate: 46", "heart_rate: -46", 1),
			wantErr: "non-negative",
		},
		{
			name:    "empty",
			doc:     "profiles: []",
			wantErr: "missing profile",
		},
		{
			name:    "bad yaml",
			doc:     "profiles: [",
			wantErr: "failed to parse",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTable([]byte(tt.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.yaml")
	doc := strings.Replace(string(embeddedProfiles), "heart_rate: 75", "heart_rate: 64", 1)
	require.NoError(t, os.WriteFile(path, []byte(doc), 0644))

	table, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 64, table.Lookup(NSR).HeartRate)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestParseStyles_FallBackToUnknown(t *testing.T) {
	assert.Equal(t, ECGPaced, ParseECGStyle("paced"))
	assert.Equal(t, ECGUnknown, ParseECGStyle("torsades"))
	assert.Equal(t, RespSlow, ParseRespStyle("slow"))
	assert.Equal(t, RespUnknown, ParseRespStyle("gasping"))
	assert.Equal(t, SpO2Noisy, ParseSpO2Style("noisy"))
	assert.Equal(t, SpO2Unknown, ParseSpO2Style(""))
}
