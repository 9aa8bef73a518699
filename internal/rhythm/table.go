package rhythm

import (
	_ "embed"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed profiles.yaml
var embeddedProfiles []byte

// Table maps every supported rhythm to its profile. It is read-only once
// built.
type Table struct {
	profiles map[ID]Profile
}

var (
	builtinOnce  sync.Once
	builtinTable *Table
)

// Builtin returns the table compiled into the binary
func Builtin() *Table {
	builtinOnce.Do(func() {
		t, err := ParseTable(embeddedProfiles)
		if err != nil {
			panic(fmt.Sprintf("rhythm: embedded profiles are invalid: %v", err))
		}
		builtinTable = t
	})
	return builtinTable
}

// LoadFile builds a table from a YAML profiles file
func LoadFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profiles file: %w", err)
	}
	t, err := ParseTable(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load profiles from %s: %w", path, err)
	}
	return t, nil
}

// ParseTable builds a table from YAML. The document must define exactly one
// profile for each supported rhythm.
func ParseTable(data []byte) (*Table, error) {
	var doc tableDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse profiles YAML: %w", err)
	}

	profiles := make(map[ID]Profile, len(all))
	for _, d := range doc.Profiles {
		p, err := d.toProfile()
		if err != nil {
			return nil, err
		}
		if _, dup := profiles[p.ID]; dup {
			return nil, fmt.Errorf("duplicate profile for rhythm %s", p.ID)
		}
		profiles[p.ID] = p
	}

	for _, id := range all {
		if _, ok := profiles[id]; !ok {
			return nil, fmt.Errorf("missing profile for rhythm %s", id)
		}
	}

	return &Table{profiles: profiles}, nil
}

func (d profileDoc) toProfile() (Profile, error) {
	id, err := Parse(d.ID)
	if err != nil {
		return Profile{}, err
	}

	p := Profile{
		ID:              id,
		HeartRate:       d.HeartRate,
		SpO2:            d.SpO2,
		RespirationRate: d.RespirationRate,
		BloodPressure:   d.BloodPressure,
		ECG:             ParseECGStyle(d.ECG),
		Resp:            ParseRespStyle(d.Resp),
		SpO2Wave:        ParseSpO2Style(d.SpO2Wave),
		Description:     d.Description,
	}

	switch {
	case p.ECG == ECGUnknown:
		return Profile{}, fmt.Errorf("rhythm %s: unknown ecg style %q", id, d.ECG)
	case p.Resp == RespUnknown:
		return Profile{}, fmt.Errorf("rhythm %s: unknown resp style %q", id, d.Resp)
	case p.SpO2Wave == SpO2Unknown:
		return Profile{}, fmt.Errorf("rhythm %s: unknown spo2 style %q", id, d.SpO2Wave)
	}

	if p.HeartRate < 0 || p.SpO2 < 0 || p.RespirationRate < 0 ||
		p.BloodPressure.Systolic < 0 || p.BloodPressure.Diastolic < 0 {
		return Profile{}, fmt.Errorf("rhythm %s: vitals must be non-negative", id)
	}
	if p.SpO2 > 100 {
		return Profile{}, fmt.Errorf("rhythm %s: spo2 %d exceeds 100", id, p.SpO2)
	}

	return p, nil
}

// Lookup returns the profile for id. Asking for an unsupported rhythm is a
// programming error and panics.
func (t *Table) Lookup(id ID) Profile {
	p, ok := t.profiles[id]
	if !ok {
		panic(fmt.Sprintf("rhythm: no profile for %q", string(id)))
	}
	return p
}

// IDs returns the supported rhythms in display order
func (t *Table) IDs() []ID {
	return All()
}

// Describe returns the human readable description for id
func (t *Table) Describe(id ID) string {
	return t.Lookup(id).Description
}
