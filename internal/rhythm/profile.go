package rhythm

// BloodPressure is a systolic/diastolic pair in mmHg
type BloodPressure struct {
	Systolic  int `json:"sys" yaml:"systolic"`
	Diastolic int `json:"dia" yaml:"diastolic"`
}

// Profile is the baseline vitals and waveform styles for one rhythm
type Profile struct {
	ID              ID
	HeartRate       int
	SpO2            int
	RespirationRate int
	BloodPressure   BloodPressure
	ECG             ECGStyle
	Resp            RespStyle
	SpO2Wave        SpO2Style
	Description     string
}

// profileDoc is the YAML shape of a single profile
type profileDoc struct {
	ID              string        `yaml:"id"`
	HeartRate       int           `yaml:"heart_rate"`
	SpO2            int           `yaml:"spo2"`
	RespirationRate int           `yaml:"respiration_rate"`
	BloodPressure   BloodPressure `yaml:"blood_pressure"`
	ECG             string        `yaml:"ecg"`
	Resp            string        `yaml:"resp"`
	SpO2Wave        string        `yaml:"spo2_wave"`
	Description     string        `yaml:"description"`
}

type tableDoc struct {
	Profiles []profileDoc `yaml:"profiles"`
}
