package rhythm

// ECGStyle selects the ECG trace pattern for a rhythm
type ECGStyle string

const (
	ECGUnknown ECGStyle = ""
	ECGNSR     ECGStyle = "nsr"
	ECGAFib    ECGStyle = "afib"
	ECGSVT     ECGStyle = "svt"
	ECGVT      ECGStyle = "vt"
	ECGVFib    ECGStyle = "vfib"
	ECGFlat    ECGStyle = "flat"
	ECGPaced   ECGStyle = "paced"
	ECGAVBlock ECGStyle = "avblock"
)

// RespStyle selects the respiration trace pattern
type RespStyle string

const (
	RespUnknown   RespStyle = ""
	RespNormal    RespStyle = "normal"
	RespRapid     RespStyle = "rapid"
	RespSlow      RespStyle = "slow"
	RespIrregular RespStyle = "irregular"
	RespFlat      RespStyle = "flat"
)

// SpO2Style selects the plethysmograph trace pattern
type SpO2Style string

const (
	SpO2Unknown SpO2Style = ""
	SpO2Normal  SpO2Style = "normal"
	SpO2Weak    SpO2Style = "weak"
	SpO2Noisy   SpO2Style = "noisy"
	SpO2Flat    SpO2Style = "flat"
)

// ParseECGStyle returns ECGUnknown for unrecognised tags; renderers fall
// back to their default pattern for it.
func ParseECGStyle(s string) ECGStyle {
	switch v := ECGStyle(s); v {
	case ECGNSR, ECGAFib, ECGSVT, ECGVT, ECGVFib, ECGFlat, ECGPaced, ECGAVBlock:
		return v
	}
	return ECGUnknown
}

// ParseRespStyle returns RespUnknown for unrecognised tags
func ParseRespStyle(s string) RespStyle {
	switch v := RespStyle(s); v {
	case RespNormal, RespRapid, RespSlow, RespIrregular, RespFlat:
		return v
	}
	return RespUnknown
}

// ParseSpO2Style returns SpO2Unknown for unrecognised tags
func ParseSpO2Style(s string) SpO2Style {
	switch v := SpO2Style(s); v {
	case SpO2Normal, SpO2Weak, SpO2Noisy, SpO2Flat:
		return v
	}
	return SpO2Unknown
}

func (s ECGStyle) String() string  { return string(s) }
func (s RespStyle) String() string { return string(s) }
func (s SpO2Style) String() string { return string(s) }
