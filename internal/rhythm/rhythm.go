package rhythm

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownRhythm is returned when text does not name a supported rhythm
var ErrUnknownRhythm = errors.New("unknown rhythm")

// ID identifies a clinical rhythm scenario
type ID string

const (
	NSR      ID = "NSR"
	AFIB     ID = "AFIB"
	SVT      ID = "SVT"
	VT       ID = "VT"
	VFIB     ID = "VFIB"
	ASYSTOLE ID = "ASYSTOLE"
	PACED    ID = "PACED"
	AVBlock  ID = "AV-BLOCK"
)

// Default is the rhythm the monitor starts with and returns to on reset
const Default = NSR

var all = []ID{NSR, AFIB, SVT, VT, VFIB, ASYSTOLE, PACED, AVBlock}

// All returns every supported rhythm in display order
func All() []ID {
	out := make([]ID, len(all))
	copy(out, all)
	return out
}

// Valid reports whether id is one of the supported rhythms
func (id ID) Valid() bool {
	for _, r := range all {
		if r == id {
			return true
		}
	}
	return false
}

func (id ID) String() string {
	return string(id)
}

// Parse converts user text into a rhythm ID
func Parse(text string) (ID, error) {
	s := strings.ToUpper(strings.TrimSpace(text))
	switch s {
	case "AV_BLOCK", "AVBLOCK":
		s = string(AVBlock)
	}
	id := ID(s)
	if !id.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownRhythm, text)
	}
	return id, nil
}
