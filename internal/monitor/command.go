package monitor

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/synheart/synheart-monitor/internal/rhythm"
	"github.com/synheart/synheart-monitor/internal/vitals"
)

var (
	// ErrInvalidInput is returned for operator entries that are not plain
	// non-negative integers
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnknownCommand is returned for command types the monitor does not know
	ErrUnknownCommand = errors.New("unknown command")
)

// CommandType names an operator action
type CommandType string

const (
	CmdSetRhythm          CommandType = "set_rhythm"
	CmdSetHeartRate       CommandType = "set_hr"
	CmdSetBloodPressure   CommandType = "set_bp"
	CmdSetSpO2            CommandType = "set_spo2"
	CmdSetRespirationRate CommandType = "set_rr"
	CmdReset              CommandType = "reset"
)

// Input is raw operator entry. In JSON both strings and numbers are accepted.
type Input string

func (in *Input) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*in = Input(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidInput, data)
	}
	*in = Input(n.String())
	return nil
}

// Command is one operator action: a rhythm selection, a manual value
// entry or a reset
type Command struct {
	Type      CommandType `json:"type"`
	Rhythm    string      `json:"rhythm,omitempty"`
	Value     Input       `json:"value,omitempty"`
	Systolic  Input       `json:"sys,omitempty"`
	Diastolic Input       `json:"dia,omitempty"`
}

// ParseValue converts an operator entry into a vital sign value. Only
// digits are accepted, surrounding spaces aside. No clinical range is
// enforced.
func ParseValue(text string) (int, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, fmt.Errorf("%w: empty value", ErrInvalidInput)
	}
	for _, r := range text {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("%w: %q is not a number", ErrInvalidInput, text)
		}
	}
	v, err := strconv.Atoi(text)
	if err != nil {
		return 0, fmt.Errorf("%w: %q out of range", ErrInvalidInput, text)
	}
	return v, nil
}

// Validate checks cmd without applying it
func (cmd Command) Validate() error {
	_, err := cmd.compile()
	return err
}

// action is a validated command ready to run against the store
type action func(store *vitals.Store) error

// compile validates cmd completely so that nothing is mutated for a bad
// command
func (cmd Command) compile() (action, error) {
	switch cmd.Type {
	case CmdSetRhythm:
		id, err := rhythm.Parse(cmd.Rhythm)
		if err != nil {
			return nil, err
		}
		return func(s *vitals.Store) error { return s.SetRhythm(id) }, nil

	case CmdSetHeartRate, CmdSetSpO2, CmdSetRespirationRate:
		v, err := ParseValue(string(cmd.Value))
		if err != nil {
			return nil, err
		}
		return func(s *vitals.Store) error {
			switch cmd.Type {
			case CmdSetHeartRate:
				s.SetHeartRate(v)
			case CmdSetSpO2:
				s.SetSpO2(v)
			default:
				s.SetRespirationRate(v)
			}
			return nil
		}, nil

	case CmdSetBloodPressure:
		sys, err := ParseValue(string(cmd.Systolic))
		if err != nil {
			return nil, fmt.Errorf("systolic: %w", err)
		}
		dia, err := ParseValue(string(cmd.Diastolic))
		if err != nil {
			return nil, fmt.Errorf("diastolic: %w", err)
		}
		return func(s *vitals.Store) error {
			s.SetBloodPressure(sys, dia)
			return nil
		}, nil

	case CmdReset:
		return func(s *vitals.Store) error {
			s.Reset()
			return nil
		}, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, cmd.Type)
	}
}

// Reply is sent back to a display client for every command it sends
type Reply struct {
	OK     bool          `json:"ok"`
	Type   CommandType   `json:"type,omitempty"`
	Error  string        `json:"error,omitempty"`
	Vitals *vitals.State `json:"vitals,omitempty"`
}
