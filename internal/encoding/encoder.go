package encoding

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/synheart/synheart-monitor/internal/models"
)

// Format names a display frame wire format
type Format string

const (
	FormatJSON     Format = "json"
	FormatProtobuf Format = "protobuf"
)

// ErrUnknownFormat is returned for an unsupported format name
var ErrUnknownFormat = errors.New("unknown encoding")

// ParseFormat validates a format name from config or flags
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case FormatJSON, FormatProtobuf:
		return f, nil
	default:
		return "", fmt.Errorf("%w %q", ErrUnknownFormat, name)
	}
}

// Encoder turns display frames into wire payloads. Binary payloads go out
// as WebSocket binary messages and base64 in SSE data lines.
type Encoder interface {
	Encode(frame models.Frame) ([]byte, error)
	ContentType() string
	Binary() bool
}

// JSONEncoder encodes frames as JSON text
type JSONEncoder struct{}

func NewJSONEncoder() *JSONEncoder {
	return &JSONEncoder{}
}

func (e *JSONEncoder) Encode(frame models.Frame) ([]byte, error) {
	data, err := json.Marshal(frame)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal frame %d: %w", frame.Meta.Sequence, err)
	}
	return data, nil
}

func (e *JSONEncoder) ContentType() string {
	return "application/json"
}

func (e *JSONEncoder) Binary() bool { return false }

// NewEncoder creates an encoder for the given format, JSON when unknown
func NewEncoder(format Format) Encoder {
	if format == FormatProtobuf {
		return NewProtobufEncoder()
	}
	return NewJSONEncoder()
}
