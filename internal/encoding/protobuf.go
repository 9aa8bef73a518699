package encoding

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/synheart/synheart-monitor/internal/models"
)

// ProtobufEncoder encodes frames as a google.protobuf.Struct message with
// the same field names as the JSON form
type ProtobufEncoder struct{}

func NewProtobufEncoder() *ProtobufEncoder {
	return &ProtobufEncoder{}
}

func (e *ProtobufEncoder) Encode(frame models.Frame) ([]byte, error) {
	pb, err := frameToProto(frame)
	if err != nil {
		return nil, err
	}
	return proto.Marshal(pb)
}

func (e *ProtobufEncoder) ContentType() string {
	return "application/x-protobuf"
}

func (e *ProtobufEncoder) Binary() bool { return true }

func frameToProto(frame models.Frame) (*structpb.Struct, error) {
	data, err := json.Marshal(frame)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal frame: %w", err)
	}

	var fields map[string]interface{}
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("failed to flatten frame: %w", err)
	}

	pb, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("failed to build protobuf struct: %w", err)
	}
	return pb, nil
}
