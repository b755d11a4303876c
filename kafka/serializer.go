package kafka

import (
	"encoding/json"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// Serializer encodes a message value into the byte payload sent to the
// broker. The topic is passed so that registry-backed serializers can derive
// the subject name; schemaless serializers ignore it.
type Serializer interface {
	Serialize(topic string, value any) ([]byte, error)
}

var (
	_ Serializer = JSONSerializer{}
	_ Serializer = MsgpackSerializer{}
	_ Serializer = BytesSerializer{}
)

// JSONSerializer encodes values with encoding/json. No schema is registered;
// use AvroSerializer for registry-backed encoding.
type JSONSerializer struct{}

// Serialize marshals the value to JSON.
func (JSONSerializer) Serialize(topic string, value any) ([]byte, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("json serialize: %w", err)
	}
	return data, nil
}

// MsgpackSerializer encodes values with MessagePack.
type MsgpackSerializer struct{}

// Serialize marshals the value to msgpack.
func (MsgpackSerializer) Serialize(topic string, value any) ([]byte, error) {
	data, err := msgpack.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("msgpack serialize: %w", err)
	}
	return data, nil
}

// BytesSerializer passes raw data through untouched. It accepts byte slices,
// strings and stringers.
type BytesSerializer struct{}

// Serialize returns the value's bytes.
func (BytesSerializer) Serialize(topic string, value any) ([]byte, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	case fmt.Stringer:
		return []byte(v.String()), nil
	default:
		return nil, fmt.Errorf("bytes serialize: expected []byte, string or fmt.Stringer, got %T", value)
	}
}
