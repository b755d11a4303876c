package kafka

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

func TestJSONSerializer(t *testing.T) {
	t.Parallel()

	data, err := JSONSerializer{}.Serialize("orders", map[string]int{"amount": 3})
	require.NoError(t, err)
	require.JSONEq(t, `{"amount":3}`, string(data))
}

func TestJSONSerializerUnsupportedValue(t *testing.T) {
	t.Parallel()

	_, err := JSONSerializer{}.Serialize("orders", make(chan int))
	require.Error(t, err)
}

func TestMsgpackSerializerRoundTrip(t *testing.T) {
	t.Parallel()

	type event struct {
		Name  string
		Count int
	}

	in := event{Name: "signup", Count: 2}
	data, err := MsgpackSerializer{}.Serialize("events", in)
	require.NoError(t, err)

	var out event
	require.NoError(t, msgpack.Unmarshal(data, &out))
	require.Equal(t, in, out)
}

func TestBytesSerializer(t *testing.T) {
	t.Parallel()

	s := BytesSerializer{}

	tests := []struct {
		name  string
		value any
		want  []byte
	}{
		{name: "nil", value: nil, want: nil},
		{name: "bytes", value: []byte{0x1, 0x2}, want: []byte{0x1, 0x2}},
		{name: "string", value: "hello", want: []byte("hello")},
		{name: "stringer", value: &url.URL{Scheme: "kafka", Host: "broker:9092"}, want: []byte("kafka://broker:9092")},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := s.Serialize("raw", tt.value)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestBytesSerializerRejectsOtherTypes(t *testing.T) {
	t.Parallel()

	_, err := BytesSerializer{}.Serialize("raw", 42)
	require.Error(t, err)
	require.ErrorContains(t, err, "int")
}
