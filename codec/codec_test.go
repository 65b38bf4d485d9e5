package codec

import (
	"bytes"
	"strings"
	"testing"

	"google.golang.org/protobuf/types/known/wrapperspb"
)

type reading struct {
	SensorID int64   `json:"sensor_id" msgpack:"sensor_id"`
	Value    float64 `json:"value" msgpack:"value"`
}

func TestDeterministicCBORIgnoresMapInsertionOrder(t *testing.T) {
	c := MustCBOR[map[string]any](true)

	a := map[string]any{}
	a["zeta"] = 1
	a["alpha"] = "x"
	a["mid"] = []int{3, 2}

	b := map[string]any{}
	b["mid"] = []int{3, 2}
	b["alpha"] = "x"
	b["zeta"] = 1

	ea, err := c.Encode(a)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 20; i++ {
		eb, err := c.Encode(b)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(ea, eb) {
			t.Fatalf("encodings differ: %x vs %x", ea, eb)
		}
	}
}

func TestCodecsRoundTripReading(t *testing.T) {
	in := reading{SensorID: 5, Value: 21.5}
	codecs := map[string]Codec[reading]{
		"json":    JSON[reading]{},
		"msgpack": Msgpack[reading]{},
		"cbor":    MustCBOR[reading](false),
	}
	for name, c := range codecs {
		b, err := c.Encode(in)
		if err != nil {
			t.Fatalf("%s encode: %v", name, err)
		}
		out, err := c.Decode(b)
		if err != nil {
			t.Fatalf("%s decode: %v", name, err)
		}
		if out != in {
			t.Fatalf("%s: got %+v want %+v", name, out, in)
		}
	}
}

func TestProtobufRoundTrip(t *testing.T) {
	c := NewProtobuf(func() *wrapperspb.StringValue { return &wrapperspb.StringValue{} })
	b, err := c.Encode(wrapperspb.String("device-9"))
	if err != nil {
		t.Fatal(err)
	}
	m, err := c.Decode(b)
	if err != nil {
		t.Fatal(err)
	}
	if m.GetValue() != "device-9" {
		t.Fatalf("got %q", m.GetValue())
	}
}

func TestLimitRejectsOversizedPayload(t *testing.T) {
	c := Limit[reading]{Inner: JSON[reading]{}, MaxDecode: 8}
	b, err := c.Encode(reading{SensorID: 1, Value: 2})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.Decode(b); err == nil || !strings.Contains(err.Error(), "too large") {
		t.Fatalf("expected size error, got %v", err)
	}

	c.MaxDecode = 0
	if _, err := c.Decode(b); err != nil {
		t.Fatalf("limit disabled: %v", err)
	}
}
