package command

import (
	"bytes"
	"testing"
)

func paramsEqual(a, b Params) bool {
	return a.OverrideCreator == b.OverrideCreator && bytes.Equal(a.ClientPublic, b.ClientPublic)
}

func TestParamsRoundTrip(t *testing.T) {
	pub := bytes.Repeat([]byte{0x42}, clientPublicSize)
	for _, want := range []Params{
		{OverrideCreator: false},
		{OverrideCreator: true},
		{OverrideCreator: true, ClientPublic: pub},
		{OverrideCreator: false, ClientPublic: pub},
	} {
		raw := EncodeParams(want)
		got, err := DecodeParams(raw)
		if err != nil {
			t.Fatalf("DecodeParams(%x): %v", raw, err)
		}
		if !paramsEqual(got, want) {
			t.Fatalf("got %+v, want %+v", got, want)
		}
	}
}

func TestDecodeParamsEmptyIsZeroValue(t *testing.T) {
	got, err := DecodeParams(nil)
	if err != nil {
		t.Fatalf("DecodeParams(nil): %v", err)
	}
	if !paramsEqual(got, Params{}) {
		t.Fatalf("got %+v, want zero value", got)
	}
}

func TestDecodeParamsRejectsMalformed(t *testing.T) {
	if _, err := DecodeParams([]byte{0x02}); err == nil {
		t.Fatal("expected error for out-of-range flag byte")
	}
	if _, err := DecodeParams([]byte{0x00, 0x01}); err == nil {
		t.Fatal("expected error for multi-byte params block")
	}
}
