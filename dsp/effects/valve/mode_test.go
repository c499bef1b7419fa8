package valve

import (
	"encoding/json"
	"testing"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{in: "triode", want: ModeTriode},
		{in: "Pentode", want: ModePentode},
		{in: " TORTURE ", want: ModeTorture},
		{in: "class-a", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParseMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if err == nil && got != tt.want {
			t.Fatalf("ParseMode(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestMode_JSONRoundTrip(t *testing.T) {
	type preset struct {
		Mode Mode `json:"mode"`
	}

	data, err := json.Marshal(preset{Mode: ModeTorture})
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"mode":"torture"}` {
		t.Fatalf("marshal = %s", data)
	}

	var p preset
	if err := json.Unmarshal([]byte(`{"mode":"pentode"}`), &p); err != nil {
		t.Fatal(err)
	}
	if p.Mode != ModePentode {
		t.Fatalf("unmarshal mode = %v", p.Mode)
	}

	if _, err := json.Marshal(preset{Mode: Mode(7)}); err == nil {
		t.Fatal("expected error marshalling invalid mode")
	}
}

func TestVoicingTable(t *testing.T) {
	tests := []struct {
		mode   Mode
		curve  Curve
		factor int
	}{
		{ModeTriode, Curve{2.5, 0.5}, 4},
		{ModePentode, Curve{4.0, 0.85}, 4},
		{ModeTorture, Curve{8.0, 0.7}, 8},
		{Mode(-1), Curve{4.0, 0.5}, 4},
		{Mode(42), Curve{4.0, 0.5}, 4},
	}

	for _, tt := range tests {
		if got := CurveFor(tt.mode); got != tt.curve {
			t.Errorf("CurveFor(%v) = %+v, want %+v", tt.mode, got, tt.curve)
		}
		if got := OversamplingFactor(tt.mode); got != tt.factor {
			t.Errorf("OversamplingFactor(%v) = %d, want %d", tt.mode, got, tt.factor)
		}
	}

	if s := Mode(9).String(); s != "mode(9)" {
		t.Errorf("String of invalid mode = %q", s)
	}
}
