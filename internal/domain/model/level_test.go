package model

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestLevelColor(t *testing.T) {
	cases := map[Level]string{
		LevelVerbose:     "gray",
		LevelDebug:       "gray",
		LevelInformation: "green",
		LevelWarning:     "yellow",
		LevelError:       "red",
		LevelFatal:       "red",
	}
	for level, want := range cases {
		if got := level.Color(); got != want {
			t.Errorf("%s.Color() = %q, want %q", level, got, want)
		}
	}
}

func TestLevelColor_OutOfRange(t *testing.T) {
	if got := Level(42).Color(); got != "gray" {
		t.Fatalf("expected gray for unknown level, got %q", got)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"Verbose":     LevelVerbose,
		"debug":       LevelDebug,
		"INFORMATION": LevelInformation,
		"info":        LevelInformation,
		" Warning ":   LevelWarning,
		"warn":        LevelWarning,
		"Error":       LevelError,
		"fatal":       LevelFatal,
		"critical":    LevelFatal,
		"trace":       LevelVerbose,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		if err != nil {
			t.Fatalf("ParseLevel(%q) returned error: %v", in, err)
		}
		if got != want {
			t.Errorf("ParseLevel(%q) = %s, want %s", in, got, want)
		}
	}

	if _, err := ParseLevel("loud"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestLevelOrdering(t *testing.T) {
	if !(LevelVerbose < LevelDebug && LevelDebug < LevelInformation &&
		LevelInformation < LevelWarning && LevelWarning < LevelError && LevelError < LevelFatal) {
		t.Fatal("levels are not ordered by severity")
	}
}

func TestEventUnmarshal(t *testing.T) {
	raw := `{"id":"abc123","level":"Warning","renderedMessage":"disk low","eventType":"$A1B2C3D4","properties":{"Host":"db1","Free":12}}`

	var e Event
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if e.ID != "abc123" {
		t.Errorf("ID = %q, want abc123", e.ID)
	}
	if e.Level != LevelWarning {
		t.Errorf("Level = %s, want Warning", e.Level)
	}
	if e.RenderedMessage != "disk low" {
		t.Errorf("RenderedMessage = %q", e.RenderedMessage)
	}
	if e.Properties["Host"] != "db1" {
		t.Errorf("Host = %v, want db1", e.Properties["Host"])
	}
}

func TestEventUnmarshal_BadLevel(t *testing.T) {
	var e Event
	if err := json.Unmarshal([]byte(`{"level":"loud"}`), &e); err == nil {
		t.Fatal("expected error for unknown level")
	}
	if err := json.Unmarshal([]byte(`{"level":3}`), &e); err == nil {
		t.Fatal("expected error for numeric level")
	}
}

func TestDeliveryComplete(t *testing.T) {
	d := NewDelivery(&Event{ID: "e1", Level: LevelError}, "hipchat")
	if d.Status != StatusPending {
		t.Fatalf("new delivery status = %s, want pending", d.Status)
	}

	d.Complete(401, errors.New("unauthorized"))
	if d.Status != StatusFailed || d.StatusCode != 401 || d.Error == nil || d.CompletedAt == nil {
		t.Fatalf("unexpected failed delivery: %+v", d)
	}

	d.Complete(204, nil)
	if d.Status != StatusSent || d.Error != nil {
		t.Fatalf("unexpected sent delivery: %+v", d)
	}
}

func TestDecodeEvent(t *testing.T) {
	e, err := DecodeEvent([]byte(`{"level":"Error","renderedMessage":"boom","properties":{"Count":7}}`))
	if err != nil {
		t.Fatalf("DecodeEvent: %v", err)
	}
	if e.ID == "" {
		t.Error("expected a generated id")
	}
	if n, ok := e.Properties["Count"].(json.Number); !ok || n.String() != "7" {
		t.Errorf("Count = %#v, want json.Number 7", e.Properties["Count"])
	}

	if _, err := DecodeEvent([]byte(`{"level":`)); err == nil {
		t.Fatal("expected error for truncated JSON")
	}
}

func TestDecodeEvent_ID(t *testing.T) {
	cases := map[string]string{
		`{"id":"abc123","level":"Warning"}`: "abc123",
		`{"id":12345,"level":"Warning"}`:    "12345",
		`{"id":1.5e3,"level":"Warning"}`:    "1.5e3",
	}
	for body, want := range cases {
		e, err := DecodeEvent([]byte(body))
		if err != nil {
			t.Fatalf("DecodeEvent(%s): %v", body, err)
		}
		if e.ID != want {
			t.Errorf("DecodeEvent(%s).ID = %q, want %q", body, e.ID, want)
		}
		if e.Level != LevelWarning {
			t.Errorf("DecodeEvent(%s).Level = %v", body, e.Level)
		}
	}

	e, err := DecodeEvent([]byte(`{"id":null,"level":"Warning"}`))
	if err != nil || e.ID == "" {
		t.Fatalf("null id: event %+v, err %v", e, err)
	}

	for _, body := range []string{`{"id":true}`, `{"id":{"n":1}}`, `{"id":[1]}`} {
		if _, err := DecodeEvent([]byte(body)); err == nil {
			t.Errorf("DecodeEvent(%s): expected error", body)
		}
	}
}
