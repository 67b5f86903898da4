package opt

import (
	"encoding/json"
	"testing"
)

type playerPatch struct {
	Name  Field[string] `json:"name"`
	Email Field[string] `json:"email"`
	Group Field[string] `json:"group"`
}

func TestFieldStates(t *testing.T) {
	var zero Field[string]
	if !zero.IsAbsent() {
		t.Fatal("zero value should be absent")
	}

	s := Some("jean")
	if !s.IsSet() {
		t.Fatal("Some should be set")
	}
	if v, ok := s.Get(); !ok || v != "jean" {
		t.Errorf("Get() = %q, %v; want jean, true", v, ok)
	}

	c := Clear[string]()
	if !c.IsCleared() {
		t.Fatal("Clear should be cleared")
	}
	if _, ok := c.Get(); ok {
		t.Error("cleared field should not report a value")
	}
}

func TestFieldApply(t *testing.T) {
	tests := []struct {
		name  string
		field Field[string]
		want  string
	}{
		{name: "absent keeps value", field: Field[string]{}, want: "old"},
		{name: "set replaces value", field: Some("new"), want: "new"},
		{name: "clear resets value", field: Clear[string](), want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dst := "old"
			tt.field.Apply(&dst)
			if dst != tt.want {
				t.Errorf("got %q, want %q", dst, tt.want)
			}
		})
	}
}

func TestFieldUnmarshalJSON(t *testing.T) {
	var p playerPatch
	if err := json.Unmarshal([]byte(`{"name":"Jean Dupont","email":null}`), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if v, ok := p.Name.Get(); !ok || v != "Jean Dupont" {
		t.Errorf("name = %q, %v; want Jean Dupont, true", v, ok)
	}
	if !p.Email.IsCleared() {
		t.Error("explicit null should clear email")
	}
	if !p.Group.IsAbsent() {
		t.Error("missing key should leave group absent")
	}
}

func TestFieldUnmarshalJSONTypeMismatch(t *testing.T) {
	var f Field[int]
	if err := json.Unmarshal([]byte(`"three"`), &f); err == nil {
		t.Fatal("expected error for string into int field")
	}
}

func TestFieldMarshalJSON(t *testing.T) {
	data, err := json.Marshal(playerPatch{Name: Some("Ana"), Email: Clear[string]()})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"name":"Ana","email":null,"group":null}`
	if string(data) != want {
		t.Errorf("got %s, want %s", data, want)
	}
}
