package resolve

import (
	"encoding/json"
	"errors"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestFromAnyJSONShape(t *testing.T) {
	var raw any
	data := `{"name":"demo","port":8080,"active":true,"tags":["a","b"],"nested":{"deep":null}}`
	if err := json.Unmarshal([]byte(data), &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	value, err := FromAny(raw)
	if err != nil {
		t.Fatalf("FromAny: %v", err)
	}

	name, ok := value.Lookup("name")
	if !ok || name.Kind() != KindString {
		t.Fatalf("expected string at name, got %v %v", name.Kind(), ok)
	}
	port, ok := value.Lookup("port")
	if !ok || port.Kind() != KindNumber {
		t.Fatalf("expected number at port")
	}
	if text, _ := port.Text(); text != "8080" {
		t.Fatalf("expected canonical integer text, got %q", text)
	}
	deep, ok := value.Lookup("nested.deep")
	if !ok || deep.Kind() != KindNull {
		t.Fatalf("expected explicit null at nested.deep, got %v %v", deep.Kind(), ok)
	}
}

func TestFromAnyYAMLShape(t *testing.T) {
	var raw any
	data := "name: demo\ncommands:\n  test: go test ./...\n  coverage: 0\n"
	if err := yaml.Unmarshal([]byte(data), &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	value, err := FromAny(raw)
	if err != nil {
		t.Fatalf("FromAny: %v", err)
	}

	cmd, ok := value.Lookup("commands.test")
	if !ok {
		t.Fatalf("expected commands.test present")
	}
	if text, err := cmd.Text(); err != nil || text != "go test ./..." {
		t.Fatalf("unexpected text: %q %v", text, err)
	}

	zero, ok := value.Lookup("commands.coverage")
	if !ok || !zero.Truthy() {
		t.Fatalf("numeric zero must be truthy")
	}
}

func TestFromAnyRejectsUnsupportedTypes(t *testing.T) {
	_, err := FromAny(map[string]any{"ch": make(chan int)})
	if !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("expected ErrUnsupportedType, got %v", err)
	}
}

func TestLookupMissesAreDistinct(t *testing.T) {
	value := testContext(t, map[string]any{"a": map[string]any{"b": "x"}})

	if _, ok := value.Lookup("a.b.c"); ok {
		t.Fatal("lookup through a scalar should miss")
	}
	if _, ok := value.Lookup("a.missing"); ok {
		t.Fatal("missing key should miss")
	}
	if _, ok := value.Lookup(""); ok {
		t.Fatal("empty path should miss")
	}
	if v, ok := value.Lookup("a.b"); !ok || v.Kind() != KindString {
		t.Fatalf("expected hit at a.b, got %v %v", v.Kind(), ok)
	}
}

func TestTruthinessEnumeration(t *testing.T) {
	cases := []struct {
		name  string
		value Value
		want  bool
	}{
		{"null", Null(), false},
		{"empty string", String(""), false},
		{"false", Bool(false), false},
		{"empty seq", Seq(nil), false},
		{"zero", Number(0), true},
		{"string false", String("false"), true},
		{"string zero", String("0"), true},
		{"true", Bool(true), true},
		{"empty map", Map(map[string]Value{}), true},
		{"seq with items", Seq([]Value{String("x")}), true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.value.Truthy(); got != tc.want {
				t.Fatalf("Truthy() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestTextCanonicalForms(t *testing.T) {
	if text, err := Bool(true).Text(); err != nil || text != "true" {
		t.Fatalf("bool text: %q %v", text, err)
	}
	if text, err := Number(3.25).Text(); err != nil || text != "3.25" {
		t.Fatalf("float text: %q %v", text, err)
	}
	if text, err := Number(-12).Text(); err != nil || text != "-12" {
		t.Fatalf("integer text: %q %v", text, err)
	}
	if _, err := Map(nil).Text(); !errors.Is(err, ErrNotScalar) {
		t.Fatalf("map text should fail, got %v", err)
	}
	if _, err := Null().Text(); !errors.Is(err, ErrNotScalar) {
		t.Fatalf("null text should fail, got %v", err)
	}
}
