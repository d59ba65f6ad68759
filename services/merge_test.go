package services

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func sampleParams() Value {
	return Mapping(map[string]Value{
		"project": Mapping(map[string]Value{
			"name":            Scalar("Bridge Repair"),
			"suppliers_count": Int(3),
			"budget":          Number(2.5),
			"open":            Bool(true),
		}),
		"customer": Mapping(map[string]Value{
			"Name": Scalar("City Council"),
		}),
		"notes": Missing(),
	})
}

func TestMergeTemplate_NoPlaceholders(t *testing.T) {
	inputs := []string{
		"",
		"plain text",
		"<p>single { brace } here</p>",
		"line one\nline two",
	}
	for _, in := range inputs {
		if got := MergeTemplate(in, sampleParams()); got != in {
			t.Errorf("MergeTemplate(%q) = %q, want unchanged", in, got)
		}
	}
}

func TestMergeTemplate(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"scalar", "Project: {{project.name}}", "Project: Bridge Repair"},
		{"whitespace trimmed", "{{  customer.Name  }}", "City Council"},
		{"integer", "{{project.suppliers_count}} suppliers", "3 suppliers"},
		{"float", "{{project.budget}}", "2.5"},
		{"boolean", "{{project.open}}", "true"},
		{"missing key", "A{{project.unknown}}B", "AB"},
		{"missing root", "{{nothing.here}}", ""},
		{"null terminal", "[{{notes}}]", "[]"},
		{"descend through scalar", "{{project.name.first}}", ""},
		{"mapping terminal", "{{customer}}", "[object]"},
		{"case sensitive", "{{customer.name}}", ""},
		{"empty token", "a{{}}b", "ab"},
		{"blank token", "a{{   }}b", "ab"},
		{"unterminated", "Hello {{project.name", "Hello {{project.name"},
		{"unterminated then valid", "{{ {{project.name}}", "{{ Bridge Repair"},
		{"repeated", "{{project.name}}/{{project.name}}", "Bridge Repair/Bridge Repair"},
		{"adjacent", "{{project.suppliers_count}}{{project.budget}}", "32.5"},
		{"trailing dot", "{{project.}}", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MergeTemplate(tt.text, sampleParams())
			if got != tt.want {
				t.Errorf("MergeTemplate(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestMergeTemplate_Idempotent(t *testing.T) {
	params := sampleParams()
	text := "<h1>{{project.name}}</h1><p>{{customer.Name}} {{missing}}</p>"

	once := MergeTemplate(text, params)
	twice := MergeTemplate(once, params)
	if once != twice {
		t.Errorf("second merge changed output:\nfirst:  %q\nsecond: %q", once, twice)
	}
}

func TestMergeTemplate_DoesNotMutateParams(t *testing.T) {
	params := sampleParams()
	MergeTemplate("{{project.name}} {{project.unknown}}", params)

	if _, ok := params.Lookup("project"); !ok {
		t.Fatal("project key disappeared")
	}
	project, _ := params.Lookup("project")
	if _, ok := project.Lookup("unknown"); ok {
		t.Error("merge added a key to params")
	}
}

func TestResolve(t *testing.T) {
	got, err := Resolve(sampleParams(), " project.name ")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got != "Bridge Repair" {
		t.Errorf("Resolve() = %q, want %q", got, "Bridge Repair")
	}

	for _, path := range []string{"", "   ", "project.unknown", "notes", "project..name"} {
		if _, err := Resolve(sampleParams(), path); !errors.Is(err, ErrUnresolved) {
			t.Errorf("Resolve(%q) error = %v, want ErrUnresolved", path, err)
		}
	}
}

func TestResolve_DepthLimit(t *testing.T) {
	// Build a chain exactly MaxPathDepth levels deep.
	leaf := Scalar("deep")
	for i := 0; i < MaxPathDepth-1; i++ {
		leaf = Mapping(map[string]Value{"a": leaf})
	}
	params := Mapping(map[string]Value{"a": leaf})

	path := strings.TrimSuffix(strings.Repeat("a.", MaxPathDepth), ".")
	got, err := Resolve(params, path)
	if err != nil || got != "deep" {
		t.Errorf("Resolve(depth %d) = %q, %v; want %q", MaxPathDepth, got, err, "deep")
	}

	tooDeep := path + ".a"
	if _, err := Resolve(params, tooDeep); !errors.Is(err, ErrUnresolved) {
		t.Errorf("Resolve(depth %d) error = %v, want ErrUnresolved", MaxPathDepth+1, err)
	}
}

func TestPlaceholders(t *testing.T) {
	text := "{{ project.name }} {{customer.Name}} {{project.name}} {{}} {{today"
	want := []string{"project.name", "customer.Name"}
	if diff := cmp.Diff(want, Placeholders(text)); diff != "" {
		t.Errorf("Placeholders() mismatch (-want +got):\n%s", diff)
	}
}

func TestFromAny(t *testing.T) {
	raw := map[string]any{
		"count":  float64(10),
		"ratio":  0.25,
		"flag":   false,
		"label":  "x",
		"none":   nil,
		"list":   []any{"first", float64(2)},
		"nested": map[string]any{"k": "v"},
		"int":    7,
	}
	params := FromAny(raw)

	tests := []struct {
		path string
		want string
	}{
		{"count", "10"},
		{"ratio", "0.25"},
		{"flag", "false"},
		{"label", "x"},
		{"none", ""},
		{"list.0", "first"},
		{"list.1", "2"},
		{"list", "[object]"},
		{"nested.k", "v"},
		{"int", "7"},
	}
	for _, tt := range tests {
		if got := MergeTemplate("{{"+tt.path+"}}", params); got != tt.want {
			t.Errorf("{{%s}} = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestFromAny_CyclicInputTerminates(t *testing.T) {
	cyclic := map[string]any{}
	cyclic["self"] = cyclic

	params := FromAny(cyclic)
	if params.Kind() != KindMapping {
		t.Fatalf("Kind() = %v, want KindMapping", params.Kind())
	}
	// The repeat is cut where it closes the loop.
	if got := MergeTemplate("{{self}}|{{self.self.self}}", params); got != "|" {
		t.Errorf("cyclic lookups = %q, want %q", got, "|")
	}
}

func TestFromAny_CyclicFanOutTerminates(t *testing.T) {
	cyclic := map[string]any{"name": "root"}
	cyclic["a"] = cyclic
	cyclic["b"] = cyclic
	list := []any{"x", nil}
	list[1] = list
	cyclic["list"] = list

	done := make(chan Value, 1)
	go func() { done <- FromAny(cyclic) }()

	select {
	case params := <-done:
		if got := MergeTemplate("{{name}} {{a}} {{b.name}} {{list.0}} {{list.1}}", params); got != "root   x " {
			t.Errorf("MergeTemplate() = %q, want %q", got, "root   x ")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("FromAny did not return on a cyclic map with two self references")
	}
}

func TestFromAny_SharedSubtreeConvertedOnce(t *testing.T) {
	// 40 levels of diamonds: each level references the one below twice.
	var node any = map[string]any{"leaf": "end"}
	for i := 0; i < 40; i++ {
		node = map[string]any{"l": node, "r": node}
	}

	done := make(chan Value, 1)
	go func() { done <- FromAny(node) }()

	select {
	case params := <-done:
		if got := MergeTemplate("{{l.r.l.r}}", params); got != "[object]" {
			t.Errorf("{{l.r.l.r}} = %q, want [object]", got)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("FromAny did not return on a shared subtree")
	}
}

func TestValue_ZeroIsMissing(t *testing.T) {
	var v Value
	if v.Kind() != KindMissing {
		t.Errorf("zero Value kind = %v, want KindMissing", v.Kind())
	}
	if v.String() != "" {
		t.Errorf("zero Value String() = %q, want empty", v.String())
	}
	if _, ok := v.Lookup("x"); ok {
		t.Error("Lookup on missing value should fail")
	}
}
