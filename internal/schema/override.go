package schema

import (
	"fmt"

	"db-seed/internal/fake"

	"gopkg.in/yaml.v3"
)

// OverrideKind tags the variant held by an Override.
type OverrideKind int

const (
	OverrideFixed OverrideKind = iota
	OverrideChoices
	OverrideFunc
)

// Override replaces the default generator of one field. The variant is decided
// once when the schema is built and never re-inspected per record.
type Override struct {
	kind    OverrideKind
	value   any
	choices []any
	fn      fake.Func
}

// Fixed writes v into every record.
func Fixed(v any) Override {
	return Override{kind: OverrideFixed, value: v}
}

// Choices picks one of values uniformly for each record.
func Choices(values ...any) Override {
	return Override{kind: OverrideChoices, choices: values}
}

// Func calls fn with the shared source for each record.
func Func(fn fake.Func) Override {
	return Override{kind: OverrideFunc, fn: fn}
}

func (o Override) Kind() OverrideKind {
	return o.kind
}

// Resolve produces the value for one record.
func (o Override) Resolve(src *fake.Source) any {
	switch o.kind {
	case OverrideChoices:
		return src.Pick(o.choices)
	case OverrideFunc:
		return o.fn(src)
	default:
		return o.value
	}
}

// UnmarshalYAML decodes the three schema file spellings:
//
//	field: 42                    # fixed
//	field: [a, b, c]             # choices
//	field: {faker: slug}         # named function
//	field: {template: "{name}"}  # gofakeit template
//	field: {value: [1, 2]}       # fixed, for values that are themselves lists
func (o *Override) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var v any
		if err := node.Decode(&v); err != nil {
			return err
		}
		*o = Fixed(v)
	case yaml.SequenceNode:
		var values []any
		if err := node.Decode(&values); err != nil {
			return err
		}
		if len(values) == 0 {
			return fmt.Errorf("line %d: empty choice list", node.Line)
		}
		*o = Choices(values...)
	case yaml.MappingNode:
		return o.decodeMapping(node)
	default:
		return fmt.Errorf("line %d: unsupported override", node.Line)
	}
	return nil
}

// decodeMapping accepts exactly one of the faker, template and value keys.
func (o *Override) decodeMapping(node *yaml.Node) error {
	if len(node.Content) != 2 {
		return fmt.Errorf("line %d: override needs exactly one of faker, template or value", node.Line)
	}
	key, val := node.Content[0], node.Content[1]

	switch key.Value {
	case "faker":
		fn, ok := fake.Lookup(val.Value)
		if val.Kind != yaml.ScalarNode || !ok {
			return fmt.Errorf("line %d: unknown faker function %q (known: %v)", val.Line, val.Value, fake.Names())
		}
		*o = Func(fn)
	case "template":
		if val.Kind != yaml.ScalarNode || val.Value == "" {
			return fmt.Errorf("line %d: template must be a non-empty string", val.Line)
		}
		*o = Func(fake.Template(val.Value))
	case "value":
		var v any
		if err := val.Decode(&v); err != nil {
			return err
		}
		*o = Fixed(v)
	default:
		return fmt.Errorf("line %d: unknown override key %q (want faker, template or value)", key.Line, key.Value)
	}
	return nil
}
