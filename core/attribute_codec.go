package core

import (
	"sort"
	"strings"
)

// WireAttributeCodec is the default AttributeCodec. Encoding is
// deterministic (name-sorted) so submitted attribute lists are stable across
// calls; decoding keeps the last value when the directory echoes a duplicate
// name.
type WireAttributeCodec struct{}

func (WireAttributeCodec) Encode(attrs Attributes) []WireAttribute {
	if len(attrs) == 0 {
		return []WireAttribute{}
	}
	names := make([]string, 0, len(attrs))
	for name := range attrs {
		if strings.TrimSpace(name) == "" {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	list := make([]WireAttribute, 0, len(names))
	for _, name := range names {
		list = append(list, WireAttribute{Name: name, Value: attrs[name]})
	}
	return list
}

func (WireAttributeCodec) Decode(list []WireAttribute) Attributes {
	attrs := make(Attributes, len(list))
	for _, attr := range list {
		name := strings.TrimSpace(attr.Name)
		if name == "" {
			continue
		}
		attrs[name] = attr.Value
	}
	return attrs
}

var _ AttributeCodec = WireAttributeCodec{}
