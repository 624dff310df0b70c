package shader

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	structBlockRegex = regexp.MustCompile(`struct\s+(\w+)\s*\{([^}]*)\}`)
	fieldRegex       = regexp.MustCompile(`^(?:@\w+(?:\([^)]*\))?\s*)*(\w+)\s*:\s*(.+)$`)
	builtinRegex     = regexp.MustCompile(`@builtin\s*\(`)
)

// primitiveLayouts maps WGSL scalar, vector, matrix and atomic type names to their
// byte size and alignment.
//
// Reference: https://www.w3.org/TR/WGSL/#alignment-and-size
var primitiveLayouts = map[string]Layout{
	"f32":  {Size: 4, Align: 4},
	"i32":  {Size: 4, Align: 4},
	"u32":  {Size: 4, Align: 4},
	"f16":  {Size: 2, Align: 2},
	"bool": {Size: 4, Align: 4},

	"vec2<f32>": {Size: 8, Align: 8},
	"vec2f":     {Size: 8, Align: 8},
	"vec3<f32>": {Size: 12, Align: 16},
	"vec3f":     {Size: 12, Align: 16},
	"vec4<f32>": {Size: 16, Align: 16},
	"vec4f":     {Size: 16, Align: 16},

	"vec2<i32>": {Size: 8, Align: 8},
	"vec2i":     {Size: 8, Align: 8},
	"vec3<i32>": {Size: 12, Align: 16},
	"vec3i":     {Size: 12, Align: 16},
	"vec4<i32>": {Size: 16, Align: 16},
	"vec4i":     {Size: 16, Align: 16},

	"vec2<u32>": {Size: 8, Align: 8},
	"vec2u":     {Size: 8, Align: 8},
	"vec3<u32>": {Size: 12, Align: 16},
	"vec3u":     {Size: 12, Align: 16},
	"vec4<u32>": {Size: 16, Align: 16},
	"vec4u":     {Size: 16, Align: 16},

	// matCxR<f32>: C columns of vecR<f32>
	"mat2x2<f32>": {Size: 16, Align: 8},
	"mat2x3<f32>": {Size: 32, Align: 16},
	"mat2x4<f32>": {Size: 32, Align: 16},
	"mat3x2<f32>": {Size: 24, Align: 8},
	"mat3x3<f32>": {Size: 48, Align: 16},
	"mat3x4<f32>": {Size: 48, Align: 16},
	"mat4x2<f32>": {Size: 32, Align: 8},
	"mat4x3<f32>": {Size: 64, Align: 16},
	"mat4x4<f32>": {Size: 64, Align: 16},
	"mat4x4f":     {Size: 64, Align: 16},

	"atomic<u32>": {Size: 4, Align: 4},
	"atomic<i32>": {Size: 4, Align: 4},
}

// Layout is the host-shareable size and alignment of a WGSL type. For structs it also
// lists the member offsets in declaration order.
type Layout struct {
	Size   uint64
	Align  uint64
	Fields []Field
}

// Field is one struct member's placement.
type Field struct {
	Name   string
	Type   string
	Offset uint64
	Size   uint64
}

// Offset returns the byte offset of the named member.
func (l Layout) Offset(name string) (uint64, bool) {
	for _, f := range l.Fields {
		if f.Name == name {
			return f.Offset, true
		}
	}
	return 0, false
}

type parsedField struct {
	name      string
	typeName  string
	isBuiltin bool
}

type parsedStruct struct {
	name   string
	fields []parsedField
}

// StructLayouts computes the layout of every struct declared in a WGSL source. Structs
// whose members cannot all be resolved are left out.
//
// Parameters:
//   - source: WGSL source, comments allowed
//
// Returns:
//   - map[string]Layout: struct name to layout
func StructLayouts(source string) map[string]Layout {
	structs := parseStructBlocks(stripComments(source))
	resolved := make(map[string]Layout, len(structs))
	remaining := structs

	// structs may reference structs declared later; resolve until no progress
	for len(remaining) > 0 {
		next := remaining[:0]
		for _, ps := range remaining {
			if layout, ok := computeStructLayout(ps, resolved); ok {
				resolved[ps.name] = layout
			} else {
				next = append(next, ps)
			}
		}
		if len(next) == len(remaining) {
			break
		}
		remaining = next
	}
	return resolved
}

// StructLayout computes the layout of one struct. The sources are concatenated, so a
// struct can use types declared in a shared include.
//
// Parameters:
//   - name: the struct name
//   - sources: WGSL sources declaring the struct and its dependencies
//
// Returns:
//   - Layout: the struct's layout
//   - error: error if the struct is missing or has unresolvable members
func StructLayout(name string, sources ...string) (Layout, error) {
	layouts := StructLayouts(strings.Join(sources, "\n"))
	layout, ok := layouts[name]
	if !ok {
		return Layout{}, fmt.Errorf("struct %s not found or not host-shareable", name)
	}
	return layout, nil
}

func parseStructBlocks(source string) []parsedStruct {
	matches := structBlockRegex.FindAllStringSubmatch(source, -1)
	structs := make([]parsedStruct, 0, len(matches))
	for _, match := range matches {
		structs = append(structs, parsedStruct{
			name:   match[1],
			fields: parseStructFields(match[2]),
		})
	}
	return structs
}

func parseStructFields(body string) []parsedField {
	parts := splitAtTopLevelCommas(body)
	fields := make([]parsedField, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		fm := fieldRegex.FindStringSubmatch(part)
		if fm == nil {
			continue
		}
		fields = append(fields, parsedField{
			name:      fm[1],
			typeName:  strings.Join(strings.Fields(fm[2]), ""),
			isBuiltin: builtinRegex.MatchString(part),
		})
	}
	return fields
}

func roundUp(alignment, value uint64) uint64 {
	if alignment == 0 {
		return value
	}
	return (value + alignment - 1) &^ (alignment - 1)
}

// resolveTypeLayout resolves primitives, known structs and fixed-size arrays. Runtime
// sized arrays resolve to one element stride.
func resolveTypeLayout(typeName string, known map[string]Layout) (Layout, bool) {
	if layout, ok := primitiveLayouts[typeName]; ok {
		return layout, true
	}
	if layout, ok := known[typeName]; ok {
		return layout, true
	}
	if !strings.HasPrefix(typeName, "array<") || !strings.HasSuffix(typeName, ">") {
		return Layout{}, false
	}

	parts := strings.SplitN(typeName[len("array<"):len(typeName)-1], ",", 2)
	elem, ok := resolveTypeLayout(strings.TrimSpace(parts[0]), known)
	if !ok {
		return Layout{}, false
	}
	stride := roundUp(elem.Align, elem.Size)
	if len(parts) == 1 {
		return Layout{Size: stride, Align: elem.Align}, true
	}
	count, err := strconv.ParseUint(strings.TrimSpace(parts[1]), 10, 64)
	if err != nil {
		return Layout{}, false
	}
	return Layout{Size: count * stride, Align: elem.Align}, true
}

// computeStructLayout places each member at its aligned offset and rounds the total up
// to the largest member alignment. A trailing runtime-sized array adds no size.
func computeStructLayout(ps parsedStruct, known map[string]Layout) (Layout, bool) {
	layout := Layout{Align: 1}
	offset := uint64(0)
	for i, field := range ps.fields {
		if field.isBuiltin {
			continue
		}
		fl, ok := resolveTypeLayout(field.typeName, known)
		if !ok {
			return Layout{}, false
		}
		runtimeSized := strings.HasPrefix(field.typeName, "array<") && !strings.Contains(field.typeName, ",")
		if runtimeSized && i != len(ps.fields)-1 {
			return Layout{}, false
		}

		offset = roundUp(fl.Align, offset)
		layout.Fields = append(layout.Fields, Field{Name: field.name, Type: field.typeName, Offset: offset, Size: fl.Size})
		layout.Align = max(layout.Align, fl.Align)
		if !runtimeSized {
			offset += fl.Size
		}
	}
	layout.Size = roundUp(layout.Align, offset)
	return layout, true
}

func splitAtTopLevelCommas(s string) []string {
	var parts []string
	depth := 0
	start := 0
	for i, c := range s {
		switch c {
		case '<', '(':
			depth++
		case '>', ')':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}

// stripComments removes line and nested block comments.
func stripComments(source string) string {
	var sb strings.Builder
	sb.Grow(len(source))
	depth := 0
	for i := 0; i < len(source); i++ {
		if i+1 < len(source) {
			switch {
			case source[i] == '/' && source[i+1] == '*':
				depth++
				i++
				continue
			case source[i] == '*' && source[i+1] == '/' && depth > 0:
				depth--
				i++
				continue
			case depth == 0 && source[i] == '/' && source[i+1] == '/':
				for i < len(source) && source[i] != '\n' {
					i++
				}
				if i < len(source) {
					sb.WriteByte('\n')
				}
				continue
			}
		}
		if depth == 0 {
			sb.WriteByte(source[i])
		}
	}
	return sb.String()
}

// CheckSize reports whether a WGSL struct has the size of its host-side counterpart.
//
// Parameters:
//   - name: the struct name
//   - hostSize: the byte size of the host struct
//   - sources: WGSL sources declaring the struct and its dependencies
//
// Returns:
//   - error: error if the struct is missing or the sizes differ
func CheckSize(name string, hostSize int, sources ...string) error {
	layout, err := StructLayout(name, sources...)
	if err != nil {
		return err
	}
	if layout.Size != uint64(hostSize) {
		return fmt.Errorf("struct %s is %d bytes in WGSL but %d bytes on the host", name, layout.Size, hostSize)
	}
	return nil
}
