package classfile

import "strings"

// ParseFieldType decodes a single field/type descriptor (JVMS §4.3.2),
// stripping any array dimensions down to the element type. It returns
// ok=false for primitive types (and arrays of primitives);
// "primitive and array-of-primitive references are not emitted".
func ParseFieldType(descriptor string) (internalName string, ok bool) {
	d := descriptor
	for strings.HasPrefix(d, "[") {
		d = d[1:]
	}
	if d == "" {
		return "", false
	}
	if d[0] != 'L' {
		return "", false // primitive element type
	}
	end := strings.IndexByte(d, ';')
	if end < 0 {
		return "", false
	}
	return d[1:end], true
}

// ParseMethodDescriptor decodes a method descriptor "(params)return"
// into the object-type parameter and return type internal names,
// dropping primitives/void/array-of-primitive exactly as ParseFieldType
// does for each slot.
func ParseMethodDescriptor(descriptor string) (params []string, returnType string, returnOK bool) {
	if len(descriptor) == 0 || descriptor[0] != '(' {
		return nil, "", false
	}
	close := strings.IndexByte(descriptor, ')')
	if close < 0 {
		return nil, "", false
	}
	paramSection := descriptor[1:close]
	returnSection := descriptor[close+1:]

	for _, d := range splitFieldDescriptors(paramSection) {
		if name, ok := ParseFieldType(d); ok {
			params = append(params, name)
		}
	}

	returnType, returnOK = ParseFieldType(returnSection)
	return params, returnType, returnOK
}

// splitFieldDescriptors splits a back-to-back run of field descriptors
// (as found inside a method descriptor's parameter list) into its
// individual descriptor strings.
func splitFieldDescriptors(s string) []string {
	var out []string
	i := 0
	for i < len(s) {
		start := i
		for i < len(s) && s[i] == '[' {
			i++
		}
		if i >= len(s) {
			break
		}
		switch s[i] {
		case 'L':
			end := strings.IndexByte(s[i:], ';')
			if end < 0 {
				i = len(s)
			} else {
				i += end + 1
			}
		default:
			i++ // single-character primitive
		}
		out = append(out, s[start:i])
	}
	return out
}
