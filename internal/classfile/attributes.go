package classfile

import "fmt"

// rawAttribute is a raw, not-yet-interpreted attribute_info: a name plus
// its payload bytes. Interpreting an attribute never needs to know
// anything beyond its own payload, so every attribute reader below
// takes just the name and a reader scoped to exactly attribute_length
// bytes.
type rawAttribute struct {
	name string
	data []byte
}

func (cf *classFile) readAttributes(r *reader) ([]rawAttribute, error) {
	count, err := r.u2()
	if err != nil {
		return nil, err
	}
	attrs := make([]rawAttribute, 0, count)
	for i := 0; i < int(count); i++ {
		nameIdx, err := r.u2()
		if err != nil {
			return nil, err
		}
		length, err := r.u4()
		if err != nil {
			return nil, err
		}
		data, err := r.bytes(int(length))
		if err != nil {
			return nil, err
		}
		attrs = append(attrs, rawAttribute{name: cf.cp.utf8At(nameIdx), data: data})
	}
	return attrs, nil
}

func (cf *classFile) readFields(r *reader) ([]FieldInfo, error) {
	count, err := r.u2()
	if err != nil {
		return nil, err
	}
	fields := make([]FieldInfo, 0, count)
	for i := 0; i < int(count); i++ {
		access, err := r.u2()
		if err != nil {
			return nil, err
		}
		nameIdx, err := r.u2()
		if err != nil {
			return nil, err
		}
		descIdx, err := r.u2()
		if err != nil {
			return nil, err
		}
		attrs, err := cf.readAttributes(r)
		if err != nil {
			return nil, err
		}

		fi := FieldInfo{
			AccessFlags: access,
			Name:        cf.cp.utf8At(nameIdx),
			Descriptor:  cf.cp.utf8At(descIdx),
		}
		for _, a := range attrs {
			if isAnnotationAttr(a.name) {
				fi.Annotations = append(fi.Annotations, cf.readAnnotationTypeNames(a.data)...)
			}
		}
		fields = append(fields, fi)
	}
	return fields, nil
}

func (cf *classFile) readMethods(r *reader) ([]MethodInfo, error) {
	count, err := r.u2()
	if err != nil {
		return nil, err
	}
	methods := make([]MethodInfo, 0, count)
	for i := 0; i < int(count); i++ {
		access, err := r.u2()
		if err != nil {
			return nil, err
		}
		nameIdx, err := r.u2()
		if err != nil {
			return nil, err
		}
		descIdx, err := r.u2()
		if err != nil {
			return nil, err
		}
		attrs, err := cf.readAttributes(r)
		if err != nil {
			return nil, err
		}

		mi := MethodInfo{
			AccessFlags: access,
			Name:        cf.cp.utf8At(nameIdx),
			Descriptor:  cf.cp.utf8At(descIdx),
		}
		for _, a := range attrs {
			switch {
			case isAnnotationAttr(a.name):
				mi.Annotations = append(mi.Annotations, cf.readAnnotationTypeNames(a.data)...)
			case isParamAnnotationAttr(a.name):
				mi.ParamAnnotations = append(mi.ParamAnnotations, cf.readParamAnnotationTypeNames(a.data)...)
			case a.name == "Code":
				code, err := cf.readCode(a.data)
				if err != nil {
					return nil, fmt.Errorf("method %s%s: Code: %w", mi.Name, mi.Descriptor, err)
				}
				mi.Code = code
			}
		}
		methods = append(methods, mi)
	}
	return methods, nil
}

// readClassAttributes reads the top-level attribute table of a class
// file, returning the class-level annotation type names and the
// SourceFile attribute's value, if present.
func (cf *classFile) readClassAttributes(r *reader) (annotations []string, sourceFile string, err error) {
	attrs, err := cf.readAttributes(r)
	if err != nil {
		return nil, "", err
	}
	for _, a := range attrs {
		switch {
		case isAnnotationAttr(a.name):
			annotations = append(annotations, cf.readAnnotationTypeNames(a.data)...)
		case a.name == "SourceFile":
			if len(a.data) >= 2 {
				idx := uint16(a.data[0])<<8 | uint16(a.data[1])
				sourceFile = cf.cp.utf8At(idx)
			}
		}
	}
	return annotations, sourceFile, nil
}

func isAnnotationAttr(name string) bool {
	return name == "RuntimeVisibleAnnotations" || name == "RuntimeInvisibleAnnotations"
}

func isParamAnnotationAttr(name string) bool {
	return name == "RuntimeVisibleParameterAnnotations" || name == "RuntimeInvisibleParameterAnnotations"
}

// readAnnotationTypeNames parses a RuntimeVisible/InvisibleAnnotations
// attribute payload (JVMS §4.7.16) down to just the annotation types
// used; element_value pairs are skipped structurally (their contents
// never feed a DependencyEdge in V1).
func (cf *classFile) readAnnotationTypeNames(data []byte) []string {
	r := &reader{data: data}
	count, err := r.u2()
	if err != nil {
		return nil
	}
	names := make([]string, 0, count)
	for i := 0; i < int(count); i++ {
		name, ok := cf.readAnnotation(r)
		if !ok {
			return names
		}
		names = append(names, name)
	}
	return names
}

// readParamAnnotationTypeNames parses RuntimeVisible/InvisibleParameterAnnotations
// (JVMS §4.7.18), flattening annotations across all parameters.
func (cf *classFile) readParamAnnotationTypeNames(data []byte) []string {
	r := &reader{data: data}
	numParams, err := r.u1()
	if err != nil {
		return nil
	}
	var names []string
	for p := 0; p < int(numParams); p++ {
		count, err := r.u2()
		if err != nil {
			return names
		}
		for i := 0; i < int(count); i++ {
			name, ok := cf.readAnnotation(r)
			if !ok {
				return names
			}
			names = append(names, name)
		}
	}
	return names
}

// readAnnotation decodes one `annotation` structure (JVMS §4.7.16),
// returning its internal type name and advancing r past the whole
// structure including all element_value_pairs.
func (cf *classFile) readAnnotation(r *reader) (string, bool) {
	typeIdx, err := r.u2()
	if err != nil {
		return "", false
	}
	descriptor := cf.cp.utf8At(typeIdx)

	numPairs, err := r.u2()
	if err != nil {
		return "", false
	}
	for i := 0; i < int(numPairs); i++ {
		if _, err := r.u2(); err != nil { // element_name_index
			return "", false
		}
		if !cf.skipElementValue(r) {
			return "", false
		}
	}

	// An annotation's descriptor is a field descriptor of the form
	// "Lcom/a/Foo;"; strip the wrapper to get the internal class name.
	if len(descriptor) >= 2 && descriptor[0] == 'L' && descriptor[len(descriptor)-1] == ';' {
		return descriptor[1 : len(descriptor)-1], true
	}
	return descriptor, true
}

// skipElementValue advances r past one element_value structure
// (JVMS §4.7.16.1), recursing for nested annotations and arrays.
func (cf *classFile) skipElementValue(r *reader) bool {
	tag, err := r.u1()
	if err != nil {
		return false
	}
	switch tag {
	case 'B', 'C', 'D', 'F', 'I', 'J', 'S', 'Z', 's':
		_, err := r.u2()
		return err == nil
	case 'e': // enum constant
		if _, err := r.u2(); err != nil {
			return false
		}
		_, err := r.u2()
		return err == nil
	case 'c': // class
		_, err := r.u2()
		return err == nil
	case '@': // nested annotation
		_, ok := cf.readAnnotation(r)
		return ok
	case '[': // array
		count, err := r.u2()
		if err != nil {
			return false
		}
		for i := 0; i < int(count); i++ {
			if !cf.skipElementValue(r) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// readCode parses a Code attribute payload (JVMS §4.7.3) down to the
// constant-pool references found in its bytecode and its exception
// table; the raw bytecode is not kept, and max_stack/max_locals and
// nested attributes (LineNumberTable, StackMapTable, ...) are skipped.
func (cf *classFile) readCode(data []byte) (*CodeAttribute, error) {
	r := &reader{data: data}
	if err := r.skip(4); err != nil { // max_stack, max_locals
		return nil, err
	}
	codeLen, err := r.u4()
	if err != nil {
		return nil, err
	}
	code, err := r.bytes(int(codeLen))
	if err != nil {
		return nil, err
	}
	refs := cf.ScanCode(code)

	excCount, err := r.u2()
	if err != nil {
		return nil, err
	}
	table := make([]ExceptionEntry, 0, excCount)
	for i := 0; i < int(excCount); i++ {
		if err := r.skip(4); err != nil { // start_pc, end_pc, handler_pc
			return nil, err
		}
		catchIdx, err := r.u2()
		if err != nil {
			return nil, err
		}
		var catchType string
		if catchIdx != 0 {
			catchType = cf.classNameAt(catchIdx)
		}
		table = append(table, ExceptionEntry{CatchType: catchType})
	}

	// Remaining attributes (LineNumberTable, LocalVariableTable,
	// StackMapTable, ...) carry nothing the extractor uses.
	if _, err := cf.readAttributes(r); err != nil {
		return nil, err
	}

	return &CodeAttribute{Refs: refs, ExceptionTable: table}, nil
}
