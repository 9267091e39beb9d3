package classfile

import "fmt"

const magic = 0xCAFEBABE

// Access flag bits relevant to ClassFact/MethodRef/FieldRef (JVMS §4.1, §4.5, §4.6).
const (
	AccPublic     = 0x0001
	AccPrivate    = 0x0002
	AccProtected  = 0x0004
	AccStatic     = 0x0008
	AccFinal      = 0x0010
	AccSuper      = 0x0020
	AccInterface  = 0x0200
	AccAbstract   = 0x0400
	AccSynthetic  = 0x1000
	AccAnnotation = 0x2000
	AccEnum       = 0x4000
)

// FieldInfo is a decoded field_info structure, descriptor left unparsed
// (the extractor turns it into a TypeRef).
type FieldInfo struct {
	AccessFlags uint16
	Name        string
	Descriptor  string
	Annotations []string // fq internal names of annotation types used on this field
}

// MethodInfo is a decoded method_info structure.
type MethodInfo struct {
	AccessFlags    uint16
	Name           string
	Descriptor     string
	Annotations    []string
	ParamAnnotations []string // flattened across all parameters
	Code           *CodeAttribute // nil if the method has no Code attribute (abstract/native)
}

// CodeAttribute holds what the extractor needs from a method body: the
// constant-pool references already resolved out of the bytecode
// instruction stream, and the exception table (for CATCH edges).
// max_stack/max_locals and the raw bytecode itself are discarded once
// scanned; nothing downstream re-reads them.
type CodeAttribute struct {
	Refs           []BodyRef
	ExceptionTable []ExceptionEntry
}

// ExceptionEntry is one row of a Code attribute's exception_table.
// CatchType is "" for a catch-all (finally) entry.
type ExceptionEntry struct {
	CatchType string // internal binary name, already resolved
}

// ClassFile is the decoded subset of a .class file this module needs.
type ClassFile struct {
	MinorVersion uint16
	MajorVersion uint16
	AccessFlags  uint16
	ThisClass    string // internal binary name, e.g. "com/a/web/UserController"
	SuperClass   string // "" when super_class is 0 (java/lang/Object's own record)
	Interfaces   []string
	Fields       []FieldInfo
	Methods      []MethodInfo
	Annotations  []string // class-level annotation fq internal names
	SourceFile   string   // from the SourceFile attribute, "" if absent
}

// classFile is the internal decoding context; cp is kept private so the
// constant-pool resolution helpers in constantpool.go stay encapsulated.
type classFile struct {
	cp *constantPool
}

// Parse decodes a class file's bytes into a ClassFile. Any structural
// error (bad magic, truncation, unknown constant-pool tag) is returned
// wrapped; the caller (internal/extract) turns that into one
// warning and skips the class.
func Parse(data []byte) (*ClassFile, error) {
	r := &reader{data: data}

	m, err := r.u4()
	if err != nil {
		return nil, fmt.Errorf("classfile: reading magic: %w", err)
	}
	if m != magic {
		return nil, fmt.Errorf("classfile: bad magic 0x%08X", m)
	}

	minor, err := r.u2()
	if err != nil {
		return nil, err
	}
	major, err := r.u2()
	if err != nil {
		return nil, err
	}

	cp, err := readConstantPool(r)
	if err != nil {
		return nil, fmt.Errorf("classfile: %w", err)
	}
	cf := &classFile{cp: cp}

	accessFlags, err := r.u2()
	if err != nil {
		return nil, err
	}
	thisIdx, err := r.u2()
	if err != nil {
		return nil, err
	}
	superIdx, err := r.u2()
	if err != nil {
		return nil, err
	}

	ifaceCount, err := r.u2()
	if err != nil {
		return nil, err
	}
	interfaces := make([]string, 0, ifaceCount)
	for i := 0; i < int(ifaceCount); i++ {
		idx, err := r.u2()
		if err != nil {
			return nil, err
		}
		interfaces = append(interfaces, cf.classNameAt(idx))
	}

	fields, err := cf.readFields(r)
	if err != nil {
		return nil, fmt.Errorf("classfile: fields: %w", err)
	}

	methods, err := cf.readMethods(r)
	if err != nil {
		return nil, fmt.Errorf("classfile: methods: %w", err)
	}

	classAnnotations, sourceFile, err := cf.readClassAttributes(r)
	if err != nil {
		return nil, fmt.Errorf("classfile: attributes: %w", err)
	}

	return &ClassFile{
		MinorVersion: minor,
		MajorVersion: major,
		AccessFlags:  accessFlags,
		ThisClass:    cf.classNameAt(thisIdx),
		SuperClass:   cf.classNameAt(superIdx),
		Interfaces:   interfaces,
		Fields:       fields,
		Methods:      methods,
		Annotations:  classAnnotations,
		SourceFile:   sourceFile,
	}, nil
}
