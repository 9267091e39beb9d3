package classfile

import "fmt"

// Constant pool tags, JVMS §4.4 Table 4.4-A.
const (
	tagUtf8              = 1
	tagInteger           = 3
	tagFloat             = 4
	tagLong              = 5
	tagDouble            = 6
	tagClass             = 7
	tagString            = 8
	tagFieldref          = 9
	tagMethodref         = 10
	tagInterfaceMethodref = 11
	tagNameAndType       = 12
	tagMethodHandle      = 15
	tagMethodType        = 16
	tagDynamic           = 17
	tagInvokeDynamic     = 18
	tagModule            = 19
	tagPackage           = 20
)

// cpEntry is one raw constant pool slot. Only the fields relevant to a
// given tag are populated; unused fields are zero.
type cpEntry struct {
	tag        uint8
	utf8       string
	nameIdx    uint16 // Class, MethodType (descriptor_index reuses this), Module, Package
	classIdx   uint16 // Fieldref/Methodref/InterfaceMethodref, Dynamic/InvokeDynamic (ignored)
	natIdx     uint16 // Fieldref/Methodref/InterfaceMethodref: name_and_type_index
	descIdx    uint16 // NameAndType: descriptor_index
}

// constantPool is 1-indexed per JVMS; index 0 is always unused, and
// Long/Double entries occupy two slots (the second is a zero-value
// placeholder).
type constantPool struct {
	entries []cpEntry
}

func readConstantPool(r *reader) (*constantPool, error) {
	count, err := r.u2()
	if err != nil {
		return nil, err
	}
	cp := &constantPool{entries: make([]cpEntry, count)}

	for i := 1; i < int(count); i++ {
		tag, err := r.u1()
		if err != nil {
			return nil, fmt.Errorf("constant pool entry %d: %w", i, err)
		}
		e := cpEntry{tag: tag}

		switch tag {
		case tagUtf8:
			n, err := r.u2()
			if err != nil {
				return nil, err
			}
			b, err := r.bytes(int(n))
			if err != nil {
				return nil, err
			}
			e.utf8 = string(b)
		case tagInteger, tagFloat:
			if err := r.skip(4); err != nil {
				return nil, err
			}
		case tagLong, tagDouble:
			if err := r.skip(8); err != nil {
				return nil, err
			}
			cp.entries[i] = e
			i++ // occupies two constant pool slots
			continue
		case tagClass, tagMethodType, tagModule, tagPackage:
			idx, err := r.u2()
			if err != nil {
				return nil, err
			}
			e.nameIdx = idx
		case tagString:
			if _, err := r.u2(); err != nil {
				return nil, err
			}
		case tagFieldref, tagMethodref, tagInterfaceMethodref:
			ci, err := r.u2()
			if err != nil {
				return nil, err
			}
			ni, err := r.u2()
			if err != nil {
				return nil, err
			}
			e.classIdx, e.natIdx = ci, ni
		case tagNameAndType:
			ni, err := r.u2()
			if err != nil {
				return nil, err
			}
			di, err := r.u2()
			if err != nil {
				return nil, err
			}
			e.nameIdx, e.descIdx = ni, di
		case tagMethodHandle:
			if _, err := r.u1(); err != nil {
				return nil, err
			}
			if _, err := r.u2(); err != nil {
				return nil, err
			}
		case tagDynamic, tagInvokeDynamic:
			// bootstrap_method_attr_index is skipped; the name_and_type
			// is kept so ScanCode can recover a desugared lambda's
			// functional-interface target from the call-site descriptor.
			if _, err := r.u2(); err != nil {
				return nil, err
			}
			ni, err := r.u2()
			if err != nil {
				return nil, err
			}
			e.natIdx = ni
		default:
			return nil, fmt.Errorf("constant pool entry %d: unknown tag %d", i, tag)
		}

		cp.entries[i] = e
	}

	return cp, nil
}

func (cp *constantPool) valid(idx uint16) bool {
	return int(idx) > 0 && int(idx) < len(cp.entries)
}

// utf8At returns the UTF-8 string stored at idx, or "" if idx doesn't
// point at a CONSTANT_Utf8 entry.
func (cp *constantPool) utf8At(idx uint16) string {
	if !cp.valid(idx) {
		return ""
	}
	e := cp.entries[idx]
	if e.tag != tagUtf8 {
		return ""
	}
	return e.utf8
}

// classNameAt resolves a CONSTANT_Class entry to its internal (slash-
// separated) binary name, e.g. "java/lang/String" or "[Ljava/lang/String;"
// for array class constants.
func (cf *classFile) classNameAt(idx uint16) string {
	if !cf.cp.valid(idx) {
		return ""
	}
	e := cf.cp.entries[idx]
	if e.tag != tagClass {
		return ""
	}
	return cf.cp.utf8At(e.nameIdx)
}

// nameAndTypeAt resolves a CONSTANT_NameAndType entry.
func (cp *constantPool) nameAndTypeAt(idx uint16) (name, desc string, ok bool) {
	if !cp.valid(idx) {
		return "", "", false
	}
	e := cp.entries[idx]
	if e.tag != tagNameAndType {
		return "", "", false
	}
	return cp.utf8At(e.nameIdx), cp.utf8At(e.descIdx), true
}

// invokeDynamicTarget resolves a CONSTANT_InvokeDynamic entry to the
// functional method's name and the call-site descriptor's return type
// (the interface a desugared lambda or method reference produces).
// CONSTANT_Dynamic entries are resolved the same way. ok is false when
// the return type is primitive/void or the entry is neither an
// invokedynamic nor a dynamic constant.
func (cf *classFile) invokeDynamicTarget(idx uint16) (name, target string, ok bool) {
	cp := cf.cp
	if !cp.valid(idx) {
		return "", "", false
	}
	e := cp.entries[idx]
	if e.tag != tagInvokeDynamic && e.tag != tagDynamic {
		return "", "", false
	}
	name, desc, ok := cp.nameAndTypeAt(e.natIdx)
	if !ok {
		return "", "", false
	}
	_, ret, retOK := ParseMethodDescriptor(desc)
	if !retOK {
		return "", "", false
	}
	return name, ret, true
}

// refAt resolves a Fieldref/Methodref/InterfaceMethodref entry to the
// owner's internal class name plus the referenced member's name and
// descriptor.
func (cf *classFile) refAt(idx uint16) (owner, name, desc string, ok bool) {
	cp := cf.cp
	if !cp.valid(idx) {
		return "", "", "", false
	}
	e := cp.entries[idx]
	switch e.tag {
	case tagFieldref, tagMethodref, tagInterfaceMethodref:
	default:
		return "", "", "", false
	}
	owner = cf.classNameAt(e.classIdx)
	name, desc, ok = cp.nameAndTypeAt(e.natIdx)
	if !ok {
		return "", "", "", false
	}
	return owner, name, desc, true
}
