package classfile

import (
	"bytes"
	"encoding/binary"
	"testing"
)

// cpBuilder assembles a constant pool byte stream for test fixtures,
// mirroring the structures readConstantPool expects.
type cpBuilder struct {
	buf   bytes.Buffer
	count uint16 // next free index; index 0 is reserved
}

func newCPBuilder() *cpBuilder {
	return &cpBuilder{count: 1}
}

func (b *cpBuilder) u1(v uint8)  { b.buf.WriteByte(v) }
func (b *cpBuilder) u2(v uint16) { var t [2]byte; binary.BigEndian.PutUint16(t[:], v); b.buf.Write(t[:]) }

func (b *cpBuilder) utf8(s string) uint16 {
	b.u1(tagUtf8)
	b.u2(uint16(len(s)))
	b.buf.WriteString(s)
	idx := b.count
	b.count++
	return idx
}

func (b *cpBuilder) class(name string) uint16 {
	nameIdx := b.utf8(name)
	b.u1(tagClass)
	b.u2(nameIdx)
	idx := b.count
	b.count++
	return idx
}

func (b *cpBuilder) nameAndType(name, desc string) uint16 {
	ni := b.utf8(name)
	di := b.utf8(desc)
	b.u1(tagNameAndType)
	b.u2(ni)
	b.u2(di)
	idx := b.count
	b.count++
	return idx
}

func (b *cpBuilder) methodref(classIdx, natIdx uint16) uint16 {
	b.u1(tagMethodref)
	b.u2(classIdx)
	b.u2(natIdx)
	idx := b.count
	b.count++
	return idx
}

func (b *cpBuilder) invokeDynamic(natIdx uint16) uint16 {
	b.u1(tagInvokeDynamic)
	b.u2(0) // bootstrap_method_attr_index
	b.u2(natIdx)
	idx := b.count
	b.count++
	return idx
}

// newTestClass builds a well-formed minimal class file for tests. It
// declares one method "run()V" with a Code attribute, optionally
// containing an invokevirtual call to calleeClass.doWork()V.
func newTestClass(t *testing.T, thisName, superName, calleeClass string) []byte {
	t.Helper()
	cp := newCPBuilder()

	thisIdx := cp.class(thisName)
	superIdx := cp.class(superName)
	runNameIdx := cp.utf8("run")
	runDescIdx := cp.utf8("()V")
	codeAttrNameIdx := cp.utf8("Code")

	var code []byte
	if calleeClass != "" {
		calleeClassIdx := cp.class(calleeClass)
		nat := cp.nameAndType("doWork", "()V")
		mref := cp.methodref(calleeClassIdx, nat)
		code = []byte{0x2A, 0xB6, 0x00, 0x00, 0xB1}
		binary.BigEndian.PutUint16(code[2:4], mref)
	} else {
		code = []byte{0xB1}
	}

	var out bytes.Buffer
	binary.Write(&out, binary.BigEndian, uint32(magic))
	binary.Write(&out, binary.BigEndian, uint16(0))
	binary.Write(&out, binary.BigEndian, uint16(61))

	binary.Write(&out, binary.BigEndian, cp.count)
	out.Write(cp.buf.Bytes())

	binary.Write(&out, binary.BigEndian, uint16(AccPublic|AccSuper))
	binary.Write(&out, binary.BigEndian, thisIdx)
	binary.Write(&out, binary.BigEndian, superIdx)
	binary.Write(&out, binary.BigEndian, uint16(0)) // interfaces

	binary.Write(&out, binary.BigEndian, uint16(0)) // fields_count

	binary.Write(&out, binary.BigEndian, uint16(1)) // methods_count
	binary.Write(&out, binary.BigEndian, uint16(AccPublic))
	binary.Write(&out, binary.BigEndian, runNameIdx)
	binary.Write(&out, binary.BigEndian, runDescIdx)
	binary.Write(&out, binary.BigEndian, uint16(1)) // attributes_count (Code)

	binary.Write(&out, binary.BigEndian, codeAttrNameIdx)
	var codeBody bytes.Buffer
	binary.Write(&codeBody, binary.BigEndian, uint16(2))             // max_stack
	binary.Write(&codeBody, binary.BigEndian, uint16(1))             // max_locals
	binary.Write(&codeBody, binary.BigEndian, uint32(len(code)))     // code_length
	codeBody.Write(code)
	binary.Write(&codeBody, binary.BigEndian, uint16(0)) // exception_table_length
	binary.Write(&codeBody, binary.BigEndian, uint16(0)) // attributes_count
	binary.Write(&out, binary.BigEndian, uint32(codeBody.Len()))
	out.Write(codeBody.Bytes())

	binary.Write(&out, binary.BigEndian, uint16(0)) // class attributes_count

	return out.Bytes()
}

func TestParseBasicClass(t *testing.T) {
	data := newTestClass(t, "com/a/web/UserController", "java/lang/Object", "com/a/db/UserRepo")

	cf, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cf.ThisClass != "com/a/web/UserController" {
		t.Errorf("ThisClass = %q", cf.ThisClass)
	}
	if cf.SuperClass != "java/lang/Object" {
		t.Errorf("SuperClass = %q", cf.SuperClass)
	}
	if len(cf.Methods) != 1 {
		t.Fatalf("len(Methods) = %d, want 1", len(cf.Methods))
	}
	m := cf.Methods[0]
	if m.Name != "run" || m.Descriptor != "()V" {
		t.Errorf("method = %s%s", m.Name, m.Descriptor)
	}
	if m.Code == nil {
		t.Fatal("expected Code attribute")
	}
	if len(m.Code.Refs) != 1 {
		t.Fatalf("len(Code.Refs) = %d, want 1", len(m.Code.Refs))
	}
	ref := m.Code.Refs[0]
	if ref.Kind != RefMethodCall || ref.Owner != "com/a/db/UserRepo" || ref.MemberName != "doWork" {
		t.Errorf("unexpected ref: %+v", ref)
	}
}

func TestScanCodeCapturesLambdaTargetFromInvokeDynamic(t *testing.T) {
	cp := newCPBuilder()
	nat := cp.nameAndType("get", "()Ljava/util/function/Supplier;")
	indy := cp.invokeDynamic(nat)

	parsed, err := readConstantPool(&reader{data: append(countPrefix(cp.count), cp.buf.Bytes()...)})
	if err != nil {
		t.Fatalf("readConstantPool: %v", err)
	}
	cf := &classFile{cp: parsed}

	code := []byte{0xBA, 0x00, 0x00, 0x00, 0x00, 0xB1}
	binary.BigEndian.PutUint16(code[1:3], indy)

	refs := cf.ScanCode(code)
	if len(refs) != 1 {
		t.Fatalf("len(refs) = %d, want 1", len(refs))
	}
	ref := refs[0]
	if ref.Kind != RefLambdaTarget || ref.ClassName != "java/util/function/Supplier" || ref.MemberName != "get" {
		t.Errorf("unexpected ref: %+v", ref)
	}
}

func countPrefix(count uint16) []byte {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], count)
	return b[:]
}

func TestParseRejectsBadMagic(t *testing.T) {
	_, err := Parse([]byte{0, 0, 0, 0})
	if err == nil {
		t.Fatal("expected error for bad magic")
	}
}

func TestParseRejectsTruncated(t *testing.T) {
	data := newTestClass(t, "com/a/Foo", "java/lang/Object", "")
	_, err := Parse(data[:len(data)-10])
	if err == nil {
		t.Fatal("expected truncation error")
	}
}

func TestParseFieldType(t *testing.T) {
	cases := []struct {
		desc    string
		want    string
		wantOK  bool
	}{
		{"I", "", false},
		{"[I", "", false},
		{"Ljava/lang/String;", "java/lang/String", true},
		{"[Ljava/lang/String;", "java/lang/String", true},
		{"[[Ljava/util/List;", "java/util/List", true},
		{"Z", "", false},
	}
	for _, c := range cases {
		got, ok := ParseFieldType(c.desc)
		if ok != c.wantOK || got != c.want {
			t.Errorf("ParseFieldType(%q) = (%q, %v), want (%q, %v)", c.desc, got, ok, c.want, c.wantOK)
		}
	}
}

func TestParseMethodDescriptor(t *testing.T) {
	params, ret, retOK := ParseMethodDescriptor("(ILjava/lang/String;[Lcom/a/Foo;)Ljava/util/List;")
	if len(params) != 2 || params[0] != "java/lang/String" || params[1] != "com/a/Foo" {
		t.Errorf("params = %v", params)
	}
	if !retOK || ret != "java/util/List" {
		t.Errorf("return = %q, %v", ret, retOK)
	}

	_, _, voidOK := ParseMethodDescriptor("()V")
	if voidOK {
		t.Error("void return should not resolve to a type")
	}
}
