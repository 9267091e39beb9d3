package extract

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/shamash-asm/shamash/internal/classfile"
	"github.com/shamash-asm/shamash/internal/facts"
)

// buildClass constructs a minimal but valid class file directly against
// the classfile package's binary layout (mirroring classfile's own test
// helper, since CodeAttribute internals are package-private there).
func buildClass(t *testing.T) []byte {
	t.Helper()

	var cp bytes.Buffer
	count := uint16(1)
	u2 := func(v uint16) { var b [2]byte; binary.BigEndian.PutUint16(b[:], v); cp.Write(b[:]) }
	utf8 := func(s string) uint16 {
		cp.WriteByte(1)
		u2(uint16(len(s)))
		cp.WriteString(s)
		idx := count
		count++
		return idx
	}
	class := func(name string) uint16 {
		n := utf8(name)
		cp.WriteByte(7)
		u2(n)
		idx := count
		count++
		return idx
	}
	nat := func(name, desc string) uint16 {
		n, d := utf8(name), utf8(desc)
		cp.WriteByte(12)
		u2(n)
		u2(d)
		idx := count
		count++
		return idx
	}
	methodref := func(classIdx, natIdx uint16) uint16 {
		cp.WriteByte(10)
		u2(classIdx)
		u2(natIdx)
		idx := count
		count++
		return idx
	}

	thisIdx := class("com/a/web/UserController")
	superIdx := class("com/a/BaseController")
	ifaceIdx := class("com/a/Closeable")
	repoClassIdx := class("com/a/db/UserRepo")
	repoNAT := nat("findById", "(I)Ljava/lang/Object;")
	repoRef := methodref(repoClassIdx, repoNAT)

	handleNameIdx := utf8("handle")
	handleDescIdx := utf8("(Ljava/lang/String;)Ljava/util/List;")
	codeAttrNameIdx := utf8("Code")

	code := []byte{0x2A, 0xB6, 0x00, 0x00, 0xB1} // aload_0; invokevirtual <repoRef>; return
	binary.BigEndian.PutUint16(code[2:4], repoRef)

	fieldNameIdx := utf8("repo")
	fieldDescIdx := utf8("Lcom/a/db/UserRepo;")

	var out bytes.Buffer
	w2 := func(v uint16) { var b [2]byte; binary.BigEndian.PutUint16(b[:], v); out.Write(b[:]) }
	w4 := func(v uint32) { var b [4]byte; binary.BigEndian.PutUint32(b[:], v); out.Write(b[:]) }

	w4(0xCAFEBABE)
	w2(0)
	w2(61)
	w2(count)
	out.Write(cp.Bytes())

	w2(uint16(classfile.AccPublic | classfile.AccSuper))
	w2(thisIdx)
	w2(superIdx)
	w2(1) // interfaces_count
	w2(ifaceIdx)

	w2(1) // fields_count
	w2(uint16(classfile.AccPrivate))
	w2(fieldNameIdx)
	w2(fieldDescIdx)
	w2(0) // field attributes_count

	w2(1) // methods_count
	w2(uint16(classfile.AccPublic))
	w2(handleNameIdx)
	w2(handleDescIdx)
	w2(1) // method attributes_count (Code)
	w2(codeAttrNameIdx)

	var codeBody bytes.Buffer
	cw2 := func(v uint16) { var b [2]byte; binary.BigEndian.PutUint16(b[:], v); codeBody.Write(b[:]) }
	cw4 := func(v uint32) { var b [4]byte; binary.BigEndian.PutUint32(b[:], v); codeBody.Write(b[:]) }
	cw2(2)
	cw2(1)
	cw4(uint32(len(code)))
	codeBody.Write(code)
	cw2(0) // exception_table_length
	cw2(0) // attributes_count
	w4(uint32(codeBody.Len()))
	out.Write(codeBody.Bytes())

	w2(0) // class attributes_count

	return out.Bytes()
}

func TestExtractBuildsClassFactAndEdges(t *testing.T) {
	loc := facts.SourceLocation{OriginKind: facts.OriginDirClass, OriginPath: "com/a/web/UserController.class"}
	result, warn := Extract(buildClass(t), loc)
	if warn != nil {
		t.Fatalf("unexpected warning: %v", warn.Err)
	}

	if result.Class.FQName != "com.a.web.UserController" {
		t.Errorf("FQName = %q", result.Class.FQName)
	}
	if result.Class.PackageName != "com.a.web" {
		t.Errorf("PackageName = %q", result.Class.PackageName)
	}
	if result.Class.SuperFQName != "com.a.BaseController" {
		t.Errorf("SuperFQName = %q", result.Class.SuperFQName)
	}
	if len(result.Class.InterfaceFQNames) != 1 || result.Class.InterfaceFQNames[0] != "com.a.Closeable" {
		t.Errorf("InterfaceFQNames = %v", result.Class.InterfaceFQNames)
	}
	if len(result.Methods) != 1 || result.Methods[0].Name != "handle" {
		t.Errorf("Methods = %+v", result.Methods)
	}
	if len(result.Fields) != 1 || result.Fields[0].Name != "repo" {
		t.Errorf("Fields = %+v", result.Fields)
	}

	wantKinds := map[facts.EdgeKind]string{
		facts.EdgeExtends:       "com.a.BaseController",
		facts.EdgeImplements:    "com.a.Closeable",
		facts.EdgeFieldType:     "com.a.db.UserRepo",
		facts.EdgeParameterType: "java.lang.String",
		facts.EdgeReturnType:    "java.util.List",
		facts.EdgeMethodCall:    "com.a.db.UserRepo",
	}
	found := map[facts.EdgeKind]bool{}
	for _, e := range result.Edges {
		if want, ok := wantKinds[e.Kind]; ok && e.To.FQName == want {
			found[e.Kind] = true
		}
	}
	for kind := range wantKinds {
		if !found[kind] {
			t.Errorf("missing expected edge of kind %s", kind)
		}
	}
}

func TestExtractSkipsSelfReferentialEdges(t *testing.T) {
	loc := facts.SourceLocation{}
	result, warn := Extract(buildClass(t), loc)
	if warn != nil {
		t.Fatalf("unexpected warning: %v", warn.Err)
	}
	for _, e := range result.Edges {
		if e.To.FQName == e.From.FQName {
			t.Errorf("self-edge should have been dropped: %+v", e)
		}
	}
}

func TestExtractReturnsWarningOnBadMagic(t *testing.T) {
	_, warn := Extract([]byte{0, 0, 0, 0, 0, 0, 0, 0}, facts.SourceLocation{OriginPath: "bad.class"})
	if warn == nil {
		t.Fatal("expected a Warning for malformed class bytes")
	}
	if warn.Location.OriginPath != "bad.class" {
		t.Errorf("warning location = %+v", warn.Location)
	}
}
