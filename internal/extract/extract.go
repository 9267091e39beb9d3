// Package extract implements the FactExtractor: it turns one parsed
// classfile.ClassFile plus its originating facts.SourceLocation into
// the fact tuple internal/factindex.Builder accumulates: a
// facts.ClassFact, its declared facts.MethodRef/facts.FieldRef slices,
// and every facts.DependencyEdge the class body expresses (extends,
// implements, field/parameter/return types, annotation usages, and the
// method-body edges recovered from bytecode: new, checkcast/instanceof,
// field access, method calls, and caught exception types).
package extract

import (
	"fmt"
	"strings"

	"github.com/shamash-asm/shamash/internal/classfile"
	"github.com/shamash-asm/shamash/internal/facts"
)

// Warning reports one class that could not be parsed or extracted. The
// extractor always continues with the next candidate; a malformed class
// file degrades the run, it never aborts it.
type Warning struct {
	Location facts.SourceLocation
	Err      error
}

// Result is everything one class contributes to the FactIndex.
type Result struct {
	Class   facts.ClassFact
	Methods []facts.MethodRef
	Fields  []facts.FieldRef
	Edges   []facts.DependencyEdge
}

// Extract parses data as a class file and derives its Result. On a
// parse failure it returns a Warning instead of an error so callers can
// keep batching results across a worker pool without special-casing.
func Extract(data []byte, loc facts.SourceLocation) (*Result, *Warning) {
	cf, err := classfile.Parse(data)
	if err != nil {
		return nil, &Warning{Location: loc, Err: fmt.Errorf("extract: %w", err)}
	}

	loc.SourceFile = cf.SourceFile

	e := &extraction{cf: cf, loc: loc, self: facts.NewTypeRef(cf.ThisClass)}
	return e.run(), nil
}

type extraction struct {
	cf    *classfile.ClassFile
	loc   facts.SourceLocation
	self  facts.TypeRef
	edges []facts.DependencyEdge
}

func (e *extraction) run() *Result {
	class := e.buildClassFact()

	methods := make([]facts.MethodRef, 0, len(e.cf.Methods))
	for _, m := range e.cf.Methods {
		methods = append(methods, facts.MethodRef{
			OwnerFQName: e.self.FQName,
			Name:        m.Name,
			Descriptor:  m.Descriptor,
			AccessFlags: m.AccessFlags,
			Synthetic:   m.AccessFlags&classfile.AccSynthetic != 0,
		})
		e.extractMethodEdges(m)
	}

	fields := make([]facts.FieldRef, 0, len(e.cf.Fields))
	for _, f := range e.cf.Fields {
		fields = append(fields, facts.FieldRef{
			OwnerFQName: e.self.FQName,
			Name:        f.Name,
			Descriptor:  f.Descriptor,
			AccessFlags: f.AccessFlags,
			Synthetic:   f.AccessFlags&classfile.AccSynthetic != 0,
		})
		e.extractFieldEdges(f)
	}

	e.extractClassEdges()

	return &Result{Class: class, Methods: methods, Fields: fields, Edges: e.edges}
}

func (e *extraction) buildClassFact() facts.ClassFact {
	cf := e.cf
	hasMain := false
	for _, m := range cf.Methods {
		if m.Name == "main" && m.Descriptor == "([Ljava/lang/String;)V" &&
			m.AccessFlags&classfile.AccStatic != 0 && m.AccessFlags&classfile.AccPublic != 0 {
			hasMain = true
			break
		}
	}

	superFQ := ""
	if cf.SuperClass != "" {
		superFQ = facts.NewTypeRef(cf.SuperClass).FQName
	}
	ifaces := make([]string, 0, len(cf.Interfaces))
	for _, i := range cf.Interfaces {
		ifaces = append(ifaces, facts.NewTypeRef(i).FQName)
	}
	annotations := make([]string, 0, len(cf.Annotations))
	for _, a := range cf.Annotations {
		annotations = append(annotations, facts.NewTypeRef(a).FQName)
	}

	return facts.ClassFact{
		FQName:           e.self.FQName,
		PackageName:      e.self.PackageName,
		SimpleName:       e.self.SimpleName(),
		Visibility:       visibilityOf(cf.AccessFlags),
		IsInterface:      cf.AccessFlags&classfile.AccInterface != 0,
		IsAbstract:       cf.AccessFlags&classfile.AccAbstract != 0,
		IsEnum:           cf.AccessFlags&classfile.AccEnum != 0,
		HasMainMethod:    hasMain,
		Annotations:      annotations,
		SuperFQName:      superFQ,
		InterfaceFQNames: ifaces,
		MethodCount:      len(cf.Methods),
		FieldCount:       len(cf.Fields),
		JavaVersion:      int(cf.MajorVersion),
		Location:         e.loc,
	}
}

func visibilityOf(flags uint16) facts.Visibility {
	switch {
	case flags&classfile.AccPublic != 0:
		return facts.VisibilityPublic
	case flags&classfile.AccProtected != 0:
		return facts.VisibilityProtected
	case flags&classfile.AccPrivate != 0:
		return facts.VisibilityPrivate
	default:
		return facts.VisibilityPackage
	}
}

func (e *extraction) addEdge(to facts.TypeRef, kind facts.EdgeKind, detail string) {
	if to.FQName == "" || to.FQName == e.self.FQName {
		return
	}
	e.edges = append(e.edges, facts.DependencyEdge{
		From: e.self, To: to, Kind: kind, Detail: detail, Location: e.loc,
	})
}

func (e *extraction) extractClassEdges() {
	cf := e.cf
	if cf.SuperClass != "" && cf.SuperClass != "java/lang/Object" {
		e.addEdge(facts.NewTypeRef(cf.SuperClass), facts.EdgeExtends, "")
	}
	for _, iface := range cf.Interfaces {
		e.addEdge(facts.NewTypeRef(iface), facts.EdgeImplements, "")
	}
	for _, ann := range cf.Annotations {
		e.addEdge(facts.NewTypeRef(ann), facts.EdgeAnnotationType, "")
	}
}

func (e *extraction) extractFieldEdges(f classfile.FieldInfo) {
	if internalName, ok := classfile.ParseFieldType(f.Descriptor); ok {
		e.addEdge(facts.NewTypeRef(internalName), facts.EdgeFieldType, f.Name)
	}
	for _, ann := range f.Annotations {
		e.addEdge(facts.NewTypeRef(ann), facts.EdgeAnnotationType, f.Name)
	}
}

func (e *extraction) extractMethodEdges(m classfile.MethodInfo) {
	params, ret, retOK := classfile.ParseMethodDescriptor(m.Descriptor)
	for _, p := range params {
		e.addEdge(facts.NewTypeRef(p), facts.EdgeParameterType, m.Name)
	}
	if retOK {
		e.addEdge(facts.NewTypeRef(ret), facts.EdgeReturnType, m.Name)
	}
	for _, ann := range m.Annotations {
		e.addEdge(facts.NewTypeRef(ann), facts.EdgeAnnotationType, m.Name)
	}
	for _, ann := range m.ParamAnnotations {
		e.addEdge(facts.NewTypeRef(ann), facts.EdgeAnnotationType, m.Name)
	}

	if m.Code == nil {
		return
	}
	for _, ref := range m.Code.Refs {
		e.addBodyRefEdge(m.Name, ref)
	}
	for _, ex := range m.Code.ExceptionTable {
		if ex.CatchType != "" {
			e.addEdge(facts.NewTypeRef(ex.CatchType), facts.EdgeCatch, m.Name)
		}
	}
}

func (e *extraction) addBodyRefEdge(methodName string, ref classfile.BodyRef) {
	switch ref.Kind {
	case classfile.RefNew:
		e.addTypeEdge(ref.ClassName, facts.EdgeNew, methodName)
	case classfile.RefInstanceOf:
		e.addTypeEdge(ref.ClassName, facts.EdgeInstanceOf, methodName)
	case classfile.RefFieldAccess:
		e.addTypeEdge(ref.Owner, facts.EdgeFieldAccess, ref.MemberName)
	case classfile.RefMethodCall:
		e.addTypeEdge(ref.Owner, facts.EdgeMethodCall, ref.MemberName)
	case classfile.RefLambdaTarget:
		// A desugared lambda counts as the enclosing method referencing
		// the functional-interface type it produces.
		e.addTypeEdge(ref.ClassName, facts.EdgeMethodCall, ref.MemberName)
	}
}

// addTypeEdge reduces an internal name that may be in array-descriptor
// form ("[Ljava/lang/String;", "[I") to its element type, dropping
// primitives, before emitting the edge. Constant-pool class entries use
// the descriptor form for array classes (checkcast on arrays, clone
// calls on array receivers).
func (e *extraction) addTypeEdge(internalName string, kind facts.EdgeKind, detail string) {
	if strings.HasPrefix(internalName, "[") {
		element, ok := classfile.ParseFieldType(internalName)
		if !ok {
			return
		}
		internalName = element
	}
	if internalName == "" {
		return
	}
	e.addEdge(facts.NewTypeRef(internalName), kind, detail)
}
