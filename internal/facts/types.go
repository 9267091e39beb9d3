// Package facts defines the data model shared by every stage of the
// Shamash-ASM pipeline from FactExtractor onward: ClassFact, MethodRef,
// FieldRef, DependencyEdge, TypeRef, and SourceLocation. These types are
// plain value types; nothing here does I/O or holds a
// mutex. Ownership and mutation rules live in internal/factindex.
package facts

import "strings"

// OriginKind identifies where a class was read from.
type OriginKind int

const (
	OriginDirClass OriginKind = iota
	OriginJarEntry
)

func (k OriginKind) String() string {
	if k == OriginJarEntry {
		return "JAR_ENTRY"
	}
	return "DIR_CLASS"
}

// SourceLocation pinpoints where a class (or the edge/member found in
// it) came from. Paths are always normalized to forward slashes.
type SourceLocation struct {
	OriginKind    OriginKind
	OriginPath    string // normalized path to the .class file or the .jar
	ContainerPath string // "" unless OriginKind == OriginJarEntry: the jar's path
	EntryPath     string // "" unless OriginKind == OriginJarEntry: path within the jar
	SourceFile    string // value of the class's SourceFile attribute, if present
	Line          int    // 0 if unknown
}

// DisplayPath renders the location the way Finding.FilePath and the
// exporters want it: "<jar>!/<entry>" for archive members, or the bare
// normalized path for directory-scanned classes.
func (l SourceLocation) DisplayPath() string {
	if l.OriginKind == OriginJarEntry {
		return l.ContainerPath + "!/" + l.EntryPath
	}
	return l.OriginPath
}

// TypeRef is a value type identifying a JVM type by its fully qualified
// (dot-separated) name, derived from a binary (slash-separated) name.
type TypeRef struct {
	FQName      string
	PackageName string
	InternalName string
}

// NewTypeRef builds a TypeRef from a JVM internal (binary) name such as
// "com/a/web/UserController".
func NewTypeRef(internalName string) TypeRef {
	fq := strings.ReplaceAll(internalName, "/", ".")
	pkg := ""
	if idx := strings.LastIndexByte(fq, '.'); idx >= 0 {
		pkg = fq[:idx]
	}
	return TypeRef{FQName: fq, PackageName: pkg, InternalName: internalName}
}

// SimpleName returns the unqualified class name, e.g. "UserController".
func (t TypeRef) SimpleName() string {
	if idx := strings.LastIndexByte(t.FQName, '.'); idx >= 0 {
		return t.FQName[idx+1:]
	}
	return t.FQName
}

// Visibility mirrors the subset of access flags that matter to rules
// and exports. JVM access flags also encode static/final/etc, but those
// are exposed on ClassFact/MethodRef/FieldRef as explicit booleans.
type Visibility int

const (
	VisibilityPublic Visibility = iota
	VisibilityProtected
	VisibilityPrivate
	VisibilityPackage
)

func (v Visibility) String() string {
	switch v {
	case VisibilityPublic:
		return "public"
	case VisibilityProtected:
		return "protected"
	case VisibilityPrivate:
		return "private"
	default:
		return "package"
	}
}

// ClassFact is the immutable record of one scanned class.
type ClassFact struct {
	FQName       string
	PackageName  string
	SimpleName   string
	Visibility   Visibility
	IsInterface  bool
	IsAbstract   bool
	IsEnum       bool
	HasMainMethod bool
	Annotations  []string // fq-names
	SuperFQName  string   // "" if none (e.g. java.lang.Object itself)
	InterfaceFQNames []string
	MethodCount  int
	FieldCount   int
	JavaVersion  int // class file major version
	Location     SourceLocation
}

// MethodRef identifies one declared method.
type MethodRef struct {
	OwnerFQName string
	Name        string
	Descriptor  string // JVM method descriptor, stable type signature
	AccessFlags uint16
	Synthetic   bool
}

// FieldRef identifies one declared field.
type FieldRef struct {
	OwnerFQName string
	Name        string
	Descriptor  string
	AccessFlags uint16
	Synthetic   bool
}

// EdgeKind enumerates the kinds of DependencyEdge the extractor emits.
type EdgeKind string

const (
	EdgeMethodCall     EdgeKind = "METHOD_CALL"
	EdgeFieldAccess    EdgeKind = "FIELD_ACCESS"
	EdgeFieldType      EdgeKind = "FIELD_TYPE"
	EdgeParameterType  EdgeKind = "PARAMETER_TYPE"
	EdgeReturnType     EdgeKind = "RETURN_TYPE"
	EdgeExtends        EdgeKind = "EXTENDS"
	EdgeImplements     EdgeKind = "IMPLEMENTS"
	EdgeAnnotationType EdgeKind = "ANNOTATION_TYPE"
	EdgeCatch          EdgeKind = "CATCH"
	EdgeInstanceOf     EdgeKind = "INSTANCEOF"
	EdgeNew            EdgeKind = "NEW"
)

// DependencyEdge is a single, deduplicated from→to relationship.
type DependencyEdge struct {
	From     TypeRef
	To       TypeRef
	Kind     EdgeKind
	Detail   string // optional: member name, e.g. for METHOD_CALL/FIELD_ACCESS
	Location SourceLocation
}

// Key is the deduplication identity: (from,to,kind,detail).
func (e DependencyEdge) Key() string {
	return e.From.FQName + "\x00" + e.To.FQName + "\x00" + string(e.Kind) + "\x00" + e.Detail
}
