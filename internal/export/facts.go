package export

import (
	"bufio"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"os"

	"github.com/shamash-asm/shamash/internal/factindex"
)

// RecordKind discriminates one line/entry of a FACTS export.
type RecordKind string

const (
	RecordKindMeta  RecordKind = "META"
	RecordKindClass RecordKind = "CLASS"
	RecordKindEdge  RecordKind = "EDGE"
)

type MetaRecord struct {
	Kind          RecordKind `json:"kind"`
	SchemaID      string     `json:"schemaId"`
	SchemaVersion int        `json:"schemaVersion"`
	ToolName      string     `json:"toolName"`
	ToolVersion   string     `json:"toolVersion"`
	GeneratedAtMs int64      `json:"generatedAtEpochMillis"`
	ProjectName   string     `json:"projectName"`
}

type ClassRecord struct {
	Kind             RecordKind `json:"kind"`
	FQName           string     `json:"fqName"`
	PackageName      string     `json:"packageName"`
	SimpleName       string     `json:"simpleName"`
	Visibility       string     `json:"visibility"`
	IsInterface      bool       `json:"isInterface"`
	IsAbstract       bool       `json:"isAbstract"`
	IsEnum           bool       `json:"isEnum"`
	HasMainMethod    bool       `json:"hasMainMethod"`
	Annotations      []string   `json:"annotations,omitempty"`
	SuperFQName      string     `json:"superFqName,omitempty"`
	InterfaceFQNames []string   `json:"interfaceFqNames,omitempty"`
	MethodCount      int        `json:"methodCount"`
	FieldCount       int        `json:"fieldCount"`
	JavaVersion      int        `json:"javaVersion"`
	Role             string     `json:"role,omitempty"`
	Origin           string     `json:"origin"`
}

type EdgeRecord struct {
	Kind   RecordKind `json:"kind"`
	From   string     `json:"from"`
	To     string     `json:"to"`
	Edge   string     `json:"edgeKind"`
	Detail string     `json:"detail,omitempty"`
	Origin string     `json:"origin"`
}

// writeFacts streams the FactIndex's classes and edges to path, either as
// a gzipped JSONL stream (one JSON object per line) or as a single JSON
// document with a `records` array, per opts.FactsEncoding.
func writeFacts(path string, idx *factindex.Index, opts Options) error {
	records := buildFactsRecords(idx, opts)

	if opts.FactsEncoding == FactsEncodingJSON {
		data, err := json.MarshalIndent(struct {
			Records []any `json:"records"`
		}{Records: records}, "", "  ")
		if err != nil {
			return err
		}
		return writeAtomic(path, data)
	}
	return writeFactsJSONLGZ(path, records)
}

func buildFactsRecords(idx *factindex.Index, opts Options) []any {
	records := make([]any, 0, 1+len(idx.Classes())+len(idx.Edges()))
	records = append(records, MetaRecord{
		Kind: RecordKindMeta, SchemaID: SchemaID, SchemaVersion: SchemaVersion,
		ToolName: ToolName, ToolVersion: opts.ToolVersion, GeneratedAtMs: opts.GeneratedAtMs,
		ProjectName: opts.ProjectName,
	})
	for _, c := range idx.Classes() {
		records = append(records, ClassRecord{
			Kind: RecordKindClass, FQName: c.FQName, PackageName: c.PackageName, SimpleName: c.SimpleName,
			Visibility: c.Visibility.String(), IsInterface: c.IsInterface, IsAbstract: c.IsAbstract, IsEnum: c.IsEnum,
			HasMainMethod: c.HasMainMethod, Annotations: c.Annotations, SuperFQName: c.SuperFQName,
			InterfaceFQNames: c.InterfaceFQNames, MethodCount: c.MethodCount, FieldCount: c.FieldCount,
			JavaVersion: c.JavaVersion, Role: idx.RoleOf(c.FQName), Origin: c.Location.DisplayPath(),
		})
	}
	for _, e := range idx.Edges() {
		records = append(records, EdgeRecord{
			Kind: RecordKindEdge, From: e.From.FQName, To: e.To.FQName, Edge: string(e.Kind),
			Detail: e.Detail, Origin: e.Location.DisplayPath(),
		})
	}
	return records
}

func writeFactsJSONLGZ(path string, records []any) error {
	tmp := path + ".tmp"
	file, err := os.Create(tmp)
	if err != nil {
		return err
	}

	if err := encodeFactsJSONLGZ(file, records); err != nil {
		file.Close()
		os.Remove(tmp)
		return err
	}
	if err := file.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("renaming %s to %s: %w", tmp, path, err)
	}
	return nil
}

func encodeFactsJSONLGZ(file *os.File, records []any) error {
	gz := gzip.NewWriter(file)
	w := bufio.NewWriter(gz)
	enc := json.NewEncoder(w)
	for _, r := range records {
		if err := enc.Encode(r); err != nil {
			return err
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return gz.Close()
}
