package export

import (
	"bufio"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// ReadFacts decodes a FACTS export written by writeFacts, returning its
// classes and edges (the meta record is decoded but not returned: callers
// needing it should read the raw records themselves). Unknown record
// kinds are ignored for forward-compatibility.
func ReadFacts(path string, encoding FactsEncoding) ([]ClassRecord, []EdgeRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if encoding == FactsEncodingJSONLGZ {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, nil, fmt.Errorf("opening gzip stream: %w", err)
		}
		defer gz.Close()
		r = gz
	}

	if encoding == FactsEncodingJSON {
		return readFactsJSON(r)
	}
	return readFactsJSONL(r)
}

func readFactsJSON(r io.Reader) ([]ClassRecord, []EdgeRecord, error) {
	var doc struct {
		Records []json.RawMessage `json:"records"`
	}
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, nil, err
	}
	return classifyRecords(doc.Records)
}

func readFactsJSONL(r io.Reader) ([]ClassRecord, []EdgeRecord, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	var raws []json.RawMessage
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		raws = append(raws, json.RawMessage(append([]byte(nil), line...)))
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, err
	}
	return classifyRecords(raws)
}

func classifyRecords(raws []json.RawMessage) ([]ClassRecord, []EdgeRecord, error) {
	var classes []ClassRecord
	var edges []EdgeRecord
	for _, raw := range raws {
		var tagged struct {
			Kind RecordKind `json:"kind"`
		}
		if err := json.Unmarshal(raw, &tagged); err != nil {
			return nil, nil, err
		}
		switch tagged.Kind {
		case RecordKindClass:
			var c ClassRecord
			if err := json.Unmarshal(raw, &c); err != nil {
				return nil, nil, err
			}
			classes = append(classes, c)
		case RecordKindEdge:
			var e EdgeRecord
			if err := json.Unmarshal(raw, &e); err != nil {
				return nil, nil, err
			}
			edges = append(edges, e)
		default:
			// META and any future kind are ignored here.
		}
	}
	return classes, edges, nil
}
