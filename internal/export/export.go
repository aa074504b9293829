// Package export serializes a parsed trace: JSON and MessagePack documents
// for tools, and a colored text listing for people.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/vmihailenco/msgpack/v5"

	"stracetui/internal/diag"
	"stracetui/internal/model"
)

// Format selects the serialization used by Write.
type Format uint8

const (
	FormatJSON Format = iota
	FormatMsgpack
	FormatText
)

func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatMsgpack:
		return "msgpack"
	case FormatText:
		return "text"
	default:
		return "unknown"
	}
}

// ParseFormat accepts json, msgpack (or mp) and text.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json", "":
		return FormatJSON, nil
	case "msgpack", "mp":
		return FormatMsgpack, nil
	case "text", "pretty":
		return FormatText, nil
	}
	return FormatJSON, fmt.Errorf("unknown export format %q (expected json|msgpack|text)", s)
}

// Document is the exported form of one parsed trace.
type Document struct {
	Entries []model.CallRecord `json:"entries"`
	Summary model.Summary      `json:"summary"`
	Errors  []ErrorEntry       `json:"errors"`
}

// ErrorEntry is one diagnostic in the errors list.
type ErrorEntry struct {
	Line     int    `json:"line"`
	Code     string `json:"code"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
	RawLine  string `json:"raw_line"`
}

// Build assembles a document. bag may be nil; diagnostics keep their order.
func Build(records []model.CallRecord, bag *diag.Bag) Document {
	doc := Document{
		Entries: records,
		Summary: model.Summarize(records),
		Errors:  []ErrorEntry{},
	}
	if doc.Entries == nil {
		doc.Entries = []model.CallRecord{}
	}
	if bag != nil {
		for _, d := range bag.Items() {
			doc.Errors = append(doc.Errors, ErrorEntry{
				Line:     d.Line,
				Code:     d.Code.ID(),
				Severity: d.Severity.String(),
				Message:  d.Message,
				RawLine:  d.Raw,
			})
		}
	}
	return doc
}

// WriteJSON encodes doc. indent selects two-space indentation.
func WriteJSON(w io.Writer, doc *Document, indent bool) error {
	enc := json.NewEncoder(w)
	if indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(doc)
}

// Read decodes a document written by WriteJSON.
func Read(r io.Reader) (Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return Document{}, fmt.Errorf("decode export: %w", err)
	}
	return doc, nil
}

// WriteMsgpack encodes doc with the same field names as the JSON form.
func WriteMsgpack(w io.Writer, doc *Document) error {
	enc := msgpack.NewEncoder(w)
	enc.SetCustomStructTag("json")
	return enc.Encode(doc)
}

// ReadMsgpack decodes a document written by WriteMsgpack.
func ReadMsgpack(r io.Reader) (Document, error) {
	var doc Document
	dec := msgpack.NewDecoder(r)
	dec.SetCustomStructTag("json")
	if err := dec.Decode(&doc); err != nil {
		return Document{}, fmt.Errorf("decode export: %w", err)
	}
	return doc, nil
}

// Write encodes doc in format. Text output honours opts; the binary and JSON
// forms ignore it.
func Write(w io.Writer, doc *Document, format Format, opts TextOpts) error {
	switch format {
	case FormatJSON:
		return WriteJSON(w, doc, true)
	case FormatMsgpack:
		return WriteMsgpack(w, doc)
	case FormatText:
		return WriteText(w, doc, opts)
	default:
		return fmt.Errorf("unsupported export format %s", format)
	}
}
