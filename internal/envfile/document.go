// Package envfile reads and patches stack env.yaml files. The file is
// held both as its original bytes and as a yaml.v3 node tree: the tree
// locates the scalar value of each known key, and a save splices the
// new values into the original bytes at those positions. Every byte
// outside the patched value tokens stays exactly as it was on disk,
// and a run that changes nothing rewrites nothing.
package envfile

import (
	"bytes"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// MalformedDocumentError is returned when the env file does not have
// the shape the upgrade tool depends on. It is fatal before any write.
type MalformedDocumentError struct {
	Path   string
	Reason string
}

func (e *MalformedDocumentError) Error() string {
	return fmt.Sprintf("malformed env file %s: %s", e.Path, e.Reason)
}

// Document is an env.yaml file loaded as an editable node tree over
// its original bytes.
type Document struct {
	path    string
	data    []byte
	root    yaml.Node
	mapping *yaml.Node
	edits   map[*yaml.Node]*pendingEdit
	dirty   bool
}

// pendingEdit is one staged value replacement. Position and style are
// captured from the node at staging time; oldValue is the on-disk
// value, kept so the splice can verify the source token before
// replacing it.
type pendingEdit struct {
	line     int
	column   int
	style    yaml.Style
	oldValue string
	newValue string
}

// Load reads and parses the env file at path.
func Load(path string) (*Document, error) {
	// #nosec G304
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read env file: %w", err)
	}

	doc := &Document{
		path:  path,
		data:  data,
		edits: make(map[*yaml.Node]*pendingEdit),
	}
	if err := yaml.Unmarshal(data, &doc.root); err != nil {
		return nil, &MalformedDocumentError{Path: path, Reason: err.Error()}
	}
	if doc.root.Kind != yaml.DocumentNode || len(doc.root.Content) != 1 {
		return nil, &MalformedDocumentError{Path: path, Reason: "expected a single YAML document"}
	}
	doc.mapping = doc.root.Content[0]
	if doc.mapping.Kind != yaml.MappingNode {
		return nil, &MalformedDocumentError{Path: path, Reason: "top level is not a mapping"}
	}

	return doc, nil
}

// Path returns the file the document was loaded from.
func (d *Document) Path() string {
	return d.path
}

// valueNode returns the value node of a top-level key, or nil when the
// key is absent. A key appearing more than once is malformed: YAML
// consumers disagree on which occurrence wins, so patching one of them
// could leave the provisioning system reading the other.
func (d *Document) valueNode(key string) (*yaml.Node, error) {
	var found *yaml.Node
	content := d.mapping.Content
	for i := 0; i+1 < len(content); i += 2 {
		if content[i].Value != key {
			continue
		}
		if found != nil {
			return nil, &MalformedDocumentError{Path: d.path, Reason: fmt.Sprintf("duplicate key %s", key)}
		}
		found = content[i+1]
	}
	return found, nil
}

// Has reports whether the document contains the given top-level key
// exactly once.
func (d *Document) Has(key string) bool {
	node, err := d.valueNode(key)
	return err == nil && node != nil
}

// Keys returns every top-level key in document order.
func (d *Document) Keys() []string {
	content := d.mapping.Content
	keys := make([]string, 0, len(content)/2)
	for i := 0; i+1 < len(content); i += 2 {
		keys = append(keys, content[i].Value)
	}
	return keys
}

// Get returns the scalar value of a top-level key.
func (d *Document) Get(key string) (string, error) {
	node, err := d.scalarNode(key)
	if err != nil {
		return "", err
	}
	return node.Value, nil
}

// scalarNode resolves a key to its scalar value node.
func (d *Document) scalarNode(key string) (*yaml.Node, error) {
	node, err := d.valueNode(key)
	if err != nil {
		return nil, err
	}
	if node == nil {
		return nil, &MalformedDocumentError{Path: d.path, Reason: fmt.Sprintf("missing key %s", key)}
	}
	if node.Kind != yaml.ScalarNode {
		return nil, &MalformedDocumentError{Path: d.path, Reason: fmt.Sprintf("key %s is not a scalar", key)}
	}
	return node, nil
}

// Field is one desired key/value pair for Patch.
type Field struct {
	Key   string
	Value string
}

// Patch moves the document toward the desired fields, staging a write
// for every key whose current value differs. The whole edit set is
// validated before anything is staged, so a malformed document never
// ends up half patched. Returns the number of fields actually changed;
// zero means the document is already in the desired state.
func (d *Document) Patch(desired []Field) (int, error) {
	type staged struct {
		node  *yaml.Node
		value string
	}

	var writes []staged
	for _, f := range desired {
		node, err := d.scalarNode(f.Key)
		if err != nil {
			return 0, err
		}
		if node.Value == f.Value {
			continue
		}
		if err := patchable(node, f.Value); err != nil {
			return 0, &MalformedDocumentError{Path: d.path, Reason: fmt.Sprintf("key %s: %v", f.Key, err)}
		}
		writes = append(writes, staged{node: node, value: f.Value})
	}

	for _, w := range writes {
		// Repeated patches of one node fold into a single edit against
		// the on-disk token; the node itself always carries the newest
		// value for in-memory reads.
		if e, ok := d.edits[w.node]; ok {
			e.newValue = w.value
		} else {
			d.edits[w.node] = &pendingEdit{
				line:     w.node.Line,
				column:   w.node.Column,
				style:    w.node.Style,
				oldValue: w.node.Value,
				newValue: w.value,
			}
		}
		w.node.Value = w.value
	}
	if len(writes) > 0 {
		d.dirty = true
	}

	return len(writes), nil
}

// patchable checks that a scalar node can be rewritten in place with
// the given value: the quoting style must be reproducible as a single
// source token, and the value must be representable in that style.
func patchable(node *yaml.Node, value string) error {
	switch node.Style {
	case 0, yaml.DoubleQuotedStyle, yaml.SingleQuotedStyle:
	default:
		return fmt.Errorf("unsupported scalar style for in-place patch")
	}
	if node.Style == yaml.DoubleQuotedStyle && strings.ContainsAny(node.Value+value, `"\`) {
		return fmt.Errorf("value not representable as a plain double-quoted scalar")
	}
	if node.Style == 0 && !plainScalarSafe(value) {
		return fmt.Errorf("value %q needs quoting", value)
	}
	return nil
}

// plainScalarSafe reports whether a value can be written unquoted.
// Versions and slot markers always pass; anything else is written only
// into keys that were quoted to begin with.
func plainScalarSafe(value string) bool {
	if value == "" {
		return false
	}
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '.', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}

// Dirty reports whether any patch changed the document since Load.
func (d *Document) Dirty() bool {
	return d.dirty
}

// Save splices the staged values into the original file bytes and
// writes the result back. Unchanged documents are left untouched on
// disk, so a no-op run produces a byte-identical file and an empty
// diff; a changed run alters only the patched value tokens.
func (d *Document) Save() error {
	if !d.dirty {
		return nil
	}

	out, err := d.splice()
	if err != nil {
		return err
	}
	if err := os.WriteFile(d.path, out, 0o644); err != nil {
		return fmt.Errorf("failed to write env file: %w", err)
	}

	d.data = out
	d.edits = make(map[*yaml.Node]*pendingEdit)
	d.dirty = false
	return nil
}

// splice applies every pending edit to a copy of the original bytes.
// Each edit verifies the source token at its recorded position before
// replacing it; a mismatch aborts the whole save with nothing written.
func (d *Document) splice() ([]byte, error) {
	lines := bytes.SplitAfter(d.data, []byte("\n"))

	byLine := make(map[int][]*pendingEdit)
	for _, e := range d.edits {
		byLine[e.line] = append(byLine[e.line], e)
	}

	for lineNo, edits := range byLine {
		if lineNo < 1 || lineNo > len(lines) {
			return nil, &MalformedDocumentError{Path: d.path, Reason: fmt.Sprintf("value position out of range at line %d", lineNo)}
		}
		// Right to left, so earlier columns stay valid as tokens grow
		// or shrink.
		sort.Slice(edits, func(i, j int) bool { return edits[i].column > edits[j].column })

		text := lines[lineNo-1]
		for _, e := range edits {
			oldTok := []byte(renderScalar(e.oldValue, e.style))
			newTok := []byte(renderScalar(e.newValue, e.style))
			col := e.column - 1
			if col < 0 || col+len(oldTok) > len(text) || !bytes.Equal(text[col:col+len(oldTok)], oldTok) {
				return nil, &MalformedDocumentError{
					Path:   d.path,
					Reason: fmt.Sprintf("cannot locate value %q at line %d column %d", e.oldValue, e.line, e.column),
				}
			}
			var spliced []byte
			spliced = append(spliced, text[:col]...)
			spliced = append(spliced, newTok...)
			spliced = append(spliced, text[col+len(oldTok):]...)
			text = spliced
		}
		lines[lineNo-1] = text
	}

	return bytes.Join(lines, nil), nil
}

// renderScalar renders a value as a source token in the given style.
func renderScalar(value string, style yaml.Style) string {
	switch style {
	case yaml.DoubleQuotedStyle:
		return `"` + value + `"`
	case yaml.SingleQuotedStyle:
		return "'" + strings.ReplaceAll(value, "'", "''") + "'"
	default:
		return value
	}
}
