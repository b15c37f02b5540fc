/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: decode.go
Description: Sample parsers. JSON input is read token by token so object key order is
kept and a stream of concatenated or newline-delimited documents yields one sample per
document. YAML input is read as yaml.v3 nodes, one sample per document.
*/

package value

import (
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-json-experiment/json/jsontext"
	"gopkg.in/yaml.v3"
)

// ErrSyntax marks every parse failure returned by this package
var ErrSyntax = errors.New("malformed sample")

// Decode parses r according to the extension of name. Files ending in .yaml or .yml are
// read as YAML; everything else is read as JSON.
func Decode(name string, r io.Reader) ([]*Value, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return DecodeYAML(r)
	default:
		return DecodeJSON(r)
	}
}

// DecodeJSON reads every top-level JSON value from r
func DecodeJSON(r io.Reader) ([]*Value, error) {
	dec := jsontext.NewDecoder(r)
	var out []*Value
	for {
		tok, err := dec.ReadToken()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, syntaxError(err, len(out), dec.InputOffset())
		}
		v, err := readJSON(dec, tok)
		if err != nil {
			return nil, syntaxError(err, len(out), dec.InputOffset())
		}
		out = append(out, v)
	}
}

func syntaxError(err error, doc int, offset int64) error {
	err = errors.Wrapf(err, "document %d near byte offset %d", doc+1, offset)
	return errors.Mark(err, ErrSyntax)
}

// readJSON builds the value that starts with tok
func readJSON(dec *jsontext.Decoder, tok jsontext.Token) (*Value, error) {
	switch tok.Kind() {
	case 'n':
		return NewNull(), nil
	case 't', 'f':
		return NewBool(tok.Bool()), nil
	case '"':
		return NewString(tok.String()), nil
	case '0':
		lit := tok.String()
		return &Value{Kind: Number, Number: lit, Float: strings.ContainsAny(lit, ".eE")}, nil
	case '[':
		arr := NewArray()
		for dec.PeekKind() != ']' {
			next, err := dec.ReadToken()
			if err != nil {
				return nil, err
			}
			item, err := readJSON(dec, next)
			if err != nil {
				return nil, err
			}
			arr.Items = append(arr.Items, item)
		}
		if _, err := dec.ReadToken(); err != nil {
			return nil, err
		}
		return arr, nil
	case '{':
		obj := NewObject()
		for dec.PeekKind() != '}' {
			name, err := dec.ReadToken()
			if err != nil {
				return nil, err
			}
			// The token is only valid until the next read
			key := name.String()
			next, err := dec.ReadToken()
			if err != nil {
				return nil, err
			}
			member, err := readJSON(dec, next)
			if err != nil {
				return nil, errors.Wrapf(err, "key %q", key)
			}
			obj.Members = append(obj.Members, Member{Key: key, Value: member})
		}
		if _, err := dec.ReadToken(); err != nil {
			return nil, err
		}
		return obj, nil
	default:
		return nil, errors.Newf("unexpected token %c", byte(tok.Kind()))
	}
}

// DecodeYAML reads every document of a YAML stream
func DecodeYAML(r io.Reader) ([]*Value, error) {
	dec := yaml.NewDecoder(r)
	var out []*Value
	for {
		var doc yaml.Node
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, errors.Mark(errors.Wrapf(err, "document %d", len(out)+1), ErrSyntax)
		}
		v, err := newNodeReader().read(&doc)
		if err != nil {
			return nil, errors.Mark(errors.Wrapf(err, "document %d", len(out)+1), ErrSyntax)
		}
		out = append(out, v)
	}
}

// nodeReader converts yaml.v3 nodes, tracking the anchored nodes being expanded so an
// alias that refers back into its own anchor is rejected instead of expanded forever
type nodeReader struct {
	expanding map[*yaml.Node]bool
}

func newNodeReader() *nodeReader {
	return &nodeReader{expanding: make(map[*yaml.Node]bool)}
}

func (r *nodeReader) read(n *yaml.Node) (*Value, error) {
	if n.Anchor != "" {
		r.expanding[n] = true
		defer delete(r.expanding, n)
	}

	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return NewNull(), nil
		}
		return r.read(n.Content[0])
	case yaml.AliasNode:
		if n.Alias == nil {
			return nil, errors.Newf("line %d: dangling alias", n.Line)
		}
		if r.expanding[n.Alias] {
			return nil, errors.Newf("line %d: alias *%s refers back into its own anchor", n.Line, n.Value)
		}
		return r.read(n.Alias)
	case yaml.SequenceNode:
		arr := NewArray()
		for _, c := range n.Content {
			item, err := r.read(c)
			if err != nil {
				return nil, err
			}
			arr.Items = append(arr.Items, item)
		}
		return arr, nil
	case yaml.MappingNode:
		obj := NewObject()
		for i := 0; i+1 < len(n.Content); i += 2 {
			key, val := n.Content[i], n.Content[i+1]
			member, err := r.read(val)
			if err != nil {
				return nil, errors.Wrapf(err, "key %q", key.Value)
			}
			obj.Members = append(obj.Members, Member{Key: key.Value, Value: member})
		}
		return obj, nil
	case yaml.ScalarNode:
		return fromScalar(n)
	default:
		return nil, errors.Newf("line %d: unsupported YAML node kind %d", n.Line, n.Kind)
	}
}

func fromScalar(n *yaml.Node) (*Value, error) {
	switch n.ShortTag() {
	case "!!null":
		return NewNull(), nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, errors.Wrapf(err, "line %d", n.Line)
		}
		return NewBool(b), nil
	case "!!int":
		var i int64
		if err := n.Decode(&i); err != nil {
			// out of int64 range: still integral
			return &Value{Kind: Number, Number: n.Value}, nil
		}
		return NewInt(i), nil
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return nil, errors.Wrapf(err, "line %d", n.Line)
		}
		return &Value{Kind: Number, Number: strconv.FormatFloat(f, 'g', -1, 64), Float: true}, nil
	default:
		return NewString(n.Value), nil
	}
}
