package portfolio

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"path"
	"strings"

	"github.com/bytedance/sonic"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Decode parses a JSON document. Only malformed input or a non-object top
// level is a ParseError. Each known section is decoded on its own; a section
// whose shape does not match is logged and left at its zero value.
func Decode(source string, data []byte) (*Document, error) {
	var fields map[string]json.RawMessage
	if err := sonic.ConfigStd.Unmarshal(data, &fields); err != nil {
		return nil, &ParseError{Source: source, Err: err}
	}
	if fields == nil {
		return nil, &ParseError{Source: source, Err: errNotObject}
	}
	doc := &Document{
		fields:   fields,
		raw:      append([]byte(nil), data...),
		checksum: Checksum(data),
	}
	for _, sec := range doc.sections() {
		raw, ok := fields[sec.key]
		if !ok {
			continue
		}
		if err := sec.decode(raw); err != nil {
			log.WithFields(log.Fields{
				"source":  source,
				"section": sec.key,
			}).WithError(err).Warn("portfolio: ignoring section with unexpected shape")
		}
	}
	return doc, nil
}

type section struct {
	key    string
	decode func(json.RawMessage) error
}

func (d *Document) sections() []section {
	return []section{
		{"personal", into(&d.Personal)},
		{"hero", into(&d.Hero)},
		{"about", into(&d.About)},
		{"experience", into(&d.Experience)},
		{"education", into(&d.Education)},
		{"skills", into(&d.Skills)},
		{"projects", into(&d.Projects)},
		{"reachMe", into(&d.ReachMe)},
		{"contact", into(&d.Contact)},
		{"navigation", into(&d.Navigation)},
		{"seo", into(&d.SEO)},
		{"stats", into(&d.Stats)},
		{"settings", into(&d.Settings)},
	}
}

// into stores the decoded value in dst only when decoding succeeds.
func into[T any](dst *T) func(json.RawMessage) error {
	return func(raw json.RawMessage) error {
		var v T
		if err := sonic.ConfigStd.Unmarshal(raw, &v); err != nil {
			return err
		}
		*dst = v
		return nil
	}
}

// DecodeYAML converts a YAML document to JSON and decodes that, so YAML and
// JSON sources share one shape.
func DecodeYAML(source string, data []byte) (*Document, error) {
	var tree any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, &ParseError{Source: source, Err: err}
	}
	b, err := sonic.ConfigStd.Marshal(tree)
	if err != nil {
		return nil, &ParseError{Source: source, Err: err}
	}
	return Decode(source, b)
}

// decodeSource picks the decoder from the source's file extension.
func decodeSource(source string, data []byte) (*Document, error) {
	if isYAML(source) {
		return DecodeYAML(source, data)
	}
	return Decode(source, data)
}

func isYAML(source string) bool {
	if i := strings.IndexAny(source, "?#"); i >= 0 {
		source = source[:i]
	}
	switch strings.ToLower(path.Ext(source)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// Checksum returns the hex SHA-256 of data.
func Checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
