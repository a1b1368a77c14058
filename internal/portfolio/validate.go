package portfolio

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
)

// RequiredSections must all be present and non-empty for a document to be
// considered valid.
var RequiredSections = []string{
	"hero",
	"about",
	"experience",
	"education",
	"skills",
	"projects",
	"reachMe",
	"contact",
}

// Validation lists the required sections a document lacks, in
// RequiredSections order.
type Validation struct {
	Missing []string
}

func (v Validation) OK() bool { return len(v.Missing) == 0 }

// Validate checks the required sections of doc. It never rejects a document;
// the result is advisory and callers choose whether to act on it.
func Validate(doc *Document) Validation {
	if doc == nil {
		return ValidateFields(nil)
	}
	return ValidateFields(doc.fields)
}

// ValidateFields checks the raw top-level fields. A section counts as present
// when its value is not null, false, 0 or the empty string. Every missing
// section is reported, not only the first.
func ValidateFields(fields map[string]json.RawMessage) Validation {
	var v Validation
	for _, key := range RequiredSections {
		if !truthy(fields[key]) {
			v.Missing = append(v.Missing, key)
		}
	}
	if !v.OK() {
		log.WithField("missing", v.Missing).
			Warnf("portfolio: missing required section: %s", strings.Join(v.Missing, ", "))
	}
	return v
}

func truthy(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return false
	}
	switch string(raw) {
	case "null", "false", `""`:
		return false
	}
	if c := raw[0]; c == '-' || (c >= '0' && c <= '9') {
		f, err := strconv.ParseFloat(string(raw), 64)
		return err != nil || f != 0
	}
	return true
}
