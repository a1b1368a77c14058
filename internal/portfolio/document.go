package portfolio

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
)

// Document is the parsed portfolio content. It is never mutated after Decode
// returns; renderers derive new values from it instead.
type Document struct {
	Personal   Personal         `json:"personal"`
	Hero       json.RawMessage  `json:"hero"`
	About      json.RawMessage  `json:"about"`
	Experience []Experience     `json:"experience"`
	Education  []Education      `json:"education"`
	Skills     Skills           `json:"skills"`
	Projects   []Project        `json:"projects"`
	ReachMe    []ReachMeProfile `json:"reachMe"`
	Contact    Contact          `json:"contact"`
	Navigation []NavItem        `json:"navigation"`
	SEO        SEO              `json:"seo"`
	Stats      []Stat           `json:"stats"`
	Settings   Settings         `json:"settings"`

	fields   map[string]json.RawMessage
	raw      []byte
	checksum string
}

// Checksum is the hex SHA-256 of the raw document and doubles as its version.
func (d *Document) Checksum() string { return d.checksum }

// Raw returns the JSON encoding the document was decoded from.
func (d *Document) Raw() []byte { return d.raw }

// Field returns the raw top-level value stored under key.
func (d *Document) Field(key string) (json.RawMessage, bool) {
	v, ok := d.fields[key]
	return v, ok
}

type Personal struct {
	Name          string `json:"name"`
	Title         string `json:"title"`
	Tagline       string `json:"tagline"`
	GitHub        string `json:"github"`
	About         string `json:"about"`
	AboutExtended string `json:"aboutExtended"`
	Email         string `json:"email,omitempty"`
	Location      string `json:"location,omitempty"`
}

type Stat struct {
	Number Text   `json:"number"`
	Label  string `json:"label"`
}

// Experience is one job entry on the experience timeline.
type Experience struct {
	Company        string   `json:"company"`
	CompanyLogo    string   `json:"companyLogo,omitempty"`
	CompanyWebsite string   `json:"companyWebsite,omitempty"`
	Position       string   `json:"position"`
	Location       string   `json:"location,omitempty"`
	Starts         string   `json:"starts"`
	Ends           string   `json:"ends,omitempty"`
	Current        Flag     `json:"current,omitempty"`
	Type           string   `json:"type,omitempty"`
	Description    string   `json:"description,omitempty"`
	Achievements   []string `json:"achievements,omitempty"`
	Technologies   []string `json:"technologies,omitempty"`
}

// Education is one degree or certification on the education timeline.
type Education struct {
	Institution        string   `json:"institution"`
	InstitutionLogo    string   `json:"institutionLogo,omitempty"`
	InstitutionWebsite string   `json:"institutionWebsite,omitempty"`
	Degree             string   `json:"degree"`
	Specialization     string   `json:"specialization,omitempty"`
	Location           string   `json:"location,omitempty"`
	Starts             string   `json:"starts"`
	Ends               string   `json:"ends,omitempty"`
	Current            Flag     `json:"current,omitempty"`
	Grade              Text     `json:"grade,omitempty"`
	GPA                Text     `json:"gpa,omitempty"`
	Description        string   `json:"description,omitempty"`
	Highlights         []string `json:"highlights,omitempty"`
}

type Skills struct {
	Categories []SkillCategory `json:"categories"`
}

// SkillCategory groups skills; Type is "progress" or "badges".
type SkillCategory struct {
	Name   string  `json:"name"`
	Type   string  `json:"type"`
	Skills []Skill `json:"skills"`
}

type Skill struct {
	Name  string `json:"name"`
	Level Text   `json:"level,omitempty"`
}

// Project is a portfolio card. A nil Order sorts after every ordered project.
type Project struct {
	Title        string          `json:"title"`
	Logo         string          `json:"logo,omitempty"`
	Order        *int            `json:"order,omitempty"`
	Links        ProjectLinks    `json:"links"`
	Types        []string        `json:"types,omitempty"`
	Company      *ProjectCompany `json:"company,omitempty"`
	Description  string          `json:"description"`
	Technologies []string        `json:"technologies"`
}

// UnmarshalJSON accepts order as a number or a numeric string. Any other
// value leaves Order nil.
func (p *Project) UnmarshalJSON(b []byte) error {
	type plain Project
	var aux struct {
		plain
		Order Text `json:"order"`
	}
	if err := sonic.ConfigStd.Unmarshal(b, &aux); err != nil {
		return err
	}
	*p = Project(aux.plain)
	p.Order = nil
	if n, ok := aux.Order.Int(); ok {
		p.Order = &n
	}
	return nil
}

type ProjectLinks struct {
	GitHub     string `json:"github,omitempty"`
	Live       string `json:"live,omitempty"`
	Facebook   string `json:"facebook,omitempty"`
	GooglePlay string `json:"googlePlay,omitempty"`
	AppStore   string `json:"appStore,omitempty"`
}

type ProjectCompany struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type ReachMeProfile struct {
	Name  string `json:"name"`
	URL   string `json:"url"`
	Badge string `json:"badge"`
}

type Contact struct {
	Subtitle    string          `json:"subtitle"`
	Description string          `json:"description"`
	Methods     []ContactMethod `json:"methods"`
}

// ContactMethod renders as a link when Type is "link", plain text otherwise.
type ContactMethod struct {
	Icon  string `json:"icon"`
	Label string `json:"label"`
	Type  string `json:"type"`
	Link  string `json:"link,omitempty"`
	Value Text   `json:"value"`
}

type NavItem struct {
	Name string `json:"name"`
	Href string `json:"href"`
}

type SEO struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Keywords    []string `json:"keywords"`
	Author      string   `json:"author"`
}

type Settings struct {
	Copyright string `json:"copyright"`
}

// Text is a scalar that the document may write either as a string or as a
// number ("5+" and 5 are both valid stat numbers).
type Text string

func (t *Text) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*t = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := sonic.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	}
	*t = Text(b)
	return nil
}

func (t Text) String() string { return string(t) }

// Flag is a boolean the document may write loosely: any value other than
// null, false, 0 or "" is true.
type Flag bool

func (f *Flag) UnmarshalJSON(b []byte) error {
	*f = Flag(truthy(b))
	return nil
}

// Int parses t as a whole number, truncating any fractional part. Values
// beyond the int32 range saturate; NaN and infinities are rejected.
func (t Text) Int() (int, bool) {
	if t == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(string(t)), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int(min(max(f, math.MinInt32), math.MaxInt32)), true
}
