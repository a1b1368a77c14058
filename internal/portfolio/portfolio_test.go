package portfolio

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalDocument = `{
	"personal": {"name": "Ada Lovelace", "title": "Engineer"},
	"hero": {"greeting": "hi"},
	"about": {"enabled": true},
	"experience": [{"company": "Acme", "position": "Dev", "starts": "2022-01-01"}],
	"education": [{"institution": "Cambridge University", "degree": "BSc", "starts": "2015-09-01"}],
	"skills": {"categories": []},
	"projects": [{"title": "Engine", "order": 1, "links": {}, "technologies": ["Go"]}],
	"reachMe": [{"name": "GitHub", "url": "https://github.com/ada", "badge": "gh.svg"}],
	"contact": {"subtitle": "Say hi", "methods": []},
	"stats": [{"number": 5, "label": "Years"}, {"number": "10+", "label": "Projects"}]
}`

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(logrus.PanicLevel)
	return l
}

func rawFields(t *testing.T, doc string) map[string]json.RawMessage {
	t.Helper()
	var fields map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(doc), &fields))
	return fields
}

func TestValidateAcceptsAnyShapeWithAllRequiredSections(t *testing.T) {
	fields := rawFields(t, `{
		"hero": "x", "about": 1, "experience": [], "education": {},
		"skills": true, "projects": "p", "reachMe": [1], "contact": {"a": null}
	}`)
	v := ValidateFields(fields)
	assert.True(t, v.OK())
	assert.Empty(t, v.Missing)
}

func TestValidateReportsEachMissingSection(t *testing.T) {
	for _, key := range RequiredSections {
		t.Run(key, func(t *testing.T) {
			fields := rawFields(t, minimalDocument)
			delete(fields, key)
			v := ValidateFields(fields)
			assert.False(t, v.OK())
			assert.Equal(t, []string{key}, v.Missing)
		})
	}
}

func TestValidateTreatsFalsyValuesAsMissing(t *testing.T) {
	fields := rawFields(t, minimalDocument)
	fields["hero"] = json.RawMessage(`null`)
	fields["about"] = json.RawMessage(`""`)
	fields["skills"] = json.RawMessage(`0`)
	fields["contact"] = json.RawMessage(`false`)

	v := ValidateFields(fields)
	require.False(t, v.OK())
	assert.Equal(t, []string{"hero", "about", "skills", "contact"}, v.Missing)
	assert.Equal(t, "hero", v.Missing[0])
}

func TestValidateNilDocument(t *testing.T) {
	v := Validate(nil)
	assert.False(t, v.OK())
	assert.Equal(t, RequiredSections, v.Missing)
}

func TestDecodeKeepsRawFieldsAndChecksum(t *testing.T) {
	doc, err := Decode("inline", []byte(minimalDocument))
	require.NoError(t, err)

	assert.Equal(t, "Ada Lovelace", doc.Personal.Name)
	assert.Equal(t, Checksum([]byte(minimalDocument)), doc.Checksum())
	assert.JSONEq(t, minimalDocument, string(doc.Raw()))
	require.Len(t, doc.Stats, 2)
	assert.Equal(t, Text("5"), doc.Stats[0].Number)
	assert.Equal(t, Text("10+"), doc.Stats[1].Number)

	_, ok := doc.Field("hero")
	assert.True(t, ok)
	_, ok = doc.Field("seo")
	assert.False(t, ok)
	assert.True(t, Validate(doc).OK())
}

func TestDecodeRejectsNonObjects(t *testing.T) {
	for name, body := range map[string]string{
		"malformed": `{"personal": `,
		"array":     `[1, 2, 3]`,
		"null":      `null`,
		"string":    `"portfolio"`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Decode("inline", []byte(body))
			var pe *ParseError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, "inline", pe.Source)
		})
	}
}

const looseDocument = `{
	"personal": {"name": "Ada Lovelace"},
	"hero": "x", "about": "y",
	"experience": [
		{"company": "Acme", "starts": "2022-01-01", "current": "yes"},
		{"company": "Beta", "starts": "2021-01-01", "current": 0}
	],
	"education": [{"institution": "MIT", "starts": "2019", "current": 1}],
	"skills": [1],
	"projects": [
		{"title": "Second", "order": "2"},
		{"title": "Unordered", "order": "soon"},
		{"title": "First", "order": 1},
		{"title": "Null", "order": null}
	],
	"reachMe": [{"name": "GitHub"}],
	"contact": {"subtitle": "hi"},
	"stats": "not a list"
}`

func TestDecodeToleratesLooselyTypedSections(t *testing.T) {
	doc, err := Decode("inline", []byte(looseDocument))
	require.NoError(t, err)

	require.Len(t, doc.Experience, 2)
	assert.True(t, bool(doc.Experience[0].Current))
	assert.False(t, bool(doc.Experience[1].Current))
	require.Len(t, doc.Education, 1)
	assert.True(t, bool(doc.Education[0].Current))

	assert.Empty(t, doc.Skills.Categories, "mismatched section is left empty")
	assert.Empty(t, doc.Stats)
	assert.Equal(t, "hi", doc.Contact.Subtitle)

	require.Len(t, doc.Projects, 4)
	require.NotNil(t, doc.Projects[0].Order)
	assert.Equal(t, 2, *doc.Projects[0].Order)
	assert.Nil(t, doc.Projects[1].Order)
	assert.Equal(t, "Second", doc.Projects[0].Title)
	assert.Nil(t, doc.Projects[3].Order)

	var titles []string
	for _, p := range SortProjects(doc.Projects) {
		titles = append(titles, p.Title)
	}
	assert.Equal(t, []string{"First", "Second", "Unordered", "Null"}, titles)

	assert.True(t, Validate(doc).OK())
}

func TestLoaderAcceptsLooselyTypedDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "database.json")
	require.NoError(t, os.WriteFile(path, []byte(looseDocument), 0o600))

	store := NewStore()
	res := NewLoader(NewSource(path, 0), store, quietLogger()).Load(context.Background())

	require.True(t, res.Ok(), "load failed: %v", res.Err())
	assert.Equal(t, OutcomeOK, res.Outcome())
	assert.True(t, res.Validation().OK())
	_, ok := store.Current()
	assert.True(t, ok)
}

func TestFlag(t *testing.T) {
	for raw, want := range map[string]bool{
		`true`: true, `"yes"`: true, `1`: true, `{}`: true, `[]`: true,
		`false`: false, `null`: false, `0`: false, `""`: false, `0.0`: false,
	} {
		var f Flag
		require.NoError(t, json.Unmarshal([]byte(raw), &f), raw)
		assert.Equal(t, want, bool(f), raw)
	}
}

func TestDecodeYAML(t *testing.T) {
	body := `
personal:
  name: Ada Lovelace
hero: yes please
about: true
experience:
  - company: Acme
    starts: 2022-06-01
education: [{institution: MIT, starts: "2019"}]
skills: {categories: []}
projects: [{title: Engine}]
reachMe: [{name: GitHub}]
contact: {subtitle: hi}
`
	doc, err := decodeSource("content/database.yaml", []byte(body))
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", doc.Personal.Name)
	require.Len(t, doc.Experience, 1)
	assert.Equal(t, "2022-06-01", doc.Experience[0].Starts)
	assert.True(t, Validate(doc).OK())
	assert.True(t, json.Valid(doc.Raw()))
}

func TestLoaderLoadsOverHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Empty(t, r.URL.RawQuery)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(minimalDocument))
	}))
	t.Cleanup(srv.Close)

	store := NewStore()
	_, ok := store.Current()
	require.False(t, ok)

	loader := NewLoader(NewSource(srv.URL+"/database.json", 0), store, quietLogger())
	res := loader.Load(context.Background())

	require.True(t, res.Ok(), "load failed: %v", res.Err())
	assert.Equal(t, OutcomeOK, res.Outcome())
	assert.True(t, res.Validation().OK())

	cached, ok := store.Current()
	require.True(t, ok)
	assert.Same(t, res.Document(), cached)
}

func TestLoaderReportsFetchErrorOnBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)

	store := NewStore()
	res := NewLoader(NewSource(srv.URL, 0), store, quietLogger()).Load(context.Background())

	require.False(t, res.Ok())
	assert.True(t, res.IsFetchError())
	assert.False(t, res.IsParseError())
	assert.Equal(t, OutcomeFetchError, res.Outcome())

	var fe *FetchError
	require.True(t, errors.As(res.Err(), &fe))
	assert.Equal(t, http.StatusNotFound, fe.Status)

	_, ok := store.Current()
	assert.False(t, ok, "failed load must not populate the store")
}

func TestLoaderReportsParseError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "database.json")
	require.NoError(t, os.WriteFile(path, []byte("<html>not json</html>"), 0o600))

	store := NewStore()
	res := NewLoader(NewSource(path, 0), store, quietLogger()).Load(context.Background())

	require.False(t, res.Ok())
	assert.True(t, res.IsParseError())
	assert.Equal(t, OutcomeParseError, res.Outcome())
	_, ok := store.Current()
	assert.False(t, ok)
}

func TestLoaderMissingFileIsFetchError(t *testing.T) {
	res := NewLoader(NewSource(filepath.Join(t.TempDir(), "nope.json"), 0), NewStore(), quietLogger()).
		Load(context.Background())
	assert.True(t, res.IsFetchError())
}

func TestLoaderKeepsInvalidDocuments(t *testing.T) {
	path := filepath.Join(t.TempDir(), "database.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"personal": {"name": "Ada"}}`), 0o600))

	store := NewStore()
	res := NewLoader(NewSource(path, 0), store, quietLogger()).Load(context.Background())

	require.True(t, res.Ok())
	assert.False(t, res.Validation().OK())
	assert.Equal(t, RequiredSections, res.Validation().Missing)
	_, ok := store.Current()
	assert.True(t, ok)
}

func TestFailedWrapsUnknownErrors(t *testing.T) {
	res := Failed("src", errors.New("boom"))
	assert.True(t, res.IsFetchError())
	assert.Nil(t, res.Document())
}

func intPtr(n int) *int { return &n }

func TestSortProjects(t *testing.T) {
	in := []Project{
		{Title: "unordered-a"},
		{Title: "three", Order: intPtr(3)},
		{Title: "one", Order: intPtr(1)},
		{Title: "unordered-b"},
		{Title: "one-again", Order: intPtr(1)},
		{Title: "big", Order: intPtr(5000)},
	}
	out := SortProjects(in)

	var titles []string
	for _, p := range out {
		titles = append(titles, p.Title)
	}
	assert.Equal(t, []string{"one", "one-again", "three", "big", "unordered-a", "unordered-b"}, titles)
	assert.Equal(t, "unordered-a", in[0].Title, "input must not be reordered")
}

func TestFormatRange(t *testing.T) {
	assert.Equal(t, "Jan 2022 - Present", FormatRange("2022-01-01", "", false))
	assert.Equal(t, "Jan 2022 - Present", FormatRange("2022-01-01", "2023-05-01", true))
	assert.Equal(t, "Jan 2022 - May 2023", FormatRange("2022-01-01", "2023-05-01", false))
	assert.Equal(t, "Sep 2019 - Jan 2021", FormatRange("2019-09", "2021", false))
	assert.Equal(t, "someday - Present", FormatRange("someday", "", false))
}

func TestParseDate(t *testing.T) {
	d, ok := ParseDate("2022-06-01")
	require.True(t, ok)
	assert.Equal(t, 2022, d.Year())

	d, ok = ParseDate("2021-03-01T10:00:00Z")
	require.True(t, ok)
	assert.Equal(t, 2021, d.Year())

	d, ok = ParseDate("2022-01-01T01:00:00+05:00")
	require.True(t, ok)
	assert.Equal(t, time.UTC, d.Location())
	assert.Equal(t, 2021, d.Year())
	assert.Equal(t, 20, d.Hour())

	_, ok = ParseDate("")
	assert.False(t, ok)
	_, ok = ParseDate("last spring")
	assert.False(t, ok)
}

func TestTextInt(t *testing.T) {
	n, ok := Text("85").Int()
	assert.True(t, ok)
	assert.Equal(t, 85, n)

	n, ok = Text("3.9").Int()
	assert.True(t, ok)
	assert.Equal(t, 3, n)

	_, ok = Text("").Int()
	assert.False(t, ok)
	_, ok = Text("high").Int()
	assert.False(t, ok)

	n, ok = Text("1e300").Int()
	assert.True(t, ok)
	assert.Equal(t, math.MaxInt32, n)
	n, ok = Text("-1e300").Int()
	assert.True(t, ok)
	assert.Equal(t, math.MinInt32, n)
	for _, s := range []string{"NaN", "Inf", "-Inf"} {
		_, ok = Text(s).Int()
		assert.False(t, ok, s)
	}
}
