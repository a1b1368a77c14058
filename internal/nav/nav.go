package nav

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/AhmedUKamel/ahmedukamel.github.io/internal/portfolio"
)

// Section is a page section that can be linked from the menu.
type Section struct {
	ID    string // element id, e.g. "reach-me"
	Title string // heading text; derived from ID when empty
}

// Link is a view model for one menu entry.
type Link struct {
	Name    string
	Href    string // e.g. "#about"
	Section string // Href without the leading '#'
}

// Sections lists the page sections in page order, with the headings the
// page template renders for them.
var Sections = []Section{
	{ID: "home", Title: "Home"},
	{ID: "about", Title: "About Me"},
	{ID: "experience", Title: "Experience"},
	{ID: "education", Title: "Education"},
	{ID: "skills", Title: "Skills"},
	{ID: "projects", Title: "Projects"},
	{ID: "reach-me"},
	{ID: "contact", Title: "Get In Touch"},
}

// Build derives the menu from the document's navigation items and the page
// sections. Items pointing at a known section take that section's heading;
// sections with no item are appended in page order. items is not modified.
func Build(items []portfolio.NavItem, sections []Section) []Link {
	titles := make(map[string]string, len(sections))
	for _, s := range sections {
		titles["#"+s.ID] = s.label()
	}

	links := make([]Link, 0, len(items)+len(sections))
	covered := make(map[string]bool, len(items))
	for _, it := range items {
		name := it.Name
		if title, ok := titles[it.Href]; ok {
			name = title
			covered[it.Href] = true
		}
		links = append(links, Link{Name: name, Href: it.Href, Section: strings.TrimPrefix(it.Href, "#")})
	}
	for _, s := range sections {
		href := "#" + s.ID
		if covered[href] {
			continue
		}
		links = append(links, Link{Name: s.label(), Href: href, Section: s.ID})
	}
	return links
}

func (s Section) label() string {
	if s.Title != "" {
		return s.Title
	}
	return titleFromID(s.ID)
}

// titleFromID turns "reach-me" into "Reach Me".
func titleFromID(id string) string {
	words := strings.FieldsFunc(id, func(r rune) bool { return r == '-' || r == '_' })
	// Casers keep state, so each call gets its own.
	return cases.Title(language.English).String(strings.Join(words, " "))
}
