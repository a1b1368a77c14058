package render

import (
	"html/template"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/AhmedUKamel/ahmedukamel.github.io/internal/nav"
	"github.com/AhmedUKamel/ahmedukamel.github.io/internal/portfolio"
	"github.com/AhmedUKamel/ahmedukamel.github.io/internal/timeline"
)

// Page is the view model for the whole portfolio page. Each field is owned
// by exactly one section builder.
type Page struct {
	Version    string
	Notice     string // shown instead of content when the document is unavailable
	Head       Head
	Nav        Nav
	Hero       Hero
	About      About
	Experience []ExperienceItem
	Education  []EducationItem
	Skills     []SkillCategory
	Projects   []ProjectCard
	ReachMe    []portfolio.ReachMeProfile
	Contact    Contact
	Footer     Footer
}

type Head struct {
	Title       string
	Description string
	Keywords    string
	Author      string
}

type Nav struct {
	Brand string
	Links []nav.Link
}

type Hero struct {
	Name    string
	Title   string
	Tagline string
	GitHub  string
}

type About struct {
	Description string
	Extended    template.HTML
	Stats       []portfolio.Stat
}

// ExperienceItem is one row of the experience timeline. Year is empty on all
// but the first row of each year.
type ExperienceItem struct {
	Year         string
	Current      bool
	Logo         string
	Initial      string
	Company      string
	Website      string
	Position     string
	Location     string
	Duration     string
	Type         string
	Description  template.HTML
	Achievements []string
	Technologies []string
}

type EducationItem struct {
	Year        string
	Current     bool
	Logo        string
	Initial     string
	Institution string
	Website     string
	Heading     string
	Location    string
	Duration    string
	Grade       string
	GPA         string
	Description template.HTML
	Highlights  []string
}

// SkillCategory is rendered as progress bars or as badges depending on Kind.
type SkillCategory struct {
	Name   string
	Kind   string
	Skills []Skill
}

type Skill struct {
	Name  string
	Level int // 0-100
}

type ProjectCard struct {
	Title        string
	Logo         string
	Links        []ProjectLink
	Types        []string
	Company      *portfolio.ProjectCompany
	Description  template.HTML
	Technologies []string
}

type ProjectLink struct {
	URL   string
	Title string
	Icon  string
}

type Contact struct {
	Subtitle    string
	Description string
	Methods     []ContactMethod
}

type ContactMethod struct {
	Icon   string
	Label  string
	Value  string
	Link   string
	IsLink bool
}

type Footer struct {
	Copyright string
}

const (
	skillsProgress = "progress"
	skillsBadges   = "badges"
)

// sectionBuilders run in page order. None of them reads a field of Page
// written by another.
var sectionBuilders = []struct {
	name  string
	build func(*portfolio.Document, *Page)
}{
	{"head", buildHead},
	{"nav", buildNav},
	{"hero", buildHero},
	{"about", buildAbout},
	{"experience", buildExperience},
	{"education", buildEducation},
	{"skills", buildSkills},
	{"projects", buildProjects},
	{"reach-me", buildReachMe},
	{"contact", buildContact},
	{"footer", buildFooter},
}

// BuildPage projects doc into a Page. It has no side effects on doc.
func BuildPage(doc *portfolio.Document) Page {
	p := Page{Version: doc.Checksum()}
	for _, s := range sectionBuilders {
		s.build(doc, &p)
	}
	return p
}

// FallbackPage is the static shell served when no document is available.
func FallbackPage(notice string) Page {
	return Page{
		Notice: notice,
		Head:   Head{Title: "Portfolio"},
		Nav:    Nav{Links: nav.Build(nil, nav.Sections)},
	}
}

func buildHead(doc *portfolio.Document, p *Page) {
	p.Head = Head{
		Title:       doc.SEO.Title,
		Description: doc.SEO.Description,
		Keywords:    strings.Join(doc.SEO.Keywords, ", "),
		Author:      doc.SEO.Author,
	}
	if p.Head.Title == "" {
		p.Head.Title = doc.Personal.Name
	}
}

func buildNav(doc *portfolio.Document, p *Page) {
	p.Nav = Nav{
		Brand: doc.Personal.Name,
		Links: nav.Build(doc.Navigation, nav.Sections),
	}
}

func buildHero(doc *portfolio.Document, p *Page) {
	p.Hero = Hero{
		Name:    doc.Personal.Name,
		Title:   doc.Personal.Title,
		Tagline: doc.Personal.Tagline,
		GitHub:  doc.Personal.GitHub,
	}
}

func buildAbout(doc *portfolio.Document, p *Page) {
	p.About = About{
		Description: doc.Personal.About,
		Extended:    RichText(doc.Personal.AboutExtended),
		Stats:       doc.Stats,
	}
}

func buildExperience(doc *portfolio.Document, p *Page) {
	groups := timeline.ByYear(doc.Experience, func(e portfolio.Experience) time.Time {
		return startTime(e.Starts)
	})
	items := make([]ExperienceItem, 0, len(doc.Experience))
	for _, g := range groups {
		for _, e := range g.Entries {
			exp := e.Item
			items = append(items, ExperienceItem{
				Year:         yearLabel(g.Year, e.FirstInGroup),
				Current:      bool(exp.Current),
				Logo:         exp.CompanyLogo,
				Initial:      initial(exp.Company),
				Company:      exp.Company,
				Website:      exp.CompanyWebsite,
				Position:     exp.Position,
				Location:     exp.Location,
				Duration:     portfolio.FormatRange(exp.Starts, exp.Ends, bool(exp.Current)),
				Type:         exp.Type,
				Description:  RichText(exp.Description),
				Achievements: exp.Achievements,
				Technologies: exp.Technologies,
			})
		}
	}
	p.Experience = items
}

func buildEducation(doc *portfolio.Document, p *Page) {
	groups := timeline.ByYear(doc.Education, func(e portfolio.Education) time.Time {
		return startTime(e.Starts)
	})
	items := make([]EducationItem, 0, len(doc.Education))
	for _, g := range groups {
		for _, e := range g.Entries {
			edu := e.Item
			heading := edu.Degree
			if edu.Specialization != "" {
				heading += " in " + edu.Specialization
			}
			var first string
			if words := strings.Fields(edu.Institution); len(words) > 0 {
				first = words[0]
			}
			items = append(items, EducationItem{
				Year:        yearLabel(g.Year, e.FirstInGroup),
				Current:     bool(edu.Current),
				Logo:        edu.InstitutionLogo,
				Initial:     initial(first),
				Institution: edu.Institution,
				Website:     edu.InstitutionWebsite,
				Heading:     heading,
				Location:    edu.Location,
				Duration:    portfolio.FormatRange(edu.Starts, edu.Ends, bool(edu.Current)),
				Grade:       edu.Grade.String(),
				GPA:         edu.GPA.String(),
				Description: RichText(edu.Description),
				Highlights:  edu.Highlights,
			})
		}
	}
	p.Education = items
}

func buildSkills(doc *portfolio.Document, p *Page) {
	cats := make([]SkillCategory, 0, len(doc.Skills.Categories))
	for _, c := range doc.Skills.Categories {
		if c.Type != skillsProgress && c.Type != skillsBadges {
			continue
		}
		skills := make([]Skill, 0, len(c.Skills))
		for _, s := range c.Skills {
			level, _ := s.Level.Int()
			skills = append(skills, Skill{Name: s.Name, Level: min(max(level, 0), 100)})
		}
		cats = append(cats, SkillCategory{Name: c.Name, Kind: c.Type, Skills: skills})
	}
	p.Skills = cats
}

func buildProjects(doc *portfolio.Document, p *Page) {
	sorted := portfolio.SortProjects(doc.Projects)
	cards := make([]ProjectCard, 0, len(sorted))
	for _, pr := range sorted {
		cards = append(cards, ProjectCard{
			Title:        pr.Title,
			Logo:         pr.Logo,
			Links:        projectLinks(pr.Links),
			Types:        pr.Types,
			Company:      pr.Company,
			Description:  RichText(pr.Description),
			Technologies: pr.Technologies,
		})
	}
	p.Projects = cards
}

func projectLinks(l portfolio.ProjectLinks) []ProjectLink {
	candidates := []ProjectLink{
		{URL: l.GitHub, Title: "GitHub Repository", Icon: "fab fa-github"},
		{URL: l.Live, Title: "Live Demo", Icon: "fas fa-external-link-alt"},
		{URL: l.Facebook, Title: "Facebook Page", Icon: "fab fa-facebook"},
		{URL: l.GooglePlay, Title: "Google Play Store", Icon: "fab fa-google-play"},
		{URL: l.AppStore, Title: "Apple App Store", Icon: "fab fa-app-store-ios"},
	}
	var out []ProjectLink
	for _, c := range candidates {
		if c.URL != "" {
			out = append(out, c)
		}
	}
	return out
}

func buildReachMe(doc *portfolio.Document, p *Page) {
	p.ReachMe = doc.ReachMe
}

func buildContact(doc *portfolio.Document, p *Page) {
	methods := make([]ContactMethod, 0, len(doc.Contact.Methods))
	for _, m := range doc.Contact.Methods {
		methods = append(methods, ContactMethod{
			Icon:   m.Icon,
			Label:  m.Label,
			Value:  m.Value.String(),
			Link:   m.Link,
			IsLink: m.Type == "link",
		})
	}
	p.Contact = Contact{
		Subtitle:    doc.Contact.Subtitle,
		Description: doc.Contact.Description,
		Methods:     methods,
	}
}

func buildFooter(doc *portfolio.Document, p *Page) {
	p.Footer = Footer{Copyright: doc.Settings.Copyright}
}

func startTime(s string) time.Time {
	t, _ := portfolio.ParseDate(s)
	return t
}

// yearLabel hides the year on all but the first entry and for undated ones.
func yearLabel(year int, first bool) string {
	if !first || year == 0 {
		return ""
	}
	return strconv.Itoa(year)
}

// initial is the fallback badge text shown when a logo fails to load.
func initial(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 || r == utf8.RuneError {
		return ""
	}
	return string(r)
}
