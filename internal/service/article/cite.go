package article

import (
	"fmt"
	"strings"

	"qwksearch/internal/domain/models"
)

// Author types
const (
	AuthorPerson       = "person"
	AuthorMultiple     = "multiple"
	AuthorOrganization = "organization"
)

// applyCitation fills the author_* fields and an APA-style citation from
// the extracted byline, date, title and source.
func applyCitation(a *models.Article) {
	author := strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(a.Author, "By "), "by "))
	a.Author = author

	names := splitAuthors(author)
	switch {
	case len(names) == 0:
		a.AuthorType = ""
	case len(names) > 1:
		a.AuthorType = AuthorMultiple
		a.AuthorCite = invertName(names[0]) + ", et al."
		a.AuthorShort = lastName(names[0]) + " et al."
	case len(strings.Fields(names[0])) >= 2:
		a.AuthorType = AuthorPerson
		a.AuthorCite = invertName(names[0])
		a.AuthorShort = lastName(names[0])
	default:
		a.AuthorType = AuthorOrganization
		a.AuthorCite = names[0]
		a.AuthorShort = names[0]
	}

	who := a.AuthorCite
	if who == "" {
		who = a.Source
	}
	year := "n.d."
	if len(a.Date) >= 4 {
		year = a.Date[:4]
	}
	a.Cite = fmt.Sprintf("%s (%s). %s. %s. %s", who, year, a.Title, a.Source, a.URL)
}

func splitAuthors(byline string) []string {
	if byline == "" {
		return nil
	}
	byline = strings.ReplaceAll(byline, " and ", ",")
	var names []string
	for _, name := range strings.Split(byline, ",") {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	return names
}

func lastName(name string) string {
	parts := strings.Fields(name)
	return parts[len(parts)-1]
}

// invertName turns "Jane Q Doe" into "Doe, J. Q."
func invertName(name string) string {
	parts := strings.Fields(name)
	if len(parts) < 2 {
		return name
	}
	initials := make([]string, 0, len(parts)-1)
	for _, p := range parts[:len(parts)-1] {
		initials = append(initials, string([]rune(p)[0])+".")
	}
	return parts[len(parts)-1] + ", " + strings.Join(initials, " ")
}
