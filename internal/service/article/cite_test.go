package article

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"qwksearch/internal/domain/models"
)

func TestApplyCitation(t *testing.T) {
	tests := []struct {
		name string
		in   models.Article
		want models.Article
	}{
		{
			name: "single person",
			in:   models.Article{Author: "By Jane Q Doe", Title: "Vents", Source: "Ocean Weekly", Date: "2024-07-26", URL: "https://o.example/v"},
			want: models.Article{
				Author:      "Jane Q Doe",
				AuthorCite:  "Doe, J. Q.",
				AuthorShort: "Doe",
				AuthorType:  AuthorPerson,
				Cite:        "Doe, J. Q. (2024). Vents. Ocean Weekly. https://o.example/v",
			},
		},
		{
			name: "several authors",
			in:   models.Article{Author: "Jane Doe and John Roe", Title: "Vents", Source: "OW"},
			want: models.Article{
				Author:      "Jane Doe and John Roe",
				AuthorCite:  "Doe, J., et al.",
				AuthorShort: "Doe et al.",
				AuthorType:  AuthorMultiple,
				Cite:        "Doe, J., et al. (n.d.). Vents. OW. ",
			},
		},
		{
			name: "organization",
			in:   models.Article{Author: "Reuters", Title: "Vents", Source: "Reuters", Date: "2023"},
			want: models.Article{
				Author:      "Reuters",
				AuthorCite:  "Reuters",
				AuthorShort: "Reuters",
				AuthorType:  AuthorOrganization,
				Cite:        "Reuters (2023). Vents. Reuters. ",
			},
		},
		{
			name: "no author falls back to source",
			in:   models.Article{Title: "Vents", Source: "ocean.example"},
			want: models.Article{Cite: "ocean.example (n.d.). Vents. ocean.example. "},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := tt.in
			applyCitation(&a)
			assert.Equal(t, tt.want.Author, a.Author)
			assert.Equal(t, tt.want.AuthorCite, a.AuthorCite)
			assert.Equal(t, tt.want.AuthorShort, a.AuthorShort)
			assert.Equal(t, tt.want.AuthorType, a.AuthorType)
			assert.Equal(t, tt.want.Cite, a.Cite)
		})
	}
}
