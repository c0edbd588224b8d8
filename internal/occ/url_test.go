package occ

import (
	"strings"
	"testing"
)

func TestKeywordSlug(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"data engineer", "data-engineer"},
		{"  Desarrollador   Web  ", "desarrollador-web"},
		{"C++ / Go", "c-go"},
		{"diseñador", "diseñador"},
	}
	for _, tt := range tests {
		if got := keywordSlug(tt.in); got != tt.want {
			t.Errorf("keywordSlug(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSearchURL(t *testing.T) {
	s := NewScraper(Config{BaseURL: "https://board.example"})

	tests := []struct {
		name    string
		filters SearchFilters
		want    []string
		absent  []string
	}{
		{
			name:    "keyword only",
			filters: SearchFilters{Keyword: "golang developer"},
			want:    []string{"https://board.example/empleos/de-golang-developer/"},
			absent:  []string{"page=", "sort="},
		},
		{
			name: "all filters",
			filters: SearchFilters{
				Keyword:         "backend",
				Location:        "Guadalajara",
				Salary:          30000,
				WorkMode:        WorkModeRemote,
				JobType:         JobTypeFull,
				CompanyVerified: true,
				Sort:            SortDate,
				Page:            3,
			},
			want: []string{
				"de-backend/", "l=guadalajara", "salario=30000",
				"modalidad=remoto", "empresa_verificada=1", "sort=2", "page=3",
			},
		},
		{
			name:    "first page omits page param",
			filters: SearchFilters{Keyword: "qa", Page: 1},
			absent:  []string{"page="},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.SearchURL(tt.filters)
			if err != nil {
				t.Fatalf("SearchURL: %v", err)
			}
			for _, frag := range tt.want {
				if !strings.Contains(got, frag) {
					t.Errorf("SearchURL = %q, missing %q", got, frag)
				}
			}
			for _, frag := range tt.absent {
				if strings.Contains(got, frag) {
					t.Errorf("SearchURL = %q, should not contain %q", got, frag)
				}
			}
		})
	}
}

func TestSearchURLRequiresKeyword(t *testing.T) {
	s := NewScraper(DefaultConfig())
	if _, err := s.SearchURL(SearchFilters{Keyword: "  "}); err == nil {
		t.Error("expected error for blank keyword")
	}
}

func TestDetailURLs(t *testing.T) {
	s := NewScraper(Config{BaseURL: "https://board.example", OfferHost: "https://offers.example"})
	if got, want := s.detailJSONURL("20456789"), "https://offers.example/offer/20456789/d/j?ipo=41&iapo=1"; got != want {
		t.Errorf("detailJSONURL = %q, want %q", got, want)
	}
	if got, want := s.detailHTMLURL("20456789"), "https://board.example/empleo/20456789"; got != want {
		t.Errorf("detailHTMLURL = %q, want %q", got, want)
	}
}
