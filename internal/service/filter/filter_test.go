package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type activity struct {
	ID       string
	FarmerID string
	Farmer   string
	Batch    string
	Date     string
	Status   string
}

var activityFields = Fields[activity]{
	Text:   func(a activity) []string { return []string{a.Farmer, a.Batch} },
	ID:     func(a activity) string { return a.FarmerID },
	Date:   func(a activity) string { return a.Date },
	Status: func(a activity) string { return a.Status },
	Active: func(a activity) bool { return a.Status == "active" },
}

func sampleActivities() []activity {
	return []activity{
		{ID: "DE001", FarmerID: "F001", Farmer: "Rajesh Kumar", Batch: "B2024-001", Date: "2024-05-01", Status: "active"},
		{ID: "DE002", FarmerID: "F002", Farmer: "Suresh Patel", Batch: "B2024-002", Date: "2024-05-02", Status: "active"},
		{ID: "DE003", FarmerID: "F001", Farmer: "Rajesh Kumar", Batch: "B2024-003", Date: "2024-05-03", Status: "completed"},
		{ID: "DE004", FarmerID: "F003", Farmer: "Venkatesh Rao", Batch: "B2024-004", Date: "2024-05-04", Status: "active"},
		{ID: "DE005", FarmerID: "F004", Farmer: "Lakshmi Devi", Batch: "B2024-005", Date: "2024-05-05", Status: "completed"},
	}
}

func ids(items []activity) []string {
	out := make([]string, 0, len(items))
	for _, a := range items {
		out = append(out, a.ID)
	}
	return out
}

func TestApply(t *testing.T) {
	items := sampleActivities()

	tests := []struct {
		name  string
		query Query
		want  []string
	}{
		{"empty query keeps everything", Query{}, []string{"DE001", "DE002", "DE003", "DE004", "DE005"}},
		{"farmer selection keeps order", Query{IDs: []string{"F001"}}, []string{"DE001", "DE003"}},
		{"multi select", Query{IDs: []string{"F003", "F002"}}, []string{"DE002", "DE004"}},
		{"search is case insensitive", Query{Search: "rAjEsH"}, []string{"DE001", "DE003"}},
		{"search second field", Query{Search: "2024-004"}, []string{"DE004"}},
		{"inclusive date range", Query{StartDate: "2024-05-02", EndDate: "2024-05-04"}, []string{"DE002", "DE003", "DE004"}},
		{"open ended start", Query{StartDate: "2024-05-04"}, []string{"DE004", "DE005"}},
		{"inverted range is empty", Query{StartDate: "2024-05-05", EndDate: "2024-05-01"}, []string{}},
		{"status equality", Query{Status: "COMPLETED"}, []string{"DE003", "DE005"}},
		{"active only", Query{ActiveOnly: true}, []string{"DE001", "DE002", "DE004"}},
		{"combined", Query{IDs: []string{"F001"}, ActiveOnly: true, Search: "kumar"}, []string{"DE001"}},
		{"no match", Query{Search: "nobody"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Apply(items, tt.query, activityFields)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestApplyIgnoresMissingAccessors(t *testing.T) {
	got := Apply(sampleActivities(), Query{Status: "completed", IDs: []string{"F001"}}, Fields[activity]{})
	assert.Len(t, got, 5)
}

func TestMatchesAny(t *testing.T) {
	assert.True(t, MatchesAny("", "anything"))
	assert.True(t, MatchesAny("ali", "Mohammed Ali", "Ali Traders"))
	assert.False(t, MatchesAny("ali", "Rajesh", "Kumar"))
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11}

	p := Paginate(items, 1, 5)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, p.Items)
	assert.Equal(t, 3, p.TotalPages)
	assert.Equal(t, 11, p.TotalItems)

	p = Paginate(items, 3, 5)
	assert.Equal(t, []int{11}, p.Items)

	p = Paginate(items, 4, 5)
	assert.Empty(t, p.Items)
	assert.NotNil(t, p.Items)

	p = Paginate(items, 0, 5)
	assert.Equal(t, 1, p.Page)

	p = Paginate(items, 1, 0)
	assert.Len(t, p.Items, 11)
	assert.Equal(t, 1, p.TotalPages)

	empty := Paginate([]int{}, 1, 9)
	assert.Equal(t, 0, empty.TotalPages)
	assert.Empty(t, empty.Items)
}
