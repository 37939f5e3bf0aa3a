package filter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendToQuery(t *testing.T) {
	tests := []struct {
		name   string
		base   string
		clause string
		want   string
	}{
		{"both empty", "", "", ""},
		{"empty base", "", "@urgent", "@urgent"},
		{"empty clause", "today", "", "today"},
		{"both set", "today", "@urgent", "today & @urgent"},
		{"whitespace trimmed when joined", "  today ", " @urgent ", "today & @urgent"},
		{"blank clause keeps base verbatim", " ##Work", "  ", " ##Work"},
		{"blank base keeps clause verbatim", " ", "@urgent ", "@urgent "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AppendToQuery(tt.base, tt.clause))
		})
	}
}

func TestAppendToQuery_EmptyIdentities(t *testing.T) {
	for _, q := range []string{"today", "##Work", " ##Work", "(@a | @b) ", "search: milk & p1"} {
		assert.Equal(t, q, AppendToQuery(q, ""))
		assert.Equal(t, q, AppendToQuery("", q))
	}
}

func TestBuild(t *testing.T) {
	q, err := Build("##Work", LabelsClause([]string{"urgent"}, ""), ResponsibleClause(ResponsibleAll, ""))
	require.NoError(t, err)
	assert.Equal(t, "##Work & (@urgent)", q)

	q, err = Build(" ##Work ", "")
	require.NoError(t, err)
	assert.Equal(t, "##Work", q, "Build trims the folded query")

	_, err = Build(" ", "")
	assert.ErrorIs(t, err, ErrEmptyQuery)

	q, err = Build(SearchClause("milk"), LabelsClause([]string{"@home", "errand"}, OperatorAnd), ResponsibleClause(ResponsibleUnassignedOrMe, ""))
	require.NoError(t, err)
	assert.Equal(t, "search: milk & (@home & @errand) & !assigned to: others", q)

	_, err = Build("", " ", LabelsClause(nil, OperatorOr))
	assert.ErrorIs(t, err, ErrEmptyQuery)
}

func TestLabelsClause(t *testing.T) {
	tests := []struct {
		name   string
		labels []string
		op     Operator
		want   string
	}{
		{"empty", nil, OperatorOr, ""},
		{"blank names only", []string{" ", "@"}, OperatorAnd, ""},
		{"single default op", []string{"urgent"}, "", "(@urgent)"},
		{"or", []string{"a", "@b"}, OperatorOr, "(@a | @b)"},
		{"and", []string{"a", "b", "c"}, OperatorAnd, "(@a & @b & @c)"},
		{"unknown op falls back to or", []string{"a", "b"}, Operator("xor"), "(@a | @b)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LabelsClause(tt.labels, tt.op))
		})
	}
}

func TestResponsibleClause(t *testing.T) {
	tests := []struct {
		mode  ResponsibleFiltering
		email string
		want  string
	}{
		{ResponsibleAll, "", ""},
		{"", "", ""},
		{ResponsibleAssigned, "", "assigned to: others"},
		{ResponsibleUnassignedOrMe, "", "!assigned to: others"},
		{ResponsibleUnassignedOrMe, "jane@example.com", "assigned to: jane@example.com"},
		{ResponsibleAll, " bob@example.com ", "assigned to: bob@example.com"},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode)+"/"+tt.email, func(t *testing.T) {
			assert.Equal(t, tt.want, ResponsibleClause(tt.mode, tt.email))
		})
	}
}

func TestSearchAndProjectClauses(t *testing.T) {
	assert.Equal(t, "", SearchClause("  "))
	assert.Equal(t, "search: buy milk", SearchClause(" buy milk "))

	assert.Equal(t, "", ProjectClause("", true))
	assert.Equal(t, "#Work", ProjectClause("Work", false))
	assert.Equal(t, "##Work", ProjectClause("#Work", true))
}

func TestGroup(t *testing.T) {
	assert.Equal(t, "", Group(""))
	assert.Equal(t, "##Work", Group("##Work"))
	assert.Equal(t, "(today | overdue)", Group("today | overdue"))
	assert.Equal(t, "(@a | @b) & p1", Group("(@a | @b) & p1"))

	q, err := Build(Group("today | overdue"), LabelsClause([]string{"urgent"}, OperatorOr))
	require.NoError(t, err)
	assert.Equal(t, "(today | overdue) & (@urgent)", q)
}

func TestDateWindow_Clause(t *testing.T) {
	now := time.Date(2025, 8, 14, 22, 30, 0, 0, time.UTC)

	tests := []struct {
		name    string
		window  DateWindow
		loc     *time.Location
		want    string
		wantErr bool
	}{
		{
			name:   "today single day",
			window: DateWindow{Start: Today},
			loc:    time.UTC,
			want:   "due: 2025-08-14",
		},
		{
			name:   "empty start means today",
			window: DateWindow{Days: 1},
			want:   "due: 2025-08-14",
		},
		{
			name:   "explicit date multi day",
			window: DateWindow{Start: "2025-08-30", Days: 3},
			loc:    time.UTC,
			want:   "(due: 2025-08-30 | due after: 2025-08-30) & due before: 2025-09-02",
		},
		{
			name:   "include overdue",
			window: DateWindow{Start: "2025-08-14", Days: 1, Overdue: OverdueInclude},
			loc:    time.UTC,
			want:   "(overdue | due: 2025-08-14)",
		},
		{
			name:   "overdue only ignores window",
			window: DateWindow{Start: "not-a-date", Days: 7, Overdue: OverdueOnly},
			loc:    time.UTC,
			want:   "overdue",
		},
		{
			name:    "bad date",
			window:  DateWindow{Start: "14/08/2025"},
			loc:     time.UTC,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.window.Clause(now, tt.loc)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDateWindow_TodayFollowsLocation(t *testing.T) {
	// 22:30 UTC is already the next day east of UTC+1:30.
	now := time.Date(2025, 8, 14, 22, 30, 0, 0, time.UTC)
	east := time.FixedZone("UTC+3", 3*60*60)
	west := time.FixedZone("UTC-5", -5*60*60)

	got, err := DateWindow{Start: Today}.Clause(now, east)
	require.NoError(t, err)
	assert.Equal(t, "due: 2025-08-15", got)

	got, err = DateWindow{Start: Today}.Clause(now, west)
	require.NoError(t, err)
	assert.Equal(t, "due: 2025-08-14", got)
}

func TestCompletionBounds(t *testing.T) {
	since, until, err := CompletionBounds("2025-08-01", "2025-08-31", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, "2025-08-01T00:00:00.000Z", since)
	assert.Equal(t, "2025-08-31T23:59:59.000Z", until)

	// nil location behaves as UTC
	since, until, err = CompletionBounds("2025-08-01", "2025-08-01", nil)
	require.NoError(t, err)
	assert.Equal(t, "2025-08-01T00:00:00.000Z", since)
	assert.Equal(t, "2025-08-01T23:59:59.000Z", until)

	berlin := time.FixedZone("CEST", 2*60*60)
	since, until, err = CompletionBounds("2025-08-01", "2025-08-31", berlin)
	require.NoError(t, err)
	assert.Equal(t, "2025-07-31T22:00:00.000Z", since)
	assert.Equal(t, "2025-08-31T21:59:59.000Z", until)
}

func TestCompletionBounds_Errors(t *testing.T) {
	_, _, err := CompletionBounds("2025-13-01", "2025-08-31", time.UTC)
	assert.ErrorContains(t, err, "invalid since date")

	_, _, err = CompletionBounds("2025-08-01", "yesterday", time.UTC)
	assert.ErrorContains(t, err, "invalid until date")

	_, _, err = CompletionBounds("2025-08-31", "2025-08-01", time.UTC)
	assert.ErrorContains(t, err, "must not be before")
}
