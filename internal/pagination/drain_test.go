package pagination

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/todoist-mcp/internal/todoist"
)

// pagedSource serves pages of k items each; the cursor is the next page index.
type pagedSource struct {
	pages   int
	perPage int
	cursors []string
	failAt  int
}

func (s *pagedSource) fetch(_ context.Context, cursor string) (todoist.Page[string], error) {
	s.cursors = append(s.cursors, cursor)

	idx := 0
	if cursor != "" {
		var err error
		if idx, err = strconv.Atoi(cursor); err != nil {
			return todoist.Page[string]{}, err
		}
	}
	if s.failAt > 0 && idx == s.failAt {
		return todoist.Page[string]{}, errors.New("remote unavailable")
	}

	page := todoist.Page[string]{}
	for i := 0; i < s.perPage; i++ {
		page.Results = append(page.Results, fmt.Sprintf("p%d-i%d", idx, i))
	}
	if idx+1 < s.pages {
		page.NextCursor = strconv.Itoa(idx + 1)
	}
	return page, nil
}

func TestDrainAll_Completeness(t *testing.T) {
	tests := []struct {
		pages, perPage int
	}{
		{1, 0},
		{1, 5},
		{3, 4},
		{10, 1},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%dx%d", tt.pages, tt.perPage), func(t *testing.T) {
			src := &pagedSource{pages: tt.pages, perPage: tt.perPage}

			got, err := DrainAll(context.Background(), src.fetch)
			require.NoError(t, err)
			require.Len(t, got, tt.pages*tt.perPage)

			// page-arrival order
			n := 0
			for p := 0; p < tt.pages; p++ {
				for i := 0; i < tt.perPage; i++ {
					assert.Equal(t, fmt.Sprintf("p%d-i%d", p, i), got[n])
					n++
				}
			}

			assert.Len(t, src.cursors, tt.pages)
			assert.Equal(t, "", src.cursors[0], "first call must not carry a cursor")
		})
	}
}

func TestDrainAll_NoDedup(t *testing.T) {
	calls := 0
	fetch := func(_ context.Context, cursor string) (todoist.Page[string], error) {
		calls++
		if cursor == "" {
			return todoist.Page[string]{Results: []string{"a", "b"}, NextCursor: "next"}, nil
		}
		return todoist.Page[string]{Results: []string{"b", "a"}}, nil
	}

	got, err := DrainAll(context.Background(), fetch)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "b", "a"}, got)
	assert.Equal(t, 2, calls)
}

func TestDrainAll_Error(t *testing.T) {
	src := &pagedSource{pages: 5, perPage: 2, failAt: 2}

	got, err := DrainAll(context.Background(), src.fetch)
	assert.EqualError(t, err, "remote unavailable")
	assert.Nil(t, got)
	assert.Len(t, src.cursors, 3)
}

func TestDrainAll_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	fetch := func(_ context.Context, _ string) (todoist.Page[int], error) {
		calls++
		if calls == 3 {
			cancel()
		}
		return todoist.Page[int]{Results: []int{calls}, NextCursor: "forever"}, nil
	}

	_, err := DrainAll(ctx, fetch)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 3, calls)
}
