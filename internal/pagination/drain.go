// Package pagination materializes cursor-paginated Todoist listings.
package pagination

import (
	"context"

	"github.com/teemow/todoist-mcp/internal/todoist"
)

// FetchFunc fetches the page starting at cursor. The first call receives an
// empty cursor.
type FetchFunc[T any] func(ctx context.Context, cursor string) (todoist.Page[T], error)

// DrainAll calls fetch until a page comes back without a next cursor and
// returns every result in page-arrival order. Nothing is deduplicated or
// reordered.
//
// There is no cap on the number of pages: a remote that keeps returning a
// cursor is followed until ctx is cancelled.
func DrainAll[T any](ctx context.Context, fetch FetchFunc[T]) ([]T, error) {
	var (
		all    []T
		cursor string
	)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page, err := fetch(ctx, cursor)
		if err != nil {
			return nil, err
		}
		all = append(all, page.Results...)
		if page.NextCursor == "" {
			return all, nil
		}
		cursor = page.NextCursor
	}
}
