package products

import (
	"context"
	"errors"
	"fmt"

	"products-api/application/ports"
)

// ErrPageLimitExceeded is returned when a scan needs more pages than allowed.
var ErrPageLimitExceeded = errors.New("scan page limit exceeded")

// Accumulate reads the whole store page by page, feeding each continuation
// cursor into the next request, and returns the items in page order along
// with the number of pages read. maxPages <= 0 means no limit. Any failure
// discards the partial result.
func Accumulate(ctx context.Context, store ports.ItemStore, maxPages int) ([]ports.Item, int, error) {
	items := make([]ports.Item, 0)
	cursor := ""
	pages := 0

	for {
		if maxPages > 0 && pages >= maxPages {
			return nil, pages, fmt.Errorf("%w: more than %d pages", ErrPageLimitExceeded, maxPages)
		}
		if err := ctx.Err(); err != nil {
			return nil, pages, err
		}

		page, err := store.ScanPage(ctx, cursor)
		if err != nil {
			return nil, pages, fmt.Errorf("scan page %d: %w", pages+1, err)
		}
		pages++
		items = append(items, page.Items...)

		if page.Next == "" {
			return items, pages, nil
		}
		cursor = page.Next
	}
}
