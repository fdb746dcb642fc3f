package sheet

import (
	"context"
)

const (
	// pageSize is the fixed limit sent with every getVehicles request.
	pageSize = 500
	// maxPages is the hard ceiling on requests per fetch, a 25,000-row
	// safety cap against upstreams whose pagination meta misbehaves.
	maxPages = 50
)

// Pager is the slice of the upstream client the fetcher needs.
type Pager interface {
	FetchPage(ctx context.Context, limit, offset int) (Page, error)
}

// FetchAllRows walks the upstream's pagination until the full dataset has
// been accumulated, filtering structurally-empty rows along the way.
// Pages are fetched strictly sequentially: each iteration's offset
// depends on the previous page's reported meta.
//
// The upstream's pagination meta is not trustworthy (older deployments
// omit it entirely and some report stale offsets), so every termination
// condition below is independent of the others. The checks run in a fixed
// order each iteration:
//
//  1. no meta object: this page is the entire dataset, stop;
//  2. the effective offset matches the previous iteration's: stop
//     (anti-infinite-loop guard; the page is discarded as a re-read);
//  3. zero rows returned: stop;
//  4. accumulated rows ≥ reported total: stop;
//  5. computed next offset ≥ reported total: stop.
//
// Hitting the page ceiling returns whatever has been accumulated rather
// than erroring: partial data beats an unbounded request storm.
// Transport-level failures and upstream {ok:false} responses are the only
// errors; malformed rows degrade silently.
func FetchAllRows(ctx context.Context, pager Pager) ([]RawRow, error) {
	var (
		rows          []RawRow
		total         = -1 // unknown until the upstream reports one
		lastEffOffset = -1
		offset        = 0
	)

	for page := 0; page < maxPages; page++ {
		p, err := pager.FetchPage(ctx, pageSize, offset)
		if err != nil {
			return nil, err
		}

		valid := filterRows(p.Rows)

		if p.Meta == nil {
			return append(rows, valid...), nil
		}

		// Effective values fall back to what we asked for whenever meta
		// omits or mangles them.
		effOffset := metaInt(p.Meta, "offset", offset)
		effLimit := metaInt(p.Meta, "limit", pageSize)
		if t := metaInt(p.Meta, "total", -1); t >= 0 {
			total = t
		}

		if lastEffOffset >= 0 && effOffset == lastEffOffset {
			return rows, nil
		}
		lastEffOffset = effOffset

		if len(p.Rows) == 0 {
			return rows, nil
		}

		rows = append(rows, valid...)
		if total >= 0 && len(rows) >= total {
			return rows, nil
		}

		next := effOffset + effLimit
		if total >= 0 && next >= total {
			return rows, nil
		}
		offset = next
	}

	return rows, nil
}

// filterRows drops structurally-empty rows before accumulation.
func filterRows(in []RawRow) []RawRow {
	out := make([]RawRow, 0, len(in))
	for _, row := range in {
		if row.IsValid() {
			out = append(out, row)
		}
	}
	return out
}

// metaInt extracts a non-negative integer from a meta field, falling back
// when the field is missing, non-numeric, or negative.
func metaInt(meta map[string]any, key string, fallback int) int {
	v, ok := meta[key]
	if !ok {
		return fallback
	}
	n := numberValue(v)
	if n == nil || *n < 0 {
		return fallback
	}
	return int(*n)
}
