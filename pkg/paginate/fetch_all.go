package paginate

import (
	"context"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"
)

// FetchAll drains the result set at endpoint into a slice. On a mid-stream
// failure it returns the records collected so far together with the error,
// so callers keep partial data.
func FetchAll(ctx context.Context, fetcher PageFetcher, endpoint string, params url.Values) ([]map[string]any, error) {
	start := time.Now()

	log.Info().
		Str("endpoint", endpoint).
		Msg("Starting paginated fetch")

	it := New(fetcher, endpoint, params)

	var records []map[string]any
	for it.Next(ctx) {
		records = append(records, it.Record())

		// Progress logging every 500 records
		if len(records)%500 == 0 {
			log.Info().
				Int("records", len(records)).
				Int("pages", it.Pages()).
				Msg("Fetch progress")
		}
	}

	if err := it.Err(); err != nil {
		log.Warn().
			Err(err).
			Int("pages", it.Pages()).
			Int("records", len(records)).
			Msg("Fetch ended early - returning partial results")
		return records, err
	}

	log.Info().
		Str("endpoint", endpoint).
		Int("pages", it.Pages()).
		Int("records", len(records)).
		Dur("duration", time.Since(start)).
		Msg("Fetch complete")

	return records, nil
}
