package paginate

import (
	"context"
	"net/url"

	"github.com/courtsync/courtsync/pkg/client"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for pagination.
var (
	pagesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "courtsync_pages_total",
		Help: "Total result pages fetched",
	})

	recordsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "courtsync_records_total",
		Help: "Total records yielded from result pages",
	})
)

// PageFetcher fetches a single result page. *client.Client satisfies it.
type PageFetcher interface {
	GetPage(ctx context.Context, rawurl string, params url.Values) (*client.Page, error)
}

// Iterator walks a paginated result set lazily, one record at a time, in
// server order. Pages are fetched on demand when the current one drains.
type Iterator struct {
	fetcher PageFetcher
	next    string
	params  url.Values

	buffer  []map[string]any
	current map[string]any
	pages   int
	records int
	done    bool
	err     error
}

// New creates an iterator over the result set at endpoint. params are sent
// with the first request only; after that the iterator follows the
// server's continuation URLs, which carry their own query strings.
func New(fetcher PageFetcher, endpoint string, params url.Values) *Iterator {
	return &Iterator{
		fetcher: fetcher,
		next:    endpoint,
		params:  params,
	}
}

// Next advances to the next record, fetching the next page when needed. It
// returns false when the result set ends or a page fetch fails; call Err
// to tell the two apart. Records yielded before a failure stay valid.
func (it *Iterator) Next(ctx context.Context) bool {
	if it.err != nil {
		return false
	}

	for len(it.buffer) == 0 {
		if it.done {
			return false
		}
		if !it.fetchPage(ctx) {
			return false
		}
	}

	it.current = it.buffer[0]
	it.buffer = it.buffer[1:]
	it.records++
	recordsTotal.Inc()
	return true
}

// fetchPage pulls the next page into the buffer.
func (it *Iterator) fetchPage(ctx context.Context) bool {
	page, err := it.fetcher.GetPage(ctx, it.next, it.params)
	if err != nil {
		it.err = err
		it.done = true
		log.Warn().
			Err(err).
			Int("pages", it.pages).
			Int("records", it.records).
			Msg("Page fetch failed - stream ended early")
		return false
	}

	// Filter params ride only on the first request; continuation URLs are
	// already fully parameterized by the server.
	it.params = nil

	it.pages++
	pagesTotal.Inc()
	it.buffer = page.Results
	it.next = page.Next
	if it.next == "" {
		it.done = true
	}

	log.Debug().
		Int("page", it.pages).
		Int("records", len(page.Results)).
		Bool("has_next", !it.done).
		Msg("Fetched result page")

	return true
}

// Record returns the record the last Next call advanced to.
func (it *Iterator) Record() map[string]any {
	return it.current
}

// Err returns the failure that ended the stream early, or nil after a
// clean end.
func (it *Iterator) Err() error {
	return it.err
}

// Pages returns the number of pages fetched so far.
func (it *Iterator) Pages() int {
	return it.pages
}

// Records returns the number of records yielded so far.
func (it *Iterator) Records() int {
	return it.records
}
