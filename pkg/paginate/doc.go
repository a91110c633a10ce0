// Package paginate provides lazy iteration over paginated CourtListener
// result sets.
//
// The API pages results with a cursor: each page carries a "next" URL for
// the following page, or null on the last one. Pages must be walked in
// order, so this package fetches sequentially and on demand rather than in
// parallel.
//
// Example usage:
//
//	params := url.Values{}
//	params.Set("date_filed_min", "2023-01-01")
//	it := paginate.New(apiClient, client.EndpointOpinions, params)
//	for it.Next(ctx) {
//		process(it.Record())
//	}
//	if err := it.Err(); err != nil {
//		// records processed before the failure remain valid
//	}
//
// The iterator:
//   - Sends filter params with the first request only
//   - Follows server continuation URLs verbatim
//   - Yields records one at a time in server order
//   - Ends the stream on a page failure without discarding prior records
package paginate
