package cache

import (
	"fmt"
	"sort"
	"strings"

	"net/url"
)

// keyPrefix namespaces all cache keys in Redis.
const keyPrefix = "courtsync:cache"

// Key identifies a cached result page.
type Key struct {
	// Endpoint is the request URL, either an endpoint path or the full
	// URL of a continuation page.
	Endpoint string

	// Params are additional query parameters not already encoded into
	// Endpoint.
	Params url.Values
}

// String generates a deterministic cache key string.
// Format: courtsync:cache:<endpoint>:param1=val1:param2=val2
//
// Example:
//
//	courtsync:cache:https://www.courtlistener.com/api/rest/v3/opinions/:page_size=10
func (k Key) String() string {
	parts := []string{keyPrefix}

	endpoint := strings.TrimRight(k.Endpoint, "/")
	if endpoint != "" {
		parts = append(parts, endpoint)
	}

	// Add params (sorted for determinism)
	if len(k.Params) > 0 {
		paramKeys := make([]string, 0, len(k.Params))
		for key := range k.Params {
			paramKeys = append(paramKeys, key)
		}
		sort.Strings(paramKeys)

		for _, key := range paramKeys {
			parts = append(parts, fmt.Sprintf("%s=%s", key, k.Params.Get(key)))
		}
	}

	return strings.Join(parts, ":")
}
