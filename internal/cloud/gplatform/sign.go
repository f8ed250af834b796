package gplatform

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"net/url"
	"sort"
	"strings"
)

// Sign builds the signed query string for a G-platform API request.
//
// The provider recomputes the signature server-side from the same inputs, so the
// steps here are fixed by the wire protocol and cannot be reordered:
//  1. Join each parameter as "key=value" and sort the joined pairs lexicographically.
//  2. Concatenate with "&" to form the query string sent on the wire.
//  3. Lower-case the ENTIRE query, HMAC-SHA1 it with the secret key, base64 the
//     digest and percent-encode the result.
//  4. Append the signature as the trailing "signature" parameter. The signature
//     itself is never part of the signed input.
//
// Because step 3 lower-cases the whole query, mixed-case parameter values are
// signed in their lower-case form. The provider expects exactly this; do not
// "fix" it.
//
// Sign is pure. Callers must ensure no parameter value contains an unescaped "&".
func Sign(params map[string]string, secretKey string) string {
	pairs := make([]string, 0, len(params))
	for k, v := range params {
		pairs = append(pairs, k+"="+v)
	}
	sort.Strings(pairs)

	query := strings.Join(pairs, "&")

	mac := hmac.New(sha1.New, []byte(secretKey))
	mac.Write([]byte(strings.ToLower(query)))

	signature := url.QueryEscape(base64.StdEncoding.EncodeToString(mac.Sum(nil)))

	return query + "&signature=" + signature
}
