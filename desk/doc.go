// Package desk provides a client for the Desk ticketing REST API.
//
// The client issues authenticated requests, decodes JSON responses and keeps
// track of the service's rate-limit headers so callers can back off before
// the quota runs out. A request throttled with 429 is retried automatically
// once the advertised reset window has passed.
//
// # Architecture
//
//   - Credentials: HTTP Basic or OAuth1 (three-legged) credentials, chosen once
//   - Transport: a single HTTP exchange over resty, no retries
//   - RateLimitTracker: last observed X-Rate-Limit-* values and threshold queries
//   - Client: the request pipeline tying the pieces together
//   - Decode: typed JSON decoding of successful responses
//
// # Usage
//
//	logger := zerolog.New(os.Stdout)
//	client, err := desk.NewBasicClient(
//		"https://example.desk.com/api/v2",
//		"agent@example.com",
//		"secret",
//		desk.WithLogger(logger),
//		desk.WithTimeout(30*time.Second),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	c, ok, err := desk.Execute[desk.Case](ctx, client, desk.NewRequest(http.MethodPost, "cases"), body)
//	switch {
//	case err != nil:
//		log.Fatal(err)
//	case !ok:
//		// desk rejected the payload (422)
//	default:
//		fmt.Println(c.ID)
//	}
//
// # Rate Limits
//
// Every response carrying X-Rate-Limit-Limit updates the tracker. Responses
// without the header leave the previous values in place.
// IsExceedingAPILimits and IsNearingAPILimits answer from that state, making one
// cheap probe request first if nothing has been observed yet.
//
// A 429 response is retried once after sleeping X-Rate-Limit-Reset seconds.
// Use WithRetryPolicy to change that, for example with ExponentialPolicy.
//
// # Error Handling
//
//   - TransportError: the request never produced an HTTP response
//   - APIError: any status other than 200/201 on the typed path
//   - DecodeError: a success body that is not the expected JSON
//
// A 422 on the typed path is not an error: Execute reports ok == false.
//
//	var apiErr *desk.APIError
//	if errors.As(err, &apiErr) && apiErr.IsUnauthorized() {
//		// Handle auth failure
//	}
//
// A Client is safe for concurrent use.
package desk
