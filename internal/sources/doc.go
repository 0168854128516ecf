// Package sources defines the external game archive collaborators and the
// fan-out used to query them.
//
// A Fetcher wraps one archive's read API behind a narrow interface; Rookery
// treats the transport as a black box and only consumes typed records. Fetch
// runs every configured fetcher concurrently with an independent time
// budget, so one slow or failing archive never blocks results from the
// others. Failures come back as per-source warnings rather than a failed
// overall fetch.
package sources
