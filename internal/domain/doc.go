// Package domain models Snowflake external-function geocoding calls.
//
// # Wire Format
//
// Snowflake delivers external-function calls as a JSON envelope:
//
//	{ "data": [[rowID, ...cells], ...] }
//
// and expects the response in the same shape, with row i of the output
// corresponding to row i of the input and carrying the same rowID. The rowID
// is an opaque caller-chosen JSON scalar; Snowflake uses it to rejoin results
// to the rows of the calling query, so it must be echoed back byte-for-byte.
//
// Row shape depends on the operation:
//
//	geocode:         [rowID, address]              → [rowID, longitude, latitude]
//	reverse geocode: [rowID, longitude, latitude]  → [rowID, label]
//
// # Function Naming Convention
//
// The logical function being called arrives in the sf-external-function-name
// header, e.g. "reverse_geocode_amazon_location_service_provider_esri". The
// prefix selects the operation (geocode vs reverse geocode) and the suffix
// selects the data provider (here, esri, grab). Each provider is backed by a
// distinct place index on the geocoding backend; the index identifier is
// resolved from an externally managed provider→index map.
//
// # No-Match Sentinels
//
// A lookup that finds no place is a valid outcome, not an error. It is
// encoded as (-1, -1) for geocode results and "N/A" for reverse-geocode
// labels, matching what the warehouse-side SQL expects.
//
// # Failure Policy
//
// Batches are processed strictly sequentially and fail fast: the first row
// whose backend call errors aborts the whole batch with no partial output.
// Snowflake retries the call as a unit, so partial results would be ambiguous
// to reconcile against the caller's rows.
package domain
