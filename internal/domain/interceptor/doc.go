// Package interceptor is the single decision point for every request a
// partition issues.
//
// Evaluation order, first decisive step wins:
//
//  1. internal schemes (about, data, file, devtools) are always allowed
//  2. curated partition, private scheme: companion hosts and approved assets
//     are allowed; anything else is resolved. Local content is returned
//     inline, hosted content is evaluated again as a public URL
//  3. curated partition, public URL that is not companion-approved: denied
//  4. open partition, private scheme: denied
//  5. blocklist
//
// Malformed URLs are neither blocked nor private; they fall through the
// mode checks and are allowed in the open partition with ReasonMalformedURL.
package interceptor
