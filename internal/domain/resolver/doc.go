/*
Package resolver maps private addresses to their content.

A private address lives in a custom namespace such as curated://home.curated.
Typed shorthand is expanded ("home" becomes "home.curated") and the address
is split into host, path and query before lookup.

Each registered Location serves either inline content (resolved locally,
with MIME type and title detected at registration) or a remote URL. A hosted
resolution returns a public URL; it is not a permission to load it, and the
caller must evaluate that URL like any other request.

ReverseIndex keeps the private form of an address available after the
rendering engine reports the public URL it actually loaded.

Registries load from a file, a directory of files and an optional remote
manifest fetched with retries behind a circuit breaker.
*/
package resolver
