/*
Package http is the JSON control API a browser shell uses to drive the
policy engine.

Routes:

	POST   /v1/requests/evaluate   decide a request for a partition
	POST   /v1/tabs                open a tab in a mode
	GET    /v1/tabs                list tabs
	DELETE /v1/tabs/:id            close a tab
	POST   /v1/tabs/:id/navigate   expand and decide address-bar input
	POST   /v1/tabs/:id/commit     record a committed URL
	GET    /v1/tabs/:id/display    address-bar text for a tab
	POST   /v1/tabs/:id/mode       switch to a tab of another mode
	GET    /v1/mode                current mode and companion set
	GET    /v1/resolve             resolve a private address
	POST   /v1/locations/reload    reload the location registry
	GET    /v1/blocklist           live rule set summary
	GET    /v1/blocklist/events    recent block events
	POST   /v1/blocklist/reload    reload rule files
	GET    /health                 service health

Errors are returned as {"error": "..."} with 400 for invalid input, 404 for
unknown tabs and 422 for unreadable rule files.
*/
package http
