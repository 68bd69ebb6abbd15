/*
Package policy is the navigation policy engine.

Engine ties the mode registry, blocklist, private address resolver, request
interceptor and session coordinator together behind the calls a browser
shell makes:

	OnBeforeRequest        decide a request issued into a partition
	Navigate               expand address-bar input and decide it
	OnModeToggleRequested  move to a tab of the other mode
	OnNavigationCommitted  record a committed URL and its display form

Decisions within one partition are serialized so block events keep their
order. Denied top-level navigations, mode changes and rule reloads are
published on an events.Bus.
*/
package policy
