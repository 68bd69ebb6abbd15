/*
Package session coordinates tabs across browsing modes.

Every tab is bound to exactly one partition for its whole life, and each mode
has exactly one partition shared by all of its tabs. Switching modes never
rebinds a tab. The coordinator moves the user to another tab instead, reusing
the most recently active tab of the target mode or opening a new one at that
mode's home address. The previous tab stays open and dormant.

Dispatch returns the partition snapshot a request runs under, so a request is
always evaluated against the mode of the tab that issued it.
*/
package session
