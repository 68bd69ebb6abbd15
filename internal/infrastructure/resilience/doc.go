/*
Package resilience provides a circuit breaker for remote dependencies.

The policy engine only talks to the network when it fetches a remote
locations manifest. A manifest host that keeps failing trips the breaker so
reloads fall back to the local registry immediately instead of waiting on
retries every time.

# Usage

	breaker := resilience.New("locations-manifest", resilience.DefaultSettings())

	body, err := resilience.Call(ctx, breaker, func(ctx context.Context) ([]byte, error) {
		return fetch(ctx, url)
	})
	if errors.Is(err, resilience.ErrCircuitOpen) {
		// keep the last good registry
	}

# States

	Closed --[threshold failures]-> Open --[cooldown]-> Half-Open --[probes succeed]-> Closed
	                                                        |
	                                                    [failure]
	                                                        v
	                                                      Open
*/
package resilience
