/*
Package tracing tags control API requests with trace and span IDs.

Each request gets a span named after its route. IDs travel in the
X-Trace-ID and X-Span-ID headers and are echoed back on the response, so a
browser shell can correlate a denied navigation with the server log line
that produced it. Finished spans are logged through zap from a buffered
collector.

# Usage

	tracer := tracing.New(logger.Component("tracing"))
	defer tracer.Close()

	router.Use(tracing.HTTPMiddleware(tracer))

	// inside a handler
	log.Info("tab created", tracing.Fields(c.Request.Context())...)
*/
package tracing
