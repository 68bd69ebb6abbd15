/*
Package monitoring provides Prometheus metrics for the policy engine.

# Overview

Metrics cover the control API, every interceptor decision, blocklist
matches, private address resolutions, rule reloads, tabs per mode and the
outbound event stream.

# Usage

	metrics := monitoring.NewMetrics(prometheus.DefaultRegisterer)
	router.Use(monitoring.Middleware(metrics))

	timer := monitoring.NewTimer()
	decision := interceptor.Evaluate(req)
	metrics.RecordDecision(string(req.Partition.ID), decision.Outcome.String(),
		string(decision.Reason), timer.Elapsed())

# Metrics Endpoint

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
*/
package monitoring
