package tools

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	toolCallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "redis_cloud_tool_calls_total",
		Help: "Tool invocations by tool name and outcome.",
	}, []string{"tool", "status"})

	planFallbacksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "redis_cloud_plan_fallbacks_total",
		Help: "Lookups that fell back to the other subscription plan family.",
	}, []string{"resource"})
)
