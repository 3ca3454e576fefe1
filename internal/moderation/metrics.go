package moderation

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var messagesEvaluated = promauto.NewCounter(prometheus.CounterOpts{
	Name: "castellan_messages_evaluated_total",
	Help: "Number of messages run through the scoring pipeline.",
})

var messagesSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "castellan_messages_skipped_total",
	Help: "Messages short-circuited before scoring, by bypass reason.",
}, []string{"reason"})

var actionsTaken = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "castellan_actions_total",
	Help: "Moderation actions issued, by action tag.",
}, []string{"action"})

var storeDegraded = promauto.NewCounter(prometheus.CounterOpts{
	Name: "castellan_store_degraded_total",
	Help: "State store calls that failed and fell back to safe defaults.",
})
