package shadowtree

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	treeCommits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shadow_tree_commits_total",
		Help: "Tree commits by outcome",
	}, []string{"status"})

	commitAttempts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shadow_tree_commit_attempts_total",
		Help: "Optimistic commit attempts, including retries",
	})

	commitDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "shadow_tree_commit_duration_seconds",
		Help:    "Time from the start of a commit to its publication",
		Buckets: []float64{0.00001, 0.0001, 0.001, 0.01, 0.1},
	})
)
