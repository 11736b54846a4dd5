package core

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	familyCommits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shadow_family_commits_total",
		Help: "States committed into a family",
	})

	nodeMounts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shadow_node_mounts_total",
		Help: "Node revisions transitioned to mounted",
	})

	stateProposals = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shadow_state_proposals_total",
		Help: "States proposed locally on a node",
	})
)
