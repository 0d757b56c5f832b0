package services

import (
	"log"
	"strings"
)

// skipped records a mutation whose ids matched nothing. The call is still
// a no-op for the caller; this only leaves a trace.
func skipped(collection, op string, ids ...string) {
	missedMutations.WithLabelValues(collection, op).Inc()
	log.Printf("%s: %s skipped, no record matched id(s) %s", collection, op, strings.Join(ids, ", "))
}

func mutated(collection, op string, n int) {
	recordMutations.WithLabelValues(collection, op).Add(float64(n))
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
