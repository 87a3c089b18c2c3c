package resolver

import (
	"log/slog"

	"github.com/siherrmann/mailcoref/model"
)

// MergeFunc combines clusters that denote the same person.
// It receives every cluster in creation order and returns the clusters to keep.
type MergeFunc func(clusters []*model.PersonCluster) []*model.PersonCluster

// KeepClusters is the default merge stage. It merges nothing and returns its input.
func KeepClusters(clusters []*model.PersonCluster) []*model.PersonCluster {
	return clusters
}

// MergeClusters runs the merge stage over all clusters.
// The indices are rebuilt so lookups only return kept clusters.
func (r *Resolver) MergeClusters() {
	before := len(r.clusters)
	r.clusters = r.merge(r.Clusters())

	if len(r.clusters) != before {
		r.reindex()
	}

	r.log.Debug("Merged clusters", slog.Int("before", before), slog.Int("after", len(r.clusters)))
}

// reindex drops index entries pointing at clusters that are no longer kept
func (r *Resolver) reindex() {
	kept := make(map[*model.PersonCluster]struct{}, len(r.clusters))
	for _, c := range r.clusters {
		kept[c] = struct{}{}
	}

	for address, c := range r.byEmail {
		if _, ok := kept[c]; !ok {
			delete(r.byEmail, address)
		}
	}
	for key, c := range r.byNameKey {
		if _, ok := kept[c]; !ok {
			delete(r.byNameKey, key)
		}
	}
}
