// Package resolver assigns email senders and coreference mentions to person clusters.
//
// A Resolver holds the state of one batch: the address and name-key indices
// and every cluster created so far. Use a fresh Resolver for every batch.
// Resolution is single-threaded; a Resolver must not be used concurrently.
package resolver

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/siherrmann/mailcoref/core/naming"
	"github.com/siherrmann/mailcoref/model"
)

// Resolver builds, looks up and grows person clusters for one batch of emails
type Resolver struct {
	byEmail   map[string]*model.PersonCluster
	byNameKey map[string]*model.PersonCluster
	clusters  []*model.PersonCluster
	nextID    int
	merge     MergeFunc
	log       *slog.Logger
}

// Option configures a Resolver
type Option func(*Resolver)

// WithLogger sets the logger, the default discards everything
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.log = logger
		}
	}
}

// WithMergeFunc replaces the merge stage, the default keeps clusters unchanged
func WithMergeFunc(merge MergeFunc) Option {
	return func(r *Resolver) {
		if merge != nil {
			r.merge = merge
		}
	}
}

// New creates an empty Resolver
func New(opts ...Option) *Resolver {
	r := &Resolver{
		byEmail:   map[string]*model.PersonCluster{},
		byNameKey: map[string]*model.PersonCluster{},
		nextID:    1,
		merge:     KeepClusters,
		log:       slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ResolveBatch resolves emails with a fresh Resolver
func ResolveBatch(emails []*model.EmailWithMentions, opts ...Option) []*model.PersonCluster {
	return New(opts...).Resolve(emails)
}

// Resolve seeds sender clusters, assigns all mentions and runs the merge stage.
// It returns every cluster in creation order.
func (r *Resolver) Resolve(emails []*model.EmailWithMentions) []*model.PersonCluster {
	r.SeedSenders(emails)
	r.AssignMentions(emails)
	r.MergeClusters()

	r.log.Info("Resolved person clusters",
		slog.Int("emails", len(emails)),
		slog.Int("clusters", len(r.clusters)),
		slog.Int("addresses", len(r.byEmail)),
		slog.Int("name_keys", len(r.byNameKey)),
	)

	return r.Clusters()
}

// Clusters returns every cluster created so far, each once, in creation order
func (r *Resolver) Clusters() []*model.PersonCluster {
	clusters := make([]*model.PersonCluster, len(r.clusters))
	copy(clusters, r.clusters)
	return clusters
}

// ClusterByEmail returns the cluster currently owning the address
func (r *Resolver) ClusterByEmail(address string) (*model.PersonCluster, bool) {
	key, ok := naming.NormalizeEmailAddress(address)
	if !ok {
		return nil, false
	}
	cluster, ok := r.byEmail[key]
	return cluster, ok
}

// ClusterByName returns the cluster that first claimed the name's key
func (r *Resolver) ClusterByName(name string) (*model.PersonCluster, bool) {
	key := naming.NormalizeNameKey(name)
	if key == "" {
		return nil, false
	}
	cluster, ok := r.byNameKey[key]
	return cluster, ok
}

// SeedSenders makes sure the sender of every email has a cluster, in batch order.
//
// A sender is found by address first, then by name key, and otherwise gets a
// new cluster. The address is then mapped to that cluster, replacing any
// earlier owner in the index (the earlier cluster keeps it in its own set).
// The name key is only claimed if no cluster claimed it before.
func (r *Resolver) SeedSenders(emails []*model.EmailWithMentions) {
	for _, e := range emails {
		if e == nil || e.Email == nil {
			continue
		}
		r.seedSender(e.Email)
	}

	r.log.Debug("Seeded sender clusters", slog.Int("clusters", len(r.clusters)))
}

func (r *Resolver) seedSender(email *model.EmailMessage) {
	address, hasAddress := naming.NormalizeEmailAddress(email.FromEmail)
	name := strings.TrimSpace(email.FromName)
	hasName := name != ""
	nameKey := naming.NormalizeNameKey(name)

	if !hasAddress && !hasName {
		return
	}

	var cluster *model.PersonCluster
	if hasAddress {
		cluster = r.byEmail[address]
	}
	if cluster == nil && nameKey != "" {
		cluster = r.byNameKey[nameKey]
	}
	if cluster == nil {
		cluster = r.newCluster()
	}

	if hasAddress {
		if previous, ok := r.byEmail[address]; ok && previous != cluster {
			r.log.Debug("Address moved to another cluster",
				slog.String("address", address),
				slog.String("from", previous.ID()),
				slog.String("to", cluster.ID()),
			)
		}
		r.byEmail[address] = cluster
		cluster.AddEmailAddress(address)
	}

	if hasName {
		r.claimNameKey(nameKey, cluster)
		cluster.AddName(name)
	}
}

// AssignMentions adds every non-blank mention to a cluster, email by email.
//
// A mention goes to the sender's cluster if it matches the sender's display
// name, else to the cluster that claimed its name key, else to any cluster
// with a matching known name, else to a new name-only cluster.
func (r *Resolver) AssignMentions(emails []*model.EmailWithMentions) {
	for _, e := range emails {
		if e == nil {
			continue
		}
		r.assignEmailMentions(e)
	}
}

func (r *Resolver) assignEmailMentions(e *model.EmailWithMentions) {
	var senderCluster *model.PersonCluster
	var senderName string
	if e.Email != nil {
		senderName = e.Email.FromName
		if address, ok := naming.NormalizeEmailAddress(e.Email.FromEmail); ok {
			senderCluster = r.byEmail[address]
		}
	}

	for _, mention := range e.Mentions {
		if strings.TrimSpace(mention.Text) == "" {
			continue
		}

		var cluster *model.PersonCluster
		if senderCluster != nil && naming.NamesMatch(mention.Text, senderName) {
			cluster = senderCluster
		}
		if cluster == nil {
			cluster = r.findClusterByMentionName(mention.Text)
		}
		if cluster == nil {
			cluster = r.newCluster()
			r.claimNameKey(naming.NormalizeNameKey(mention.Text), cluster)
			cluster.AddName(mention.Text)
		}

		cluster.AddMention(mention)
	}
}

// findClusterByMentionName looks the mention's key up in the name index and
// otherwise scans the known names of every indexed cluster.
//
// The scan walks Go maps, so when several clusters match, which one wins is
// unspecified and may differ between runs.
func (r *Resolver) findClusterByMentionName(mentionText string) *model.PersonCluster {
	if key := naming.NormalizeNameKey(mentionText); key != "" {
		if cluster, ok := r.byNameKey[key]; ok {
			return cluster
		}
	}

	for _, cluster := range r.byEmail {
		if clusterMatches(cluster, mentionText) {
			return cluster
		}
	}

	for _, cluster := range r.byNameKey {
		if clusterMatches(cluster, mentionText) {
			return cluster
		}
	}

	return nil
}

func clusterMatches(cluster *model.PersonCluster, mentionText string) bool {
	for _, name := range cluster.Names() {
		if naming.NamesMatch(mentionText, name) {
			return true
		}
	}
	return false
}

// claimNameKey maps key to cluster unless another cluster claimed it first.
// Empty keys are never claimed.
func (r *Resolver) claimNameKey(key string, cluster *model.PersonCluster) {
	if key == "" {
		return
	}
	if _, ok := r.byNameKey[key]; ok {
		return
	}
	r.byNameKey[key] = cluster
}

func (r *Resolver) newCluster() *model.PersonCluster {
	cluster := model.NewPersonCluster(fmt.Sprintf("P%d", r.nextID))
	r.nextID++
	r.clusters = append(r.clusters, cluster)

	r.log.Debug("Created person cluster", slog.String("cluster_id", cluster.ID()))

	return cluster
}
