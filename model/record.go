package model

import (
	"time"

	"github.com/google/uuid"
)

// ClusterRecord is a person cluster as exported to the database for one run
type ClusterRecord struct {
	ID             int64     `json:"id"`
	RID            uuid.UUID `json:"rid"`
	RunID          uuid.UUID `json:"run_id"`
	ClusterID      string    `json:"cluster_id"`
	CanonicalName  string    `json:"canonical_name"`
	EmailAddresses []string  `json:"email_addresses"`
	Names          []string  `json:"names"`
	Mentions       []Mention `json:"mentions"`
	Metadata       Metadata  `json:"metadata,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// NewClusterRecord converts a resolved cluster into its exported form
func NewClusterRecord(runID uuid.UUID, cluster *PersonCluster) *ClusterRecord {
	mentions := cluster.Mentions()
	emails := map[string]struct{}{}
	for _, m := range mentions {
		emails[m.EmailID] = struct{}{}
	}

	return &ClusterRecord{
		RID:            uuid.New(),
		RunID:          runID,
		ClusterID:      cluster.ID(),
		CanonicalName:  cluster.CanonicalName(),
		EmailAddresses: cluster.EmailAddresses(),
		Names:          cluster.Names(),
		Mentions:       mentions,
		Metadata: Metadata{
			"mention_count":       len(mentions),
			"mentioned_in_emails": len(emails),
			"name_only":           len(cluster.EmailAddresses()) == 0,
		},
	}
}
