package model

import (
	"encoding/json"
	"sort"
	"strings"
)

// PersonCluster collects everything believed to denote one person across a batch of emails.
// Create it with NewPersonCluster; the canonical name is set once by the first AddName.
type PersonCluster struct {
	id             string
	emailAddresses map[string]struct{}
	names          map[string]struct{}
	canonicalName  string
	mentions       []Mention
}

// NewPersonCluster creates an empty cluster with the given id
func NewPersonCluster(id string) *PersonCluster {
	return &PersonCluster{
		id:             id,
		emailAddresses: map[string]struct{}{},
		names:          map[string]struct{}{},
	}
}

// ID returns the cluster id
func (c *PersonCluster) ID() string {
	return c.id
}

// CanonicalName returns the first name ever added, or "" if there is none
func (c *PersonCluster) CanonicalName() string {
	return c.canonicalName
}

// EmailAddresses returns the lower-cased addresses, sorted
func (c *PersonCluster) EmailAddresses() []string {
	return sortedKeys(c.emailAddresses)
}

// Names returns the trimmed raw names, sorted
func (c *PersonCluster) Names() []string {
	return sortedKeys(c.names)
}

// Mentions returns a copy of the mentions in the order they were added
func (c *PersonCluster) Mentions() []Mention {
	mentions := make([]Mention, len(c.mentions))
	copy(mentions, c.mentions)
	return mentions
}

// HasEmailAddress reports whether the (case-insensitive) address belongs to the cluster
func (c *PersonCluster) HasEmailAddress(address string) bool {
	_, ok := c.emailAddresses[strings.ToLower(strings.TrimSpace(address))]
	return ok
}

// HasName reports whether the trimmed name was added to the cluster
func (c *PersonCluster) HasName(name string) bool {
	_, ok := c.names[strings.TrimSpace(name)]
	return ok
}

// AddEmailAddress adds the lower-cased address. Blank addresses are ignored.
func (c *PersonCluster) AddEmailAddress(address string) {
	address = strings.TrimSpace(address)
	if address == "" {
		return
	}
	c.emailAddresses[strings.ToLower(address)] = struct{}{}
}

// AddName adds the trimmed name, keeping its case. Blank names are ignored.
func (c *PersonCluster) AddName(name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}
	c.names[name] = struct{}{}
	if c.canonicalName == "" {
		c.canonicalName = name
	}
}

// AddMention appends a mention
func (c *PersonCluster) AddMention(mention Mention) {
	c.mentions = append(c.mentions, mention)
}

type personClusterJSON struct {
	ClusterID      string    `json:"cluster_id"`
	CanonicalName  string    `json:"canonical_name"`
	EmailAddresses []string  `json:"email_addresses"`
	Names          []string  `json:"names"`
	Mentions       []Mention `json:"mentions"`
}

// MarshalJSON implements json.Marshaler
func (c *PersonCluster) MarshalJSON() ([]byte, error) {
	return json.Marshal(personClusterJSON{
		ClusterID:      c.id,
		CanonicalName:  c.canonicalName,
		EmailAddresses: c.EmailAddresses(),
		Names:          c.Names(),
		Mentions:       c.Mentions(),
	})
}

func (c *PersonCluster) String() string {
	return "PersonCluster{id=" + c.id +
		", emailAddresses=[" + strings.Join(c.EmailAddresses(), ", ") +
		"], names=[" + strings.Join(c.Names(), ", ") + "]}"
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
