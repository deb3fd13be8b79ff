// Package classify maps free-text topics onto the configured topic clusters.
package classify

import (
	"strings"

	"github.com/jonathan/article-engine/internal/types"
)

// Classifier matches topics against an injected cluster registry.
// Classification is a pure function over the registry; registration order is
// the tie-break when a topic matches several clusters.
type Classifier struct {
	clusters []types.TopicCluster
}

// New creates a Classifier over the given cluster table
func New(clusters []types.TopicCluster) *Classifier {
	return &Classifier{clusters: clusters}
}

// Classify returns the first cluster whose primary or secondary keywords
// appear as a substring of the lower-cased topic, or nil when no cluster
// matches. Topics without a cluster are still valid research requests; they
// just cannot use the cluster cache tier.
func (c *Classifier) Classify(topic string) *types.ClusterMatch {
	lowered := strings.ToLower(topic)
	if strings.TrimSpace(lowered) == "" {
		return nil
	}

	for i := range c.clusters {
		cluster := &c.clusters[i]
		for _, kw := range cluster.PrimaryKeywords {
			if kw != "" && strings.Contains(lowered, strings.ToLower(kw)) {
				return &types.ClusterMatch{Cluster: cluster, MatchedKeyword: kw}
			}
		}
		for _, kw := range cluster.SecondaryKeywords {
			if kw != "" && strings.Contains(lowered, strings.ToLower(kw)) {
				return &types.ClusterMatch{Cluster: cluster, MatchedKeyword: kw}
			}
		}
	}

	return nil
}

// Clusters returns the registered cluster table
func (c *Classifier) Clusters() []types.TopicCluster {
	return c.clusters
}
