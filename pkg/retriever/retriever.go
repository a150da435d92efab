package retriever

import (
	"fmt"
	"math"

	"github.com/oguzatay/gundem/internal/models"
	"github.com/oguzatay/gundem/internal/types"
	"github.com/oguzatay/gundem/pkg/index"
)

type Config struct {
	K      int     // result size
	FetchK int     // candidate pool size fetched from the index
	Lambda float64 // relevance/diversity trade-off, 1 = pure relevance
}

// Retriever selects a relevant, non-redundant subset of chunks for a
// query using maximal marginal relevance over the index's nearest
// neighbors.
type Retriever struct {
	index  types.Searcher
	config Config
}

func NewWithConfig(idx types.Searcher, config Config) (*Retriever, error) {
	if config.K == 0 {
		config.K = 10
	}
	if config.FetchK == 0 {
		config.FetchK = 30
	}
	if config.K < 0 {
		return nil, fmt.Errorf("k must be non-negative, got %d", config.K)
	}
	if config.FetchK < config.K {
		return nil, fmt.Errorf("fetch_k (%d) must be at least k (%d)", config.FetchK, config.K)
	}
	if config.Lambda < 0 || config.Lambda > 1 {
		return nil, fmt.Errorf("lambda must be between 0 and 1, got %g", config.Lambda)
	}

	return &Retriever{
		index:  idx,
		config: config,
	}, nil
}

// Retrieve returns up to K chunks in selection order.
func (r *Retriever) Retrieve(query []float32) ([]models.ScoredChunk, error) {
	candidates, err := r.index.Search(query, r.config.FetchK)
	if err != nil {
		return nil, err
	}
	return SelectMMR(candidates, r.config.K, r.config.Lambda), nil
}

// SelectMMR greedily builds a result of size k from candidates (ordered
// by descending query similarity), at each step picking the candidate
// maximizing
//
//	lambda*sim(q,c) - (1-lambda)*max over selected s of sim(c,s)
//
// The redundancy term is 0 while nothing is selected, so the first pick
// is the most similar candidate. Ties go to the larger raw query
// similarity, then to the earlier candidate. Results keep selection
// order; they are not re-sorted by raw similarity.
func SelectMMR(candidates []models.ScoredChunk, k int, lambda float64) []models.ScoredChunk {
	if k <= 0 || len(candidates) == 0 {
		return nil
	}
	if k > len(candidates) {
		k = len(candidates)
	}

	selected := make([]models.ScoredChunk, 0, k)
	chosen := make([]bool, len(candidates))

	for len(selected) < k {
		best := -1
		var bestScore, bestSim float64

		for i, c := range candidates {
			if chosen[i] {
				continue
			}

			sim := float64(c.Score)
			redundancy := 0.0
			if len(selected) > 0 {
				redundancy = math.Inf(-1)
				for _, s := range selected {
					if r := float64(index.Cosine(c.Vector, s.Vector)); r > redundancy {
						redundancy = r
					}
				}
			}

			score := lambda*sim - (1-lambda)*redundancy
			if best == -1 || score > bestScore || (score == bestScore && sim > bestSim) {
				best = i
				bestScore = score
				bestSim = sim
			}
		}

		chosen[best] = true
		selected = append(selected, candidates[best])
	}

	return selected
}
