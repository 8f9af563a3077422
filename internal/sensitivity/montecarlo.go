package sensitivity

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distmv"

	"github.com/SuperKoro/Capstone-FUZZYAHP-INTERVALTOPSIS/internal/mcdm"
	"github.com/SuperKoro/Capstone-FUZZYAHP-INTERVALTOPSIS/internal/topsis"
)

const (
	DefaultIterations    = 1000
	DefaultConcentration = 0.05

	// chunkSize is the number of samples drawn from one seeded source.
	chunkSize = 100
)

// MonteCarloRequest perturbs all weights at once by drawing them from a
// Dirichlet distribution centred on the baseline with alpha = w/σ.
type MonteCarloRequest struct {
	Problem
	Iterations    int     `json:"iterations"`
	Concentration float64 `json:"concentration"`
	Seed          uint64  `json:"seed"`
}

// OrderFrequency is how often one full ordering was observed.
type OrderFrequency struct {
	Order []int `json:"order"`
	Count int   `json:"count"`
}

// RankDistribution is the spread of one alternative's rank over all draws.
type RankDistribution struct {
	Index    int     `json:"index"`
	MeanRank float64 `json:"mean_rank"`
	StdRank  float64 `json:"std_rank"`
	// Histogram[k] counts draws where the alternative ranked k+1.
	Histogram []int `json:"histogram"`
}

// Robustness is the outcome of a Monte Carlo run.
type Robustness struct {
	// Iterations counts the draws that produced a ranking.
	Iterations      int                `json:"iterations"`
	Degenerate      int                `json:"degenerate,omitempty"`
	MostCommonOrder []int              `json:"most_common_order"`
	Probability     float64            `json:"probability"`
	Orders          []OrderFrequency   `json:"orders"`
	Alternatives    []RankDistribution `json:"alternatives"`
}

type draw struct {
	order []int
	ranks []int
}

// MonteCarlo samples weight vectors and records the resulting orderings.
// Draws are split into fixed chunks seeded from Seed, so results do not
// depend on the worker count.
func MonteCarlo(ctx context.Context, req MonteCarloRequest, opts Options) (*Robustness, error) {
	if err := validateProblem(req.Problem, opts.Ranking); err != nil {
		return nil, err
	}
	if req.Iterations <= 0 {
		req.Iterations = DefaultIterations
	}
	if req.Concentration == 0 {
		req.Concentration = DefaultConcentration
	}
	if !mcdm.Finite(req.Concentration) || req.Concentration < 0 {
		return nil, mcdm.Invalid("concentration", "must be positive, got %g", req.Concentration)
	}
	alpha := make([]float64, len(req.Weights))
	for i, w := range req.Weights {
		if w <= 0 {
			return nil, mcdm.Invalid("weights", "entry %d is zero; Dirichlet sampling needs positive weights", i)
		}
		alpha[i] = w / req.Concentration
	}
	rows, _ := req.Ratings.Dims()

	draws := make([]draw, req.Iterations)
	chunks := (req.Iterations + chunkSize - 1) / chunkSize
	done := newTracker(opts.Progress, -1, chunks)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.workers())
	for c := 0; c < chunks; c++ {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			src := rand.NewPCG(req.Seed, uint64(c))
			dir := distmv.NewDirichlet(alpha, src)
			w := make([]float64, len(alpha))
			end := min((c+1)*chunkSize, req.Iterations)
			for i := c * chunkSize; i < end; i++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				dir.Rand(w)
				res, err := topsis.Rank(req.Ratings, w, req.Polarity, opts.Ranking)
				if errors.Is(err, mcdm.ErrDegenerate) {
					continue
				}
				if err != nil {
					return fmt.Errorf("draw %d: %w", i, err)
				}
				draws[i] = draw{order: res.Order, ranks: res.Ranks()}
			}
			done.step()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ranked := make([]draw, 0, len(draws))
	for _, d := range draws {
		if d.order != nil {
			ranked = append(ranked, d)
		}
	}
	if len(ranked) == 0 {
		return nil, mcdm.Degenerate("robustness", "no sampled weight vector distinguished the alternatives")
	}
	out := tally(ranked, rows)
	out.Degenerate = len(draws) - len(ranked)
	return out, nil
}

func tally(draws []draw, alternatives int) *Robustness {
	counts := make(map[string]*OrderFrequency)
	for _, d := range draws {
		key := orderKey(d.order)
		f, ok := counts[key]
		if !ok {
			f = &OrderFrequency{Order: slices.Clone(d.order)}
			counts[key] = f
		}
		f.Count++
	}
	orders := make([]OrderFrequency, 0, len(counts))
	for _, f := range counts {
		orders = append(orders, *f)
	}
	sort.Slice(orders, func(i, j int) bool {
		if orders[i].Count != orders[j].Count {
			return orders[i].Count > orders[j].Count
		}
		return slices.Compare(orders[i].Order, orders[j].Order) < 0
	})

	out := &Robustness{
		Iterations:      len(draws),
		MostCommonOrder: orders[0].Order,
		Probability:     float64(orders[0].Count) / float64(len(draws)),
		Orders:          orders,
		Alternatives:    make([]RankDistribution, alternatives),
	}

	ranks := make([]float64, len(draws))
	for a := 0; a < alternatives; a++ {
		hist := make([]int, alternatives)
		for k, d := range draws {
			ranks[k] = float64(d.ranks[a])
			hist[d.ranks[a]-1]++
		}
		mean, std := stat.PopMeanStdDev(ranks, nil)
		out.Alternatives[a] = RankDistribution{Index: a, MeanRank: mean, StdRank: std, Histogram: hist}
	}
	return out
}

func orderKey(order []int) string {
	parts := make([]string, len(order))
	for i, v := range order {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}
