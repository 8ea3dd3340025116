package usecase

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	sorhttp "github.com/baseswapfi/sor/delivery/http"
	"github.com/baseswapfi/sor/domain"
	"github.com/baseswapfi/sor/domain/json"
	"github.com/baseswapfi/sor/domain/mvc"
	"github.com/baseswapfi/sor/log"
	"github.com/baseswapfi/sor/sqsutil/datafetchers"
)

type candidatePoolProvider struct {
	fetcher datafetchers.MapFetcher[domain.Protocol, []domain.CandidatePool]
	logger  log.Logger
}

var _ mvc.CandidatePoolProvider = &candidatePoolProvider{}

// NewCandidatePoolProvider returns a provider serving the candidate pool list found at source,
// refreshed at the interval. source is either an http(s) URL or a file path.
func NewCandidatePoolProvider(source string, refreshInterval time.Duration, logger log.Logger) *candidatePoolProvider {
	updateFn := func(ctx context.Context) (map[domain.Protocol][]domain.CandidatePool, error) {
		candidates, err := loadCandidatePools(ctx, source)
		if err != nil {
			return nil, err
		}
		return GroupCandidatePools(candidates), nil
	}

	fetcher := datafetchers.NewMapFetcher(updateFn, refreshInterval,
		datafetchers.WithErrorHandler(func(err error) {
			logger.Error("failed to load candidate pools", zap.String("source", source), zap.Error(err))
		}),
	)

	return &candidatePoolProvider{
		fetcher: fetcher,
		logger:  logger,
	}
}

// NewCandidatePoolProviderFromFetcher returns a provider backed by the given fetcher.
func NewCandidatePoolProviderFromFetcher(fetcher datafetchers.MapFetcher[domain.Protocol, []domain.CandidatePool], logger log.Logger) mvc.CandidatePoolProvider {
	return &candidatePoolProvider{fetcher: fetcher, logger: logger}
}

// GetCandidatePools implements mvc.CandidatePoolProvider.
// Mixed routes draw from the union of the V2 and V3 candidates.
func (p *candidatePoolProvider) GetCandidatePools(ctx context.Context, protocol domain.Protocol) ([]domain.CandidatePool, error) {
	if protocol == domain.ProtocolMixed {
		v3, err := p.getByProtocol(domain.ProtocolV3)
		if err != nil {
			return nil, err
		}
		v2, err := p.getByProtocol(domain.ProtocolV2)
		if err != nil {
			return nil, err
		}

		result := make([]domain.CandidatePool, 0, len(v2)+len(v3))
		result = append(result, v3...)
		result = append(result, v2...)
		return result, nil
	}

	return p.getByProtocol(protocol)
}

// getByProtocol serves stale candidates with a warning. Pool state is always read
// fresh, so an old list only narrows the search.
func (p *candidatePoolProvider) getByProtocol(protocol domain.Protocol) ([]domain.CandidatePool, error) {
	candidates, lastFetched, stale, err := p.fetcher.GetByKey(protocol)
	if err != nil {
		return nil, fmt.Errorf("candidate pools for %s: %w", protocol, err)
	}
	if stale {
		p.logger.Warn("serving stale candidate pools", zap.Stringer("protocol", protocol), zap.Time("last_fetched", lastFetched))
	}
	return candidates, nil
}

// WaitUntilFirstResult blocks until the first candidate list was loaded or ctx is done.
func (p *candidatePoolProvider) WaitUntilFirstResult(ctx context.Context) error {
	f, ok := p.fetcher.(interface {
		WaitUntilFirstResult(ctx context.Context) error
	})
	if !ok {
		return nil
	}
	return f.WaitUntilFirstResult(ctx)
}

// Close stops refreshing the candidate list.
func (p *candidatePoolProvider) Close() {
	if f, ok := p.fetcher.(interface{ Close() }); ok {
		f.Close()
	}
}

// GroupCandidatePools groups candidates by protocol, each group sorted by liquidity descending
// with ties broken by address.
func GroupCandidatePools(candidates []domain.CandidatePool) map[domain.Protocol][]domain.CandidatePool {
	grouped := map[domain.Protocol][]domain.CandidatePool{
		domain.ProtocolV2: {},
		domain.ProtocolV3: {},
	}
	for _, c := range candidates {
		if c.Liquidity.IsNil() {
			continue
		}
		grouped[c.Protocol] = append(grouped[c.Protocol], c)
	}

	for _, group := range grouped {
		SortCandidatePools(group)
	}

	return grouped
}

// SortCandidatePools sorts by liquidity descending, then by address.
func SortCandidatePools(candidates []domain.CandidatePool) {
	sort.SliceStable(candidates, func(i, j int) bool {
		if !candidates[i].Liquidity.Equal(candidates[j].Liquidity) {
			return candidates[i].Liquidity.GT(candidates[j].Liquidity)
		}
		return strings.ToLower(candidates[i].Address.Hex()) < strings.ToLower(candidates[j].Address.Hex())
	})
}

func loadCandidatePools(ctx context.Context, source string) ([]domain.CandidatePool, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		candidates, err := sorhttp.GetJSON[[]domain.CandidatePool](ctx, source)
		if err != nil {
			return nil, err
		}
		return *candidates, nil
	}

	bz, err := os.ReadFile(source)
	if err != nil {
		return nil, err
	}

	var candidates []domain.CandidatePool
	if err := json.Unmarshal(bz, &candidates); err != nil {
		return nil, err
	}

	return candidates, nil
}
