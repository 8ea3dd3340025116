package chain

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/baseswapfi/sor/domain"
	"github.com/baseswapfi/sor/domain/mvc"
	"github.com/baseswapfi/sor/domain/slices"
)

// CallManyChunked splits calls into chunks of at most chunkSize and executes
// them concurrently. Results are aligned with calls. Returns the highest block
// number reported by any chunk.
// Any chunk failing fails the whole set.
func CallManyChunked(ctx context.Context, multicall mvc.MulticallProvider, calls []domain.Call, chunkSize int, blockNumber *uint64) (uint64, []domain.CallResult, error) {
	if len(calls) == 0 {
		return 0, nil, nil
	}
	if chunkSize <= 0 {
		chunkSize = len(calls)
	}

	chunks := slices.Split(calls, chunkSize)
	chunkResults := make([][]domain.CallResult, len(chunks))
	blockNumbers := make([]uint64, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	for i, chunk := range chunks {
		i, chunk := i, chunk

		g.Go(func() error {
			blockNum, results, err := multicall.CallMany(gctx, chunk, blockNumber)
			if err != nil {
				return err
			}
			if len(results) != len(chunk) {
				return fmt.Errorf("multicall returned %d results for %d calls", len(results), len(chunk))
			}
			chunkResults[i] = results
			blockNumbers[i] = blockNum
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return 0, nil, err
	}

	results := make([]domain.CallResult, 0, len(calls))
	for _, chunk := range chunkResults {
		results = append(results, chunk...)
	}

	maxBlock := uint64(0)
	for _, b := range blockNumbers {
		maxBlock = max(maxBlock, b)
	}

	return maxBlock, results, nil
}
