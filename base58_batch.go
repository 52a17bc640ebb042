package main

import (
	"context"
	"strings"

	"github.com/remeh/sizedwaitgroup"
)

type base58BatchRequest struct {
	Mode        string   `json:"mode"`
	InputFormat string   `json:"input_format,omitempty"`
	Inputs      []string `json:"inputs"`
}

type base58BatchResponse struct {
	Mode    string           `json:"mode"`
	Results []base58Response `json:"results"`
}

// runBase58Batch runs every input through the Base58 tool with at most
// workers goroutines. Results keep input order and per-item failures are
// reported in the item's Error field, including items over maxInput bytes.
// Only an unknown mode or a cancelled ctx fails the whole batch.
func runBase58Batch(ctx context.Context, req base58BatchRequest, workers, maxInput int) (base58BatchResponse, error) {
	mode := strings.ToLower(strings.TrimSpace(req.Mode))
	if mode == "" {
		mode = modeEncode
	}
	if mode != modeEncode && mode != modeDecode {
		return base58BatchResponse{}, errUnknownMode
	}
	if workers <= 0 {
		workers = 1
	}

	results := make([]base58Response, len(req.Inputs))
	swg := sizedwaitgroup.New(workers)
	for i, in := range req.Inputs {
		if err := ctx.Err(); err != nil {
			swg.Wait()
			return base58BatchResponse{}, err
		}
		if err := swg.AddWithContext(ctx); err != nil {
			swg.Wait()
			return base58BatchResponse{}, err
		}
		go func(i int, in string) {
			defer swg.Done()
			results[i], _ = runBase58Request(mode, in, req.InputFormat, maxInput)
		}(i, in)
	}
	swg.Wait()
	return base58BatchResponse{Mode: mode, Results: results}, nil
}
