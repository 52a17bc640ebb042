package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

// TestRunBase58BatchKeepsOrder verifies results line up with inputs even
// when several workers finish out of order.
func TestRunBase58BatchKeepsOrder(t *testing.T) {
	inputs := make([]string, 100)
	for i := range inputs {
		inputs[i] = fmt.Sprintf("item-%03d", i)
	}
	resp, err := runBase58Batch(context.Background(), base58BatchRequest{Inputs: inputs}, 8, 0)
	if err != nil {
		t.Fatalf("runBase58Batch error: %v", err)
	}
	if resp.Mode != modeEncode || len(resp.Results) != len(inputs) {
		t.Fatalf("mode=%q results=%d", resp.Mode, len(resp.Results))
	}
	for i, r := range resp.Results {
		if want := encodeText(inputs[i]); r.Output != want {
			t.Fatalf("result %d = %q, want %q", i, r.Output, want)
		}
	}
}

func TestRunBase58BatchPerItemErrors(t *testing.T) {
	req := base58BatchRequest{Mode: "Decode", Inputs: []string{"9Ajdvzr", "0bad", ""}}
	resp, err := runBase58Batch(context.Background(), req, 2, 0)
	if err != nil {
		t.Fatalf("runBase58Batch error: %v", err)
	}
	if resp.Results[0].Output != "Hello" || resp.Results[0].Error != "" {
		t.Fatalf("item 0 = %+v", resp.Results[0])
	}
	if resp.Results[1].Error == "" {
		t.Fatalf("item 1 should carry a decode error")
	}
	if resp.Results[2].Error != "" || resp.Results[2].Output != "" {
		t.Fatalf("item 2 = %+v, want empty output", resp.Results[2])
	}
}

func TestRunBase58BatchRejectsMode(t *testing.T) {
	_, err := runBase58Batch(context.Background(), base58BatchRequest{Mode: "hash"}, 1, 0)
	if !errors.Is(err, errUnknownMode) {
		t.Fatalf("err = %v, want errUnknownMode", err)
	}
}

func TestRunBase58BatchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := runBase58Batch(ctx, base58BatchRequest{Inputs: []string{"a", "b"}}, 1, 0)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

// TestRunBase58BatchInputCap verifies an oversized item fails on its own and
// the rest of the batch still runs.
func TestRunBase58BatchInputCap(t *testing.T) {
	req := base58BatchRequest{Mode: "encode", Inputs: []string{"Hello", strings.Repeat("x", 33)}}
	resp, err := runBase58Batch(context.Background(), req, 2, 32)
	if err != nil {
		t.Fatalf("runBase58Batch error: %v", err)
	}
	if resp.Results[0].Output != "9Ajdvzr" {
		t.Fatalf("item 0 = %+v", resp.Results[0])
	}
	if !strings.Contains(resp.Results[1].Error, "input too large") || resp.Results[1].Output != "" {
		t.Fatalf("item 1 = %+v, want input too large", resp.Results[1])
	}
}
