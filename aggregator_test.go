package flywheel_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/karupanerura/flywheel"
	"github.com/karupanerura/flywheel/backend"
)

// concatProviders builds two providers that both know the key "k1", for
// exercising fan-out and merging.
func concatProviders() map[string]flywheel.DataProvider[string, []int] {
	return map[string]flywheel.DataProvider[string, []int]{
		"a": flywheel.NewKeyProvider[string, []int](backend.Static[string, []int]{"k1": {1, 2}}),
		"b": flywheel.NewKeyProvider[string, []int](backend.Static[string, []int]{"k1": {3}}),
	}
}

// concat merges per-provider results by concatenation, in provider-key
// order.
func concat(_ string, results map[string][]int) ([]int, error) {
	var merged []int
	merged = append(merged, results["a"]...)
	merged = append(merged, results["b"]...)
	return merged, nil
}

func TestAggregator_FanOut(t *testing.T) {
	t.Parallel()

	aggregator := flywheel.NewAggregator(concatProviders, concat)

	if err := aggregator.Register("k1"); err != nil {
		t.Fatal(err)
	}

	got, err := aggregator.Get(t.Context(), "k1")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]int{1, 2, 3}, got); diff != "" {
		t.Errorf("unexpected merged result (-want +got):\n%s", diff)
	}
}

func TestAggregator_Routing(t *testing.T) {
	t.Parallel()

	countingA := &countingBackend[string, []int]{backend: backend.Static[string, []int]{"k1": {1, 2}}}
	countingB := &countingBackend[string, []int]{backend: backend.Static[string, []int]{"k1": {3}}}

	aggregator := flywheel.NewAggregator(
		func() map[string]flywheel.DataProvider[string, []int] {
			return map[string]flywheel.DataProvider[string, []int]{
				"a": flywheel.NewKeyProvider[string, []int](countingA),
				"b": flywheel.NewKeyProvider[string, []int](countingB),
			}
		},
		concat,
		// Every value routes to provider "a" only.
		flywheel.WithRoutingKeys[string, string, []int](func(_ string) []string {
			return []string{"a"}
		}),
	)

	if err := aggregator.Register("k1"); err != nil {
		t.Fatal(err)
	}

	got, err := aggregator.Get(t.Context(), "k1")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]int{1, 2}, got); diff != "" {
		t.Errorf("unexpected merged result (-want +got):\n%s", diff)
	}

	// Only the provider the value routed to was registered or queried.
	if len(countingA.batches) != 1 {
		t.Errorf("expected a single fetch on provider a, got %d", len(countingA.batches))
	}
	if len(countingB.batches) != 0 {
		t.Errorf("expected no fetch on provider b, got %d", len(countingB.batches))
	}
}

func TestAggregator_MissingProvider(t *testing.T) {
	t.Parallel()

	aggregator := flywheel.NewAggregator(
		concatProviders,
		concat,
		flywheel.WithRoutingKeys[string, string, []int](func(_ string) []string {
			return []string{"nope"}
		}),
	)

	var missing *flywheel.MissingProviderError
	if err := aggregator.Register("k1"); !errors.As(err, &missing) {
		t.Fatalf("expected MissingProviderError from Register, got %v", err)
	}
	if missing.RoutingKey != "nope" {
		t.Errorf("unexpected routing key: %v", missing.RoutingKey)
	}

	if _, err := aggregator.Get(t.Context(), "k1"); !errors.As(err, &missing) {
		t.Fatalf("expected MissingProviderError from Get, got %v", err)
	}
}

func TestAggregator_LazyProviders(t *testing.T) {
	t.Parallel()

	var factoryCalls int
	aggregator := flywheel.NewAggregator(
		func() map[string]flywheel.DataProvider[string, []int] {
			factoryCalls++
			return concatProviders()
		},
		concat,
	)

	// The provider map is not built until first use.
	if factoryCalls != 0 {
		t.Fatalf("expected no factory calls before first use, got %d", factoryCalls)
	}

	if err := aggregator.Register("k1"); err != nil {
		t.Fatal(err)
	}
	if _, err := aggregator.Get(t.Context(), "k1"); err != nil {
		t.Fatal(err)
	}
	if _, err := aggregator.Get(t.Context(), "k1"); err != nil {
		t.Fatal(err)
	}

	if factoryCalls != 1 {
		t.Errorf("expected a single factory call, got %d", factoryCalls)
	}
}
