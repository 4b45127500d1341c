package flywheel_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/karupanerura/flywheel"
	"github.com/karupanerura/flywheel/backend"
)

type record struct {
	Region string
	ID     string
}

// regionBackends simulates one backing store per region.
var regionBackends = map[string]backend.Static[string, string]{
	"east": {"e1": "Henry", "e2": "Marcus"},
	"west": {"w1": "René"},
}

func newRegionDelegate(created map[string]int) *flywheel.Delegate[record, string, string] {
	return flywheel.NewDelegate(
		func(r record) string { return r.Region },
		func(region string) (flywheel.DataProvider[record, string], error) {
			fixture, ok := regionBackends[region]
			if !ok {
				return nil, fmt.Errorf("unknown region %q", region)
			}
			if created != nil {
				created[region]++
			}
			return flywheel.NewProvider[record, string, string](
				fixture,
				func(r record) (string, bool) { return r.ID, true },
			), nil
		},
	)
}

func TestDelegate_Isolation(t *testing.T) {
	t.Parallel()

	delegate := newRegionDelegate(nil)

	if err := delegate.Register(record{Region: "east", ID: "e1"}); err != nil {
		t.Fatal(err)
	}

	if got, err := delegate.Get(t.Context(), record{Region: "east", ID: "e1"}); err != nil || got != "Henry" {
		t.Errorf("unexpected result: %q, %v", got, err)
	}

	// Registering under "east" never populates the "west" sub-provider.
	var unregistered *flywheel.UnregisteredKeyError
	if _, err := delegate.Get(t.Context(), record{Region: "west", ID: "w1"}); !errors.As(err, &unregistered) {
		t.Fatalf("expected UnregisteredKeyError, got %v", err)
	}

	if err := delegate.Register(record{Region: "west", ID: "w1"}); err != nil {
		t.Fatal(err)
	}
	if got, err := delegate.Get(t.Context(), record{Region: "west", ID: "w1"}); err != nil || got != "René" {
		t.Errorf("unexpected result: %q, %v", got, err)
	}
}

func TestDelegate_FactoryMemoized(t *testing.T) {
	t.Parallel()

	created := map[string]int{}
	delegate := newRegionDelegate(created)

	values := []record{
		{Region: "east", ID: "e1"},
		{Region: "east", ID: "e2"},
		{Region: "west", ID: "w1"},
	}
	if err := delegate.Register(values...); err != nil {
		t.Fatal(err)
	}
	for _, v := range values {
		if _, err := delegate.Get(t.Context(), v); err != nil {
			t.Fatal(err)
		}
	}

	for region, count := range created {
		if count != 1 {
			t.Errorf("expected one sub-provider for region %q, got %d", region, count)
		}
	}
}

func TestDelegate_InvalidKey(t *testing.T) {
	t.Parallel()

	delegate := newRegionDelegate(nil)

	if err := delegate.Register(record{Region: "north", ID: "n1"}); err == nil {
		t.Error("expected an error from Register for an invalid delegate key")
	}
	if _, err := delegate.Get(t.Context(), record{Region: "north", ID: "n1"}); err == nil {
		t.Error("expected an error from Get for an invalid delegate key")
	}
}

func TestMutableDelegate_Set(t *testing.T) {
	t.Parallel()

	delegate := flywheel.NewMutableDelegate(
		func(r record) string { return r.Region },
		func(region string) (flywheel.DataProvider[record, string], error) {
			fixture, ok := regionBackends[region]
			if !ok {
				return nil, fmt.Errorf("unknown region %q", region)
			}
			return flywheel.NewMutableProvider(flywheel.NewProvider[record, string, string](
				fixture,
				func(r record) (string, bool) { return r.ID, true },
			)), nil
		},
	)

	if err := delegate.Set(record{Region: "east", ID: "e9"}, "Sallah"); err != nil {
		t.Fatal(err)
	}
	if got, err := delegate.Get(t.Context(), record{Region: "east", ID: "e9"}); err != nil || got != "Sallah" {
		t.Errorf("unexpected result: %q, %v", got, err)
	}
}

func TestMutableDelegate_UnsupportedOverride(t *testing.T) {
	t.Parallel()

	delegate := flywheel.NewMutableDelegate(
		func(r record) string { return r.Region },
		func(region string) (flywheel.DataProvider[record, string], error) {
			fixture, ok := regionBackends[region]
			if !ok {
				return nil, fmt.Errorf("unknown region %q", region)
			}
			// Sub-providers without override support.
			return flywheel.NewProvider[record, string, string](
				fixture,
				func(r record) (string, bool) { return r.ID, true },
			), nil
		},
	)

	if err := delegate.Register(record{Region: "east", ID: "e1"}); err != nil {
		t.Fatal(err)
	}

	err := delegate.Set(record{Region: "east", ID: "e1"}, "Sallah")
	var unsupported *flywheel.UnsupportedOverrideError
	if !errors.As(err, &unsupported) {
		t.Fatalf("expected UnsupportedOverrideError, got %v", err)
	}
	if unsupported.DelegateKey != "east" {
		t.Errorf("unexpected delegate key: %v", unsupported.DelegateKey)
	}
	if v, ok := unsupported.Value.(record); !ok || v.ID != "e1" {
		t.Errorf("unexpected value: %v", unsupported.Value)
	}

	// The sub-provider's cache is unchanged: the lookup still loads the
	// backend value.
	if got, err := delegate.Get(t.Context(), record{Region: "east", ID: "e1"}); err != nil || got != "Henry" {
		t.Errorf("unexpected result: %q, %v", got, err)
	}

	// An invalid delegate key surfaces the factory error, not an
	// override error.
	if err := delegate.Set(record{Region: "north", ID: "n1"}, "Sallah"); err == nil || errors.As(err, &unsupported) {
		t.Errorf("expected the factory error, got %v", err)
	}
}
