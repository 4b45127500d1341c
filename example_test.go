package flywheel_test

import (
	"context"
	"fmt"

	"github.com/karupanerura/flywheel"
	"github.com/karupanerura/flywheel/backend"
)

func ExampleProvider() {
	// A bulk loader for user names; in a real-world use case this would
	// run a single database query or API call for all requested ids.
	var queries int
	loader := backend.MapFunc[int, int, string](func(_ context.Context, ids []int) (map[int]string, error) {
		queries++
		names := map[int]string{1: "alice", 2: "bob", 3: "charlie"}
		result := make(map[int]string, len(ids))
		for _, id := range ids {
			if name, ok := names[id]; ok {
				result[id] = name
			}
		}
		return result, nil
	})

	provider := flywheel.NewKeyProvider[int, string](loader)

	// Declare the full batch up front, then look items up one by one.
	if err := provider.Register(1, 2, 3); err != nil {
		panic(err)
	}
	for _, id := range []int{1, 2, 3} {
		name, err := provider.Get(context.Background(), id)
		if err != nil {
			panic(err)
		}
		fmt.Println(name)
	}
	fmt.Println("queries:", queries)
	// Output:
	// alice
	// bob
	// charlie
	// queries: 1
}

func ExampleMutableProvider() {
	provider := flywheel.NewMutableProvider(flywheel.NewKeyProvider[string, string](
		backend.Static[string, string]{"greeting": "hello"},
	))

	if err := provider.Register("greeting"); err != nil {
		panic(err)
	}

	// An override wins over whatever the backend would return.
	if err := provider.Set("greeting", "salut"); err != nil {
		panic(err)
	}
	if err := provider.WarmCache(context.Background()); err != nil {
		panic(err)
	}

	greeting, err := provider.Get(context.Background(), "greeting")
	if err != nil {
		panic(err)
	}
	fmt.Println(greeting)
	// Output:
	// salut
}
