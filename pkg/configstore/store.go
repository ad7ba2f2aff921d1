package configstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// Store supplies a configuration document.
type Store interface {
	// Get returns the current document as a JSON object. An empty result is
	// encoded as {} and never as nil.
	Get(ctx context.Context) ([]byte, error)

	// Close releases the store's client handle. It is safe to call more
	// than once.
	Close(ctx context.Context) error
}

// Factory creates stores of one type from raw configuration.
type Factory interface {
	// Name is the store type used in configuration, e.g. "aws-ssm".
	Name() string

	// Create builds a store. Configuration errors are reported here, before
	// any network call.
	Create(name string, config map[string]interface{}) (Store, error)
}

// CompletionHandler receives the outcome of an asynchronous Get.
type CompletionHandler func(doc []byte, err error)

// GetAsync runs store.Get on a new goroutine and calls handler exactly once
// with the result. It returns immediately.
func GetAsync(ctx context.Context, store Store, handler CompletionHandler) {
	go func() {
		doc, err := store.Get(ctx)
		handler(doc, err)
	}()
}

// Result is the outcome of a Get delivered over a channel.
type Result struct {
	Doc []byte
	Err error
}

// GetChan is GetAsync for callers that prefer a channel. The channel is
// buffered and receives exactly one Result.
func GetChan(ctx context.Context, store Store) <-chan Result {
	ch := make(chan Result, 1)
	GetAsync(ctx, store, func(doc []byte, err error) {
		ch <- Result{Doc: doc, Err: err}
	})
	return ch
}

// maxConcurrentGets bounds GetAll fan-out.
const maxConcurrentGets = 10

// Named is implemented by stores that know their configured name. GetAll
// uses it to label errors.
type Named interface {
	Name() string
}

func storeLabel(i int, store Store) string {
	if n, ok := store.(Named); ok && n.Name() != "" {
		return fmt.Sprintf("store '%s'", n.Name())
	}
	return fmt.Sprintf("store %d", i)
}

// GetAll fetches every store concurrently and merges the documents in the
// order given; later stores override earlier keys. Any failure fails the
// whole call, and the error names the store when it implements Named.
func GetAll(ctx context.Context, stores []Store) (map[string]interface{}, error) {
	docs := make([][]byte, len(stores))
	errs := make([]error, len(stores))

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, maxConcurrentGets)

	for i, store := range stores {
		wg.Add(1)
		go func(i int, store Store) {
			defer wg.Done()

			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			docs[i], errs[i] = store.Get(ctx)
		}(i, store)
	}
	wg.Wait()

	merged := make(map[string]interface{})
	for i, doc := range docs {
		if errs[i] != nil {
			return nil, fmt.Errorf("%s: %w", storeLabel(i, stores[i]), errs[i])
		}
		if len(doc) == 0 {
			continue
		}
		var values map[string]interface{}
		if err := json.Unmarshal(doc, &values); err != nil {
			return nil, fmt.Errorf("%s returned an invalid document: %w", storeLabel(i, stores[i]), err)
		}
		for k, v := range values {
			merged[k] = v
		}
	}
	return merged, nil
}
