// Package configstore defines the contract between a host configuration
// framework and the stores that supply configuration documents.
//
// A Store returns one flat key/value document, serialized as a JSON object.
// Get is a blocking call: implementations may issue several network requests
// before returning. Hosts that must not block (event loops, request handlers)
// use GetAsync, which runs Get on its own goroutine and reports the outcome
// through a completion handler.
//
// Stores are created by a Factory registered under a type name:
//
//	registry := configstore.NewRegistry()
//	registry.Register(providers.NewAWSSSMStoreFactory())
//
//	store, err := registry.Create("aws-ssm", "app", map[string]interface{}{
//	    "path":      "/myapp/prod",
//	    "parsePath": true,
//	})
//	if err != nil {
//	    return err
//	}
//	defer store.Close(ctx)
//
//	configstore.GetAsync(ctx, store, func(doc []byte, err error) {
//	    // hand doc to the framework, or keep the previous snapshot on err
//	})
//
// # Ownership
//
// Each Get owns the map it builds and returns freshly encoded bytes; nothing
// is cached between calls. A store may be reused sequentially until Close.
package configstore
