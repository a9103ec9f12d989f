// Package hal traverses HAL (Hypermedia Application Language) resources.
//
// A Navigator fetches a root resource; from there every other resource is
// reached by relation name, never by a hardcoded path:
//
//	root, err := nav.Root(ctx, "/api/document-store")
//	if !root.Has("documents") {
//		// authentication failed or the API is unreachable
//	}
//	page, err := root.Get(ctx, "documents", hal.Params{"pageSize": 100})
//	docs, err := page.Get(ctx, "documents", nil)
//	items, err := hal.Items[Summary](docs)
//
// Relations found in "_embedded" are returned without a request. Relations
// found in "_links" are fetched, expanding RFC 6570 templates with the given
// parameters; parameters the template does not name are sent as query
// string.
//
// Following a relation that is not advertised yields a *NavigationError,
// which is distinct from a *TransportError (network failure or non-success
// status) and a *DecodeError (unexpected body).
package hal
