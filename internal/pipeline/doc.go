// Package pipeline sequences full curation batches: scoring with cache
// resume, selection, publishing, manifests, and guarded cleanup. The judge
// and the media tool are injected so batches can run hermetically in tests.
package pipeline
