// Package judge scores media frames with a local vision model over the
// Ollama chat API. Responses are coerced into a stable analysis shape, with
// transient transport failures retried on a linear backoff.
package judge
