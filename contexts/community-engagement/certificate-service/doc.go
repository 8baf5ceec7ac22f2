// Package certificateservice implements the certificate pipeline for the
// Ugnayan community-engagement portal.
//
// The module derives deterministic certificate identifiers, renders
// certificate documents with an embedded verification code, runs local and
// deferred batches, and hands completed batches off to the delivery
// dispatcher. It exposes HTTP command/query handlers and worker entrypoints
// for deferred batch execution and outbox relay.
package certificateservice
