/*
Package reload implements the client that asks a running orchestrator to reload a code location.

The request is a single GraphQL mutation posted to http://{host}:{port}/graphql. The client
never retries and never returns an error: every response is classified into a
domain.ReloadOutcome so callers can turn failures into status messages.

# Classification

  - network failure, timeout, non-2xx status or an undecodable body: transport error
  - a top-level "errors" list, or a typed error member of the mutation result: application error
  - anything else: success
*/
package reload
