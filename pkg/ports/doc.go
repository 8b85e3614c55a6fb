/*
Package ports defines the driven ports (interfaces) of tablewatch.

These interfaces decouple the change-detection sensor from the concrete cursor storage,
reload transport and locking backends.

# Key Interfaces

  - CursorStore: persists the opaque per-sensor cursor between ticks.
  - Reloader: asks the orchestrator to reload a code location.
  - DistributedLocker: serializes ticks across replicas that share a cursor store.
*/
package ports
