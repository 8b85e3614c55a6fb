/*
Package sensor implements the change-detection sensor that triggers orchestrator reloads.

Each call to Evaluate is one tick: it stats the watched manifest, compares its modification
time with the watermark kept in a ports.CursorStore, and when the file is newer asks a
ports.Reloader to reload the configured code location. Every outcome is reported as a skip
status on the returned domain.Evaluation; Evaluate never fails and never panics on I/O errors.

The watermark is read from the store on every tick. A Sensor keeps no state between ticks, so
it is safe to recreate it or to run it in another process as long as ticks are serialized.

# Advance policy

When a reload fails, AdvanceOnSuccess (the default) leaves the watermark where it was, so the
next tick retries. AdvanceAlways records the new modification time anyway, which matches the
legacy behavior: the failed change is not retried until the file changes again.
*/
package sensor
