/*
Package domain contains the core models shared by the tablewatch packages.

It defines the manifest records, the processing units generated from them, the reload
outcomes reported by the orchestrator client, and the per-tick evaluation produced by the
change-detection sensor. The package is kept free of I/O so every adapter can depend on it.

# Key Entities

  - ManifestEntry: one `{name, source_table}` row of the manifest file.
  - ProcessingUnit: the named unit synthesized from a ManifestEntry.
  - ReloadOutcome: the classified result of a reload request.
  - Evaluation: everything a single sensor tick observed and decided.
*/
package domain
