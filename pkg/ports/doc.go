/*
Package ports defines the driven ports (interfaces) of the colloquy engine.

These interfaces decouple the dialog core from external implementations, allowing
the engine to work with various storage backends and registration services.

# Key Interfaces

  - StateStore: persists one Snapshot of state slots per conversation.
  - UserDirectory: the registration collaborator (lookup, insert, list).
  - DistributedLocker: serializes turns of one conversation across replicas.
*/
package ports
