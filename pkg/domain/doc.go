/*
Package domain contains the core domain models of the colloquy dialog engine.

It defines the normalized turn abstraction (Activity and Reply), the persisted
conversation state (Snapshot, dialog stack Frames and the well-known state slots),
the registration record consumed by the greeting flow and the error taxonomy.
This package is kept pure and free of I/O, following Hexagonal Architecture
principles.

# Key Entities

  - Activity: one inbound, already normalized, message or event.
  - Frame: persisted record of one active dialog instance (id, step cursor, private values).
  - Snapshot: every state slot of one conversation, persisted as a unit.
  - UserRecord: a registration entry looked up by (channel, user).
*/
package domain
