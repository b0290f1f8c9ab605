/*
Package session implements the per-conversation state lifecycle.

A Manager serializes turns of the same conversation (in-process, and across
replicas when a DistributedLocker is configured) and opens a State for the turn.
State buffers typed slot writes, serves them back to reads of the same turn and
flushes all of them with a single Save on Commit.
*/
package session
