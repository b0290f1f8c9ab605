/*
Package observability provides tools for monitoring the colloquy engine.

It turns the engine's lifecycle hooks into Prometheus metrics and structured
log lines. Both producers return a domain.LifecycleHooks value; combine them
with domain.ChainHooks before handing them to the bot.
*/
package observability
