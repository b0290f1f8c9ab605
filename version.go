package colloquy

// Version is overridden at build time with -ldflags "-X github.com/aretw0/colloquy.Version=...".
var Version = "dev"
