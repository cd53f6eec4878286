package acquire

// Internal hooks for black-box tests.

type CommandRunner = commandRunner

type EnvProvider = envProvider

var ResolveYTDLPWith = resolveYTDLP
