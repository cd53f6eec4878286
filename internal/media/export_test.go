package media

// Internal hooks for black-box tests.

type CommandRunner = commandRunner

type EnvProvider = envProvider

var ResolveToolchainWith = resolveToolchain

var FormatSeconds = formatSeconds
