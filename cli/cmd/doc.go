// Package cmd provides the lispy subcommands: repl, eval, fmt and init.
//
// Commands receive their shared settings through [context.Context]: the kong
// context ([WithContext]), interpreter options ([WithInterpreterOptions]),
// preloaded sources ([WithSourceFiles]) and the source search path
// ([WithSearchPath]), which combines --include with [PathEnvVar].
package cmd

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path to
	// the configuration file. It is also the head symbol of the
	// configuration form.
	ConfigIdentifier = "config"
)
