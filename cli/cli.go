package cli

import (
	"context"
	"strconv"

	"github.com/alecthomas/kong"

	"github.com/ardnew/lispy/cli/cmd"
	"github.com/ardnew/lispy/lang"
	"github.com/ardnew/lispy/log"
	"github.com/ardnew/lispy/pkg"
)

// CLI is the top-level command-line interface for lispy.
type CLI struct {
	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`

	Source   []string `help:"Source file(s) evaluated before the command runs, or '-' for stdin" name:"source" placeholder:"FILE" short:"s"`
	Include  []string `help:"Directories searched for source files, before ${pathEnvVar}"        placeholder:"DIR"  short:"I" type:"path"`
	MaxDepth int      `default:"${maxDepth}" help:"Maximum depth of nested procedure calls (0 for no limit)"`
	Trace    string   `help:"Log evaluation steps matching an expression, e.g. 'depth > 3'"   placeholder:"EXPR"`

	Repl cmd.Repl `cmd:"" default:"1" help:"Read and evaluate expressions interactively (default)"`
	Eval cmd.Eval `cmd:""             help:"Evaluate source files and expressions"`
	Fmt  cmd.Fmt  `cmd:""             help:"Format source files"`
	Init cmd.Init `cmd:""             help:"Initialize configuration file"`
}

// Run executes the lispy CLI with the given context and arguments.
// The exit function is called with the appropriate exit code upon completion.
func Run(
	ctx context.Context,
	exit func(code int),
	args ...string,
) error {
	var cli CLI

	if err := mkdirAllRequired(); err != nil {
		return err
	}

	configFilePath := configPath(baseConfig)

	vars := kong.Vars{
		cmd.ConfigIdentifier: configFilePath,
		cmd.CacheIdentifier:  cacheDir(),
		"maxDepth":           strconv.Itoa(lang.DefaultMaxDepth),
		"pathEnvVar":         cmd.PathEnvVar,
	}.
		CloneWith(cli.Log.vars()).
		CloneWith(cli.Pprof.vars())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Logging flags take effect before kong parses anything, so that parse
	// errors are already reported in the requested format.
	cli.Log.scan(args)

	parser, err := kong.New(&cli,
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.ExplicitGroups(
			[]kong.Group{cli.Log.group(), cli.Pprof.group()},
		),
		kong.BindSingletonProvider(func() context.Context {
			return ctx
		}),
		kong.ConfigureHelp(
			kong.HelpOptions{
				Compact:             true,
				Summary:             true,
				Tree:                true,
				NoExpandSubcommands: true,
			}),
		kong.Configuration(kong.JSON, configFilePath+".json"),
		kong.Configuration(resolveYAML, configFilePath+".yaml"),
		kong.Configuration(resolve(ctx, baseConfig), configFilePath),
		vars,
	)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	// Settle the logger before anything below logs.
	cli.Log.start(ctx)

	// no-op unless built with tag pprof and enabled.
	defer cli.Pprof.start(ctx)()

	ctx, err = cli.context(ctx, ktx)
	if err != nil {
		return err
	}

	return ktx.Run(ctx, &cli)
}

// context returns ctx carrying everything the commands share.
func (c *CLI) context(ctx context.Context, ktx *kong.Context) (context.Context, error) {
	opts := []lang.Option{lang.WithMaxDepth(c.MaxDepth)}

	if c.Trace != "" {
		filter, err := lang.TraceFilter(c.Trace)
		if err != nil {
			return ctx, err
		}

		logger := log.Default().Wrap(log.WithLevel(log.LevelTrace))
		opts = append(opts, lang.WithTracer(lang.LogTracer(logger, filter)))
	}

	ctx = cmd.WithContext(ctx, ktx)
	ctx = cmd.WithHistoryDir(ctx, cacheDir())
	ctx = cmd.WithSearchPath(ctx, c.Include)
	ctx = cmd.WithInterpreterOptions(ctx, opts...)

	return cmd.WithSourceFiles(ctx, c.Source)
}
