package cmd

import (
	"context"
	"io"
	"iter"
	"log/slog"
	"os"
	"path/filepath"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/ardnew/mung"

	"github.com/ardnew/lispy/lang"
	"github.com/ardnew/lispy/log"
)

// PathEnvVar names the environment variable listing directories searched for
// source files that are not found relative to the working directory.
const PathEnvVar = "LISPY_PATH"

type (
	kongContextKey  struct{}
	sourceFilesKey  struct{}
	searchPathKey   struct{}
	interpOptsKey   struct{}
	outputKey       struct{}
	inputKey        struct{}
	historyDirKey   struct{}
	interpreterOpts []lang.Option
)

// WithContext returns a copy of ctx carrying ktx.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, kongContextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, _ := ctx.Value(kongContextKey{}).(*kong.Context)

	return ktx
}

// WithInterpreterOptions returns a copy of ctx carrying options applied to
// every interpreter a command creates.
func WithInterpreterOptions(ctx context.Context, opts ...lang.Option) context.Context {
	return context.WithValue(ctx, interpOptsKey{}, interpreterOpts(opts))
}

// newInterpreter returns an interpreter configured by the options in ctx,
// then by extra.
func newInterpreter(ctx context.Context, extra ...lang.Option) *lang.Interpreter {
	opts, _ := ctx.Value(interpOptsKey{}).(interpreterOpts)

	return lang.NewInterpreter(append(append([]lang.Option{
		lang.WithLogger(log.Default()),
		lang.WithOutput(outputFrom(ctx)),
	}, opts...), extra...)...)
}

// WithOutput returns a copy of ctx whose commands write results to w instead
// of standard output.
func WithOutput(ctx context.Context, w io.Writer) context.Context {
	return context.WithValue(ctx, outputKey{}, w)
}

func outputFrom(ctx context.Context) io.Writer {
	if w, ok := ctx.Value(outputKey{}).(io.Writer); ok && w != nil {
		return w
	}

	return os.Stdout
}

// WithInput returns a copy of ctx whose commands read "-" from r instead of
// standard input.
func WithInput(ctx context.Context, r io.Reader) context.Context {
	return context.WithValue(ctx, inputKey{}, r)
}

func inputFrom(ctx context.Context) io.Reader {
	if r, ok := ctx.Value(inputKey{}).(io.Reader); ok && r != nil {
		return r
	}

	return os.Stdin
}

// WithHistoryDir returns a copy of ctx naming the directory where the REPL
// keeps its history file.
func WithHistoryDir(ctx context.Context, dir string) context.Context {
	return context.WithValue(ctx, historyDirKey{}, dir)
}

func historyDirFrom(ctx context.Context) string {
	dir, _ := ctx.Value(historyDirKey{}).(string)

	return dir
}

// WithSearchPath returns a copy of ctx carrying the directories searched for
// source files: include first, then the entries of [PathEnvVar].
func WithSearchPath(ctx context.Context, include []string) context.Context {
	list := mung.Make(
		mung.WithSubjectItems(os.Getenv(PathEnvVar)),
		mung.WithDelim(string(os.PathListSeparator)),
		mung.WithPrefixItems(include...),
	).String()

	var dirs []string

	for _, dir := range filepath.SplitList(list) {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			dirs = append(dirs, dir)
		}
	}

	log.TraceContext(ctx, "search path", slog.Any("dirs", dirs))

	return context.WithValue(ctx, searchPathKey{}, dirs)
}

// findSource returns the path of the source file name: name itself if it
// exists, otherwise the first match in the search path. Absolute names are
// never searched.
func findSource(ctx context.Context, name string) (string, error) {
	_, err := os.Stat(name)
	if err == nil || filepath.IsAbs(name) {
		return name, err
	}

	dirs, _ := ctx.Value(searchPathKey{}).([]string)
	for _, dir := range dirs {
		path := filepath.Join(dir, name)
		if _, serr := os.Stat(path); serr == nil {
			return path, nil
		}
	}

	return name, err
}

// stdinSource is the source name that reads standard input.
const stdinSource = "-"

// SourceFiles is an ordered, duplicate-free set of source files.
type SourceFiles interface {
	IsZero() bool
	// All opens each source in order. Files are closed when iteration
	// advances.
	All() iter.Seq2[string, io.Reader]
}

type sourceFiles struct {
	paths    []string
	hasStdin bool
	stdin    io.Reader
}

func (s *sourceFiles) IsZero() bool { return len(s.paths) == 0 && !s.hasStdin }

func (s *sourceFiles) All() iter.Seq2[string, io.Reader] {
	return func(yield func(string, io.Reader) bool) {
		for _, path := range s.paths {
			file, err := os.Open(path)
			if err != nil {
				if !yield(path, errReader{ErrOpenSource.Wrap(err)}) {
					return
				}

				continue
			}

			ok := yield(path, file)
			file.Close()

			if !ok {
				return
			}
		}

		if s.hasStdin {
			yield(stdinSource, s.stdin)
		}
	}
}

// errReader is an io.Reader that always fails with err.
type errReader struct{ err error }

func (r errReader) Read([]byte) (int, error) { return 0, r.err }

// fileKey identifies a file by device and inode, so that one file reached
// through symlinks or different relative paths is read only once.
type fileKey struct {
	dev uint64
	ino uint64
}

func makeFileKey(info os.FileInfo) (fileKey, bool) {
	if info == nil {
		return fileKey{}, false
	}

	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return fileKey{}, false
	}

	return fileKey{dev: uint64(stat.Dev), ino: stat.Ino}, true
}

// WithSourceFiles returns a copy of ctx carrying the sources preloaded into
// every interpreter session.
func WithSourceFiles(ctx context.Context, sources []string) (context.Context, error) {
	files, err := buildSourceFiles(ctx, sources)
	if err != nil {
		return ctx, err
	}

	return context.WithValue(ctx, sourceFilesKey{}, files), nil
}

func sourceFilesFrom(ctx context.Context) SourceFiles {
	files, _ := ctx.Value(sourceFilesKey{}).(SourceFiles)

	return files
}

// buildSourceFiles resolves sources through the search path and removes
// duplicates. Every "-", and any name that refers to standard input, is
// read once, after all regular files.
func buildSourceFiles(ctx context.Context, sources []string) (SourceFiles, error) {
	files := &sourceFiles{stdin: inputFrom(ctx)}
	seen := make(map[fileKey]struct{})

	var stdinKey *fileKey

	if info, err := os.Stdin.Stat(); err == nil {
		if key, ok := makeFileKey(info); ok {
			stdinKey = &key
		}
	}

	for _, src := range sources {
		if src == stdinSource {
			files.hasStdin = true

			continue
		}

		path, err := findSource(ctx, src)
		if err != nil {
			return nil, ErrOpenSource.Wrap(err).With(slog.String("source", src))
		}

		resolved, err := filepath.EvalSymlinks(path)
		if err != nil {
			return nil, ErrOpenSource.Wrap(err).With(slog.String("source", src))
		}

		info, err := os.Stat(resolved)
		if err != nil {
			return nil, ErrOpenSource.Wrap(err).With(slog.String("source", src))
		}

		key, ok := makeFileKey(info)
		if ok {
			if stdinKey != nil && key == *stdinKey {
				files.hasStdin = true

				continue
			}

			if _, dup := seen[key]; dup {
				continue
			}

			seen[key] = struct{}{}
		}

		files.paths = append(files.paths, resolved)
	}

	return files, nil
}

// loadSource parses every form of r and evaluates it in env. Each value is
// passed to emit, unless it is nil or emit is nil.
func loadSource(
	ctx context.Context,
	in *lang.Interpreter,
	env *lang.Environment,
	name string,
	r io.Reader,
	emit func(lang.Expr) error,
) error {
	forms, err := lang.ParseReader(ctx, r)
	if err != nil {
		return lang.WrapError(err).With(slog.String("source", name))
	}

	for _, x := range forms {
		if err := ctx.Err(); err != nil {
			return err
		}

		v, err := in.Eval(ctx, x, env)
		if err != nil {
			return lang.WrapError(err).With(slog.String("source", name))
		}

		if v == nil || emit == nil {
			continue
		}

		if err := emit(v); err != nil {
			return err
		}
	}

	log.DebugContext(ctx, "loaded source",
		slog.String("source", name),
		slog.Int("forms", len(forms)),
	)

	return nil
}

// preload evaluates the sources carried by ctx into env without printing
// their values.
func preload(ctx context.Context, in *lang.Interpreter, env *lang.Environment) error {
	files := sourceFilesFrom(ctx)
	if files == nil {
		return nil
	}

	for name, r := range files.All() {
		if err := loadSource(ctx, in, env, name, r, nil); err != nil {
			return err
		}
	}

	return nil
}
