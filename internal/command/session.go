package command

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/dop251/goja"
	"github.com/minerva-studio/aethiumian-ai-sub000/internal/behavior"
	"github.com/minerva-studio/aethiumian-ai-sub000/internal/config"
	"github.com/minerva-studio/aethiumian-ai-sub000/internal/document"
	"github.com/minerva-studio/aethiumian-ai-sub000/internal/script"
	"github.com/minerva-studio/aethiumian-ai-sub000/internal/tree"
)

// treeFlags are the flags shared by commands that instantiate a document.
type treeFlags struct {
	hostPath string
	logFile  string
	logLevel string
	strict   bool
}

func (f *treeFlags) setup(fs *flag.FlagSet) {
	fs.StringVar(&f.hostPath, "host", "", "JavaScript file evaluating to the host object")
	fs.StringVar(&f.logFile, "log-file", "", "Write logs to this file instead of stderr")
	fs.StringVar(&f.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	fs.BoolVar(&f.strict, "strict", false, "Treat instantiation warnings as errors")
}

// session is one instantiated document together with the script runtime
// its host lives in.
type session struct {
	settings config.Settings
	logs     logConfig
	logger   *slog.Logger
	vm       *goja.Runtime
	tree     *tree.ResolvedTree
}

// openSession loads and instantiates the document at path. When the tree was
// built but has error diagnostics (or any diagnostics in strict mode) both
// the session and an error are returned, so the diagnostics can be shown.
func openSession(cfg *config.Config, f *treeFlags, path string, stderr io.Writer) (*session, error) {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	settings, err := config.DefaultSchema().Settings(cfg)
	if err != nil {
		return nil, err
	}
	lc, err := resolveLogConfig(f.logFile, f.logLevel, settings)
	if err != nil {
		return nil, err
	}
	s := &session{settings: settings, logs: lc, logger: lc.logger(stderr), vm: goja.New()}

	if settings.ExprCacheSize > 0 {
		behavior.Programs.Resize(settings.ExprCacheSize)
	}

	doc, err := document.Load(path)
	if err != nil {
		_ = s.Close()
		return nil, err
	}

	host, err := loadHost(s.vm, f.hostPath)
	if err != nil {
		_ = s.Close()
		return nil, err
	}

	opts := []tree.Option{tree.WithLogger(s.logger)}
	if settings.HostVariables {
		opts = append(opts, tree.WithHostVariables())
	}
	var hostArg any
	if host != nil {
		hostArg = host
	}
	s.tree, err = tree.Instantiate(doc, hostArg, nil, opts...)
	if err == nil && (f.strict || settings.Strict) && len(s.tree.Diagnostics()) > 0 {
		err = fmt.Errorf("strict mode: %d warning(s)", len(s.tree.Diagnostics()))
	}
	return s, err
}

func (s *session) Close() error {
	return s.logs.Close()
}

// loadHost evaluates the script at path, which must produce an object. An
// empty path means no host.
func loadHost(vm *goja.Runtime, path string) (*script.Object, error) {
	if path == "" {
		return nil, nil
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read host script: %w", err)
	}
	v, err := vm.RunScript(path, string(src))
	if err != nil {
		return nil, fmt.Errorf("host script %s: %w", path, err)
	}
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return nil, errors.New("host script " + path + " did not evaluate to an object")
	}
	obj, ok := v.(*goja.Object)
	if !ok {
		return nil, fmt.Errorf("host script %s evaluated to %s, not an object", path, v.ExportType())
	}
	return script.NewObject(vm, obj), nil
}
