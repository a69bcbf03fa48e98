package command

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/dop251/goja_nodejs/require"
	bt "github.com/joeycumines/go-behaviortree"
	"github.com/minerva-studio/aethiumian-ai-sub000/internal/behavior"
	"github.com/minerva-studio/aethiumian-ai-sub000/internal/config"
	"github.com/minerva-studio/aethiumian-ai-sub000/internal/script"
)

// RunCommand instantiates a document, compiles it to a behavior tree and
// ticks it.
type RunCommand struct {
	*BaseCommand
	config     *config.Config
	flags      treeFlags
	scriptPath string
	seed       string
	maxTicks   int
	interval   time.Duration
}

// NewRunCommand creates a new run command.
func NewRunCommand(cfg *config.Config) *RunCommand {
	return &RunCommand{
		BaseCommand: NewBaseCommand(
			"run",
			"Tick a tree document and show the final variable values",
			"run [options] <document>",
		),
		config: cfg,
	}
}

// SetupFlags configures the flags for the run command.
func (c *RunCommand) SetupFlags(fs *flag.FlagSet) {
	c.flags.setup(fs)
	fs.StringVar(&c.scriptPath, "script", "", "JavaScript file run against the tree's variables before the first tick")
	fs.StringVar(&c.seed, "seed", "", "Seed for probability nodes")
	fs.IntVar(&c.maxTicks, "max-ticks", -1, "Stop after this many ticks (0 = until the head node finishes)")
	fs.DurationVar(&c.interval, "interval", -1, "Delay between ticks")
}

// Execute runs the document named by args[0].
func (c *RunCommand) Execute(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) != 1 {
		_, _ = fmt.Fprintf(stderr, "Usage: %s\n", c.Usage())
		return fmt.Errorf("expected exactly one document")
	}
	cfg := c.config
	if cfg == nil {
		cfg = config.NewConfig()
	}
	schema := config.DefaultSchema()

	s, err := openSession(cfg, &c.flags, args[0], stderr)
	if s == nil {
		return err
	}
	defer s.Close()
	st := newStyles(s.settings.Color, stdout)
	if err != nil {
		newReport(s.tree).writeText(stderr, newStyles(s.settings.Color, stderr))
		return err
	}

	scriptPath := c.scriptPath
	if scriptPath == "" {
		scriptPath = schema.ResolveCommand(cfg, "run", "script")
	}
	if scriptPath != "" {
		src, err := os.ReadFile(scriptPath)
		if err != nil {
			return fmt.Errorf("failed to read script: %w", err)
		}
		registry := require.NewRegistry()
		script.Register(registry, s.tree)
		registry.Enable(s.vm)
		if _, err := s.vm.RunScript(scriptPath, string(src)); err != nil {
			return fmt.Errorf("script %s: %w", scriptPath, err)
		}
	}

	opts := []behavior.Option{behavior.WithLogger(s.logger), behavior.WithContext(ctx)}
	seed := c.seed
	if seed == "" {
		seed = schema.ResolveCommand(cfg, "run", "seed")
	}
	if seed != "" {
		n, err := strconv.ParseUint(seed, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid seed %q: %w", seed, err)
		}
		opts = append(opts, behavior.WithSeed(n))
	}

	root, err := behavior.Compile(s.tree, opts...)
	if err != nil {
		return err
	}

	runOpts := behavior.RunOptions{MaxTicks: s.settings.MaxTicks, Interval: s.settings.Interval}
	if c.maxTicks >= 0 {
		runOpts.MaxTicks = c.maxTicks
	}
	if c.interval >= 0 {
		runOpts.Interval = c.interval
	}

	res, err := behavior.Run(ctx, root, runOpts)
	s.logger.Info("[Run] finished", "document", s.tree.Document().Name, "status", statusName(res.Status), "ticks", res.Ticks)
	if err != nil {
		_, _ = fmt.Fprintf(stdout, "%s after %d tick(s): %v\n", st.render(st.error, "error"), res.Ticks, err)
		return err
	}

	style := st.good
	if res.Status != bt.Success {
		style = st.warning
	}
	_, _ = fmt.Fprintf(stdout, "%s after %d tick(s)\n\n", st.render(style, statusName(res.Status)), res.Ticks)
	newReport(s.tree).writeVariables(stdout)
	return nil
}

func statusName(s bt.Status) string {
	switch s {
	case bt.Success:
		return "success"
	case bt.Failure:
		return "failure"
	case bt.Running:
		return "running"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}
