package command

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	bt "github.com/joeycumines/go-behaviortree"
	pabt "github.com/joeycumines/go-pabt"
	"github.com/minerva-studio/aethiumian-ai-sub000/internal/behavior"
	"github.com/minerva-studio/aethiumian-ai-sub000/internal/config"
	"github.com/minerva-studio/aethiumian-ai-sub000/internal/planning"
	"github.com/minerva-studio/aethiumian-ai-sub000/internal/tree"
	"github.com/minerva-studio/aethiumian-ai-sub000/internal/value"
)

// PlanCommand plans toward a goal over a document's variables, using the
// document's constant set nodes as actions, and executes the plan.
type PlanCommand struct {
	*BaseCommand
	config   *config.Config
	flags    treeFlags
	maxTicks int
}

// NewPlanCommand creates a new plan command.
func NewPlanCommand(cfg *config.Config) *PlanCommand {
	return &PlanCommand{
		BaseCommand: NewBaseCommand(
			"plan",
			"Reach a goal state using the document's set nodes as actions",
			"plan [options] <document> <name=value>...",
		),
		config: cfg,
	}
}

// SetupFlags configures the flags for the plan command.
func (c *PlanCommand) SetupFlags(fs *flag.FlagSet) {
	c.flags.setup(fs)
	fs.IntVar(&c.maxTicks, "max-ticks", -1, "Stop after this many ticks (0 = until the plan finishes)")
}

// Execute plans for the goal given by args[1:].
func (c *PlanCommand) Execute(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) < 2 {
		_, _ = fmt.Fprintf(stderr, "Usage: %s\n", c.Usage())
		return fmt.Errorf("expected a document and at least one goal condition")
	}

	s, err := openSession(c.config, &c.flags, args[0], stderr)
	if s == nil {
		return err
	}
	defer s.Close()
	if err != nil {
		newReport(s.tree).writeText(stderr, newStyles(s.settings.Color, stderr))
		return err
	}

	goal, err := parseGoal(s.tree, args[1:])
	if err != nil {
		return err
	}

	state := planning.NewState(s.tree)
	n := state.RegisterSetNodes()
	s.logger.Debug("[Plan] registered actions", "count", n)

	root, err := planning.Plan(state, planning.Goal(goal))
	if err != nil {
		return err
	}

	runOpts := behavior.RunOptions{MaxTicks: s.settings.MaxTicks, Interval: s.settings.Interval}
	if c.maxTicks >= 0 {
		runOpts.MaxTicks = c.maxTicks
	}
	res, err := behavior.Run(ctx, root, runOpts)
	if err != nil {
		return err
	}

	st := newStyles(s.settings.Color, stdout)
	style := st.good
	if res.Status != bt.Success {
		style = st.warning
	}
	_, _ = fmt.Fprintf(stdout, "%s after %d tick(s)\n\n", st.render(style, statusName(res.Status)), res.Ticks)
	newReport(s.tree).writeVariables(stdout)
	return nil
}

// parseGoal parses name=value conditions, reading each literal under the
// named variable's type.
func parseGoal(t *tree.ResolvedTree, args []string) ([]pabt.Condition, error) {
	out := make([]pabt.Condition, 0, len(args))
	for _, arg := range args {
		name, literal, ok := strings.Cut(arg, "=")
		if !ok {
			return nil, fmt.Errorf("goal %q: expected name=value", arg)
		}
		v, ok := t.VariableByName(name)
		if !ok {
			return nil, fmt.Errorf("goal %q: no variable %q", arg, name)
		}
		want, err := value.Parse(v.Type(), literal)
		if err != nil {
			return nil, fmt.Errorf("goal %q: %w", arg, err)
		}
		out = append(out, planning.Equals(name, want.Interface()))
	}
	return out, nil
}
