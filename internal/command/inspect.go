package command

import (
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/minerva-studio/aethiumian-ai-sub000/internal/config"
)

// InspectCommand instantiates a document and reports its variables, the
// reachable node graph and any diagnostics.
type InspectCommand struct {
	*BaseCommand
	config *config.Config
	flags  treeFlags
	format string
}

// NewInspectCommand creates a new inspect command.
func NewInspectCommand(cfg *config.Config) *InspectCommand {
	return &InspectCommand{
		BaseCommand: NewBaseCommand(
			"inspect",
			"Check a tree document and show its variables and nodes",
			"inspect [options] <document>",
		),
		config: cfg,
	}
}

// SetupFlags configures the flags for the inspect command.
func (c *InspectCommand) SetupFlags(fs *flag.FlagSet) {
	c.flags.setup(fs)
	fs.StringVar(&c.format, "format", "", "Output format: text, yaml")
}

// Execute inspects the document named by args[0].
func (c *InspectCommand) Execute(_ context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) != 1 {
		_, _ = fmt.Fprintf(stderr, "Usage: %s\n", c.Usage())
		return fmt.Errorf("expected exactly one document")
	}
	cfg := c.config
	if cfg == nil {
		cfg = config.NewConfig()
	}
	format := c.format
	if format == "" {
		format = config.DefaultSchema().ResolveCommand(cfg, "inspect", "format")
	}
	if format != "text" && format != "yaml" {
		return fmt.Errorf("unsupported format %q", format)
	}

	s, err := openSession(cfg, &c.flags, args[0], stderr)
	if s == nil {
		return err
	}
	defer s.Close()

	r := newReport(s.tree)
	if format == "yaml" {
		if werr := r.writeYAML(stdout); werr != nil {
			return werr
		}
	} else {
		r.writeText(stdout, newStyles(s.settings.Color, stdout))
	}
	return err
}
