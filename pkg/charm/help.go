package charm

import (
	"flag"
	"fmt"
	"strings"

	"github.com/brimdata/thermo/pkg/terminal"
	"github.com/brimdata/thermo/pkg/terminal/color"
	"github.com/kr/text"
)

var Help = &Spec{
	Name:  "help",
	Usage: "help [command]",
	Short: "display help for a command",
	Long: `
For help on the top-level command just type "help".
For help on a subcommand, type "help command" where command is the name of
the command.  For help on command nested further, type "help cmd1 cmd2" and
so forth.`,
	HiddenFlags: "v",
	New: func(parent Command, f *flag.FlagSet) (Command, error) {
		c := &HelpCommand{}
		f.BoolVar(&c.vflag, "v", false, "show hidden commands and flags")
		return c, nil
	},
}

type HelpCommand struct {
	vflag bool
}

// splitFlags is like strings.Split with a comma and also trims whitespace
func splitFlags(flags string) []string {
	var out []string
	for _, flag := range strings.Split(flags, ",") {
		out = append(out, strings.TrimSpace(flag))
	}
	return out
}

// flagMap creates a map that maps a name to a boolean based on the existence
// of that name in the comma-separated string of flags.
func flagMap(flags string) map[string]bool {
	hidden := make(map[string]bool)
	for _, flag := range splitFlags(flags) {
		hidden[flag] = true
	}
	return hidden
}

func (c *HelpCommand) search(args []string) (path, error) {
	parent, err := newInstance(nil, Help.Root())
	if err != nil {
		return nil, err
	}
	p := path{parent}
	for k, arg := range args {
		subcmd := parent.spec.lookupSub(arg)
		if subcmd == nil {
			return nil, fmt.Errorf("no such command: %s", strings.Join(args[:k+1], " "))
		}
		child, err := newInstance(parent.command, subcmd)
		if err != nil {
			return nil, err
		}
		p = append(p, child)
		parent = child
	}
	return p, nil
}

func (c *HelpCommand) Run(args []string) error {
	p, err := c.search(args)
	if err != nil {
		return err
	}
	c.help(p)
	return nil
}

func formatParagraph(body, tab string, lineWidth int) string {
	paragraphs := strings.Split(body, "\n\n")
	var chunks []string
	for _, paragraph := range paragraphs {
		var chunk string
		if len(paragraph) < lineWidth {
			chunk = strings.TrimRight(paragraph, " \t\n")
		} else {
			paragraph = strings.TrimSpace(paragraph)
			paragraph = text.Wrap(paragraph, lineWidth)
			lines := strings.Split(paragraph, "\n")
			chunk = strings.Join(lines, "\n"+tab)
		}
		chunks = append(chunks, chunk)
	}
	body = strings.Join(chunks, "\n\n"+tab)
	body = strings.TrimRight(body, " \t\n")
	return tab + body + "\n\n"
}

const tab = "    "

func header(heading string) string {
	return color.Bold.Colorize(heading)
}

func helpItem(heading, body string) {
	fmt.Fprint(Output, header(heading)+"\n"+tab+body+"\n\n")
}

func helpDesc(heading, body string) {
	body = tab + strings.TrimSpace(body) + "\n\n"
	lineWidth := terminal.Width() - len(tab) - 5
	if len(body) > lineWidth {
		body = formatParagraph(body, tab, lineWidth)
	}
	fmt.Fprint(Output, header(heading)+"\n"+body)
}

func helpList(heading string, lines []string) {
	body := strings.Join(lines, "\n"+tab)
	fmt.Fprint(Output, header(heading)+"\n"+tab+body+"\n\n")
}

func (c *HelpCommand) getCommands(target *Spec) []string {
	var lines []string
	for _, cmd := range target.children {
		name := cmd.Name
		if cmd.Hidden {
			if !c.vflag {
				continue
			}
			name = "[" + name + "]"
		}
		lines = append(lines, name+" - "+cmd.Short)
	}
	return lines
}

// buildOptions lists the flags of the last command in p followed by the
// flags of each of its ancestors under a "[name flags]" heading.
func buildOptions(p path, vflag bool) []string {
	options := p.last().options(vflag)
	if len(options) == 0 {
		options = []string{"no flags for this command"}
	}
	for k := len(p) - 2; k >= 0; k-- {
		parentOptions := p[k].options(vflag)
		if len(parentOptions) == 0 {
			continue
		}
		options = append(options, "", "["+p[:k+1].pathname()+" flags]")
		options = append(options, parentOptions...)
	}
	return options
}

func (c *HelpCommand) help(p path) {
	spec := p.last().spec
	helpItem("NAME", spec.Name+" - "+spec.Short)
	helpDesc("USAGE", spec.Usage)
	helpList("OPTIONS", buildOptions(p, c.vflag))
	if len(spec.children) > 0 {
		helpList("COMMANDS", c.getCommands(spec))
	}
	if spec.Long != "" {
		helpDesc("DESCRIPTION", spec.Long)
	}
}
