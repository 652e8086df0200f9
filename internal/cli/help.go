package cli

import (
	"regexp"
	"strings"

	"github.com/spf13/cobra"
)

// helpRule colors the groups of a matching help line.
type helpRule struct {
	re     *regexp.Regexp
	render func(groups []string) string
}

var helpRules = []helpRule{
	// section headers such as "Usage:" and "Available Commands:"
	{regexp.MustCompile(`^\s*[A-Z][A-Za-z ]+:\s*$`), func(g []string) string { return Info(g[0]) }},
	// footer: Use "study-timer [command] --help" ...
	{regexp.MustCompile(`^\s*Use ".*$`), func(g []string) string { return Silent(g[0]) }},
	// flags: "  -y, --yes   skip confirmation prompt"
	{regexp.MustCompile(`^( +)(-.+?)( {2,}.*)$`), func(g []string) string { return g[1] + Primary(g[2]) + g[3] }},
	// commands and aliases: "  start   Start a study session"
	{regexp.MustCompile(`^( {2})(\S+)(\s{2,}.*)$`), func(g []string) string { return g[1] + Primary(g[2]) + g[3] }},
}

// colorizedHelpFunc renders cobra's usage text with command names, flags and
// section headers highlighted.
func colorizedHelpFunc() func(*cobra.Command, []string) {
	return func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()

		var raw strings.Builder
		cmd.SetOut(&raw)
		cmd.InitDefaultHelpFlag()
		_ = cmd.Usage()
		cmd.SetOut(out)

		lines := strings.Split(strings.TrimRight(raw.String(), "\n"), "\n")
		for i, line := range lines {
			lines[i] = colorizeLine(line)
		}
		cmd.Print(strings.Join(lines, "\n") + "\n")
	}
}

func colorizeLine(line string) string {
	for _, rule := range helpRules {
		if g := rule.re.FindStringSubmatch(line); g != nil {
			return rule.render(g)
		}
	}
	return line
}
