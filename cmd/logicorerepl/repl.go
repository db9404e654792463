package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lucidkb/logicore/pkg/logic"
	"github.com/lucidkb/logicore/pkg/prologtext"
)

func newREPLCmd(env *cliEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Start an interactive read-assert/query-print loop",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runREPL(cmd, env)
		},
	}
}

// runREPL reads lines from stdin: a line ending in '.' is parsed as a
// fact or rule and asserted; a line ending in '?' is parsed as a goal
// list and queried, printing every solution. "exit" or "quit" ends the
// session and saves it to the configured session file.
func runREPL(cmd *cobra.Command, env *cliEnv) error {
	out := cmd.OutOrStdout()
	in := cmd.InOrStdin()
	fmt.Fprintln(out, "logicore> type a clause ending in '.' or a query ending in '?'; 'exit' to quit.")
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "?- ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			break
		}
		if err := handleLine(out, env, line); err != nil {
			fmt.Fprintln(out, "error:", err)
		}
	}
	if err := scanner.Err(); err != nil && err != io.EOF {
		return err
	}
	return saveSession(env.cfg.SessionFile, env.store)
}

func handleLine(out io.Writer, env *cliEnv, line string) error {
	switch {
	case strings.HasSuffix(line, "?"):
		return handleQueryLine(out, env, strings.TrimSuffix(line, "?"))
	case strings.HasSuffix(line, "."):
		return handleClauseLine(out, env, line)
	default:
		return fmt.Errorf("line must end in '.' (clause) or '?' (query)")
	}
}

func handleClauseLine(out io.Writer, env *cliEnv, line string) error {
	parser, err := prologtext.NewParser(line, nil)
	if err != nil {
		return err
	}
	clauses, err := parser.ParseClauses()
	if err != nil {
		return err
	}
	for _, c := range clauses {
		if c.Body == nil {
			isNew := env.store.AssertFact(c.Predicate, c.HeadArgs)
			fmt.Fprintf(out, "asserted %s/%d (new=%v)\n", c.Predicate, len(c.HeadArgs), isNew)
			continue
		}
		rule, err := env.store.AddRule(c.Predicate, c.HeadArgs, c.Body)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "added rule #%d for %s/%d\n", rule.ID, c.Predicate, len(c.HeadArgs))
	}
	return nil
}

func handleQueryLine(out io.Writer, env *cliEnv, goalSrc string) error {
	parser, err := prologtext.NewParser(goalSrc, nil)
	if err != nil {
		return err
	}
	goals, err := parser.ParseGoals()
	if err != nil {
		return err
	}
	it := logic.Query(env.store, goals, parser.Vars(), logic.QueryOptions{Limit: env.cfg.ResultLimit})
	defer it.Close()
	count := 0
	for {
		result, ok := it.Next()
		if !ok {
			break
		}
		count++
		fmt.Fprintf(out, "solution %d:\n", count)
		for name, term := range result.Bindings {
			fmt.Fprintf(out, "  ?%s = %s\n", name, term.String())
		}
	}
	if count == 0 {
		fmt.Fprintln(out, "no solutions")
	}
	return nil
}
