package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/lucidkb/logicore/pkg/logic"
	"github.com/lucidkb/logicore/pkg/prologtext"
)

func newAssertCmd(env *cliEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "assert <clause>",
		Short: "Parse and add one or more facts/rules to the session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parser, err := prologtext.NewParser(args[0], nil)
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
					fmt.Fprintf(cmd.OutOrStdout(), "asserted %s/%d (new=%v)\n", c.Predicate, len(c.HeadArgs), isNew)
					continue
				}
				rule, err := env.store.AddRule(c.Predicate, c.HeadArgs, c.Body)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "added rule #%d for %s/%d\n", rule.ID, c.Predicate, len(c.HeadArgs))
			}
			return saveSession(env.cfg.SessionFile, env.store)
		},
	}
}

func newQueryCmd(env *cliEnv) *cobra.Command {
	var trace bool
	cmd := &cobra.Command{
		Use:   "query <goals>",
		Short: "Run a goal list against the session and print solutions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, env, args[0], trace)
		},
	}
	cmd.Flags().BoolVar(&trace, "trace", false, "record and print a trace snapshot alongside results")
	return cmd
}

func newTraceCmd(env *cliEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "trace <goals>",
		Short: "Run a goal list with tracing enabled and print the trace log",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, env, args[0], true)
		},
	}
}

func runQuery(cmd *cobra.Command, env *cliEnv, src string, trace bool) error {
	parser, err := prologtext.NewParser(src, nil)
	if err != nil {
		return err
	}
	goals, err := parser.ParseGoals()
	if err != nil {
		return err
	}
	it := logic.Query(env.store, goals, parser.Vars(), logic.QueryOptions{
		Limit:         env.cfg.ResultLimit,
		Trace:         trace,
		TraceDepthCap: env.cfg.TraceDepthCap,
	})
	defer it.Close()

	out := cmd.OutOrStdout()
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

	if trace {
		snap := it.Trace()
		fmt.Fprintf(out, "\ntrace: %d call(s), %d exit(s), %d fail(s), %d redo(s)\n",
			snap.Stats["call"], snap.Stats["exit"], snap.Stats["fail"], snap.Stats["redo"])
		for _, node := range snap.Tree {
			printTraceNode(out, snap, node, 0)
		}
	}
	return nil
}

func printTraceNode(out io.Writer, snap *logic.TraceSnapshot, node *logic.TraceNode, indent int) {
	for i := 0; i < indent; i++ {
		fmt.Fprint(out, "  ")
	}
	fmt.Fprintf(out, "%s [%s] results=%d\n", node.Predicate, node.Status, node.ResultCount)
}

func newStatsCmd(env *cliEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print knowledge-base size and mutation counters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := env.store.Stats()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "total_facts:     %d\n", s.TotalFacts)
			fmt.Fprintf(out, "total_rules:     %d\n", s.TotalRules)
			fmt.Fprintf(out, "predicates:      %d\n", s.Predicates)
			fmt.Fprintf(out, "queries:         %d\n", s.Queries)
			fmt.Fprintf(out, "facts_asserted:  %d\n", s.FactsAsserted)
			fmt.Fprintf(out, "facts_retracted: %d\n", s.FactsRetracted)
			fmt.Fprintf(out, "rules_added:     %d\n", s.RulesAdded)
			return nil
		},
	}
}
