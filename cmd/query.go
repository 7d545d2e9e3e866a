package cmd

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/finance"
	"github.com/google/subcommands"
)

type queryCmd struct{}

func (*queryCmd) Name() string     { return "query" }
func (*queryCmd) Synopsis() string { return "extract values from the state with a JSONPath expression" }
func (*queryCmd) Usage() string {
	return `fdash query <jsonpath>

  Evaluates a JSONPath expression on the state and prints the result as JSON.

Usage Examples:
# names of the accounts
$ fdash query '$.accounts[*].name'
# amounts of the expenses paid from BK Bank
$ fdash query '$.transactions[?(@.fromAccount == "acc-3")].amount'
`
}

func (*queryCmd) SetFlags(*flag.FlagSet) {}

func (c *queryCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	return run(ctx, func(b *book) error {
		v, err := query(b.State(), f.Arg(0))
		if err != nil {
			return err
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	})
}

// query evaluates a JSONPath expression on the JSON form of s.
func query(s *finance.State, path string) (any, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	var jobj any
	if err := json.Unmarshal(data, &jobj); err != nil {
		return nil, err
	}
	v, err := jsonpath.Get(path, jobj)
	if err != nil {
		return nil, fmt.Errorf("error evaluating %q: %w", path, err)
	}
	return v, nil
}
