package entities

import (
	"fmt"
	"io"
	"text/tabwriter"
)

// DeployOptions holds runtime options for a single deployment run.
type DeployOptions struct {
	WorkspaceID             string // overrides the environment's workspace_id
	Environment             string
	RepoURL                 string
	Branch                  string
	LocalPath               string
	ParameterFile           string // overrides the environment's parameter_file
	ItemTypes               []string
	DryRun                  bool
	Verbose                 bool
	IncludeWarehouseSchemas bool
}

// ItemResult records the outcome of publishing one item.
type ItemResult struct {
	Item Item
	Err  error
}

// Failed reports whether the item failed to publish.
func (r ItemResult) Failed() bool { return r.Err != nil }

// Summary aggregates per-item publish results for a deployment run.
type Summary struct {
	Results []ItemResult
}

// Add appends one item result.
func (s *Summary) Add(item Item, err error) {
	s.Results = append(s.Results, ItemResult{Item: item, Err: err})
}

// Succeeded counts items that published successfully.
func (s *Summary) Succeeded() int {
	n := 0
	for _, r := range s.Results {
		if !r.Failed() {
			n++
		}
	}
	return n
}

// Failed counts items that failed to publish.
func (s *Summary) Failed() int {
	return len(s.Results) - s.Succeeded()
}

// HasFailures reports whether any item failed.
func (s *Summary) HasFailures() bool { return s.Failed() > 0 }

// Render writes a per-item-type success/failure table.
func (s *Summary) Render(w io.Writer) {
	type tally struct{ ok, failed int }
	tallies := make(map[string]*tally)
	for _, r := range s.Results {
		t, found := tallies[r.Item.Type]
		if !found {
			t = &tally{}
			tallies[r.Item.Type] = t
		}
		if r.Failed() {
			t.failed++
		} else {
			t.ok++
		}
	}

	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	fmt.Fprintln(tw, "ITEM TYPE\tSUCCEEDED\tFAILED")
	for _, itemType := range SupportedItemTypes() {
		t, found := tallies[itemType]
		if !found {
			continue
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\n", itemType, t.ok, t.failed)
	}
	fmt.Fprintf(tw, "TOTAL\t%d\t%d\n", s.Succeeded(), s.Failed())
	tw.Flush()
}
