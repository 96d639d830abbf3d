package main

import (
	"fmt"

	"github.com/umass-dining/dining"
)

// Run executes the prune command.
func (c *PruneCmd) Run(deps *Dependencies) error {
	n, err := deps.Scraper.Prune(deps.Ctx, c.Days)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", dining.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Deleted %d menu items older than %d days\n", n, c.Days)
	return nil
}
