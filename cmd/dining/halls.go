package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/umass-dining/dining"
)

// Run executes the halls command.
func (c *HallsCmd) Run(deps *Dependencies) error {
	t := table.NewWriter()
	t.SetOutputMirror(deps.Stdout)
	t.AppendHeader(table.Row{"ID", "Name", "Short Name", "Slug"})
	for _, h := range dining.Halls() {
		t.AppendRow(table.Row{h.ID, h.Name, h.ShortName, h.URLSlug})
	}
	t.SetStyle(table.StyleRounded)
	t.Render()
	return nil
}
