package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gardar/ocrbatch/pkg/pipeline"
)

func renderSummary(outcome pipeline.Outcome) string {
	rows := make([][]string, 0, len(outcome.Documents))
	for _, doc := range outcome.Documents {
		pages := "-"
		if doc.Pages > 0 {
			pages = strconv.Itoa(doc.Pages-len(doc.PagesFailed)) + "/" + strconv.Itoa(doc.Pages)
		}
		rows = append(rows, []string{
			filepath.Base(doc.Source),
			string(doc.Status),
			pages,
			doc.Duration.Round(100 * time.Millisecond).String(),
			documentNote(doc),
		})
	}

	var b strings.Builder
	b.WriteString(renderTable(
		[]string{"Document", "Status", "Pages", "Time", "Notes"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignLeft},
	))
	fmt.Fprintf(&b, "\n%d succeeded, %d partial, %d failed, %d skipped\n",
		outcome.Succeeded, outcome.Partial, outcome.Failed, outcome.Skipped)
	return b.String()
}

func documentNote(doc pipeline.DocumentReport) string {
	switch {
	case doc.Err != nil:
		return doc.Err.Error()
	case len(doc.PagesFailed) > 0:
		pages := make([]string, len(doc.PagesFailed))
		for i, p := range doc.PagesFailed {
			pages[i] = strconv.Itoa(p)
		}
		return "missing pages " + strings.Join(pages, ", ")
	case doc.Status == pipeline.StatusSkipped:
		return "already searchable"
	default:
		return doc.Output
	}
}
