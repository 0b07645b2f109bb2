package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gardar/ocrbatch/pkg/ocr"
	"github.com/gardar/ocrbatch/pkg/tesseract"
)

func newLanguagesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "languages",
		Short: "List the recognition languages",
		RunE: func(cmd *cobra.Command, args []string) error {
			installed := map[string]bool{}
			if langs, err := tesseract.AvailableLanguages(); err == nil {
				for _, l := range langs {
					installed[l] = true
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderLanguages(ocr.Languages, installed))
			return nil
		},
	}
}

func renderLanguages(langs []ocr.LanguageInfo, installed map[string]bool) string {
	rows := make([][]string, 0, len(langs))
	for _, l := range langs {
		status := "missing"
		if installed[string(l.Code)] {
			status = "installed"
		}
		rows = append(rows, []string{string(l.Code), l.Name, l.ISO, status})
	}
	return renderTable([]string{"Code", "Language", "ISO", "Tesseract data"}, rows, nil)
}
