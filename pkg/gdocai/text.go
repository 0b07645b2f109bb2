package gdocai

import (
	"strings"

	"cloud.google.com/go/documentai/apiv1/documentaipb"
)

// textFromLayout extracts text from a layout's text anchor segments
func textFromLayout(layout *documentaipb.Document_Page_Layout, fullText string) string {
	if layout == nil || layout.TextAnchor == nil {
		return ""
	}
	runes := []rune(fullText)
	var b strings.Builder
	for _, seg := range layout.TextAnchor.TextSegments {
		start := max(int(seg.StartIndex), 0)
		end := min(int(seg.EndIndex), len(runes))
		if start > end {
			start = end
		}
		b.WriteString(string(runes[start:end]))
	}
	return b.String()
}

// cleanTokenText flattens a token's text to a single word.
func cleanTokenText(token *documentaipb.Document_Page_Token, fullText string) string {
	text := strings.TrimSpace(textFromLayout(token.Layout, fullText))
	text = strings.ReplaceAll(text, "\n", " ")
	return strings.ReplaceAll(text, "\r", "")
}
