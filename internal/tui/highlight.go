package tui

import (
	"io"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// highlightStyle is the chroma style used for exported trees and code.
const highlightStyle = "ralph"

func init() {
	styles.Register(chroma.MustNewStyle(highlightStyle, chroma.StyleEntries{
		chroma.Text:                "#DFE6E9",
		chroma.Error:               "#D63031",
		chroma.Comment:             "#636E72 italic",
		chroma.Keyword:             "#6C5CE7",
		chroma.KeywordConstant:     "#FDCB6E",
		chroma.KeywordType:         "#FDCB6E",
		chroma.Operator:            "#74B9FF",
		chroma.Punctuation:         "#636E72",
		chroma.Name:                "#DFE6E9",
		chroma.NameTag:             "#74B9FF",
		chroma.NameFunction:        "#74B9FF",
		chroma.Literal:             "#DFE6E9",
		chroma.LiteralNumber:       "#FFEAA7",
		chroma.LiteralString:       "#00B894",
		chroma.LiteralStringEscape: "#FFEAA7",
		chroma.GenericDeleted:      "#D63031",
		chroma.GenericInserted:     "#00B894",
		chroma.GenericStrong:       "bold",
		chroma.Background:          "",
	}))
}

// Highlight writes src to w with terminal colors. language is a chroma lexer
// name or alias ("json", "yaml", "go"); unknown languages are written plain.
func Highlight(w io.Writer, src, language string) error {
	lexer := lexers.Get(language)
	if lexer == nil {
		_, err := io.WriteString(w, src)
		return err
	}
	iterator, err := chroma.Coalesce(lexer).Tokenise(nil, src)
	if err != nil {
		return err
	}
	return formatters.TTY256.Format(w, styles.Get(highlightStyle), iterator)
}
