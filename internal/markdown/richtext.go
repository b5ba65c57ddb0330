package markdown

import (
	"github.com/jomei/notionapi"
	"github.com/yuin/goldmark/ast"
	east "github.com/yuin/goldmark/extension/ast"
)

type inlineStyle struct {
	bold          bool
	italic        bool
	strikethrough bool
	code          bool
	link          string
}

// inlineRichText flattens the inline children of n into Notion rich text,
// carrying annotations down through nested emphasis nodes.
func inlineRichText(n ast.Node, source []byte, style inlineStyle) []notionapi.RichText {
	richText := make([]notionapi.RichText, 0)

	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch el := c.(type) {
		case *ast.Text:
			content := string(el.Segment.Value(source))
			if el.SoftLineBreak() || el.HardLineBreak() {
				content += "\n"
			}
			richText = append(richText, chunkRichText(content, style)...)
		case *ast.String:
			richText = append(richText, chunkRichText(string(el.Value), style)...)
		case *ast.Emphasis:
			nested := style
			if el.Level >= 2 {
				nested.bold = true
			} else {
				nested.italic = true
			}
			richText = append(richText, inlineRichText(el, source, nested)...)
		case *east.Strikethrough:
			nested := style
			nested.strikethrough = true
			richText = append(richText, inlineRichText(el, source, nested)...)
		case *ast.CodeSpan:
			nested := style
			nested.code = true
			richText = append(richText, chunkRichText(string(nodeText(el, source)), nested)...)
		case *ast.Link:
			nested := style
			nested.link = string(el.Destination)
			richText = append(richText, inlineRichText(el, source, nested)...)
		case *ast.AutoLink:
			url := string(el.URL(source))
			nested := style
			nested.link = url
			richText = append(richText, chunkRichText(url, nested)...)
		case *ast.Image:
			// Inline images degrade to their alt text linking to the source.
			nested := style
			nested.link = string(el.Destination)
			alt := string(nodeText(el, source))
			if alt == "" {
				alt = nested.link
			}
			richText = append(richText, chunkRichText(alt, nested)...)
		case *ast.RawHTML:
			// Skipped: inline HTML has no Notion representation.
		default:
			richText = append(richText, inlineRichText(el, source, style)...)
		}
	}

	return richText
}

// chunkRichText splits content into fragments below the Notion rich text
// size limit, all carrying the same annotations.
func chunkRichText(content string, style inlineStyle) []notionapi.RichText {
	if content == "" {
		return nil
	}

	richText := make([]notionapi.RichText, 0, 1)

	runes := []rune(content)
	for len(runes) > 0 {
		size := min(len(runes), maxRichTextLength)
		richText = append(richText, styledRichText(string(runes[:size]), style))
		runes = runes[size:]
	}

	return richText
}

func styledRichText(content string, style inlineStyle) notionapi.RichText {
	richText := notionapi.RichText{
		Type: notionapi.ObjectTypeText,
		Text: &notionapi.Text{
			Content: content,
		},
		PlainText: content,
	}

	if style.link != "" {
		richText.Text.Link = &notionapi.Link{Url: style.link}
		richText.Href = style.link
	}

	if style.bold || style.italic || style.strikethrough || style.code {
		richText.Annotations = &notionapi.Annotations{
			Bold:          style.bold,
			Italic:        style.italic,
			Strikethrough: style.strikethrough,
			Code:          style.code,
			Color:         notionapi.ColorDefault,
		}
	}

	return richText
}

func plainRichText(content string) notionapi.RichText {
	return styledRichText(content, inlineStyle{})
}

// nodeText collects the raw text of n's descendants.
func nodeText(n ast.Node, source []byte) []byte {
	var content []byte

	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			content = append(content, t.Segment.Value(source)...)
			continue
		}

		content = append(content, nodeText(c, source)...)
	}

	return content
}
