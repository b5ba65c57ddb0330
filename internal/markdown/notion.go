package markdown

import (
	"context"

	"github.com/jomei/notionapi"
	"github.com/memoir-notes/memoir/internal/core/port"
	"github.com/pkg/errors"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Notion caps a single rich text fragment at 2000 characters.
const maxRichTextLength = 2000

type Converter struct{}

func NewConverter() *Converter {
	return &Converter{}
}

// Convert implements [port.Converter].
func (c *Converter) Convert(ctx context.Context, markdown string) (*port.ConversionResult, error) {
	source := []byte(markdown)

	blocks, err := ToBlocks(source)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return &port.ConversionResult{
		Blocks:   blocks,
		RichText: ToRichText(source),
	}, nil
}

var _ port.Converter = &Converter{}

// ToBlocks converts markdown source into Notion block structures.
func ToBlocks(source []byte) (notionapi.Blocks, error) {
	root := New().Parser().Parse(text.NewReader(source))

	blocks := make(notionapi.Blocks, 0)

	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		converted, err := convertNode(n, source)
		if err != nil {
			return nil, errors.WithStack(err)
		}

		blocks = append(blocks, converted...)
	}

	return blocks, nil
}

// ToRichText converts markdown source into a flat rich text sequence,
// joining top-level blocks with newlines.
func ToRichText(source []byte) []notionapi.RichText {
	root := New().Parser().Parse(text.NewReader(source))

	richText := make([]notionapi.RichText, 0)

	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		inline := inlineRichText(n, source, inlineStyle{})
		if len(inline) == 0 {
			continue
		}

		if len(richText) > 0 {
			richText = append(richText, plainRichText("\n"))
		}

		richText = append(richText, inline...)
	}

	return richText
}

func convertNode(n ast.Node, source []byte) (notionapi.Blocks, error) {
	switch el := n.(type) {
	case *ast.Heading:
		return notionapi.Blocks{headingBlock(el, source)}, nil
	case *ast.Paragraph:
		return paragraphBlocks(el, source), nil
	case *ast.List:
		return listBlocks(el, source)
	case *ast.FencedCodeBlock:
		return notionapi.Blocks{codeBlock(codeLanguage(el, source), codeContent(el, source))}, nil
	case *ast.CodeBlock:
		return notionapi.Blocks{codeBlock("plain text", codeContent(el, source))}, nil
	case *ast.Blockquote:
		return quoteBlocks(el, source)
	case *ast.ThematicBreak:
		return notionapi.Blocks{&notionapi.DividerBlock{
			BasicBlock: basicBlock(notionapi.BlockTypeDivider),
			Divider:    notionapi.Divider{},
		}}, nil
	case *ast.HTMLBlock:
		// Raw HTML has no Notion equivalent; keep its text visible.
		return notionapi.Blocks{paragraphBlock(chunkRichText(string(rawLines(el, source)), inlineStyle{}))}, nil
	default:
		inline := inlineRichText(n, source, inlineStyle{})
		if len(inline) == 0 {
			return notionapi.Blocks{}, nil
		}

		return notionapi.Blocks{paragraphBlock(inline)}, nil
	}
}

func headingBlock(h *ast.Heading, source []byte) notionapi.Block {
	richText := inlineRichText(h, source, inlineStyle{})

	// Notion supports three heading levels; deeper markdown levels clamp.
	level := h.Level
	if level > 3 {
		level = 3
	}

	heading := notionapi.Heading{RichText: richText}

	switch level {
	case 1:
		return &notionapi.Heading1Block{
			BasicBlock: basicBlock(notionapi.BlockTypeHeading1),
			Heading1:   heading,
		}
	case 2:
		return &notionapi.Heading2Block{
			BasicBlock: basicBlock(notionapi.BlockTypeHeading2),
			Heading2:   heading,
		}
	default:
		return &notionapi.Heading3Block{
			BasicBlock: basicBlock(notionapi.BlockTypeHeading3),
			Heading3:   heading,
		}
	}
}

func paragraphBlocks(p *ast.Paragraph, source []byte) notionapi.Blocks {
	// A paragraph holding a single image becomes an image block.
	if image, ok := soleImage(p); ok {
		return notionapi.Blocks{imageBlock(image, source)}
	}

	richText := inlineRichText(p, source, inlineStyle{})
	if len(richText) == 0 {
		return notionapi.Blocks{}
	}

	return notionapi.Blocks{paragraphBlock(richText)}
}

func paragraphBlock(richText []notionapi.RichText) notionapi.Block {
	return &notionapi.ParagraphBlock{
		BasicBlock: basicBlock(notionapi.BlockTypeParagraph),
		Paragraph: notionapi.Paragraph{
			RichText: richText,
		},
	}
}

func listBlocks(l *ast.List, source []byte) (notionapi.Blocks, error) {
	blocks := make(notionapi.Blocks, 0)

	for item := l.FirstChild(); item != nil; item = item.NextSibling() {
		richText := make([]notionapi.RichText, 0)
		children := make(notionapi.Blocks, 0)

		for c := item.FirstChild(); c != nil; c = c.NextSibling() {
			switch el := c.(type) {
			case *ast.TextBlock, *ast.Paragraph:
				if len(richText) > 0 {
					richText = append(richText, plainRichText("\n"))
				}
				richText = append(richText, inlineRichText(el, source, inlineStyle{})...)
			default:
				nested, err := convertNode(c, source)
				if err != nil {
					return nil, errors.WithStack(err)
				}
				children = append(children, nested...)
			}
		}

		if l.IsOrdered() {
			blocks = append(blocks, &notionapi.NumberedListItemBlock{
				BasicBlock: basicBlock(notionapi.BlockTypeNumberedListItem),
				NumberedListItem: notionapi.ListItem{
					RichText: richText,
					Children: children,
				},
			})
		} else {
			blocks = append(blocks, &notionapi.BulletedListItemBlock{
				BasicBlock: basicBlock(notionapi.BlockTypeBulletedListItem),
				BulletedListItem: notionapi.ListItem{
					RichText: richText,
					Children: children,
				},
			})
		}
	}

	return blocks, nil
}

func quoteBlocks(q *ast.Blockquote, source []byte) (notionapi.Blocks, error) {
	richText := make([]notionapi.RichText, 0)
	children := make(notionapi.Blocks, 0)

	first := true
	for c := q.FirstChild(); c != nil; c = c.NextSibling() {
		if _, isParagraph := c.(*ast.Paragraph); isParagraph && first {
			richText = inlineRichText(c, source, inlineStyle{})
			first = false
			continue
		}

		nested, err := convertNode(c, source)
		if err != nil {
			return nil, errors.WithStack(err)
		}

		children = append(children, nested...)
	}

	return notionapi.Blocks{&notionapi.QuoteBlock{
		BasicBlock: basicBlock(notionapi.BlockTypeQuote),
		Quote: notionapi.Quote{
			RichText: richText,
			Children: children,
		},
	}}, nil
}

func codeBlock(language string, content string) notionapi.Block {
	if language == "" {
		language = "plain text"
	}

	return &notionapi.CodeBlock{
		BasicBlock: basicBlock(notionapi.BlockTypeCode),
		Code: notionapi.Code{
			RichText: chunkRichText(content, inlineStyle{}),
			Language: language,
		},
	}
}

func imageBlock(image *ast.Image, source []byte) notionapi.Block {
	caption := make([]notionapi.RichText, 0)
	if alt := string(nodeText(image, source)); alt != "" {
		caption = append(caption, plainRichText(alt))
	}

	return &notionapi.ImageBlock{
		BasicBlock: basicBlock(notionapi.BlockTypeImage),
		Image: notionapi.Image{
			Type: notionapi.FileTypeExternal,
			External: &notionapi.FileObject{
				URL: string(image.Destination),
			},
			Caption: caption,
		},
	}
}

func basicBlock(blockType notionapi.BlockType) notionapi.BasicBlock {
	return notionapi.BasicBlock{
		Object: notionapi.ObjectTypeBlock,
		Type:   blockType,
	}
}

func soleImage(p *ast.Paragraph) (*ast.Image, bool) {
	child := p.FirstChild()
	if child == nil || child.NextSibling() != nil {
		return nil, false
	}

	image, ok := child.(*ast.Image)

	return image, ok
}

func codeLanguage(el *ast.FencedCodeBlock, source []byte) string {
	if el.Info == nil {
		return ""
	}

	return string(el.Language(source))
}

func codeContent(n interface{ Lines() *text.Segments }, source []byte) string {
	var content []byte

	lines := n.Lines()
	for i := range lines.Len() {
		segment := lines.At(i)
		content = append(content, segment.Value(source)...)
	}

	// Trailing newline is fence formatting, not content.
	if len(content) > 0 && content[len(content)-1] == '\n' {
		content = content[:len(content)-1]
	}

	return string(content)
}

func rawLines(n ast.Node, source []byte) []byte {
	var content []byte

	lines := n.Lines()
	for i := range lines.Len() {
		segment := lines.At(i)
		content = append(content, segment.Value(source)...)
	}

	return content
}
