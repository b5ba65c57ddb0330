package notion

import (
	"github.com/jomei/notionapi"
	"github.com/memoir-notes/memoir/internal/core/port"
)

const (
	placeholderPageTitle     = "Untitled"
	placeholderDatabaseTitle = "Untitled Database"
)

func normalizePage(page *notionapi.Page) port.NotionPage {
	return port.NotionPage{
		ID:             string(page.ID),
		Title:          pageTitle(page),
		URL:            pageURL(string(page.ID), page.URL),
		CreatedTime:    page.CreatedTime,
		LastEditedTime: page.LastEditedTime,
	}
}

func normalizeDatabase(database *notionapi.Database) port.NotionDatabase {
	properties := make([]string, 0, len(database.Properties))
	for name := range database.Properties {
		properties = append(properties, name)
	}

	return port.NotionDatabase{
		ID:             string(database.ID),
		Title:          richTextContent(database.Title, placeholderDatabaseTitle),
		URL:            database.URL,
		CreatedTime:    database.CreatedTime,
		LastEditedTime: database.LastEditedTime,
		Properties:     properties,
	}
}

// pageTitle looks for a title property and falls back to a placeholder
// when the upstream representation omits one.
func pageTitle(page *notionapi.Page) string {
	for _, property := range page.Properties {
		if title, ok := property.(*notionapi.TitleProperty); ok {
			return richTextContent(title.Title, placeholderPageTitle)
		}

		if title, ok := property.(notionapi.TitleProperty); ok {
			return richTextContent(title.Title, placeholderPageTitle)
		}
	}

	return placeholderPageTitle
}

func richTextContent(richText []notionapi.RichText, placeholder string) string {
	if len(richText) == 0 {
		return placeholder
	}

	if richText[0].Text != nil && richText[0].Text.Content != "" {
		return richText[0].Text.Content
	}

	if richText[0].PlainText != "" {
		return richText[0].PlainText
	}

	return placeholder
}
