package browser

import "fmt"

// PageClipboard is a clipboard scoped to the browser page. Copy keeps the
// payload in process and Paste inserts it at the focused element, which
// works in headless sessions where no system clipboard exists.
type PageClipboard struct {
	b       *Browser
	content string
}

// Clipboard returns a page-scoped clipboard.
func (b *Browser) Clipboard() *PageClipboard {
	return &PageClipboard{b: b}
}

func (c *PageClipboard) View() (string, error) {
	return c.content, nil
}

func (c *PageClipboard) Copy(content string) error {
	c.content = content
	return nil
}

func (c *PageClipboard) Paste() error {
	if err := c.b.page.InsertText(c.content); err != nil {
		return fmt.Errorf("insert text: %w", err)
	}
	return nil
}
