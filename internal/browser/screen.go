package browser

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/png"

	"github.com/go-rod/rod/lib/proto"

	"github.com/v0xg/deskpilot/internal/desktop"
)

// Screenshot captures the visible viewport.
func (b *Browser) Screenshot(ctx context.Context) (image.Image, error) {
	data, err := b.page.Context(ctx).Screenshot(false, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
	if err != nil {
		return nil, fmt.Errorf("capture screenshot: %w", err)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode screenshot: %w", err)
	}
	return img, nil
}

// Size reports the current viewport size in CSS pixels.
func (b *Browser) Size(ctx context.Context) (int, int, error) {
	res, err := b.page.Context(ctx).Eval(`() => ({w: window.innerWidth, h: window.innerHeight})`)
	if err != nil {
		return 0, 0, fmt.Errorf("read viewport size: %w", err)
	}
	return res.Value.Get("w").Int(), res.Value.Get("h").Int(), nil
}

const findScript = `(query, mode) => {
	const w = window.innerWidth, h = window.innerHeight;
	const q = query.trim().toLowerCase();
	const out = [];
	if (!q) return out;

	const visible = (el) => {
		const r = el.getBoundingClientRect();
		if (r.width <= 0 || r.height <= 0) return false;
		if (r.bottom < 0 || r.right < 0 || r.top > h || r.left > w) return false;
		const style = window.getComputedStyle(el);
		return style.visibility !== 'hidden' && style.display !== 'none';
	};
	const push = (el, label) => {
		const r = el.getBoundingClientRect();
		const left = Math.max(r.left, 0), right = Math.min(r.right, w);
		const top = Math.max(r.top, 0), bottom = Math.min(r.bottom, h);
		const l = label.trim();
		const similarity = l.toLowerCase() === q ? 1 : q.length / Math.max(l.length, q.length);
		out.push({
			x: (left + right) / 2 / w,
			y: (top + bottom) / 2 / h,
			similarity: similarity,
			text: l.slice(0, 80)
		});
	};

	if (mode === 'text') {
		const walker = document.createTreeWalker(document.body, NodeFilter.SHOW_TEXT);
		while (walker.nextNode()) {
			const node = walker.currentNode;
			const text = node.textContent || '';
			if (!text.toLowerCase().includes(q)) continue;
			const el = node.parentElement;
			if (!el || !visible(el)) continue;
			push(el, text);
		}
		document.querySelectorAll('input[type="submit"], input[type="button"], input[placeholder]').forEach(el => {
			const label = el.value || el.placeholder || '';
			if (!label.toLowerCase().includes(q) || !visible(el)) return;
			push(el, label);
		});
		return out;
	}

	document.querySelectorAll('[aria-label], [title], img[alt], svg, [class*="icon"]').forEach(el => {
		const label = el.getAttribute('aria-label') || el.getAttribute('title') ||
			el.getAttribute('alt') || el.getAttribute('class') || '';
		if (!label.toLowerCase().includes(q) || !visible(el)) return;
		push(el, label);
	});
	return out;
}`

// Find locates text or icons in the live DOM. The screenshot is not needed
// because the page itself is inspected. Candidates come back in document
// order.
func (b *Browser) Find(ctx context.Context, query string, _ image.Image) ([]desktop.MatchCandidate, error) {
	mode := "icon"
	if len(query) >= 2 && query[0] == '"' && query[len(query)-1] == '"' {
		mode = "text"
		query = query[1 : len(query)-1]
	}

	res, err := b.page.Context(ctx).Eval(findScript, query, mode)
	if err != nil {
		return nil, fmt.Errorf("search page: %w", err)
	}

	var candidates []desktop.MatchCandidate
	for _, v := range res.Value.Arr() {
		candidates = append(candidates, desktop.MatchCandidate{
			Point:      desktop.ScreenPoint{X: v.Get("x").Num(), Y: v.Get("y").Num()},
			Similarity: v.Get("similarity").Num(),
			Text:       v.Get("text").Str(),
		})
	}
	return onScreen(candidates), nil
}

// onScreen drops candidates whose point lies outside the viewport.
func onScreen(candidates []desktop.MatchCandidate) []desktop.MatchCandidate {
	kept := candidates[:0]
	for _, c := range candidates {
		if c.Point.InBounds() {
			kept = append(kept, c)
		}
	}
	return kept
}
