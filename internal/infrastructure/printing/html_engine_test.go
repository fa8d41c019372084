package printing

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTMLEngine_RenderDocument(t *testing.T) {
	doc, err := NewModernBuilder().Build(PreviewData())
	require.NoError(t, err)

	html, err := NewHTMLEngine().RenderDocument(doc, 1)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(html, "<!DOCTYPE html>"))
	assert.Contains(t, html, "<title>Invoice #INV-2024-001</title>")
	assert.Contains(t, html, `data-role="items"`)
	assert.Contains(t, html, "Website design")
	assert.Contains(t, html, "$1,600.00")
	assert.Contains(t, html, "rgb(39,128,227)")
	assert.Contains(t, html, "transform:scale(1)")
	assert.Equal(t, doc.PageCount(), strings.Count(html, `class="sheet"`))
}

func TestHTMLEngine_EscapesText(t *testing.T) {
	data := PreviewData()
	data.Client.Name = "<script>alert(1)</script>"
	doc, err := NewClassicBuilder().Build(data)
	require.NoError(t, err)

	html, err := NewHTMLEngine().RenderDocument(doc, 1)
	require.NoError(t, err)
	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, "&lt;script&gt;")
}

func TestHTMLEngine_RenderPreview(t *testing.T) {
	engine := NewHTMLEngine()

	t.Run("miniature", func(t *testing.T) {
		doc, err := DefaultRegistry().Preview(1)
		require.NoError(t, err)

		html, err := engine.RenderPreview(doc)
		require.NoError(t, err)
		assert.Contains(t, html, "transform:scale(0.5)")
		assert.Contains(t, html, "width:105.00mm")
	})

	t.Run("placeholder", func(t *testing.T) {
		html, err := engine.RenderPreview(PlaceholderPreview(999))
		require.NoError(t, err)
		assert.Contains(t, html, "Preview unavailable")
		assert.Contains(t, html, "Template 999 is not installed")
	})
}

func TestHTMLEngine_InlineLogo(t *testing.T) {
	data := PreviewData()
	data.Business.Logo = pngDataURL(t)
	doc, err := NewClassicBuilder().Build(data)
	require.NoError(t, err)

	html, err := NewHTMLEngine().RenderDocument(doc, 1)
	require.NoError(t, err)
	assert.Contains(t, html, `src="data:image/png;base64,`)

	data.Business.Logo = "/srv/logo.png"
	doc, err = NewClassicBuilder().Build(data)
	require.NoError(t, err)
	html, err = NewHTMLEngine().RenderDocument(doc, 1)
	require.NoError(t, err)
	assert.NotContains(t, html, "<img")
	assert.Contains(t, html, "Your Business")
}

func TestHTMLEngine_InvalidDocument(t *testing.T) {
	_, err := NewHTMLEngine().RenderDocument(&Document{}, 1)
	assert.Error(t, err)
}
