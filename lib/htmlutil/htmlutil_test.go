package htmlutil

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

const page = `<html><head>
<style>.sold { color: red; }</style>
<script>var cfg = {"status": "preload"};</script>
</head><body>
<h1>チケット予約</h1>
<div class="status">受付中</div>
<noscript>javascriptを有効にしてください</noscript>
<p>ご利用ありがとうございます</p>
</body></html>`

func TestVisibleText(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	require.NoError(t, err)

	text := VisibleText(doc)

	require.Contains(t, text, "チケット予約")
	require.Contains(t, text, "受付中")
	require.Contains(t, text, "ご利用ありがとうございます")

	// markup-only content must not leak into keyword matching
	require.NotContains(t, text, "preload")
	require.NotContains(t, text, "color: red")
	require.NotContains(t, text, "javascriptを有効に")
}

func TestCollapseWhitespace(t *testing.T) {
	require.Equal(t, "a\nb\nc", CollapseWhitespace("  a  \n\n\t b \r\n c "))
	require.Equal(t, "", CollapseWhitespace(" \n \t \r\n "))
}
