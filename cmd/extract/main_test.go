package main

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/TamirEvan/extract/config"
	"github.com/TamirEvan/extract/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunConversionMissingFileReturnsError(t *testing.T) {
	_, err := runConversion("/nonexistent/input.xml", config.Default(), 1)
	require.Error(t, err)
}

func TestPlainTextStripsTags(t *testing.T) {
	got := plainText("<w:p><w:r><w:t>Hello</w:t></w:r></w:p>")
	assert.Equal(t, "Hello", got)
}

func TestRunConversionParsesPage(t *testing.T) {
	tmp := t.TempDir() + "/page.xml"
	page := `<page width="100" height="100">
<span font_name="Times" trm="10 0 0 10 0 0" ctm="1 0 0 1 0 0" wmode="0">
<char ucs="65" pre_x="0" pre_y="0" x="0.5" y="0" adv="0.5"/>
</span>
</page>
`
	require.NoError(t, os.WriteFile(tmp, []byte(page), 0o644))

	results, err := runConversion(tmp, config.Default(), 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.NotEmpty(t, results[0].Fragment)
}

func TestRunConversionUsesRunPagesWhenWorkersAboveOne(t *testing.T) {
	tmp := t.TempDir() + "/pages.xml"
	onePage := `<page width="100" height="100">
<span font_name="Times" trm="10 0 0 10 0 0" ctm="1 0 0 1 0 0" wmode="0">
<char ucs="65" pre_x="0" pre_y="0" x="0.5" y="0" adv="0.5"/>
</span>
</page>
`
	require.NoError(t, os.WriteFile(tmp, []byte(strings.Repeat(onePage, 2)), 0o644))

	serial, err := runConversion(tmp, config.Default(), 1)
	require.NoError(t, err)
	parallel, err := runConversion(tmp, config.Default(), 4)
	require.NoError(t, err)

	require.Len(t, serial, 2)
	require.Len(t, parallel, 2)
	assert.Equal(t, serial[0].Fragment, parallel[0].Fragment)
	assert.Equal(t, serial[1].Fragment, parallel[1].Fragment)
}

func TestEngineResultPropagatesParagraphCount(t *testing.T) {
	results, err := engine.Run(context.Background(), strings.NewReader(`<page width="1" height="1"></page>`), config.Default())
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 0, results[0].Paragraphs)
}
