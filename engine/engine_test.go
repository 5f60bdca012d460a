package engine

import (
	"context"
	"strings"
	"testing"

	"github.com/TamirEvan/extract/config"
	"github.com/TamirEvan/extract/page"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePage = `<page width="612" height="792">
<span font_name="Times" trm="12 0 0 12 0 0" ctm="1 0 0 1 0 0" wmode="0">
<char ucs="72" pre_x="10" pre_y="100" x="10.5" y="100" adv="0.5"/>
<char ucs="105" pre_x="10.5" pre_y="100" x="10.8" y="100" adv="0.3"/>
</span>
</page>
`

func TestRunEmitsFragmentPerPage(t *testing.T) {
	results, err := Run(context.Background(), strings.NewReader(samplePage), config.Default())
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 1, results[0].Paragraphs)
	assert.Contains(t, results[0].Fragment, "<w:p>")
}

func TestRunInvalidXMLReturnsParseKind(t *testing.T) {
	_, err := Run(context.Background(), strings.NewReader("<page><span></page>"), config.Default())
	require.Error(t, err)
	var engErr *Error
	require.ErrorAs(t, err, &engErr)
	assert.Equal(t, KindParse, engErr.Kind)
}

func TestRunCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Run(ctx, strings.NewReader(samplePage), config.Default())
	require.Error(t, err)
	var engErr *Error
	require.ErrorAs(t, err, &engErr)
	assert.Equal(t, KindInternal, engErr.Kind)
}

func TestRunPagesMatchesSerialRun(t *testing.T) {
	doc, err := page.Load(strings.NewReader(samplePage+samplePage), false)
	require.NoError(t, err)

	serial, err := RunPages(context.Background(), doc, config.Default(), 1)
	require.NoError(t, err)
	parallel, err := RunPages(context.Background(), doc, config.Default(), 4)
	require.NoError(t, err)

	require.Len(t, serial, 2)
	require.Len(t, parallel, 2)
	assert.Equal(t, serial[0].Fragment, parallel[0].Fragment)
	assert.Equal(t, serial[1].Fragment, parallel[1].Fragment)
}

func TestKindStringUnknown(t *testing.T) {
	assert.Equal(t, "unknown error", Kind(99).String())
}
