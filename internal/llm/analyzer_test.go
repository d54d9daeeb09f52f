package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/docnamer/internal/common"
	"github.com/joseph-ayodele/docnamer/internal/metadata"
)

type fakeCompleter struct {
	content string
	err     error
	calls   []CompletionRequest
}

func (f *fakeCompleter) Complete(_ context.Context, req CompletionRequest) (string, error) {
	f.calls = append(f.calls, req)
	return f.content, f.err
}

func TestAnalyzer_Analyze(t *testing.T) {
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		fc := &fakeCompleter{content: `{"category":"Telekommunikation","company":"Vodafone","documentType":"Rechnung","keywords":["Mobilfunk"],"confidence":0.9}`}
		res := NewAnalyzer(fc, nil).Analyze(ctx, "Vodafone GmbH Rechnung")
		require.True(t, res.OK(), res.String())
		assert.Equal(t, "Vodafone", res.Metadata.Company)
		require.Len(t, fc.calls, 1)
		assert.Equal(t, "analyze", fc.calls[0].Purpose)
		require.Len(t, fc.calls[0].Messages, 2)
		assert.Equal(t, RoleSystem, fc.calls[0].Messages[0].Role)
		assert.Contains(t, fc.calls[0].Messages[1].Content, "Vodafone GmbH Rechnung")
	})

	t.Run("nil completer", func(t *testing.T) {
		res := NewAnalyzer(nil, nil).Analyze(ctx, "text")
		assert.Equal(t, metadata.StatusNotConfigured, res.Status)
		assert.False(t, res.OK())
	})

	t.Run("not configured", func(t *testing.T) {
		fc := &fakeCompleter{err: common.NewAppError(common.CodeNotConfigured, "no key", common.ErrNotConfigured)}
		res := NewAnalyzer(fc, nil).Analyze(ctx, "text")
		assert.Equal(t, metadata.StatusNotConfigured, res.Status)
	})

	t.Run("call failed", func(t *testing.T) {
		fc := &fakeCompleter{err: fmt.Errorf("%w: non-2xx status: 500", common.ErrRemoteCall)}
		res := NewAnalyzer(fc, nil).Analyze(ctx, "text")
		assert.Equal(t, metadata.StatusFailed, res.Status)
		assert.True(t, errors.Is(res.Err, common.ErrRemoteCall))
	})

	t.Run("unparseable", func(t *testing.T) {
		fc := &fakeCompleter{content: "Ich kann das nicht beantworten."}
		res := NewAnalyzer(fc, nil).Analyze(ctx, "text")
		assert.Equal(t, metadata.StatusUnusable, res.Status)
	})

	t.Run("empty signal", func(t *testing.T) {
		fc := &fakeCompleter{content: `{"category":"Sonstiges","company":"","documentType":"","keywords":[],"confidence":0.9}`}
		res := NewAnalyzer(fc, nil).Analyze(ctx, "text")
		assert.Equal(t, metadata.StatusUnusable, res.Status)
		assert.ErrorIs(t, res.Err, common.ErrValidation)
	})
}

func TestBuildAnalysisUserPrompt_Truncates(t *testing.T) {
	text := strings.Repeat("ä", MaxPromptChars+500)
	prompt := BuildAnalysisUserPrompt(text)
	assert.Equal(t, MaxPromptChars, strings.Count(prompt, "ä")-strings.Count(BuildAnalysisUserPrompt(""), "ä"))
	assert.Contains(t, prompt, "Sonstiges")
	assert.Contains(t, prompt, "Antworte nur mit JSON")
}

func TestBuildDateMessages(t *testing.T) {
	msgs := BuildDateMessages("Berlin, 15.03.2024", []string{"15.03.2024", "01.04.2024"})
	require.Len(t, msgs, 2)
	assert.Contains(t, msgs[0].Content, "TT.MM.JJJJ")
	assert.Contains(t, msgs[1].Content, "15.03.2024, 01.04.2024")
}
