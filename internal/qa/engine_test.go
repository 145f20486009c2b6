package qa

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"forex-kg-qa/internal/llm"
	"forex-kg-qa/internal/playbook"
	"forex-kg-qa/internal/retrieval"
)

type fakeProvider struct {
	name    string
	ready   bool
	resp    llm.Response
	err     error
	lastReq llm.Request
}

func (f *fakeProvider) Name() string { return f.name }
func (f *fakeProvider) Ready() bool  { return f.ready }

func (f *fakeProvider) Complete(ctx context.Context, req llm.Request) (*llm.Response, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return &f.resp, nil
}

type fakeRetriever struct {
	results []retrieval.Result
	err     error
}

func (f *fakeRetriever) Retrieve(ctx context.Context, question string) ([]retrieval.Result, error) {
	return f.results, f.err
}

func testPlaybook(t *testing.T) *playbook.Playbook {
	t.Helper()
	pb, err := playbook.Parse([]byte(`
entries:
  - topic: leverage-margin
    keywords: ["leverage", "margin"]
    answer: "Leverage goes up to 1:500."
`))
	require.NoError(t, err)
	return pb
}

func TestAskAnswersWithProvider(t *testing.T) {
	p := &fakeProvider{
		name:  "ollama",
		ready: true,
		resp:  llm.Response{Content: "Margin is collateral.", Model: "deepseek-r1:8b", TokensUsed: 12},
	}
	e := &Engine{
		Retriever: &fakeRetriever{results: []retrieval.Result{
			{ID: "chunk-1", Text: "Margin is the collateral held against open positions."},
			{ID: "entity-margin", Text: "Entity: Margin"},
		}},
		Providers: []llm.Provider{p},
		Order:     []string{"ollama"},
	}

	ans, err := e.Ask(context.Background(), "what is margin?")
	require.NoError(t, err)

	assert.Equal(t, "Margin is collateral.", ans.Text)
	assert.Equal(t, "ollama", ans.Provider)
	assert.Equal(t, "deepseek-r1:8b", ans.Model)
	assert.Equal(t, []string{"chunk-1", "entity-margin"}, ans.Sources)
	assert.NotEmpty(t, ans.SessionID)

	assert.Contains(t, p.lastReq.Prompt, "Margin is the collateral")
	assert.Contains(t, p.lastReq.Prompt, "Question: what is margin?")
	assert.True(t, strings.Contains(p.lastReq.System, "forex trading platform"))
}

func TestAskAnswersWithoutRetriever(t *testing.T) {
	p := &fakeProvider{name: "gemini", ready: true, resp: llm.Response{Content: "ok", Model: "gemini-2.0-flash"}}
	e := &Engine{Providers: []llm.Provider{p}, Order: []string{"gemini"}}

	ans, err := e.Ask(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "ok", ans.Text)
	assert.Empty(t, ans.Sources)
}

func TestAskSurvivesRetrievalFailure(t *testing.T) {
	p := &fakeProvider{name: "ollama", ready: true, resp: llm.Response{Content: "ok"}}
	e := &Engine{
		Retriever: &fakeRetriever{err: errors.New("neo4j down")},
		Providers: []llm.Provider{p},
		Order:     []string{"ollama"},
	}

	ans, err := e.Ask(context.Background(), "what is margin?")
	require.NoError(t, err)
	assert.Equal(t, "ok", ans.Text)
}

func TestAskFallsBackToPlaybookWhenProviderFails(t *testing.T) {
	p := &fakeProvider{name: "ollama", ready: true, err: errors.New("connection refused")}
	e := &Engine{
		Providers: []llm.Provider{p},
		Order:     []string{"ollama"},
		Playbook:  testPlaybook(t),
	}

	ans, err := e.Ask(context.Background(), "what leverage do you offer?")
	require.NoError(t, err)
	assert.Equal(t, "Leverage goes up to 1:500.", ans.Text)
	assert.Equal(t, "playbook", ans.Provider)
	assert.Equal(t, "leverage-margin", ans.Model)
}

func TestAskFallsBackToPlaybookWhenNothingReady(t *testing.T) {
	e := &Engine{
		Providers: []llm.Provider{&fakeProvider{name: "ollama", ready: false}},
		Order:     []string{"ollama"},
		Playbook:  testPlaybook(t),
	}

	ans, err := e.Ask(context.Background(), "explain margin calls")
	require.NoError(t, err)
	assert.Equal(t, "playbook", ans.Provider)
}

func TestAskNoAnswer(t *testing.T) {
	e := &Engine{
		Providers: []llm.Provider{&fakeProvider{name: "ollama", ready: false}},
		Order:     []string{"ollama"},
		Playbook:  testPlaybook(t),
	}

	_, err := e.Ask(context.Background(), "what is the weather in tokyo")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoAnswer)
}
