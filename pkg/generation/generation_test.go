package generation

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/blueberrycongee/hyde/pkg/errors"
	"github.com/blueberrycongee/hyde/pkg/prompt"
)

// MockGenerator is a mock implementation of Generator.
type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) Generate(ctx context.Context, promptText string) ([]string, error) {
	args := m.Called(ctx, promptText)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockGenerator) Model() string {
	return "mock-model"
}

func TestPipeline_Run(t *testing.T) {
	tmpl := prompt.MustNew("Answer: {question}")
	gen := new(MockGenerator)
	gen.On("Generate", mock.Anything, "Answer: why?").Return([]string{"because", "reasons"}, nil)

	p := NewPipeline(tmpl, gen)
	texts, err := p.Run(context.Background(), "why?")
	require.NoError(t, err)
	assert.Equal(t, []string{"because", "reasons"}, texts)
	gen.AssertExpectations(t)
}

func TestPipeline_Run_GeneratorFailure(t *testing.T) {
	gen := new(MockGenerator)
	gen.On("Generate", mock.Anything, mock.Anything).Return(nil, fmt.Errorf("upstream down"))

	p := NewPipeline(prompt.MustNew("{question}"), gen)
	_, err := p.Run(context.Background(), "q")
	require.Error(t, err)
	assert.True(t, errors.IsGeneration(err))
}

func TestPipeline_Run_EmptyOutput(t *testing.T) {
	gen := new(MockGenerator)
	gen.On("Generate", mock.Anything, mock.Anything).Return([]string{}, nil)

	p := NewPipeline(prompt.MustNew("{question}"), gen)
	_, err := p.Run(context.Background(), "q")
	require.Error(t, err)
	assert.True(t, errors.IsGeneration(err))
}

func TestPipeline_Run_PreservesTypedError(t *testing.T) {
	typed := errors.NewGenerationError("openai", "gpt-4o-mini", "rate limited", nil)
	gen := new(MockGenerator)
	gen.On("Generate", mock.Anything, mock.Anything).Return(nil, error(typed))

	p := NewPipeline(prompt.MustNew("{question}"), gen)
	_, err := p.Run(context.Background(), "q")
	assert.Same(t, typed, err)
}

func TestPipeline_Accessors(t *testing.T) {
	tmpl := prompt.MustNew("{question}")
	gen := new(MockGenerator)
	p := NewPipeline(tmpl, gen)

	assert.Same(t, tmpl, p.Template())
	assert.Equal(t, Generator(gen), p.Generator())
}
