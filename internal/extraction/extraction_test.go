package extraction

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgelabs/fastapi-forge/internal/spec"
)

func TestDisabledEngine(t *testing.T) {
	var e Engine = Disabled{}

	_, err := e.ExtractCPS(context.Background(), "a chatbot")
	require.ErrorIs(t, err, ErrUnavailable)

	_, err = e.RefineFiles(context.Background(), spec.CPS{}, nil, "fix it")
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestReplaceAll(t *testing.T) {
	out := replaceAll("hello {name}, {name}!", map[string]string{"{name}": "world"})
	assert.Equal(t, "hello world, world!", out)
}
