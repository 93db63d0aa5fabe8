package ailink

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lightspeedtech/lightspeed/internal/ailink/driver/anthropic"
	"github.com/lightspeedtech/lightspeed/internal/ailink/driver/openai"
)

func TestNewDriver(t *testing.T) {
	d, err := NewDriver(ProviderSettings{APIKey: "k", Timeout: time.Second})
	require.NoError(t, err)
	client, ok := d.(*anthropic.Client)
	require.True(t, ok)
	assert.Equal(t, time.Second, client.Timeout)

	d, err = NewDriver(ProviderSettings{Provider: "HuggingFace", APIKey: "hf"})
	require.NoError(t, err)
	compat, ok := d.(*openai.Client)
	require.True(t, ok)
	assert.Equal(t, openai.HuggingFaceBaseURL, compat.BaseURL)
	assert.Equal(t, "huggingface", d.Name())

	_, err = NewDriver(ProviderSettings{Provider: "cohere"})
	assert.Error(t, err)
}
