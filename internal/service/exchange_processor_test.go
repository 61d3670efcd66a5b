package service

import (
	"context"
	"testing"

	"go-exchange/pkg/mapper"
	"go-exchange/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRequestExchange(t *testing.T, method string) *models.Exchange {
	t.Helper()
	in := models.NewMessage()
	req := mapper.AsHTTP(in)
	req.SetMethod(method)
	req.SetURI("/orders")
	req.SetVersion("1.1")

	ex, err := models.NewExchange(models.NewContext("edge"), in)
	require.NoError(t, err)
	return ex
}

func TestExchangeProcessor_StampsOut(t *testing.T) {
	ex := newRequestExchange(t, "POST")

	require.NoError(t, NewExchangeProcessor("get", "post").Process(context.Background(), ex))

	require.True(t, ex.HasOut())
	assert.False(t, ex.IsFailed())
	assert.Equal(t, "edge", ex.Out().Header(HeaderProcessedBy, ""))
	assert.Equal(t, ex.ID(), ex.Out().Header(HeaderExchangeID, ""))
	assert.Equal(t, "POST", mapper.AsHTTP(ex.Out()).Method())
	assert.False(t, ex.In().HasHeader(HeaderProcessedBy))
}

func TestExchangeProcessor_RejectsMethod(t *testing.T) {
	ex := newRequestExchange(t, "DELETE")

	require.NoError(t, NewExchangeProcessor("GET").Process(context.Background(), ex))

	assert.True(t, ex.In().IsFault())
	assert.True(t, ex.IsFailed())
	assert.False(t, ex.HasOut())
}

func TestExchangeProcessor_AllowsAnyMethodByDefault(t *testing.T) {
	ex := newRequestExchange(t, "PATCH")

	require.NoError(t, NewExchangeProcessor().Process(context.Background(), ex))

	assert.False(t, ex.IsFailed())
	assert.True(t, ex.HasOut())
}
