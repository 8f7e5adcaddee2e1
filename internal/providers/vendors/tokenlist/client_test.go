package tokenlist_test

import (
	"context"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-token-sweeper/internal/adapter"
	"github.com/feral-file/ff-token-sweeper/internal/fetcher"
	"github.com/feral-file/ff-token-sweeper/internal/logger"
	"github.com/feral-file/ff-token-sweeper/internal/mocks"
	"github.com/feral-file/ff-token-sweeper/internal/providers/vendors/tokenlist"
)

const apiURL = "https://tokens.example.com"

func TestMain(m *testing.M) {
	if err := logger.Initialize(logger.Config{Debug: false}); err != nil {
		panic(err)
	}
	m.Run()
}

func TestTokenListClient_GetVerifiedTokens(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockFetcher := mocks.NewMockFetcher(ctrl)
	client := tokenlist.NewClient(mockFetcher, apiURL, []string{"k1"}, 500, adapter.NewJSON())

	mockFetcher.EXPECT().
		FetchJSON(gomock.Any(), fetcher.Request{
			URL:    apiURL + "/tokens/verified?chainId=8453&limit=500&listed_only=true",
			Header: "X-API-Key",
		}, []string{"k1"}).
		Return([]byte(`{"tokens":[
			{"address":"0xAAA","symbol":"AAA","decimals":18,"listed":true},
			{"address":"0xBBB","symbol":"BBB","decimals":6,"listed":false},
			{"address":"0xCCC","symbol":"CCC","decimals":8},
			{"address":"","symbol":"EMPTY","decimals":8}
		]}`), nil)

	tokens, err := client.GetVerifiedTokens(context.Background(), 8453)

	require.NoError(t, err)
	require.Len(t, tokens, 2)
	assert.Equal(t, "0xAAA", tokens[0].Address)
	assert.Equal(t, "0xCCC", tokens[1].Address)
}

func TestTokenListClient_EmptyList(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockFetcher := mocks.NewMockFetcher(ctrl)
	client := tokenlist.NewClient(mockFetcher, apiURL, []string{"k1"}, 100, adapter.NewJSON())

	mockFetcher.EXPECT().FetchJSON(gomock.Any(), gomock.Any(), gomock.Any()).Return([]byte(`{"tokens":[]}`), nil)

	tokens, err := client.GetVerifiedTokens(context.Background(), 1)

	require.NoError(t, err)
	assert.Empty(t, tokens)
}

func TestTokenListClient_MalformedBodyIsEmpty(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "not json", body: `<html>gateway</html>`},
		{name: "tokens not an array", body: `{"tokens":"unavailable"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			mockFetcher := mocks.NewMockFetcher(ctrl)
			client := tokenlist.NewClient(mockFetcher, apiURL, []string{"k1"}, 100, adapter.NewJSON())

			mockFetcher.EXPECT().FetchJSON(gomock.Any(), gomock.Any(), gomock.Any()).Return([]byte(tt.body), nil)

			tokens, err := client.GetVerifiedTokens(context.Background(), 1)

			require.NoError(t, err)
			assert.Empty(t, tokens)
		})
	}
}

func TestTokenListClient_PublicEndpoint(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockFetcher := mocks.NewMockFetcher(ctrl)
	client := tokenlist.NewClient(mockFetcher, apiURL, nil, 100, adapter.NewJSON())

	mockFetcher.EXPECT().
		FetchJSON(gomock.Any(), fetcher.Request{
			URL: apiURL + "/tokens/verified?chainId=1&limit=100&listed_only=true",
		}, []string{""}).
		Return([]byte(`{"tokens":[{"address":"0xaaa"}]}`), nil)

	tokens, err := client.GetVerifiedTokens(context.Background(), 1)

	require.NoError(t, err)
	assert.Len(t, tokens, 1)
}

func TestTokenListClient_NotConfigured(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := tokenlist.NewClient(mocks.NewMockFetcher(ctrl), "", nil, 100, adapter.NewJSON())

	_, err := client.GetVerifiedTokens(context.Background(), 1)
	assert.ErrorIs(t, err, tokenlist.ErrNotConfigured)
}
