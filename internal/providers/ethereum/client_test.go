package ethereum_test

import (
	"context"
	"errors"
	"math/big"
	"testing"

	goethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-token-sweeper/internal/domain"
	"github.com/feral-file/ff-token-sweeper/internal/logger"
	"github.com/feral-file/ff-token-sweeper/internal/mocks"
	"github.com/feral-file/ff-token-sweeper/internal/providers/ethereum"
)

func TestMain(m *testing.M) {
	if err := logger.Initialize(logger.Config{Debug: false}); err != nil {
		panic(err)
	}
	m.Run()
}

var (
	sender = common.HexToAddress("0x1111111111111111111111111111111111111111")
	token  = "0x2222222222222222222222222222222222222222"
)

// rpcDataError mimics a JSON-RPC error carrying revert data
type rpcDataError struct{}

func (rpcDataError) Error() string          { return "rpc error" }
func (rpcDataError) ErrorData() interface{} { return "0x08c379a0" }

func abiBool(v bool) []byte {
	out := make([]byte, 32)
	if v {
		out[31] = 1
	}
	return out
}

func tokenCall() domain.TransferCall {
	return domain.TransferCall{
		To:    token,
		Value: big.NewInt(0),
		Data:  make([]byte, 68),
		Kind:  domain.TransferKindTokenTransfer,
	}
}

func TestSimulateTransfer(t *testing.T) {
	tests := []struct {
		name         string
		call         domain.TransferCall
		setupMocks   func(client *mocks.MockEthClient)
		expectErr    bool
		expectRevert bool
	}{
		{
			name: "transfer returns true",
			call: tokenCall(),
			setupMocks: func(client *mocks.MockEthClient) {
				client.EXPECT().
					CallContract(gomock.Any(), gomock.Any(), nil).
					DoAndReturn(func(ctx context.Context, msg goethereum.CallMsg, block *big.Int) ([]byte, error) {
						assert.Equal(t, sender, msg.From)
						assert.Equal(t, common.HexToAddress(token), *msg.To)
						assert.Len(t, msg.Data, 68)
						assert.Nil(t, msg.Value)
						return abiBool(true), nil
					})
			},
		},
		{
			name: "transfer returns false",
			call: tokenCall(),
			setupMocks: func(client *mocks.MockEthClient) {
				client.EXPECT().CallContract(gomock.Any(), gomock.Any(), nil).Return(abiBool(false), nil)
			},
			expectErr:    true,
			expectRevert: true,
		},
		{
			name: "garbage return data",
			call: tokenCall(),
			setupMocks: func(client *mocks.MockEthClient) {
				client.EXPECT().CallContract(gomock.Any(), gomock.Any(), nil).Return([]byte{0x01}, nil)
			},
			expectErr:    true,
			expectRevert: true,
		},
		{
			name: "revert message",
			call: tokenCall(),
			setupMocks: func(client *mocks.MockEthClient) {
				client.EXPECT().CallContract(gomock.Any(), gomock.Any(), nil).
					Return(nil, errors.New("execution reverted: ERC20: transfer amount exceeds balance"))
			},
			expectErr:    true,
			expectRevert: true,
		},
		{
			name: "revert data error",
			call: tokenCall(),
			setupMocks: func(client *mocks.MockEthClient) {
				client.EXPECT().CallContract(gomock.Any(), gomock.Any(), nil).Return(nil, rpcDataError{})
			},
			expectErr:    true,
			expectRevert: true,
		},
		{
			name: "network error is not a revert",
			call: tokenCall(),
			setupMocks: func(client *mocks.MockEthClient) {
				client.EXPECT().CallContract(gomock.Any(), gomock.Any(), nil).Return(nil, errors.New("dial tcp: connection refused"))
			},
			expectErr: true,
		},
		{
			name: "empty return confirmed by gas estimate",
			call: tokenCall(),
			setupMocks: func(client *mocks.MockEthClient) {
				client.EXPECT().CallContract(gomock.Any(), gomock.Any(), nil).Return([]byte{}, nil)
				client.EXPECT().EstimateGas(gomock.Any(), gomock.Any()).Return(uint64(51000), nil)
			},
		},
		{
			name: "empty return and gas estimate reverts",
			call: tokenCall(),
			setupMocks: func(client *mocks.MockEthClient) {
				client.EXPECT().CallContract(gomock.Any(), gomock.Any(), nil).Return(nil, nil)
				client.EXPECT().EstimateGas(gomock.Any(), gomock.Any()).Return(uint64(0), errors.New("execution reverted"))
			},
			expectErr:    true,
			expectRevert: true,
		},
		{
			name: "native call carries value",
			call: domain.TransferCall{To: token, Value: big.NewInt(7), Kind: domain.TransferKindNative},
			setupMocks: func(client *mocks.MockEthClient) {
				client.EXPECT().
					CallContract(gomock.Any(), gomock.Any(), nil).
					DoAndReturn(func(ctx context.Context, msg goethereum.CallMsg, block *big.Int) ([]byte, error) {
						assert.Equal(t, int64(7), msg.Value.Int64())
						return nil, nil
					})
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			client := mocks.NewMockEthClient(ctrl)
			tt.setupMocks(client)

			sim := ethereum.NewClient(domain.ChainEthereumMainnet, client)
			err := sim.SimulateTransfer(context.Background(), sender, tt.call)

			if !tt.expectErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.expectRevert, errors.Is(err, domain.ErrCallReverted))
		})
	}
}

func TestNativeBalance(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockEthClient(ctrl)
	client.EXPECT().BalanceAt(gomock.Any(), sender, nil).Return(big.NewInt(42), nil)
	client.EXPECT().BalanceAt(gomock.Any(), sender, nil).Return(nil, errors.New("boom"))

	sim := ethereum.NewClient(domain.ChainBase, client)

	balance, err := sim.NativeBalance(context.Background(), sender)
	require.NoError(t, err)
	assert.Equal(t, int64(42), balance.Int64())

	_, err = sim.NativeBalance(context.Background(), sender)
	assert.Error(t, err)
}

func TestClientPool_ForChain(t *testing.T) {
	ctrl := gomock.NewController(t)
	dialer := mocks.NewMockEthClientDialer(ctrl)
	client := mocks.NewMockEthClient(ctrl)

	pool := ethereum.NewClientPool(dialer, map[domain.Chain]string{
		domain.ChainBase:     "https://base.example.com",
		domain.ChainPolygon:  "https://wrong.example.com",
		domain.ChainArbitrum: "https://down.example.com",
	})

	dialer.EXPECT().Dial(gomock.Any(), "https://base.example.com").Return(client, nil).Times(1)
	client.EXPECT().ChainID(gomock.Any()).Return(big.NewInt(8453), nil)

	first, err := pool.ForChain(context.Background(), domain.ChainBase)
	require.NoError(t, err)
	second, err := pool.ForChain(context.Background(), domain.ChainBase)
	require.NoError(t, err)
	assert.Same(t, first, second)

	// wrong network
	wrong := mocks.NewMockEthClient(ctrl)
	dialer.EXPECT().Dial(gomock.Any(), "https://wrong.example.com").Return(wrong, nil)
	wrong.EXPECT().ChainID(gomock.Any()).Return(big.NewInt(1), nil)
	wrong.EXPECT().Close()
	_, err = pool.ForChain(context.Background(), domain.ChainPolygon)
	assert.ErrorContains(t, err, "serves chain id 1")

	// dial failure
	dialer.EXPECT().Dial(gomock.Any(), "https://down.example.com").Return(nil, errors.New("refused"))
	_, err = pool.ForChain(context.Background(), domain.ChainArbitrum)
	assert.ErrorContains(t, err, "failed to dial")

	// no rpc url
	_, err = pool.ForChain(context.Background(), domain.ChainEthereumMainnet)
	assert.ErrorIs(t, err, domain.ErrUnsupportedChain)

	client.EXPECT().Close()
	pool.Close()
}
