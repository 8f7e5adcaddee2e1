package dto

import (
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/feral-file/ff-token-sweeper/internal/domain"
)

// TransferCallResponse represents one call of a sweep batch
type TransferCallResponse struct {
	To           string `json:"to"`
	Value        string `json:"value"` // Wei, decimal string
	Data         string `json:"data"`  // 0x-prefixed calldata, "0x" for native transfers
	Kind         string `json:"kind"`
	Description  string `json:"description"`
	TokenAddress string `json:"token_address"`
	USDValue     string `json:"usd_value"`
}

// PrecheckResponse summarises the simulation pass of a build
type PrecheckResponse struct {
	TotalCandidates int `json:"total_candidates"`
	ValidCount      int `json:"valid_count"`
	FailedCount     int `json:"failed_count"`
}

// TransferBatchResponse represents a built sweep batch
type TransferBatchResponse struct {
	ID          string                 `json:"id"`
	Chain       domain.Chain           `json:"chain"`
	Sender      string                 `json:"sender"`
	Destination string                 `json:"destination"`
	Calls       []TransferCallResponse `json:"calls"`
	Precheck    PrecheckResponse       `json:"precheck"`
	CreatedAt   time.Time              `json:"created_at"`
	// Submitted is set when the batch was handed to the batch submitter
	Submitted bool `json:"submitted"`
	// Degraded is set when the token list was filtered without a verified token list
	Degraded bool `json:"degraded"`
}

// InvalidateCacheResponse represents the result of a cache invalidation
type InvalidateCacheResponse struct {
	Scope string `json:"scope"`
	// BalanceVersion is the new global balance cache version
	BalanceVersion *int64 `json:"balance_version,omitempty"`
}

// MapTransferBatchToDTO maps a transfer batch to its response
func MapTransferBatchToDTO(batch *domain.TransferBatch) *TransferBatchResponse {
	resp := &TransferBatchResponse{
		ID:          batch.ID,
		Chain:       batch.Chain,
		Sender:      batch.Sender,
		Destination: batch.Destination,
		Calls:       make([]TransferCallResponse, 0, len(batch.Calls)),
		Precheck: PrecheckResponse{
			TotalCandidates: batch.Precheck.TotalCandidates,
			ValidCount:      batch.Precheck.ValidCount,
			FailedCount:     batch.Precheck.FailedCount,
		},
		CreatedAt: batch.CreatedAt,
	}

	for _, call := range batch.Calls {
		value := "0"
		if call.Value != nil {
			value = call.Value.String()
		}
		resp.Calls = append(resp.Calls, TransferCallResponse{
			To:           call.To,
			Value:        value,
			Data:         hexutil.Encode(call.Data),
			Kind:         string(call.Kind),
			Description:  call.Description,
			TokenAddress: call.TokenAddress,
			USDValue:     call.USDValue.StringFixed(2),
		})
	}

	return resp
}
