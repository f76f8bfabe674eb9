package stake_protocol

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
)

// rpcServer is a minimal JSON-RPC endpoint answering the calls a stake run
// makes. It records every method in call order.
type rpcServer struct {
	*httptest.Server

	RentExempt uint64
	Blockhash  solana.Hash
	LastValid  uint64
	Balance    uint64
	// SendError, when set, is returned as a JSON-RPC error for sendTransaction.
	SendError string

	mu      sync.Mutex
	methods []string
	sent    []*solana.Transaction
}

type rpcRequest struct {
	ID     json.RawMessage   `json:"id"`
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
}

func newRPCServer(t *testing.T) *rpcServer {
	s := &rpcServer{
		RentExempt: testRentExempt,
		Blockhash:  solana.Hash(solana.NewWallet().PublicKey()),
		LastValid:  250_000_150,
		Balance:    5 * solana.LAMPORTS_PER_SOL,
	}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		if !assert.NoError(t, json.NewDecoder(r.Body).Decode(&req)) {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		s.mu.Lock()
		s.methods = append(s.methods, req.Method)
		s.mu.Unlock()

		var result interface{}
		switch req.Method {
		case "getMinimumBalanceForRentExemption":
			result = s.RentExempt
		case "getLatestBlockhash":
			result = map[string]interface{}{
				"context": map[string]interface{}{"slot": 1},
				"value": map[string]interface{}{
					"blockhash":            s.Blockhash.String(),
					"lastValidBlockHeight": s.LastValid,
				},
			}
		case "getBalance":
			result = map[string]interface{}{
				"context": map[string]interface{}{"slot": 1},
				"value":   s.Balance,
			}
		case "sendTransaction":
			if s.SendError != "" {
				writeRPC(w, req.ID, "error", map[string]interface{}{"code": -32002, "message": s.SendError})
				return
			}
			tx, err := decodeSentTransaction(req.Params)
			if !assert.NoError(t, err) {
				writeRPC(w, req.ID, "error", map[string]interface{}{"code": -32602, "message": err.Error()})
				return
			}

			s.mu.Lock()
			s.sent = append(s.sent, tx)
			s.mu.Unlock()
			result = tx.Signatures[0].String()
		default:
			writeRPC(w, req.ID, "error", map[string]interface{}{"code": -32601, "message": "method not found"})
			return
		}
		writeRPC(w, req.ID, "result", result)
	}))
	t.Cleanup(s.Close)
	return s
}

func decodeSentTransaction(params []json.RawMessage) (*solana.Transaction, error) {
	if len(params) == 0 {
		return nil, errors.New("missing transaction param")
	}
	var encoded string
	if err := json.Unmarshal(params[0], &encoded); err != nil {
		return nil, err
	}
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, err
	}
	return solana.TransactionFromDecoder(bin.NewBinDecoder(raw))
}

func writeRPC(w http.ResponseWriter, id json.RawMessage, key string, value interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      id,
		key:       value,
	})
}

func (s *rpcServer) Methods() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.methods...)
}

func (s *rpcServer) Sent() []*solana.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*solana.Transaction(nil), s.sent...)
}
