// Copyright 2025 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package txhash computes transaction IDs from signed transaction CBOR.
//
// The ID of a transaction is the blake2b-256 hash of its body exactly as it
// was encoded, so the body is extracted as raw CBOR and never re-encoded.
package txhash

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"golang.org/x/crypto/blake2b"
)

var ErrInvalidTransaction = errors.New("invalid signed transaction")

// Body returns the raw CBOR of the transaction body. Signed transactions are
// CBOR arrays with the body as the first element: [body, witnesses] for Byron,
// [body, witnesses, metadata] for Shelley through Mary, and
// [body, witnesses, is_valid, auxiliary_data] for Alonzo onward
func Body(signedTx []byte) ([]byte, error) {
	var txParts []cbor.RawMessage
	if err := cbor.Unmarshal(signedTx, &txParts); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTransaction, err)
	}
	if len(txParts) < 2 || len(txParts) > 4 {
		return nil, fmt.Errorf(
			"%w: unexpected element count %d",
			ErrInvalidTransaction,
			len(txParts),
		)
	}
	return txParts[0], nil
}

// Sum returns the blake2b-256 hash of the signed transaction's body
func Sum(signedTx []byte) ([blake2b.Size256]byte, error) {
	body, err := Body(signedTx)
	if err != nil {
		return [blake2b.Size256]byte{}, err
	}
	return blake2b.Sum256(body), nil
}

// Hash returns the hex-encoded transaction ID of the signed transaction
func Hash(signedTx []byte) (string, error) {
	sum, err := Sum(signedTx)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(sum[:]), nil
}
