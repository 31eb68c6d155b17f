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

package nodeclient

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/blinklabs-io/gouroboros/ledger"
	"github.com/blinklabs-io/node-gateway/txhash"
)

// SubmitStatus is the outcome of a transaction submission that did not return an error
type SubmitStatus int

const (
	SubmitAccepted SubmitStatus = iota + 1
	// SubmitIgnoredEraMismatch means the node rejected the transaction because its era
	// does not match the node's. This happens while the node transitions between eras
	SubmitIgnoredEraMismatch
)

func (s SubmitStatus) String() string {
	switch s {
	case SubmitAccepted:
		return "accepted"
	case SubmitIgnoredEraMismatch:
		return "ignored_era_mismatch"
	default:
		return fmt.Sprintf("SubmitStatus(%d)", int(s))
	}
}

// SubmitResult describes a transaction submission
type SubmitResult struct {
	Status SubmitStatus
	// TxHash is the hex-encoded transaction ID, set when the transaction was accepted
	TxHash string
	// Reason is the ignored rejection, set when the submission was ignored
	Reason error
}

// Markers found in the text of era mismatch rejections. The node reports some of these only
// as text, so matching depends on the exact wording of its errors
var eraMismatchMarkers = []string{
	"DecoderErrorDeserialiseFailure",
	"The era of the node and the tx do not match",
}

// IsEraMismatch returns whether a submission error was caused by the transaction and the node
// being in different eras
func IsEraMismatch(err error) bool {
	if err == nil {
		return false
	}
	var eraErr *ledger.EraMismatch
	if errors.As(err, &eraErr) {
		return true
	}
	msg := err.Error()
	for _, marker := range eraMismatchMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// SubmitTransaction submits a signed transaction to the node. Era mismatch rejections are
// reported as SubmitIgnoredEraMismatch with a nil error. Any other submission error is
// returned unchanged
func (c *NodeClient) SubmitTransaction(
	ctx context.Context,
	signedTx []byte,
) (SubmitResult, error) {
	_, txSubmission, err := c.sessions("SubmitTransaction")
	if err != nil {
		return SubmitResult{}, err
	}
	if err := txSubmission.SubmitTx(ctx, signedTx); err != nil {
		if IsEraMismatch(err) {
			c.metrics.ObserveSubmission(SubmitIgnoredEraMismatch.String())
			c.logger.Warn(
				fmt.Sprintf("ignoring era mismatch on submit: %s", err),
				"component", "node-client",
			)
			return SubmitResult{
				Status: SubmitIgnoredEraMismatch,
				Reason: err,
			}, nil
		}
		c.metrics.ObserveSubmission("error")
		return SubmitResult{}, err
	}
	c.metrics.ObserveSubmission(SubmitAccepted.String())
	hash, err := txhash.Hash(signedTx)
	if err != nil {
		return SubmitResult{}, fmt.Errorf("transaction accepted but hash could not be computed: %w", err)
	}
	c.logger.Debug(
		fmt.Sprintf("transaction accepted: %s", hash),
		"component", "node-client",
	)
	return SubmitResult{
		Status: SubmitAccepted,
		TxHash: hash,
	}, nil
}
