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

package blockfrost

// AddressTransaction is one entry in an address's transaction history
type AddressTransaction struct {
	TxHash      string `json:"tx_hash"`
	TxIndex     int    `json:"tx_index"`
	BlockHeight uint64 `json:"block_height"`
	BlockTime   int64  `json:"block_time"`
}

// TransactionInfo describes a transaction's inclusion state. Block is the
// including block's hash, empty until the transaction lands in a block
type TransactionInfo struct {
	Hash        string `json:"hash"`
	Block       string `json:"block"`
	BlockHeight uint64 `json:"block_height"`
	BlockTime   int64  `json:"block_time"`
	Slot        uint64 `json:"slot"`
	Index       int    `json:"index"`
	Fees        string `json:"fees"`
	Size        uint64 `json:"size"`
}

// TxMetadataLabel is one labeled metadata entry attached to a transaction.
// JSONMetadata's shape is application-defined: for note payloads it's a map
// whose text values are either a string or an ordered chunk list
type TxMetadataLabel struct {
	Label        string `json:"label"`
	JSONMetadata any    `json:"json_metadata"`
}

// Confirmed returns true once the transaction has been included in a block
func (t *TransactionInfo) Confirmed() bool {
	return t != nil && t.Block != ""
}
