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

package session

import (
	"errors"
	"fmt"

	"github.com/blinklabs-io/gouroboros/ledger"
	"github.com/blinklabs-io/gouroboros/ledger/allegra"
	"github.com/blinklabs-io/gouroboros/ledger/alonzo"
	"github.com/blinklabs-io/gouroboros/ledger/babbage"
	lcommon "github.com/blinklabs-io/gouroboros/ledger/common"
	"github.com/blinklabs-io/gouroboros/ledger/conway"
	"github.com/blinklabs-io/gouroboros/ledger/mary"
	"github.com/blinklabs-io/gouroboros/ledger/shelley"
	cardano "github.com/utxorpc/go-codegen/utxorpc/v1alpha/cardano"
)

// ProtocolVersion is the major/minor protocol version reported by the node
type ProtocolVersion struct {
	Major uint
	Minor uint
}

func (v ProtocolVersion) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// ProtocolParameters wraps the era-specific protocol parameters returned by the node
type ProtocolParameters struct {
	EraId           uint
	ProtocolVersion ProtocolVersion
	Params          lcommon.ProtocolParameters
}

type utxorpcProtocolParameters interface {
	Utxorpc() (*cardano.PParams, error)
}

// NewProtocolParameters returns a ProtocolParameters for the provided era-specific params
func NewProtocolParameters(
	params lcommon.ProtocolParameters,
) (*ProtocolParameters, error) {
	ret := &ProtocolParameters{
		Params: params,
	}
	switch p := params.(type) {
	case *conway.ConwayProtocolParameters:
		ret.EraId = uint(conway.EraIdConway)
		ret.ProtocolVersion = ProtocolVersion{
			Major: p.ProtocolVersion.Major,
			Minor: p.ProtocolVersion.Minor,
		}
	case *babbage.BabbageProtocolParameters:
		ret.EraId = uint(babbage.EraIdBabbage)
		ret.ProtocolVersion = ProtocolVersion{
			Major: p.ProtocolMajor,
			Minor: p.ProtocolMinor,
		}
	case *alonzo.AlonzoProtocolParameters:
		ret.EraId = uint(alonzo.EraIdAlonzo)
		ret.ProtocolVersion = ProtocolVersion{
			Major: p.ProtocolMajor,
			Minor: p.ProtocolMinor,
		}
	case *shelley.ShelleyProtocolParameters:
		// Allegra and Mary share this type. See NewProtocolParametersForEra
		ret.EraId = uint(shelley.EraIdShelley)
		ret.ProtocolVersion = ProtocolVersion{
			Major: p.ProtocolMajor,
			Minor: p.ProtocolMinor,
		}
	case nil:
		return nil, errors.New("no protocol parameters provided")
	default:
		return nil, fmt.Errorf("unsupported protocol parameters type: %T", params)
	}
	return ret, nil
}

// NewProtocolParametersForEra is like NewProtocolParameters, using the era reported by the
// node to tell apart the eras that share the Shelley parameters type
func NewProtocolParametersForEra(
	eraId uint,
	params lcommon.ProtocolParameters,
) (*ProtocolParameters, error) {
	ret, err := NewProtocolParameters(params)
	if err != nil {
		return nil, err
	}
	if ret.EraId == uint(shelley.EraIdShelley) {
		switch eraId {
		case uint(allegra.EraIdAllegra), uint(mary.EraIdMary):
			ret.EraId = eraId
		}
	}
	return ret, nil
}

// sharesShelleyParams returns whether the params type does not identify the era on its own
func (p *ProtocolParameters) sharesShelleyParams() bool {
	return p.EraId == uint(shelley.EraIdShelley)
}

// EraName returns the name of the era the protocol parameters belong to
func (p *ProtocolParameters) EraName() string {
	era := ledger.GetEraById(uint8(p.EraId)) // #nosec G115
	if era == ledger.EraInvalid {
		return "unknown"
	}
	return era.Name
}

// Utxorpc converts the protocol parameters to the UTxO RPC representation
func (p *ProtocolParameters) Utxorpc() (*cardano.PParams, error) {
	tmpParams, ok := p.Params.(utxorpcProtocolParameters)
	if !ok {
		return nil, fmt.Errorf(
			"protocol parameters type %T does not support UTxO RPC conversion",
			p.Params,
		)
	}
	return tmpParams.Utxorpc()
}
