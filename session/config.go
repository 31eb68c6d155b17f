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
	"time"

	ouroboros "github.com/blinklabs-io/gouroboros"
	"github.com/blinklabs-io/gouroboros/ledger/conway"
)

const (
	DefaultNetwork     = "mainnet"
	DefaultSocketPath  = "/node-ipc/node.socket"
	DefaultDialTimeout = 10 * time.Second
	DefaultTxEra       = uint(conway.TxTypeConway)
)

// ConnectionConfig describes how to reach the node. SocketPath takes precedence
// over Address when both are set
type ConnectionConfig struct {
	Network      string
	NetworkMagic uint32
	SocketPath   string
	Address      string
	UseTLS       bool
	DialTimeout  time.Duration
	// DefaultTxEra is the era ID used for submitted transactions whose era
	// cannot be determined from their CBOR
	DefaultTxEra uint
}

// DefaultConnectionConfig returns the config used when none is provided
func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		Network:      DefaultNetwork,
		SocketPath:   DefaultSocketPath,
		DialTimeout:  DefaultDialTimeout,
		DefaultTxEra: DefaultTxEra,
	}
}

// resolveConnectionConfig returns a copy of the provided config with any unset values
// filled in from the defaults
func resolveConnectionConfig(cfg *ConnectionConfig) ConnectionConfig {
	defaults := DefaultConnectionConfig()
	if cfg == nil {
		return defaults
	}
	ret := *cfg
	if ret.Network == "" && ret.NetworkMagic == 0 {
		ret.Network = defaults.Network
	}
	if ret.SocketPath == "" && ret.Address == "" {
		ret.SocketPath = defaults.SocketPath
	}
	if ret.DialTimeout == 0 {
		ret.DialTimeout = defaults.DialTimeout
	}
	if ret.DefaultTxEra == 0 {
		ret.DefaultTxEra = defaults.DefaultTxEra
	}
	return ret
}

// networkMagic returns the configured network magic, looking it up by network name
// when no explicit value was provided
func (c ConnectionConfig) networkMagic() (uint32, error) {
	if c.NetworkMagic != 0 {
		return c.NetworkMagic, nil
	}
	network, ok := ouroboros.NetworkByName(c.Network)
	if !ok {
		return 0, fmt.Errorf("invalid network specified: %s", c.Network)
	}
	return network.NetworkMagic, nil
}

// dialTarget returns the protocol and address to pass to the dialer
func (c ConnectionConfig) dialTarget() (string, string, error) {
	if c.SocketPath != "" {
		return "unix", c.SocketPath, nil
	}
	if c.Address != "" {
		return "tcp", c.Address, nil
	}
	return "", "", errors.New("you must specify one of socket path or address")
}
