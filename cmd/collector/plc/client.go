// Copyright 2024 NextCare Systems
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

package plc

import (
	"encoding/binary"
	"fmt"
	"sync"
	"time"

	"github.com/goburrow/modbus"
	"go.uber.org/zap"
)

const (
	connectTimeout = 10 * time.Second
	unitIdentifier = 1
)

// ReadErrorKind classifies a failed register read.
type ReadErrorKind int

const (
	// ReadErrUnreachable covers transport failures: refused, reset, timeout.
	// The next read attempts a fresh connection.
	ReadErrUnreachable ReadErrorKind = iota

	// ReadErrProtocolFault means the device answered with a Modbus exception
	// response.
	ReadErrProtocolFault
)

func (k ReadErrorKind) String() string {
	if k == ReadErrProtocolFault {
		return "protocol fault"
	}
	return "unreachable"
}

// ReadError is the typed failure of Client.Read.
type ReadError struct {
	Err      error
	Register string
	Kind     ReadErrorKind
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read %s: %s: %v", e.Register, e.Kind, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

// Client owns the single Modbus TCP connection to the field device. It is used
// exclusively by the acquisition loop and is not safe for concurrent readers;
// the mutex only guards Read against Disconnect during shutdown.
//
// The connection is established lazily on the first read and re-established on
// demand once a read fails at the transport level. Read never retries
// internally, retry happens via the next scheduled cycle.
type Client struct {
	handler *modbus.TCPClientHandler
	client  modbus.Client
	host    string
	mu      sync.Mutex
	port    int
}

func NewClient(host string, port int) *Client {
	return &Client{
		host: host,
		port: port,
	}
}

func (c *Client) connect() error {
	handler := modbus.NewTCPClientHandler(fmt.Sprintf("%s:%d", c.host, c.port))
	handler.Timeout = connectTimeout
	handler.SlaveId = unitIdentifier

	if err := handler.Connect(); err != nil {
		return err
	}
	zap.S().Infof("Connected to PLC at %s:%d", c.host, c.port)

	c.handler = handler
	c.client = modbus.NewClient(handler)
	return nil
}

// dropConnection tears the connection down so the next read reconnects.
func (c *Client) dropConnection() {
	if c.handler == nil {
		return
	}
	if err := c.handler.Close(); err != nil {
		zap.S().Debugf("Error closing stale PLC connection: %s", err)
	}
	c.handler = nil
	c.client = nil
}

// Read resolves the textual register address, reads one holding register from
// the device and returns the engineering value.
//
// Failures are typed: ErrInvalidIdentifier for a malformed address, a
// *ReadError otherwise.
func (c *Client) Read(address string) (float64, error) {
	register, err := ParseRegisterAddress(address)
	if err != nil {
		return 0, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client == nil {
		if err := c.connect(); err != nil {
			return 0, &ReadError{Kind: ReadErrUnreachable, Register: address, Err: err}
		}
	}

	results, err := c.client.ReadHoldingRegisters(register, 1)
	if err != nil {
		readErr := classifyReadError(address, err)
		if readErr.Kind == ReadErrUnreachable {
			c.dropConnection()
		}
		return 0, readErr
	}
	if len(results) < 2 {
		c.dropConnection()
		return 0, &ReadError{
			Kind:     ReadErrUnreachable,
			Register: address,
			Err:      fmt.Errorf("short response: %d bytes", len(results)),
		}
	}

	return ScaleRegisterValue(binary.BigEndian.Uint16(results)), nil
}

// classifyReadError maps a Modbus exception response to a protocol fault and
// everything else to a transport failure.
func classifyReadError(address string, err error) *ReadError {
	if _, ok := err.(*modbus.ModbusError); ok {
		return &ReadError{Kind: ReadErrProtocolFault, Register: address, Err: err}
	}
	return &ReadError{Kind: ReadErrUnreachable, Register: address, Err: err}
}

// Disconnect closes the connection. It is idempotent and never propagates
// teardown errors, a failing close must not block shutdown.
func (c *Client) Disconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.handler == nil {
		return
	}
	if err := c.handler.Close(); err != nil {
		zap.S().Errorf("Error disconnecting from PLC: %s", err)
	} else {
		zap.S().Infof("Disconnected from PLC")
	}
	c.handler = nil
	c.client = nil
}

// IsConnected reports whether a connection is currently held open.
func (c *Client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.client != nil
}
