// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package fault - error instances
//
// Provides a single instance of errors to allow easy comparison
// without having to resort to partial string matches
package fault

// GenericError - error base
type GenericError string

// to allow for different classes of errors
type ExistsError GenericError
type InvalidError GenericError
type NotFoundError GenericError
type ProcessError GenericError
type UsageError GenericError

// common errors - keep in alphabetic order
var (
	ErrAlreadyInitialised      = ExistsError("already initialised")
	ErrAlreadyWaiting          = UsageError("client is already waiting for a berth")
	ErrBerthHeld               = UsageError("client already holds a berth")
	ErrDuplicateShipName       = ExistsError("duplicate ship name")
	ErrInvalidBatchCount       = InvalidError("invalid batch count")
	ErrInvalidBerthCount       = InvalidError("invalid berth count")
	ErrInvalidCapacity         = InvalidError("invalid capacity")
	ErrInvalidClientID         = UsageError("invalid client id")
	ErrInvalidDirection        = InvalidError("invalid transfer direction")
	ErrInvalidDuration         = InvalidError("invalid duration")
	ErrInvalidShipName         = InvalidError("invalid ship name")
	ErrInvalidStock            = InvalidError("stock exceeds capacity")
	ErrInvalidStructPointer    = InvalidError("invalid struct pointer")
	ErrLedgerClosed            = ProcessError("ledger is closed")
	ErrLedgerReadOnly          = ProcessError("ledger is read only")
	ErrNotHoldingBerth         = UsageError("client does not hold a berth")
	ErrNotInitialised          = NotFoundError("not initialised")
	ErrPreloadFailed           = ProcessError("preload failed")
	ErrUnknownClient           = UsageError("client is not known to the port")
	ErrUnsupportedConfigFormat = InvalidError("unsupported configuration file format")
	ErrVisitNotFound           = NotFoundError("visit not found")
)

// the error interface base method
func (e GenericError) Error() string { return string(e) }

// the error interface methods
func (e ExistsError) Error() string   { return string(e) }
func (e InvalidError) Error() string  { return string(e) }
func (e NotFoundError) Error() string { return string(e) }
func (e ProcessError) Error() string  { return string(e) }
func (e UsageError) Error() string    { return string(e) }

// determine the class of an error
func IsErrExists(e error) bool   { _, ok := e.(ExistsError); return ok }
func IsErrInvalid(e error) bool  { _, ok := e.(InvalidError); return ok }
func IsErrNotFound(e error) bool { _, ok := e.(NotFoundError); return ok }
func IsErrProcess(e error) bool  { _, ok := e.(ProcessError); return ok }
func IsErrUsage(e error) bool    { _, ok := e.(UsageError); return ok }
