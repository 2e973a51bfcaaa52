// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package configuration - parse a Lua or YAML configuration file
//
// Lua is the primary format: most of base Lua is available such as
// reading files to set key data and getenv to extract environment
// supplied items.  The file must return a table.  YAML files (.yaml
// or .yml) are decoded directly.
package configuration
