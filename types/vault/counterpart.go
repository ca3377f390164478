// SPDX-License-Identifier: BUSL-1.1
//
// Copyright (C) 2025, NASD Inc. All rights reserved.
// Use of this software is governed by the Business Source License included
// in the LICENSE file of this repository and at www.mariadb.com/bsl11.
//
// ANY USE OF THE LICENSED WORK IN VIOLATION OF THIS LICENSE WILL AUTOMATICALLY
// TERMINATE YOUR RIGHTS UNDER THIS LICENSE FOR THE CURRENT AND ALL OTHER
// VERSIONS OF THE LICENSED WORK.
//
// THIS LICENSE DOES NOT GRANT YOU ANY RIGHT IN ANY TRADEMARK OR LOGO OF
// LICENSOR OR ITS AFFILIATES (PROVIDED THAT YOU MAY USE A TRADEMARK OR LOGO OF
// LICENSOR AS EXPRESSLY REQUIRED BY THIS LICENSE).
//
// TO THE EXTENT PERMITTED BY APPLICABLE LAW, THE LICENSED WORK IS PROVIDED ON
// AN "AS IS" BASIS. LICENSOR HEREBY DISCLAIMS ALL WARRANTIES AND CONDITIONS,
// EXPRESS OR IMPLIED, INCLUDING (WITHOUT LIMITATION) WARRANTIES OF
// MERCHANTABILITY, FITNESS FOR A PARTICULAR PURPOSE, NON-INFRINGEMENT, AND
// TITLE.

package vault

import (
	"context"

	"cosmossdk.io/math"
)

// Counterpart is the surface one vault needs from another during a
// cross-vault share swap. The destination leg runs inside the same
// transaction, so either both vaults commit or neither does.
type Counterpart interface {
	ShareDenom() string
	UnderlyingDenom() string

	SharePrice(ctx context.Context) (math.Int, error)
	AssetManager(ctx context.Context) (string, error)
	Accountant(ctx context.Context) (string, error)
	Decimals(ctx context.Context) (uint32, error)
	IsPaused(ctx context.Context) (bool, error)
	WhitelistEnabled(ctx context.Context) (bool, error)
	IsWhitelisted(ctx context.Context, user string) (bool, error)
	MinSharesToMint(ctx context.Context) (math.Int, error)
	AllowsMint(ctx context.Context, mint string) (bool, error)
	ShareBalance(ctx context.Context, user string) (math.Int, error)

	// MintSwapShares mints destination shares to the recipient and grows the
	// destination vault's total share supply.
	MintSwapShares(ctx context.Context, recipient string, amount math.Int) error
}
