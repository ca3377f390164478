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

import "cosmossdk.io/errors"

var (
	// Authorization and validation.
	ErrUnauthorized    = errors.Register(SubmoduleName, 1, "unauthorized")
	ErrInvalidFee      = errors.Register(SubmoduleName, 2, "invalid fee")
	ErrInvalidPrice    = errors.Register(SubmoduleName, 3, "invalid price")
	ErrInvalidAmount   = errors.Register(SubmoduleName, 4, "invalid amount")
	ErrInvalidArgument = errors.Register(SubmoduleName, 5, "invalid argument")
	ErrMathOverflow    = errors.Register(SubmoduleName, 6, "math overflow")

	// Vault state preconditions.
	ErrVaultNotInitialized = errors.Register(SubmoduleName, 7, "vault not initialized")
	ErrVaultInitialized    = errors.Register(SubmoduleName, 8, "vault already initialized")
	ErrVaultPaused         = errors.Register(SubmoduleName, 9, "vault is paused")
	ErrVaultNotPaused      = errors.Register(SubmoduleName, 10, "vault is not paused")

	// Balances and capacity limits.
	ErrInsufficientBalance      = errors.Register(SubmoduleName, 11, "insufficient balance")
	ErrInsufficientShares       = errors.Register(SubmoduleName, 12, "insufficient shares")
	ErrInsufficientVaultFunds   = errors.Register(SubmoduleName, 13, "insufficient vault funds")
	ErrMaxTotalSharesExceeded   = errors.Register(SubmoduleName, 14, "maximum total shares exceeded")
	ErrMaxSharesPerUserExceeded = errors.Register(SubmoduleName, 15, "maximum shares per user exceeded")
	ErrMaxTotalIdleExceeded     = errors.Register(SubmoduleName, 16, "maximum total idle exceeded")
	ErrInvalidLimit             = errors.Register(SubmoduleName, 17, "invalid limit")
	ErrLimitExceedsMaximum      = errors.Register(SubmoduleName, 18, "limit exceeds maximum")

	// Economic guards.
	ErrZeroSharesCalculated = errors.Register(SubmoduleName, 19, "calculated shares are zero")
	ErrZeroAmountCalculated = errors.Register(SubmoduleName, 20, "calculated amount is zero")
	ErrSlippageNotMet       = errors.Register(SubmoduleName, 21, "slippage requirement not met")
	ErrMinimumSharesNotMet  = errors.Register(SubmoduleName, 22, "minimum share balance not met")

	// Price oracle gate.
	ErrPriceUpdateTooFrequent  = errors.Register(SubmoduleName, 23, "price update too frequent")
	ErrPriceDeviationTooHigh   = errors.Register(SubmoduleName, 24, "price deviation too high")
	ErrPriceCooldownNotExpired = errors.Register(SubmoduleName, 25, "price acceptance cooldown not expired")
	ErrNoPendingPrice          = errors.Register(SubmoduleName, 26, "no pending price")

	// Withdrawal request ledger.
	ErrWithdrawalRequestNotFound   = errors.Register(SubmoduleName, 27, "withdrawal request not found")
	ErrInvalidWithdrawalStatus     = errors.Register(SubmoduleName, 28, "invalid withdrawal request status")
	ErrInvalidWithdrawalMinimum    = errors.Register(SubmoduleName, 29, "invalid withdrawal minimum")
	ErrMinimumTooHigh              = errors.Register(SubmoduleName, 30, "withdrawal minimum too high")
	ErrMinimumCannotIncrease       = errors.Register(SubmoduleName, 31, "withdrawal minimum cannot increase")
	ErrWithdrawalAmountTooLow      = errors.Register(SubmoduleName, 32, "withdrawal amount too low")
	ErrTtlNotExpired               = errors.Register(SubmoduleName, 33, "withdrawal ttl not expired")
	ErrInvalidUserAccount          = errors.Register(SubmoduleName, 34, "invalid user account for request")
	ErrPriceDropExceedsDownsideCap = errors.Register(SubmoduleName, 36, "price drop exceeds downside cap")

	// Governance timelocks.
	ErrRoleChangeTimelockActive      = errors.Register(SubmoduleName, 37, "role change timelock active")
	ErrNoPendingRolesChange          = errors.Register(SubmoduleName, 38, "no pending roles change")
	ErrFeeChangeTimelockActive       = errors.Register(SubmoduleName, 39, "fee change timelock active")
	ErrNoPendingFeesChange           = errors.Register(SubmoduleName, 40, "no pending fees change")
	ErrNoFeeChanges                  = errors.Register(SubmoduleName, 41, "no fee changes requested")
	ErrLimitsChangeTimelockActive    = errors.Register(SubmoduleName, 42, "limits change timelock active")
	ErrNoPendingLimitsChange         = errors.Register(SubmoduleName, 43, "no pending limits change")
	ErrNoLimitsChanges               = errors.Register(SubmoduleName, 44, "no limits changes requested")
	ErrWhitelistChangeTimelockActive = errors.Register(SubmoduleName, 45, "whitelist change timelock active")
	ErrNoPendingWhitelistChange      = errors.Register(SubmoduleName, 46, "no pending whitelist change")
	ErrNoWhitelistChanges            = errors.Register(SubmoduleName, 47, "no whitelist changes requested")
	ErrCooldownChangeTimelockActive  = errors.Register(SubmoduleName, 48, "cooldown change timelock active")
	ErrNoPendingCooldownChange       = errors.Register(SubmoduleName, 49, "no pending cooldown change")
	ErrNoCooldownChanges             = errors.Register(SubmoduleName, 50, "no cooldown changes requested")
	ErrCooldownUpdateBlocked         = errors.Register(SubmoduleName, 51, "cooldown update blocked by pending changes")
	ErrInvalidCooldownDuration       = errors.Register(SubmoduleName, 52, "invalid cooldown duration")

	// Whitelist and allowlist.
	ErrUserNotWhitelisted     = errors.Register(SubmoduleName, 53, "user not whitelisted")
	ErrWhitelistNotEnabled    = errors.Register(SubmoduleName, 54, "whitelist not enabled")
	ErrUserAlreadyWhitelisted = errors.Register(SubmoduleName, 55, "user already whitelisted")
	ErrNotInAllowlist         = errors.Register(SubmoduleName, 56, "mint not in allowlist")

	// Emergency withdrawal.
	ErrEmergencyTimelockActive = errors.Register(SubmoduleName, 57, "emergency withdrawal timelock active")
	ErrEmergencyTokenMismatch  = errors.Register(SubmoduleName, 58, "emergency withdrawal token mismatch")
	ErrEmergencyAmountMismatch = errors.Register(SubmoduleName, 59, "emergency withdrawal amount mismatch")
	ErrNoUnexpectedDeposits    = errors.Register(SubmoduleName, 60, "no unexpected deposits")

	// Cross-vault swap.
	ErrInvalidSwapSameVault    = errors.Register(SubmoduleName, 61, "cannot swap within the same vault")
	ErrInvalidSwapFee          = errors.Register(SubmoduleName, 62, "invalid swap fee")
	ErrUnknownCounterpart      = errors.Register(SubmoduleName, 63, "unknown counterpart vault")
	ErrUnderlyingMintMismatch  = errors.Register(SubmoduleName, 64, "underlying denom mismatch")
	ErrAssetManagerMismatch    = errors.Register(SubmoduleName, 65, "asset manager mismatch")
	ErrTokenDecimalMismatch    = errors.Register(SubmoduleName, 66, "token decimal mismatch")

	ErrNoRoleChanges = errors.Register(SubmoduleName, 67, "no role changes requested")
)
