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

package keeper

import (
	sdkerrors "cosmossdk.io/errors"
	"cosmossdk.io/math"

	"github.com/dmtrbch/stoken-demo/types/vault"
)

var (
	pricePrecision = math.NewInt(vault.PricePrecision)
	bpsPrecision   = math.NewInt(vault.BpsPrecision)
	halfBps        = math.NewInt(vault.BpsPrecision / 2)
)

// convertToShares converts an underlying amount into shares at the given
// fixed-point price, rounding down so deposits never mint excess value.
func convertToShares(amount, price math.Int) (math.Int, error) {
	if !price.IsPositive() {
		return math.ZeroInt(), vault.ErrInvalidPrice
	}

	scaled, err := amount.SafeMul(pricePrecision)
	if err != nil {
		return math.ZeroInt(), sdkerrors.Wrap(vault.ErrMathOverflow, err.Error())
	}

	return scaled.Quo(price), nil
}

// convertToAssets converts shares back into underlying units at the given
// price, rounding down so withdrawals never pay out excess value.
func convertToAssets(shares, price math.Int) (math.Int, error) {
	if !price.IsPositive() {
		return math.ZeroInt(), vault.ErrInvalidPrice
	}

	scaled, err := shares.SafeMul(price)
	if err != nil {
		return math.ZeroInt(), sdkerrors.Wrap(vault.ErrMathOverflow, err.Error())
	}

	return scaled.Quo(pricePrecision), nil
}

// applyFee splits an amount into net and fee parts for the given fee rate.
// The fee uses round-half-to-even so repeated small operations do not drift
// in either party's favor, with a one-unit floor whenever a non-zero rate
// would otherwise round to nothing.
func applyFee(amount math.Int, feeBps uint32) (net math.Int, fee math.Int, err error) {
	if feeBps == 0 {
		return amount, math.ZeroInt(), nil
	}
	if feeBps > vault.BpsPrecision {
		return math.ZeroInt(), math.ZeroInt(), vault.ErrInvalidFee
	}

	numerator, err := amount.SafeMul(math.NewIntFromUint64(uint64(feeBps)))
	if err != nil {
		return math.ZeroInt(), math.ZeroInt(), sdkerrors.Wrap(vault.ErrMathOverflow, err.Error())
	}

	fee = numerator.Quo(bpsPrecision)
	remainder := numerator.Sub(fee.Mul(bpsPrecision))
	if remainder.GT(halfBps) || (remainder.Equal(halfBps) && fee.BigInt().Bit(0) == 1) {
		fee = fee.AddRaw(1)
	}

	if fee.IsZero() && amount.IsPositive() {
		fee = math.NewInt(vault.MinFeeThreshold)
	}

	net, err = amount.SafeSub(fee)
	if err != nil || net.IsNegative() {
		return math.ZeroInt(), math.ZeroInt(), vault.ErrInvalidAmount
	}

	return net, fee, nil
}

// applyBasisPoints returns amount * bps / 10000, rounded down.
func applyBasisPoints(amount math.Int, bps uint32) (math.Int, error) {
	scaled, err := amount.SafeMul(math.NewIntFromUint64(uint64(bps)))
	if err != nil {
		return math.ZeroInt(), sdkerrors.Wrap(vault.ErrMathOverflow, err.Error())
	}

	return scaled.Quo(bpsPrecision), nil
}

// priceDeviationBps measures the absolute relative move between two prices
// in basis points.
func priceDeviationBps(oldPrice, newPrice math.Int) (math.Int, error) {
	if !oldPrice.IsPositive() || !newPrice.IsPositive() {
		return math.ZeroInt(), vault.ErrInvalidPrice
	}

	diff := newPrice.Sub(oldPrice).Abs()
	scaled, err := diff.SafeMul(bpsPrecision)
	if err != nil {
		return math.ZeroInt(), sdkerrors.Wrap(vault.ErrMathOverflow, err.Error())
	}

	return scaled.Quo(oldPrice), nil
}

// managementFeeShares computes the dilutive share mint for the elapsed
// period: supply * r / (BpsPrecision*SecondsPerYear + r) with r = bps*elapsed.
// The denominator correction makes the accountant's resulting stake match
// the annualized rate instead of overshooting it.
func managementFeeShares(totalShares math.Int, feeBpsPerYear uint32, elapsedSecs int64) (math.Int, error) {
	if feeBpsPerYear == 0 || elapsedSecs <= 0 || !totalShares.IsPositive() {
		return math.ZeroInt(), nil
	}

	rate := math.NewIntFromUint64(uint64(feeBpsPerYear)).Mul(math.NewInt(elapsedSecs))
	numerator, err := totalShares.SafeMul(rate)
	if err != nil {
		return math.ZeroInt(), sdkerrors.Wrap(vault.ErrMathOverflow, err.Error())
	}

	denominator := bpsPrecision.Mul(math.NewInt(vault.SecondsPerYear)).Add(rate)

	return numerator.Quo(denominator), nil
}

// validateFees checks the static fee caps.
func validateFees(depositFeeBps, withdrawFeeBps, managementFeeBpsPerYear uint32) error {
	if depositFeeBps > vault.MaxFeeBps {
		return sdkerrors.Wrapf(vault.ErrInvalidFee, "deposit fee %d exceeds maximum of %d bps", depositFeeBps, vault.MaxFeeBps)
	}
	if withdrawFeeBps > vault.MaxFeeBps {
		return sdkerrors.Wrapf(vault.ErrInvalidFee, "withdraw fee %d exceeds maximum of %d bps", withdrawFeeBps, vault.MaxFeeBps)
	}
	if managementFeeBpsPerYear > vault.MaxManagementFeeBpsPerYear {
		return sdkerrors.Wrapf(vault.ErrInvalidFee, "management fee %d exceeds maximum of %d bps per year", managementFeeBpsPerYear, vault.MaxManagementFeeBpsPerYear)
	}

	return nil
}

// validateLimits checks a prospective limit configuration. Zero values
// disable the respective limit, so only relative consistency is enforced.
func validateLimits(maxTotalShares, maxSharesPerUser, maxTotalIdle, minSharesToMint math.Int, maxDeviationBps uint32) error {
	for _, limit := range []math.Int{maxTotalShares, maxSharesPerUser, maxTotalIdle, minSharesToMint} {
		if limit.IsNil() || limit.IsNegative() {
			return sdkerrors.Wrap(vault.ErrInvalidLimit, "limits must be non-negative")
		}
	}

	if maxSharesPerUser.IsPositive() && maxTotalShares.IsPositive() && maxSharesPerUser.GT(maxTotalShares) {
		return sdkerrors.Wrap(vault.ErrInvalidLimit, "per-user share limit exceeds total share limit")
	}
	if minSharesToMint.IsPositive() && maxSharesPerUser.IsPositive() && minSharesToMint.GT(maxSharesPerUser) {
		return sdkerrors.Wrap(vault.ErrInvalidLimit, "minimum shares to mint exceeds per-user share limit")
	}
	if maxDeviationBps > vault.BpsPrecision {
		return sdkerrors.Wrapf(vault.ErrLimitExceedsMaximum, "max deviation %d exceeds %d bps", maxDeviationBps, vault.BpsPrecision)
	}

	return nil
}

// validateCooldown bounds a governed cooldown duration.
func validateCooldown(secs int64) error {
	if secs < vault.MinCooldownSecs || secs > vault.MaxCooldownSecs {
		return sdkerrors.Wrapf(vault.ErrInvalidCooldownDuration, "cooldown of %d seconds outside [%d, %d]", secs, vault.MinCooldownSecs, vault.MaxCooldownSecs)
	}

	return nil
}
