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
	"context"
	"errors"

	"cosmossdk.io/collections"
	sdkerrors "cosmossdk.io/errors"

	"github.com/dmtrbch/stoken-demo/types/vault"
)

// GetCoreState returns the stored core state. The boolean flag indicates
// whether the vault has been initialized.
func (k *Keeper) GetCoreState(ctx context.Context) (vault.CoreState, bool, error) {
	core, err := k.Core.Get(ctx)
	if err != nil {
		if errors.Is(err, collections.ErrNotFound) {
			return vault.CoreState{}, false, nil
		}
		return vault.CoreState{}, false, err
	}

	return core, true, nil
}

// SetCoreState persists the supplied core state.
func (k *Keeper) SetCoreState(ctx context.Context, core vault.CoreState) error {
	return k.Core.Set(ctx, core)
}

// requireCoreState fetches the core state, failing when the vault has not
// been initialized yet.
func (k *Keeper) requireCoreState(ctx context.Context) (vault.CoreState, error) {
	core, found, err := k.GetCoreState(ctx)
	if err != nil {
		return vault.CoreState{}, sdkerrors.Wrap(err, "unable to get core state from state")
	}
	if !found {
		return vault.CoreState{}, vault.ErrVaultNotInitialized
	}

	return core, nil
}

// GetConfigState returns the stored configuration or a zero-value config
// when the vault has not been initialized.
func (k *Keeper) GetConfigState(ctx context.Context) (vault.ConfigState, error) {
	config, err := k.Config.Get(ctx)
	if err != nil {
		if errors.Is(err, collections.ErrNotFound) {
			return vault.ConfigState{}, nil
		}
		return vault.ConfigState{}, err
	}

	return config, nil
}

// SetConfigState persists the provided configuration in state.
func (k *Keeper) SetConfigState(ctx context.Context, config vault.ConfigState) error {
	return k.Config.Set(ctx, config)
}

// GetEmergencyState returns the emergency withdrawal state or a zero-value
// instance when unset.
func (k *Keeper) GetEmergencyState(ctx context.Context) (vault.EmergencyState, error) {
	emergency, err := k.Emergency.Get(ctx)
	if err != nil {
		if errors.Is(err, collections.ErrNotFound) {
			return vault.EmergencyState{}, nil
		}
		return vault.EmergencyState{}, err
	}

	return emergency, nil
}

// SetEmergencyState stores the provided emergency withdrawal state.
func (k *Keeper) SetEmergencyState(ctx context.Context, emergency vault.EmergencyState) error {
	return k.Emergency.Set(ctx, emergency)
}

// GetPendingPrice fetches the pending oracle price. The boolean flag
// indicates whether a price is awaiting acceptance.
func (k *Keeper) GetPendingPrice(ctx context.Context) (vault.PendingPrice, bool, error) {
	pending, err := k.PendingPrice.Get(ctx)
	if err != nil {
		if errors.Is(err, collections.ErrNotFound) {
			return vault.PendingPrice{}, false, nil
		}
		return vault.PendingPrice{}, false, err
	}

	return pending, true, nil
}

// SetPendingPrice stores a pending oracle price.
func (k *Keeper) SetPendingPrice(ctx context.Context, pending vault.PendingPrice) error {
	return k.PendingPrice.Set(ctx, pending)
}

// ClearPendingPrice removes the pending price slot. Missing entries are not
// an error so acceptance and rejection paths can share it.
func (k *Keeper) ClearPendingPrice(ctx context.Context) error {
	if err := k.PendingPrice.Remove(ctx); err != nil && !errors.Is(err, collections.ErrNotFound) {
		return err
	}
	return nil
}

// GetPendingRoles fetches the pending role change, if any.
func (k *Keeper) GetPendingRoles(ctx context.Context) (vault.PendingRoles, bool, error) {
	pending, err := k.PendingRoles.Get(ctx)
	if err != nil {
		if errors.Is(err, collections.ErrNotFound) {
			return vault.PendingRoles{}, false, nil
		}
		return vault.PendingRoles{}, false, err
	}

	return pending, true, nil
}

// SetPendingRoles stores a pending role change.
func (k *Keeper) SetPendingRoles(ctx context.Context, pending vault.PendingRoles) error {
	return k.PendingRoles.Set(ctx, pending)
}

// ClearPendingRoles removes the pending role change slot.
func (k *Keeper) ClearPendingRoles(ctx context.Context) error {
	if err := k.PendingRoles.Remove(ctx); err != nil && !errors.Is(err, collections.ErrNotFound) {
		return err
	}
	return nil
}

// GetPendingFees fetches the pending fee change, if any.
func (k *Keeper) GetPendingFees(ctx context.Context) (vault.PendingFees, bool, error) {
	pending, err := k.PendingFees.Get(ctx)
	if err != nil {
		if errors.Is(err, collections.ErrNotFound) {
			return vault.PendingFees{}, false, nil
		}
		return vault.PendingFees{}, false, err
	}

	return pending, true, nil
}

// SetPendingFees stores a pending fee change.
func (k *Keeper) SetPendingFees(ctx context.Context, pending vault.PendingFees) error {
	return k.PendingFees.Set(ctx, pending)
}

// ClearPendingFees removes the pending fee change slot.
func (k *Keeper) ClearPendingFees(ctx context.Context) error {
	if err := k.PendingFees.Remove(ctx); err != nil && !errors.Is(err, collections.ErrNotFound) {
		return err
	}
	return nil
}

// GetPendingLimits fetches the pending limits change, if any.
func (k *Keeper) GetPendingLimits(ctx context.Context) (vault.PendingLimits, bool, error) {
	pending, err := k.PendingLimits.Get(ctx)
	if err != nil {
		if errors.Is(err, collections.ErrNotFound) {
			return vault.PendingLimits{}, false, nil
		}
		return vault.PendingLimits{}, false, err
	}

	return pending, true, nil
}

// SetPendingLimits stores a pending limits change.
func (k *Keeper) SetPendingLimits(ctx context.Context, pending vault.PendingLimits) error {
	return k.PendingLimits.Set(ctx, pending)
}

// ClearPendingLimits removes the pending limits change slot.
func (k *Keeper) ClearPendingLimits(ctx context.Context) error {
	if err := k.PendingLimits.Remove(ctx); err != nil && !errors.Is(err, collections.ErrNotFound) {
		return err
	}
	return nil
}

// GetPendingWhitelist fetches the pending whitelist toggle, if any.
func (k *Keeper) GetPendingWhitelist(ctx context.Context) (vault.PendingWhitelist, bool, error) {
	pending, err := k.PendingWhitelist.Get(ctx)
	if err != nil {
		if errors.Is(err, collections.ErrNotFound) {
			return vault.PendingWhitelist{}, false, nil
		}
		return vault.PendingWhitelist{}, false, err
	}

	return pending, true, nil
}

// SetPendingWhitelist stores a pending whitelist toggle.
func (k *Keeper) SetPendingWhitelist(ctx context.Context, pending vault.PendingWhitelist) error {
	return k.PendingWhitelist.Set(ctx, pending)
}

// ClearPendingWhitelist removes the pending whitelist toggle slot.
func (k *Keeper) ClearPendingWhitelist(ctx context.Context) error {
	if err := k.PendingWhitelist.Remove(ctx); err != nil && !errors.Is(err, collections.ErrNotFound) {
		return err
	}
	return nil
}

// GetPendingCooldowns fetches the pending cooldown change, if any.
func (k *Keeper) GetPendingCooldowns(ctx context.Context) (vault.PendingCooldowns, bool, error) {
	pending, err := k.PendingCooldowns.Get(ctx)
	if err != nil {
		if errors.Is(err, collections.ErrNotFound) {
			return vault.PendingCooldowns{}, false, nil
		}
		return vault.PendingCooldowns{}, false, err
	}

	return pending, true, nil
}

// SetPendingCooldowns stores a pending cooldown change.
func (k *Keeper) SetPendingCooldowns(ctx context.Context, pending vault.PendingCooldowns) error {
	return k.PendingCooldowns.Set(ctx, pending)
}

// ClearPendingCooldowns removes the pending cooldown change slot.
func (k *Keeper) ClearPendingCooldowns(ctx context.Context) error {
	if err := k.PendingCooldowns.Remove(ctx); err != nil && !errors.Is(err, collections.ErrNotFound) {
		return err
	}
	return nil
}

// HasPendingGovernanceChange reports whether any of the roles, fees, limits
// or whitelist categories has a change awaiting its timelock. Cooldown
// updates are blocked while this holds.
func (k *Keeper) HasPendingGovernanceChange(ctx context.Context) (bool, error) {
	for _, item := range []interface {
		Has(ctx context.Context) (bool, error)
	}{
		k.PendingRoles, k.PendingFees, k.PendingLimits, k.PendingWhitelist,
	} {
		has, err := item.Has(ctx)
		if err != nil {
			return false, err
		}
		if has {
			return true, nil
		}
	}

	return false, nil
}

// NextWithdrawalID increments and returns the next withdrawal identifier.
// Identifiers start at one for readability when exposed to users.
func (k *Keeper) NextWithdrawalID(ctx context.Context) (uint64, error) {
	next, err := k.WithdrawalNextID.Get(ctx)
	if err != nil {
		if !errors.Is(err, collections.ErrNotFound) {
			return 0, err
		}

		next = 1
	} else {
		next++
	}

	if err := k.WithdrawalNextID.Set(ctx, next); err != nil {
		return 0, err
	}

	return next, nil
}

// GetWithdrawal fetches a withdrawal request by id.
func (k *Keeper) GetWithdrawal(ctx context.Context, id uint64) (vault.WithdrawalRequest, bool, error) {
	request, err := k.Withdrawals.Get(ctx, id)
	if err != nil {
		if errors.Is(err, collections.ErrNotFound) {
			return vault.WithdrawalRequest{}, false, nil
		}
		return vault.WithdrawalRequest{}, false, err
	}

	return request, true, nil
}

// SetWithdrawal stores a withdrawal request under the provided id.
func (k *Keeper) SetWithdrawal(ctx context.Context, id uint64, request vault.WithdrawalRequest) error {
	return k.Withdrawals.Set(ctx, id, request)
}

// IterateWithdrawals walks all withdrawal requests invoking the callback for
// each stored entry. Returning true stops the iteration early.
func (k *Keeper) IterateWithdrawals(ctx context.Context, fn func(id uint64, request vault.WithdrawalRequest) (bool, error)) error {
	return k.Withdrawals.Walk(ctx, nil, fn)
}

// IsAddressWhitelisted reports whether the address has a whitelist entry.
// Missing entries are treated as false without error.
func (k *Keeper) IsAddressWhitelisted(ctx context.Context, address []byte) (bool, error) {
	whitelisted, err := k.Whitelist.Get(ctx, address)
	if err != nil {
		if errors.Is(err, collections.ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	return whitelisted, nil
}

// SetWhitelisted writes a whitelist entry for the address.
func (k *Keeper) SetWhitelisted(ctx context.Context, address []byte) error {
	return k.Whitelist.Set(ctx, address, true)
}

// RemoveWhitelisted deletes the whitelist entry for the address.
func (k *Keeper) RemoveWhitelisted(ctx context.Context, address []byte) error {
	return k.Whitelist.Remove(ctx, address)
}

// MintAllowed reports whether the given counterpart share denom may mint
// against this vault in a swap.
func (k *Keeper) MintAllowed(ctx context.Context, mint string) (bool, error) {
	allowed, err := k.AllowlistMints.Get(ctx, mint)
	if err != nil {
		if errors.Is(err, collections.ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	return allowed, nil
}

// SetMintAllowed writes an allowlist entry for the counterpart share denom.
func (k *Keeper) SetMintAllowed(ctx context.Context, mint string) error {
	return k.AllowlistMints.Set(ctx, mint, true)
}

// RemoveMintAllowed deletes the allowlist entry for the counterpart denom.
func (k *Keeper) RemoveMintAllowed(ctx context.Context, mint string) error {
	return k.AllowlistMints.Remove(ctx, mint)
}
