// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// =============================================================================
// ACCOUNT TYPE
// =============================================================================

// Account is a linked proxy account as reported by the account registry.
// The registry owns the account lifecycle; the client only caches a read-only
// list plus a selected email that must be re-validated against the latest
// fetch before every use.
type Account struct {
	Email      string `json:"email"`
	SessionKey string `json:"sessionKey,omitempty"`
}

// HasCredential reports whether the account carries a session key.
func (a Account) HasCredential() bool {
	return a.SessionKey != ""
}

// FindAccount returns the account with the given email, or false when the
// email is no longer present in the list.
func FindAccount(accounts []Account, email string) (Account, bool) {
	for _, a := range accounts {
		if a.Email == email {
			return a, true
		}
	}
	return Account{}, false
}
