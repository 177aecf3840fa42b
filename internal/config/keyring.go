/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zalando/go-keyring"
)

// Service name for OS keyring entries.
const keyringService = "GoCaptionFrame"

// ErrNoSecret is returned when the keyring holds no password for a store.
var ErrNoSecret = errors.New("no stored password")

// TokenStore abstracts the OS keyring so tests can stub it.
type TokenStore interface {
	Get(service, key string) (string, error)
	Set(service, key, value string) error
	Delete(service, key string) error
}

var tokenStore TokenStore = osKeyring{}

// osKeyring implements TokenStore using the OS keyring via github.com/zalando/go-keyring.
type osKeyring struct{}

func (osKeyring) Get(service, key string) (string, error) { return keyring.Get(service, key) }
func (osKeyring) Set(service, key, value string) error    { return keyring.Set(service, key, value) }
func (osKeyring) Delete(service, key string) error        { return keyring.Delete(service, key) }

// storeKey names the keyring entry for a database login.
func storeKey(user, host string) string {
	return "store:" + strings.TrimSpace(user) + "@" + strings.TrimSpace(host)
}

// StorePassword returns the keyring password for user at host. A missing
// entry is reported as ErrNoSecret.
func StorePassword(user, host string) (string, error) {
	pw, err := tokenStore.Get(keyringService, storeKey(user, host))
	switch {
	case errors.Is(err, keyring.ErrNotFound):
		return "", ErrNoSecret
	case err != nil:
		return "", fmt.Errorf("read keyring: %w", err)
	case pw == "":
		return "", ErrNoSecret
	}
	return pw, nil
}

// SaveStorePassword keeps the password for user at host in the OS keyring
// so it never has to be written into the config file.
func SaveStorePassword(user, host, password string) error {
	if strings.TrimSpace(user) == "" {
		return errors.New("store user is required")
	}
	if password == "" {
		return errors.New("password is empty")
	}
	if err := tokenStore.Set(keyringService, storeKey(user, host), password); err != nil {
		return fmt.Errorf("write keyring: %w", err)
	}
	return nil
}

// DeleteStorePassword forgets the password for user at host. Deleting a
// missing entry is not an error.
func DeleteStorePassword(user, host string) error {
	err := tokenStore.Delete(keyringService, storeKey(user, host))
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("delete keyring: %w", err)
	}
	return nil
}
