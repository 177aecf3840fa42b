/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"gocaptionframe/internal/config"
	"gocaptionframe/internal/storage"
)

func (a *App) storeCommand() *cobra.Command {
	var dsn string
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Manage the Postgres metadata store login",
	}
	cmd.PersistentFlags().StringVar(&dsn, "dsn", "", "Postgres DSN (default: store.dsn from the config)")

	login := &cobra.Command{
		Use:   "login",
		Short: "Read the store password from stdin and keep it in the OS keyring",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			l, err := a.storeLogin(dsn)
			if err != nil {
				return err
			}
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && line == "" {
				return fmt.Errorf("read password: %w", err)
			}
			if err := config.SaveStorePassword(l.User, l.Host, strings.TrimRight(line, "\r\n")); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "password saved for %s@%s\n", l.User, l.Host)
			return nil
		},
	}
	logout := &cobra.Command{
		Use:   "logout",
		Short: "Remove the store password from the OS keyring",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			l, err := a.storeLogin(dsn)
			if err != nil {
				return err
			}
			if err := config.DeleteStorePassword(l.User, l.Host); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "password removed for %s@%s\n", l.User, l.Host)
			return nil
		},
	}
	cmd.AddCommand(login, logout)
	return cmd
}

func (a *App) storeLogin(dsn string) (storage.PgxLogin, error) {
	if dsn == "" {
		dsn = a.cfg.Store.DSN
	}
	if strings.TrimSpace(dsn) == "" || (dsn == a.cfg.Store.DSN && a.cfg.Store.Driver != storage.DriverPgx) {
		return storage.PgxLogin{}, errors.New("no Postgres DSN: set store.driver: pgx with store.dsn, or pass --dsn")
	}
	return storage.ParsePgxLogin(dsn)
}
