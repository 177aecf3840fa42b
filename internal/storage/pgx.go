/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
)

// PgxLogin describes who a Postgres DSN connects as.
type PgxLogin struct {
	User        string
	Host        string
	HasPassword bool
}

// ParsePgxLogin reads user and host from a Postgres DSN (URL or key=value
// form). HasPassword also reflects PGPASSWORD and the passfile.
func ParsePgxLogin(dsn string) (PgxLogin, error) {
	cfg, err := pgx.ParseConfig(dsn)
	if err != nil {
		return PgxLogin{}, fmt.Errorf("parse postgres dsn: %w", err)
	}
	host := cfg.Host
	if cfg.Port != 0 {
		host += ":" + strconv.Itoa(int(cfg.Port))
	}
	return PgxLogin{User: cfg.User, Host: host, HasPassword: cfg.Password != ""}, nil
}

// PgxDSNWithPassword returns a DSN usable with Open(ctx, DriverPgx, ...) that
// connects with password. The password is registered in memory only.
func PgxDSNWithPassword(dsn, password string) (string, error) {
	cfg, err := pgx.ParseConfig(dsn)
	if err != nil {
		return "", fmt.Errorf("parse postgres dsn: %w", err)
	}
	cfg.Password = password
	return stdlib.RegisterConnConfig(cfg), nil
}
