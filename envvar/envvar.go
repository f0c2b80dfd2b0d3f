// Copyright 2020 YourBase Inc.
// SPDX-License-Identifier: BSD-3-Clause

// Package envvar provides functions to read environment variables for
// configuration.
package envvar

import (
	"fmt"
	"os"
	"strconv"

	"github.com/yourbase/keyfile/ini"
)

// Get returns the value of the given environment variable. If it is empty or
// unset, it returns the default value.
func Get(key string, defaultValue string) string {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	return v
}

// Bool returns the value of a boolean environment variable. If it is unset or
// not one of the strings 1, t, T, TRUE, true, or True, then it returns false.
func Bool(key string) bool {
	v := os.Getenv(key)
	if v == "" {
		return false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false
	}
	return b
}

// Int returns the value of an integer environment variable. If it is empty or
// unset, it returns the default value. Unlike Bool, a value that cannot be
// parsed is an error.
func Int(key string, defaultValue int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return defaultValue, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

// Mode returns the INI parse mode named by an environment variable in the
// syntax accepted by ini.ParseMode. If it is empty or unset, it returns the
// default value.
func Mode(key string, defaultValue ini.Mode) (ini.Mode, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}
	mode, err := ini.ParseMode(v)
	if err != nil {
		return defaultValue, fmt.Errorf("%s: %w", key, err)
	}
	return mode, nil
}
