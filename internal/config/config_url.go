// Locrelay - Real-time Location and Event Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/locrelay

package config

import (
	"fmt"
	"net/url"
	"strings"
)

// validateHTTPURL requires an http(s) base URL: scheme, host, no query.
// A path is allowed so deployments behind a prefix work.
func validateHTTPURL(rawURL, fieldName string) error {
	if err := validateSchemeURL(rawURL, fieldName, "http", "https"); err != nil {
		return err
	}
	u, _ := url.Parse(rawURL)
	if u.RawQuery != "" {
		return fmt.Errorf("%s should not contain query parameters, remove: ?%s", fieldName, u.RawQuery)
	}
	return nil
}

// validateSchemeURL checks that rawURL parses and uses one of schemes.
// Host is required except for unix sockets.
func validateSchemeURL(rawURL, fieldName string, schemes ...string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%s failed to parse URL: %w", fieldName, err)
	}

	ok := false
	for _, s := range schemes {
		if u.Scheme == s {
			ok = true
			break
		}
	}
	if !ok {
		return fmt.Errorf("%s scheme must be one of %s, got: %q", fieldName, strings.Join(schemes, ", "), u.Scheme)
	}
	if u.Host == "" && u.Scheme != "unix" {
		return fmt.Errorf("%s host is required", fieldName)
	}
	return nil
}
