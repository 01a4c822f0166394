// Locrelay - Real-time Location and Event Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/locrelay

// Package testinfra starts throwaway Redis and MongoDB containers for the
// store integration tests.
//
// Everything here sits behind the integration build tag and uses
// testcontainers-go. Tests skip when Docker is not reachable:
//
//	func TestRedisStore(t *testing.T) {
//	    testinfra.SkipIfNoDocker(t)
//	    ctx := context.Background()
//	    rc, err := testinfra.NewRedisContainer(ctx)
//	    if err != nil {
//	        t.Fatal(err)
//	    }
//	    defer testinfra.CleanupContainer(t, ctx, rc)
//
//	    s, err := store.ConnectRedis(ctx, rc.URL, "test:events")
//	    // ...
//	}
//
// First runs pull the images; later runs use the local cache.
package testinfra
