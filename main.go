// Copyright 2025 SportsApp Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
)

func main() {
	fmt.Println("SportsApp favorites sync")
	fmt.Println("========================")
	fmt.Println()
	fmt.Println("Offline-tolerant favorites synchronization for the SportsApp client:")
	fmt.Println("a local persistent cache, a pending-operation queue replayed in order")
	fmt.Println("on reconnect, and a live remote favorites collection per user.")
	fmt.Println()

	fmt.Println("Packages:")
	fmt.Println()
	fmt.Println("  favsync/    Client core: cache store, connectivity monitor,")
	fmt.Println("              pending queue, and the favorites synchronizer")
	fmt.Println("  favserver/  Favorites document service (Postgres, JWT, SSE watch)")
	fmt.Println("  sportsapi/  Read-only TheSportsDB metadata client")
	fmt.Println()

	fmt.Println("Binaries:")
	fmt.Println()
	fmt.Println("  cmd/favserver   Run the favorites service")
	fmt.Println("  cmd/favsim      Run offline/online sync scenarios end to end")
	fmt.Println("                  (favsim list, favsim run --all)")
	fmt.Println()
}
