package main

import "cafesync/cmd/cafectl/cmd"

// go run ./cmd/cafectl sync
// go run ./cmd/cafectl --backend=memory details
// go run ./cmd/cafectl check-images sleman bantul
func main() {
	cmd.Execute()
}
