package main

import (
	"fmt"
	"os"

	"github.com/AwwCookies/Chatterbox-sub002/internal/util"
)

// Prints a fresh account API token and the hash to store in
// accounts.relay_token_hash.
func main() {
	token, err := util.GenerateToken()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("token: %s\n", token)
	fmt.Printf("hash:  %s\n", util.HashToken(token))
}
