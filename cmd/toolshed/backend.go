package main

import (
	"crypto/rand"
	"flag"
	"fmt"
	"math/big"

	"github.com/erazemk/toolshed/internal/config"
	"github.com/erazemk/toolshed/internal/testutil"
)

var backendAddr string

func backendFlags(fs *flag.FlagSet, _ *config.Config) {
	fs.StringVar(&backendAddr, "addr", "127.0.0.1:8000", "")
	fs.StringVar(&backendAddr, "a", "127.0.0.1:8000", "")
}

// runBackend serves the in-memory backend with seeded accounts and tools,
// for trying the UI without the real service.
func runBackend(_ *config.Config, _ []string) error {
	password, err := generatePassword(16)
	if err != nil {
		return fmt.Errorf("generating password: %w", err)
	}

	b := testutil.NewBackend("")
	if err := testutil.Seed(b, password); err != nil {
		return err
	}

	fmt.Println("Development backend seeded.")
	fmt.Printf("  API:      http://%s%s\n", backendAddr, testutil.APIPrefix)
	fmt.Println("  Accounts: admin, demo")
	fmt.Printf("  Password: %s\n", password)
	fmt.Println()
	fmt.Println("All data lives in memory and is lost on exit.")

	return listen(backendAddr, b)
}

// generatePassword creates a random password of the given length.
func generatePassword(length int) (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	result := make([]byte, length)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		result[i] = charset[n.Int64()]
	}
	return string(result), nil
}
