// Command storage-keygen generates the RSA key pair the storage API signs
// and verifies tokens with, written as DER files.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/storagesystem/api/auth"
)

func main() {
	publicPath := pflag.String("public", "keys/public.der", "path the PKIX public key is written to")
	privatePath := pflag.String("private", "keys/private.der", "path the PKCS #8 private key is written to")
	force := pflag.Bool("force", false, "overwrite existing key files")
	pflag.Parse()

	if !*force {
		for _, path := range []string{*publicPath, *privatePath} {
			if _, err := os.Stat(path); err == nil {
				fmt.Fprintf(os.Stderr, "%s already exists, pass --force to overwrite\n", path)
				os.Exit(1)
			} else if !errors.Is(err, os.ErrNotExist) {
				fmt.Fprintf(os.Stderr, "could not stat %s: %v\n", path, err)
				os.Exit(1)
			}
		}
	}

	if _, err := auth.GenerateAndPersist(*publicPath, *privatePath); err != nil {
		fmt.Fprintf(os.Stderr, "could not generate key pair: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("wrote %s and %s\n", *publicPath, *privatePath)
}
