package main

import (
	"flag"
	"fmt"
	"log"

	"bugscape/internal/auth"
)

func main() {
	bits := flag.Int("bits", 2048, "RSA key size")
	flag.Parse()

	if *bits < 2048 {
		log.Fatalf("Invalid key size: %d. Must be at least 2048", *bits)
	}

	for _, role := range []string{"ACCESS", "REFRESH"} {
		kp, err := auth.GenerateKeyPair(*bits)
		if err != nil {
			log.Fatalf("Failed to generate %s key pair: %v", role, err)
		}
		priv, pub, err := auth.EncodeKeyPair(kp)
		if err != nil {
			log.Fatalf("Failed to encode %s key pair: %v", role, err)
		}
		fmt.Printf("%s_TOKEN_PRIVATE_KEY=%s\n", role, priv)
		fmt.Printf("%s_TOKEN_PUBLIC_KEY=%s\n", role, pub)
	}

	fmt.Println("\nAdd these lines to your .env file.")
	fmt.Println("Services that only verify tokens need the public keys.")
}
