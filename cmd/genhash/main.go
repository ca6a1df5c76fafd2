// cmd/genhash prints the bcrypt hash stored in usuarios.password_hash.
// Uso: go run ./cmd/genhash <password>
package main

import (
	"fmt"
	"os"

	"github.com/machelox/Proyecto-Cyberia/internal/service"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "uso: genhash <password>")
		os.Exit(2)
	}
	h, err := service.HashPassword(os.Args[1])
	if err != nil {
		panic(err)
	}
	fmt.Println(h)
}
