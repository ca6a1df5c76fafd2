// cmd/seeduser/main.go: Crea/actualiza un usuario.
// Uso: go run ./cmd/seeduser -email admin@cyberia.local -password 1234 -rol administrador
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/machelox/Proyecto-Cyberia/internal/config"
	"github.com/machelox/Proyecto-Cyberia/internal/infra"
	"github.com/machelox/Proyecto-Cyberia/internal/model"
	"github.com/machelox/Proyecto-Cyberia/internal/repository"
	"github.com/machelox/Proyecto-Cyberia/internal/service"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	email := flag.String("email", "admin@cyberia.local", "email del usuario")
	password := flag.String("password", "1234", "contraseña en texto plano")
	nombre := flag.String("nombre", "Admin", "nombre visible")
	rol := flag.String("rol", model.RolAdministrador, "cajero | supervisor | administrador")
	flag.Parse()

	switch *rol {
	case model.RolCajero, model.RolSupervisor, model.RolAdministrador:
	default:
		log.Fatal().Str("rol", *rol).Msg("rol desconocido")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect")
	}

	hash, err := service.HashPassword(*password)
	if err != nil {
		log.Fatal().Err(err).Msg("bcrypt")
	}

	u := &model.Usuario{
		Email:        strings.ToLower(*email),
		Nombre:       *nombre,
		PasswordHash: hash,
		Rol:          *rol,
		Activo:       true,
	}
	if err := repository.NewUsuarioRepository(db).Upsert(context.Background(), u); err != nil {
		log.Fatal().Err(err).Msg("upsert")
	}
	fmt.Printf("Usuario '%s' (%s) creado/actualizado\n", u.Email, u.Rol)
}
