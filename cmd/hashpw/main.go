package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/xavierca1/leaddesk/internal/infra/auth"
	"github.com/xavierca1/leaddesk/internal/logging"
)

// Gera o valor de ADMIN_PASSWORD_HASH. Uso: hashpw <senha> ou echo senha | hashpw
func main() {
	logging.Init("info", "console")

	password := ""
	if len(os.Args) > 1 {
		password = os.Args[1]
	} else {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			log.Fatal().Err(err).Msg("❌ Erro ao ler senha do stdin")
		}
		password = strings.TrimRight(line, "\r\n")
	}

	if password == "" {
		log.Fatal().Msg("❌ Senha vazia")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		log.Fatal().Err(err).Msg("❌ Erro ao gerar hash")
	}
	fmt.Println(hash)
}
