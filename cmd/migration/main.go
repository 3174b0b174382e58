package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	"github.com/hugohenrick/atendente-pedidos/internal/config"
	"github.com/hugohenrick/atendente-pedidos/internal/infrastructure/database"
	"github.com/hugohenrick/atendente-pedidos/pkg/logger"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "migration",
		Usage: "gerencia as migrações do banco de histórico das conversas",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "database-url",
				Usage:   "URL do PostgreSQL (padrão: DATABASE_URL)",
				EnvVars: []string{"DATABASE_URL"},
			},
			&cli.StringFlag{
				Name:    "path",
				Usage:   "diretório das migrações (padrão: MIGRATIONS_PATH)",
				EnvVars: []string{"MIGRATIONS_PATH"},
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "up",
				Usage:  "aplica as migrações pendentes",
				Action: up,
			},
			{
				Name:      "down",
				Usage:     "desfaz migrações (todas, ou N passos)",
				ArgsUsage: "[passos]",
				Action:    down,
			},
			{
				Name:   "version",
				Usage:  "mostra a versão atual do banco",
				Action: version,
			},
			{
				Name:      "force",
				Usage:     "marca uma versão como aplicada, limpando o estado dirty",
				ArgsUsage: "<versão>",
				Action:    force,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("Erro ao executar migrações: %v", err)
	}
}

// settings combina as flags com a configuração da aplicação
func settings(c *cli.Context) (string, string, error) {
	cfg, err := config.Load()
	if err != nil {
		return "", "", err
	}

	url, path := cfg.Database.URL, cfg.Database.MigrationsPath
	if c.IsSet("database-url") {
		url = c.String("database-url")
	}
	if c.IsSet("path") {
		path = c.String("path")
	}
	return url, path, nil
}

func open(c *cli.Context) (*migrate.Migrate, error) {
	url, path, err := settings(c)
	if err != nil {
		return nil, err
	}
	return database.NewMigrator(url, path)
}

func up(c *cli.Context) error {
	url, path, err := settings(c)
	if err != nil {
		return err
	}
	return database.RunMigrations(url, path, logger.NewLogger())
}

func down(c *cli.Context) error {
	m, err := open(c)
	if err != nil {
		return err
	}
	defer m.Close()

	if c.Args().Present() {
		steps, err := strconv.Atoi(c.Args().First())
		if err != nil || steps <= 0 {
			return fmt.Errorf("número de passos inválido: %s", c.Args().First())
		}
		err = m.Steps(-steps)
		if err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return errors.Wrap(err, "erro ao desfazer migrações")
		}
	} else if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return errors.Wrap(err, "erro ao desfazer migrações")
	}

	log.Println("Migrações desfeitas com sucesso!")
	return nil
}

func version(c *cli.Context) error {
	m, err := open(c)
	if err != nil {
		return err
	}
	defer m.Close()

	v, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		fmt.Println("Nenhuma migração aplicada")
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "erro ao consultar versão")
	}

	fmt.Printf("Versão: %d (dirty: %t)\n", v, dirty)
	return nil
}

func force(c *cli.Context) error {
	v, err := strconv.Atoi(c.Args().First())
	if err != nil {
		return fmt.Errorf("versão inválida: %q", c.Args().First())
	}

	m, err := open(c)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Force(v); err != nil {
		return errors.Wrap(err, "erro ao forçar versão")
	}

	log.Printf("Versão %d marcada como aplicada", v)
	return nil
}
