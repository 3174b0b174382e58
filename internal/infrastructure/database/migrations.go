package database

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/hugohenrick/atendente-pedidos/pkg/logger"
)

// NewMigrator cria a instância do golang-migrate para o diretório de migrações
func NewMigrator(databaseURL, migrationsPath string) (*migrate.Migrate, error) {
	if databaseURL == "" {
		return nil, ErrNotConfigured
	}

	m, err := migrate.New(SourceURL(migrationsPath), databaseURL)
	if err != nil {
		return nil, fmt.Errorf("erro ao criar migrate: %w", err)
	}
	return m, nil
}

// SourceURL monta a URL file:// do diretório de migrações
func SourceURL(migrationsPath string) string {
	if strings.Contains(migrationsPath, "://") {
		return migrationsPath
	}
	abs, err := filepath.Abs(migrationsPath)
	if err != nil {
		abs = migrationsPath
	}
	return "file://" + filepath.ToSlash(abs)
}

// RunMigrations aplica todas as migrações pendentes
func RunMigrations(databaseURL, migrationsPath string, log logger.Logger) error {
	m, err := NewMigrator(databaseURL, migrationsPath)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("erro ao aplicar migrações: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("erro ao consultar versão: %w", err)
	}
	log.Info("Migrações aplicadas", "version", version, "dirty", dirty)
	return nil
}
