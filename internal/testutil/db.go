// Package testutil builds throwaway databases for package tests.
package testutil

import (
	"testing"

	"github.com/machelox/Proyecto-Cyberia/internal/model"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB returns an in-memory SQLite database with the full schema. Each call
// gets its own database. A single connection serializes transactions the way
// row locks would on Postgres.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&model.Usuario{},
		&model.SesionCaja{},
		&model.Producto{},
		&model.MovimientoStock{},
		&model.HistorialPrecio{},
		&model.Venta{},
		&model.VentaItem{},
		&model.Deuda{},
		&model.PagoDeuda{},
		&model.PagoManual{},
		&model.Egreso{},
		&model.Cliente{},
		&model.PermisoRol{},
	))
	for _, ddl := range []string{
		"CREATE UNIQUE INDEX uniq_sesion_abierta ON sesiones_caja (estado) WHERE estado = 'abierta'",
		"CREATE UNIQUE INDEX uniq_pagos_automaticos_codigo ON pagos_manuales (metodo, codigo) WHERE origen = 'automatico'",
	} {
		require.NoError(t, db.Exec(ddl).Error)
	}
	return db
}
