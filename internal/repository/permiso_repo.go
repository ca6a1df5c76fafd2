package repository

import (
	"context"

	"github.com/machelox/Proyecto-Cyberia/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PermisoRepository interface {
	List(ctx context.Context) ([]model.PermisoRol, error)
	// Guardar upserts every override in one transaction.
	Guardar(ctx context.Context, permisos []model.PermisoRol) error
}

type permisoRepo struct{ db *gorm.DB }

func NewPermisoRepository(db *gorm.DB) PermisoRepository { return &permisoRepo{db: db} }

func (r *permisoRepo) List(ctx context.Context) ([]model.PermisoRol, error) {
	var permisos []model.PermisoRol
	err := r.db.WithContext(ctx).Order("rol, objeto, accion").Find(&permisos).Error
	return permisos, err
}

func (r *permisoRepo) Guardar(ctx context.Context, permisos []model.PermisoRol) error {
	if len(permisos) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "rol"}, {Name: "objeto"}, {Name: "accion"}},
			DoUpdates: clause.AssignmentColumns([]string{"permitido", "usuario_email", "updated_at"}),
		}).Create(&permisos).Error
	})
}
