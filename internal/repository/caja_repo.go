package repository

import (
	"context"

	"github.com/machelox/Proyecto-Cyberia/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CajaRepository interface {
	Create(ctx context.Context, s *model.SesionCaja) error
	FindAbierta(ctx context.Context) (*model.SesionCaja, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.SesionCaja, error)
	// FindByIDTx reads the session inside tx; lock is LockShare, LockUpdate or "".
	FindByIDTx(tx *gorm.DB, id uuid.UUID, lock string) (*model.SesionCaja, error)
	// CerrarTx persists the close-out only if the row is still abierta and
	// returns the number of rows updated.
	CerrarTx(tx *gorm.DB, s *model.SesionCaja) (int64, error)
	List(ctx context.Context, page, limit int) ([]model.SesionCaja, int64, error)
	// ListCerradas returns the sessions closed in rango, oldest first.
	ListCerradas(ctx context.Context, rango Rango) ([]model.SesionCaja, error)
	DB() *gorm.DB
}

type cajaRepo struct{ db *gorm.DB }

func NewCajaRepository(db *gorm.DB) CajaRepository { return &cajaRepo{db: db} }

func (r *cajaRepo) DB() *gorm.DB { return r.db }

func (r *cajaRepo) Create(ctx context.Context, s *model.SesionCaja) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *cajaRepo) FindAbierta(ctx context.Context) (*model.SesionCaja, error) {
	var s model.SesionCaja
	err := r.db.WithContext(ctx).Where("estado = ?", model.SesionAbierta).First(&s).Error
	return &s, err
}

func (r *cajaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.SesionCaja, error) {
	var s model.SesionCaja
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&s).Error
	return &s, err
}

func (r *cajaRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID, lock string) (*model.SesionCaja, error) {
	var s model.SesionCaja
	err := conBloqueo(tx, lock).Where("id = ?", id).First(&s).Error
	return &s, err
}

func (r *cajaRepo) CerrarTx(tx *gorm.DB, s *model.SesionCaja) (int64, error) {
	res := tx.Model(&model.SesionCaja{}).
		Where("id = ? AND estado = ?", s.ID, model.SesionAbierta).
		Updates(map[string]interface{}{
			"estado":         model.SesionCerrada,
			"closed_at":      s.ClosedAt,
			"cerrado_por_id": s.CerradoPorID,
			"cerrado_por":    s.CerradoPor,
			"monto_pos":      s.MontoPOS,
			"monto_contado":  s.MontoContado,
			"monto_esperado": s.MontoEsperado,
			"diferencia":     s.Diferencia,
			"clasificacion":  s.Clasificacion,
			"notas":          s.Notas,
		})
	return res.RowsAffected, res.Error
}

func (r *cajaRepo) List(ctx context.Context, page, limit int) ([]model.SesionCaja, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.SesionCaja{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	_, limit, offset := paginar(page, limit, 20, 100)
	var sesiones []model.SesionCaja
	err := r.db.WithContext(ctx).Order("opened_at DESC").Offset(offset).Limit(limit).Find(&sesiones).Error
	return sesiones, total, err
}

func (r *cajaRepo) ListCerradas(ctx context.Context, rango Rango) ([]model.SesionCaja, error) {
	var sesiones []model.SesionCaja
	q := r.db.WithContext(ctx).Where("estado = ?", model.SesionCerrada)
	err := rango.aplicar(q, "closed_at").Order("closed_at ASC").Find(&sesiones).Error
	return sesiones, err
}
