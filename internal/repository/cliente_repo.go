package repository

import (
	"context"
	"strings"

	"github.com/machelox/Proyecto-Cyberia/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ClienteRepository interface {
	Create(ctx context.Context, c *model.Cliente) error
	FindByDNI(ctx context.Context, dni string) (*model.Cliente, error)
	// List returns active customers ordered by name. buscar filters by DNI
	// prefix or a fragment of nombres/alias.
	List(ctx context.Context, buscar string) ([]model.Cliente, error)
	Update(ctx context.Context, c *model.Cliente) error
	SetActivo(ctx context.Context, id uuid.UUID, activo bool) (int64, error)
}

type clienteRepo struct{ db *gorm.DB }

func NewClienteRepository(db *gorm.DB) ClienteRepository { return &clienteRepo{db: db} }

func (r *clienteRepo) Create(ctx context.Context, c *model.Cliente) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *clienteRepo) FindByDNI(ctx context.Context, dni string) (*model.Cliente, error) {
	var c model.Cliente
	err := r.db.WithContext(ctx).Where("dni = ?", dni).First(&c).Error
	return &c, err
}

func (r *clienteRepo) List(ctx context.Context, buscar string) ([]model.Cliente, error) {
	q := r.db.WithContext(ctx).Where("activo = ?", true)
	if buscar = strings.TrimSpace(buscar); buscar != "" {
		like := "%" + strings.ToLower(buscar) + "%"
		q = q.Where("dni LIKE ? OR LOWER(nombres) LIKE ? OR LOWER(alias) LIKE ?", buscar+"%", like, like)
	}
	var clientes []model.Cliente
	err := q.Order("nombres ASC").Find(&clientes).Error
	return clientes, err
}

func (r *clienteRepo) Update(ctx context.Context, c *model.Cliente) error {
	return r.db.WithContext(ctx).Model(c).Updates(map[string]interface{}{
		"nombres": c.Nombres,
		"alias":   c.Alias,
		"email":   c.Email,
		"celular": c.Celular,
	}).Error
}

func (r *clienteRepo) SetActivo(ctx context.Context, id uuid.UUID, activo bool) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.Cliente{}).Where("id = ?", id).Update("activo", activo)
	return res.RowsAffected, res.Error
}
