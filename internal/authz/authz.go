// Package authz holds the role based access rules shared by the HTTP layer
// and the services. The base policies live in code; roles inherit upwards
// (administrador > supervisor > cajero). Administrators may grant or revoke
// direct permissions at runtime; those overrides are persisted by the
// permisos service and replayed on start.
package authz

import (
	_ "embed"
	"fmt"
	"slices"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
)

//go:embed model.conf
var modelText string

const (
	ObjCaja       = "caja"
	ObjVenta      = "venta"
	ObjDeuda      = "deuda"
	ObjPago       = "pago"
	ObjEgreso     = "egreso"
	ObjInventario = "inventario"
	ObjProducto   = "producto"
	ObjReporte    = "reporte"
	ObjCliente    = "cliente"
	ObjUsuario    = "usuario"
	ObjPermiso    = "permiso"
)

const (
	ActVer          = "ver"
	ActAbrir        = "abrir"
	ActCerrar       = "cerrar"        // any session
	ActCerrarPropia = "cerrar_propia" // only sessions the actor opened
	ActCrear        = "crear"
	ActGestionar    = "gestionar" // confirm, cancel, pay, remove
	ActIngresar     = "ingresar"
	ActAjustar      = "ajustar"
	ActForzar       = "forzar"
)

var policies = [][]string{
	{"cajero", ObjCaja, ActVer},
	{"cajero", ObjCaja, ActAbrir},
	{"cajero", ObjCaja, ActCerrarPropia},
	{"cajero", ObjVenta, ActVer},
	{"cajero", ObjVenta, ActCrear},
	{"cajero", ObjVenta, ActGestionar},
	{"cajero", ObjDeuda, ActVer},
	{"cajero", ObjDeuda, ActCrear},
	{"cajero", ObjDeuda, ActGestionar},
	{"cajero", ObjPago, ActVer},
	{"cajero", ObjPago, ActCrear},
	{"cajero", ObjPago, ActGestionar},
	{"cajero", ObjEgreso, ActVer},
	{"cajero", ObjEgreso, ActCrear},
	{"cajero", ObjEgreso, ActGestionar},
	{"cajero", ObjInventario, ActVer},
	{"cajero", ObjInventario, ActIngresar},
	{"cajero", ObjInventario, ActAjustar},
	{"cajero", ObjProducto, ActVer},
	{"cajero", ObjCliente, ActVer},
	{"cajero", ObjCliente, ActCrear},

	{"supervisor", ObjCaja, ActCerrar},
	{"supervisor", ObjInventario, ActForzar},
	{"supervisor", ObjProducto, ActGestionar},
	{"supervisor", ObjReporte, ActVer},
	{"supervisor", ObjCliente, ActGestionar},

	{"administrador", ObjUsuario, ActGestionar},
	{"administrador", ObjPermiso, ActGestionar},
}

var herencia = [][]string{
	{"supervisor", "cajero"},
	{"administrador", "supervisor"},
}

// Roles known to the system, lowest first.
var Roles = []string{"cajero", "supervisor", "administrador"}

// Permiso is one (object, action) pair of the catalogue.
type Permiso struct {
	Objeto string
	Accion string
}

// Catalogo lists every permission that can be granted, in display order.
var Catalogo = []Permiso{
	{ObjCaja, ActVer}, {ObjCaja, ActAbrir}, {ObjCaja, ActCerrarPropia}, {ObjCaja, ActCerrar},
	{ObjVenta, ActVer}, {ObjVenta, ActCrear}, {ObjVenta, ActGestionar},
	{ObjDeuda, ActVer}, {ObjDeuda, ActCrear}, {ObjDeuda, ActGestionar},
	{ObjPago, ActVer}, {ObjPago, ActCrear}, {ObjPago, ActGestionar},
	{ObjEgreso, ActVer}, {ObjEgreso, ActCrear}, {ObjEgreso, ActGestionar},
	{ObjInventario, ActVer}, {ObjInventario, ActIngresar}, {ObjInventario, ActAjustar}, {ObjInventario, ActForzar},
	{ObjProducto, ActVer}, {ObjProducto, ActGestionar},
	{ObjCliente, ActVer}, {ObjCliente, ActCrear}, {ObjCliente, ActGestionar},
	{ObjReporte, ActVer},
	{ObjUsuario, ActGestionar},
	{ObjPermiso, ActGestionar},
}

// Reservado reports whether p stays with administrador only. Granting or
// revoking it at runtime could lock every administrator out.
func Reservado(p Permiso) bool {
	return p.Objeto == ObjUsuario || p.Objeto == ObjPermiso
}

// EnCatalogo reports whether obj/act is a known permission.
func EnCatalogo(obj, act string) bool {
	return slices.Contains(Catalogo, Permiso{Objeto: obj, Accion: act})
}

// RolValido reports whether rol is one of Roles.
func RolValido(rol string) bool { return slices.Contains(Roles, rol) }

// Enforcer answers "may role R perform action A on object O".
type Enforcer struct {
	e *casbin.SyncedEnforcer
}

func New() (*Enforcer, error) {
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, fmt.Errorf("authz: model: %w", err)
	}
	e, err := casbin.NewSyncedEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("authz: enforcer: %w", err)
	}
	if _, err := e.AddPolicies(policies); err != nil {
		return nil, fmt.Errorf("authz: policies: %w", err)
	}
	if _, err := e.AddGroupingPolicies(herencia); err != nil {
		return nil, fmt.Errorf("authz: roles: %w", err)
	}
	return &Enforcer{e: e}, nil
}

// MustNew is New for wiring code and tests where the static policy set
// cannot fail to load.
func MustNew() *Enforcer {
	e, err := New()
	if err != nil {
		panic(err)
	}
	return e
}

// Permitido reports whether rol may perform act on obj. Unknown roles are denied.
func (x *Enforcer) Permitido(rol, obj, act string) bool {
	if rol == "" {
		return false
	}
	ok, err := x.e.Enforce(rol, obj, act)
	return err == nil && ok
}

// Directo reports whether rol holds obj/act itself rather than through an
// inherited role.
func (x *Enforcer) Directo(rol, obj, act string) (bool, error) {
	return x.e.HasPolicy(rol, obj, act)
}

// Conceder grants obj/act to rol. Granting an existing permission is a no-op.
func (x *Enforcer) Conceder(rol, obj, act string) error {
	_, err := x.e.AddPolicy(rol, obj, act)
	return err
}

// Revocar removes the direct grant of obj/act from rol. Permissions inherited
// from a lower role are untouched.
func (x *Enforcer) Revocar(rol, obj, act string) error {
	_, err := x.e.RemovePolicy(rol, obj, act)
	return err
}
