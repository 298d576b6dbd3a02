package service

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"
)

const (
	// LedgerServiceName is the fully-qualified name of the LedgerService service.
	LedgerServiceName = "debtbook.v1.LedgerService"
	// AuthServiceName is the fully-qualified name of the AuthService service.
	AuthServiceName = "debtbook.v1.AuthService"
)

const (
	LedgerServiceListDebtorsProcedure      = "/debtbook.v1.LedgerService/ListDebtors"
	LedgerServiceCreateDebtorProcedure     = "/debtbook.v1.LedgerService/CreateDebtor"
	LedgerServiceUpdateDebtorProcedure     = "/debtbook.v1.LedgerService/UpdateDebtor"
	LedgerServiceDeleteDebtorProcedure     = "/debtbook.v1.LedgerService/DeleteDebtor"
	LedgerServiceGetDebtorBalanceProcedure = "/debtbook.v1.LedgerService/GetDebtorBalance"
	LedgerServiceListDebtItemsProcedure    = "/debtbook.v1.LedgerService/ListDebtItems"
	LedgerServiceCreateDebtItemProcedure   = "/debtbook.v1.LedgerService/CreateDebtItem"
	LedgerServiceDeleteDebtItemProcedure   = "/debtbook.v1.LedgerService/DeleteDebtItem"
	LedgerServiceAllocatePaymentProcedure  = "/debtbook.v1.LedgerService/AllocatePayment"
	LedgerServiceListPaymentsProcedure     = "/debtbook.v1.LedgerService/ListPayments"
	LedgerServiceDeletePaymentProcedure    = "/debtbook.v1.LedgerService/DeletePayment"

	AuthServiceRegisterProcedure       = "/debtbook.v1.AuthService/Register"
	AuthServiceLoginProcedure          = "/debtbook.v1.AuthService/Login"
	AuthServiceLogoutProcedure         = "/debtbook.v1.AuthService/Logout"
	AuthServiceGetCurrentUserProcedure = "/debtbook.v1.AuthService/GetCurrentUser"
)

// procedureMux routes a service's procedures to their unary handlers.
type procedureMux map[string]http.Handler

func (m procedureMux) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h, ok := m[r.URL.Path]; ok {
		h.ServeHTTP(w, r)
		return
	}
	http.NotFound(w, r)
}

func unary[Req, Res any](mux procedureMux, procedure string, fn func(context.Context, *connect.Request[Req]) (*connect.Response[Res], error), opts []connect.HandlerOption) {
	mux[procedure] = connect.NewUnaryHandler(procedure, fn, opts...)
}

func servicePath(name string) string {
	return "/" + strings.TrimPrefix(name, "/") + "/"
}

// NewLedgerServiceHandler builds an HTTP handler for the ledger procedures.
// It returns the path on which to mount the handler. Messages are JSON.
func NewLedgerServiceHandler(svc *LedgerService, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{WithJSON()}, opts...)
	mux := procedureMux{}
	unary(mux, LedgerServiceListDebtorsProcedure, svc.ListDebtors, opts)
	unary(mux, LedgerServiceCreateDebtorProcedure, svc.CreateDebtor, opts)
	unary(mux, LedgerServiceUpdateDebtorProcedure, svc.UpdateDebtor, opts)
	unary(mux, LedgerServiceDeleteDebtorProcedure, svc.DeleteDebtor, opts)
	unary(mux, LedgerServiceGetDebtorBalanceProcedure, svc.GetDebtorBalance, opts)
	unary(mux, LedgerServiceListDebtItemsProcedure, svc.ListDebtItems, opts)
	unary(mux, LedgerServiceCreateDebtItemProcedure, svc.CreateDebtItem, opts)
	unary(mux, LedgerServiceDeleteDebtItemProcedure, svc.DeleteDebtItem, opts)
	unary(mux, LedgerServiceAllocatePaymentProcedure, svc.AllocatePayment, opts)
	unary(mux, LedgerServiceListPaymentsProcedure, svc.ListPayments, opts)
	unary(mux, LedgerServiceDeletePaymentProcedure, svc.DeletePayment, opts)
	return servicePath(LedgerServiceName), mux
}

// NewAuthServiceHandler builds an HTTP handler for the auth procedures.
func NewAuthServiceHandler(svc *AuthService, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{WithJSON()}, opts...)
	mux := procedureMux{}
	unary(mux, AuthServiceRegisterProcedure, svc.Register, opts)
	unary(mux, AuthServiceLoginProcedure, svc.Login, opts)
	unary(mux, AuthServiceLogoutProcedure, svc.Logout, opts)
	unary(mux, AuthServiceGetCurrentUserProcedure, svc.GetCurrentUser, opts)
	return servicePath(AuthServiceName), mux
}
