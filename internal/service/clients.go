package service

import (
	"context"
	"strings"

	"connectrpc.com/connect"
)

// LedgerServiceClient is a client for the debtbook.v1.LedgerService service.
type LedgerServiceClient struct {
	listDebtors      *connect.Client[ListDebtorsRequest, ListDebtorsResponse]
	createDebtor     *connect.Client[CreateDebtorRequest, CreateDebtorResponse]
	updateDebtor     *connect.Client[UpdateDebtorRequest, UpdateDebtorResponse]
	deleteDebtor     *connect.Client[DeleteDebtorRequest, DeleteDebtorResponse]
	getDebtorBalance *connect.Client[GetDebtorBalanceRequest, GetDebtorBalanceResponse]
	listDebtItems    *connect.Client[ListDebtItemsRequest, ListDebtItemsResponse]
	createDebtItem   *connect.Client[CreateDebtItemRequest, CreateDebtItemResponse]
	deleteDebtItem   *connect.Client[DeleteDebtItemRequest, DeleteDebtItemResponse]
	allocatePayment  *connect.Client[AllocatePaymentRequest, AllocatePaymentResponse]
	listPayments     *connect.Client[ListPaymentsRequest, ListPaymentsResponse]
	deletePayment    *connect.Client[DeletePaymentRequest, DeletePaymentResponse]
}

// NewLedgerServiceClient constructs a client for the ledger procedures
// served at baseURL.
func NewLedgerServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *LedgerServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{WithJSON()}, opts...)
	return &LedgerServiceClient{
		listDebtors:      connect.NewClient[ListDebtorsRequest, ListDebtorsResponse](httpClient, baseURL+LedgerServiceListDebtorsProcedure, opts...),
		createDebtor:     connect.NewClient[CreateDebtorRequest, CreateDebtorResponse](httpClient, baseURL+LedgerServiceCreateDebtorProcedure, opts...),
		updateDebtor:     connect.NewClient[UpdateDebtorRequest, UpdateDebtorResponse](httpClient, baseURL+LedgerServiceUpdateDebtorProcedure, opts...),
		deleteDebtor:     connect.NewClient[DeleteDebtorRequest, DeleteDebtorResponse](httpClient, baseURL+LedgerServiceDeleteDebtorProcedure, opts...),
		getDebtorBalance: connect.NewClient[GetDebtorBalanceRequest, GetDebtorBalanceResponse](httpClient, baseURL+LedgerServiceGetDebtorBalanceProcedure, opts...),
		listDebtItems:    connect.NewClient[ListDebtItemsRequest, ListDebtItemsResponse](httpClient, baseURL+LedgerServiceListDebtItemsProcedure, opts...),
		createDebtItem:   connect.NewClient[CreateDebtItemRequest, CreateDebtItemResponse](httpClient, baseURL+LedgerServiceCreateDebtItemProcedure, opts...),
		deleteDebtItem:   connect.NewClient[DeleteDebtItemRequest, DeleteDebtItemResponse](httpClient, baseURL+LedgerServiceDeleteDebtItemProcedure, opts...),
		allocatePayment:  connect.NewClient[AllocatePaymentRequest, AllocatePaymentResponse](httpClient, baseURL+LedgerServiceAllocatePaymentProcedure, opts...),
		listPayments:     connect.NewClient[ListPaymentsRequest, ListPaymentsResponse](httpClient, baseURL+LedgerServiceListPaymentsProcedure, opts...),
		deletePayment:    connect.NewClient[DeletePaymentRequest, DeletePaymentResponse](httpClient, baseURL+LedgerServiceDeletePaymentProcedure, opts...),
	}
}

func (c *LedgerServiceClient) ListDebtors(ctx context.Context, req *connect.Request[ListDebtorsRequest]) (*connect.Response[ListDebtorsResponse], error) {
	return c.listDebtors.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) CreateDebtor(ctx context.Context, req *connect.Request[CreateDebtorRequest]) (*connect.Response[CreateDebtorResponse], error) {
	return c.createDebtor.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) UpdateDebtor(ctx context.Context, req *connect.Request[UpdateDebtorRequest]) (*connect.Response[UpdateDebtorResponse], error) {
	return c.updateDebtor.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) DeleteDebtor(ctx context.Context, req *connect.Request[DeleteDebtorRequest]) (*connect.Response[DeleteDebtorResponse], error) {
	return c.deleteDebtor.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) GetDebtorBalance(ctx context.Context, req *connect.Request[GetDebtorBalanceRequest]) (*connect.Response[GetDebtorBalanceResponse], error) {
	return c.getDebtorBalance.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) ListDebtItems(ctx context.Context, req *connect.Request[ListDebtItemsRequest]) (*connect.Response[ListDebtItemsResponse], error) {
	return c.listDebtItems.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) CreateDebtItem(ctx context.Context, req *connect.Request[CreateDebtItemRequest]) (*connect.Response[CreateDebtItemResponse], error) {
	return c.createDebtItem.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) DeleteDebtItem(ctx context.Context, req *connect.Request[DeleteDebtItemRequest]) (*connect.Response[DeleteDebtItemResponse], error) {
	return c.deleteDebtItem.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) AllocatePayment(ctx context.Context, req *connect.Request[AllocatePaymentRequest]) (*connect.Response[AllocatePaymentResponse], error) {
	return c.allocatePayment.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) ListPayments(ctx context.Context, req *connect.Request[ListPaymentsRequest]) (*connect.Response[ListPaymentsResponse], error) {
	return c.listPayments.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) DeletePayment(ctx context.Context, req *connect.Request[DeletePaymentRequest]) (*connect.Response[DeletePaymentResponse], error) {
	return c.deletePayment.CallUnary(ctx, req)
}

// AuthServiceClient is a client for the debtbook.v1.AuthService service.
type AuthServiceClient struct {
	register       *connect.Client[RegisterRequest, RegisterResponse]
	login          *connect.Client[LoginRequest, LoginResponse]
	logout         *connect.Client[LogoutRequest, LogoutResponse]
	getCurrentUser *connect.Client[GetCurrentUserRequest, GetCurrentUserResponse]
}

// NewAuthServiceClient constructs a client for the auth procedures.
func NewAuthServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *AuthServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{WithJSON()}, opts...)
	return &AuthServiceClient{
		register:       connect.NewClient[RegisterRequest, RegisterResponse](httpClient, baseURL+AuthServiceRegisterProcedure, opts...),
		login:          connect.NewClient[LoginRequest, LoginResponse](httpClient, baseURL+AuthServiceLoginProcedure, opts...),
		logout:         connect.NewClient[LogoutRequest, LogoutResponse](httpClient, baseURL+AuthServiceLogoutProcedure, opts...),
		getCurrentUser: connect.NewClient[GetCurrentUserRequest, GetCurrentUserResponse](httpClient, baseURL+AuthServiceGetCurrentUserProcedure, opts...),
	}
}

func (c *AuthServiceClient) Register(ctx context.Context, req *connect.Request[RegisterRequest]) (*connect.Response[RegisterResponse], error) {
	return c.register.CallUnary(ctx, req)
}

func (c *AuthServiceClient) Login(ctx context.Context, req *connect.Request[LoginRequest]) (*connect.Response[LoginResponse], error) {
	return c.login.CallUnary(ctx, req)
}

func (c *AuthServiceClient) Logout(ctx context.Context, req *connect.Request[LogoutRequest]) (*connect.Response[LogoutResponse], error) {
	return c.logout.CallUnary(ctx, req)
}

func (c *AuthServiceClient) GetCurrentUser(ctx context.Context, req *connect.Request[GetCurrentUserRequest]) (*connect.Response[GetCurrentUserResponse], error) {
	return c.getCurrentUser.CallUnary(ctx, req)
}
