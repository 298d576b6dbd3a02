package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/debtbook/internal/auth"
	"github.com/mmynk/debtbook/internal/calculator"
	"github.com/mmynk/debtbook/internal/ledger"
	"github.com/mmynk/debtbook/internal/middleware"
	"github.com/mmynk/debtbook/internal/validation"
)

// LedgerService implements the LedgerService RPC interface on top of the
// ledger package. The owning user always comes from the auth context.
type LedgerService struct {
	ledger    *ledger.Service
	validator *validation.Validator
	logger    *slog.Logger
}

// NewLedgerService creates a new ledger service.
func NewLedgerService(svc *ledger.Service, v *validation.Validator, logger *slog.Logger) *LedgerService {
	return &LedgerService{ledger: svc, validator: v, logger: logger}
}

// begin returns the caller's user id after validating msg.
func (s *LedgerService) begin(ctx context.Context, procedure string, msg any) (string, error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return "", connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
	}
	if err := s.validator.Struct(msg); err != nil {
		return "", s.fail(procedure, err)
	}
	return userID, nil
}

func (s *LedgerService) fail(procedure string, err error) error {
	return toConnectError(s.logger, procedure, err)
}

func (s *LedgerService) ListDebtors(ctx context.Context, req *connect.Request[ListDebtorsRequest]) (*connect.Response[ListDebtorsResponse], error) {
	userID, err := s.begin(ctx, LedgerServiceListDebtorsProcedure, req.Msg)
	if err != nil {
		return nil, err
	}

	summaries, err := s.ledger.ListDebtors(ctx, userID)
	if err != nil {
		return nil, s.fail(LedgerServiceListDebtorsProcedure, err)
	}

	resp := &ListDebtorsResponse{Debtors: make([]*Debtor, 0, len(summaries))}
	for _, sum := range summaries {
		resp.Debtors = append(resp.Debtors, toDebtor(&sum.Debtor, calculator.TotalUnpaid(sum)))
	}
	return connect.NewResponse(resp), nil
}

func (s *LedgerService) CreateDebtor(ctx context.Context, req *connect.Request[CreateDebtorRequest]) (*connect.Response[CreateDebtorResponse], error) {
	userID, err := s.begin(ctx, LedgerServiceCreateDebtorProcedure, req.Msg)
	if err != nil {
		return nil, err
	}

	debtor, err := s.ledger.CreateDebtor(ctx, userID, req.Msg.Name, req.Msg.ContactInfo)
	if err != nil {
		return nil, s.fail(LedgerServiceCreateDebtorProcedure, err)
	}
	return connect.NewResponse(&CreateDebtorResponse{Debtor: toDebtor(debtor, 0)}), nil
}

func (s *LedgerService) UpdateDebtor(ctx context.Context, req *connect.Request[UpdateDebtorRequest]) (*connect.Response[UpdateDebtorResponse], error) {
	userID, err := s.begin(ctx, LedgerServiceUpdateDebtorProcedure, req.Msg)
	if err != nil {
		return nil, err
	}

	debtor, err := s.ledger.UpdateDebtor(ctx, userID, req.Msg.DebtorID, req.Msg.Name, req.Msg.ContactInfo)
	if err != nil {
		return nil, s.fail(LedgerServiceUpdateDebtorProcedure, err)
	}
	balance, err := s.ledger.GetDebtorBalance(ctx, userID, debtor.ID)
	if err != nil {
		return nil, s.fail(LedgerServiceUpdateDebtorProcedure, err)
	}
	return connect.NewResponse(&UpdateDebtorResponse{Debtor: toDebtor(debtor, balance.TotalUnpaid)}), nil
}

func (s *LedgerService) DeleteDebtor(ctx context.Context, req *connect.Request[DeleteDebtorRequest]) (*connect.Response[DeleteDebtorResponse], error) {
	userID, err := s.begin(ctx, LedgerServiceDeleteDebtorProcedure, req.Msg)
	if err != nil {
		return nil, err
	}

	if err := s.ledger.DeleteDebtor(ctx, userID, req.Msg.DebtorID); err != nil {
		return nil, s.fail(LedgerServiceDeleteDebtorProcedure, err)
	}
	return connect.NewResponse(&DeleteDebtorResponse{}), nil
}

func (s *LedgerService) GetDebtorBalance(ctx context.Context, req *connect.Request[GetDebtorBalanceRequest]) (*connect.Response[GetDebtorBalanceResponse], error) {
	userID, err := s.begin(ctx, LedgerServiceGetDebtorBalanceProcedure, req.Msg)
	if err != nil {
		return nil, err
	}

	balance, err := s.ledger.GetDebtorBalance(ctx, userID, req.Msg.DebtorID)
	if err != nil {
		return nil, s.fail(LedgerServiceGetDebtorBalanceProcedure, err)
	}
	return connect.NewResponse(toBalance(balance)), nil
}

func (s *LedgerService) ListDebtItems(ctx context.Context, req *connect.Request[ListDebtItemsRequest]) (*connect.Response[ListDebtItemsResponse], error) {
	userID, err := s.begin(ctx, LedgerServiceListDebtItemsProcedure, req.Msg)
	if err != nil {
		return nil, err
	}

	items, err := s.ledger.ListDebtItems(ctx, userID, req.Msg.DebtorID)
	if err != nil {
		return nil, s.fail(LedgerServiceListDebtItemsProcedure, err)
	}

	resp := &ListDebtItemsResponse{Items: make([]*DebtItem, 0, len(items))}
	for _, item := range items {
		resp.Items = append(resp.Items, toDebtItem(item))
	}
	return connect.NewResponse(resp), nil
}

func (s *LedgerService) CreateDebtItem(ctx context.Context, req *connect.Request[CreateDebtItemRequest]) (*connect.Response[CreateDebtItemResponse], error) {
	userID, err := s.begin(ctx, LedgerServiceCreateDebtItemProcedure, req.Msg)
	if err != nil {
		return nil, err
	}

	item, err := s.ledger.CreateDebtItem(ctx, userID, ledger.NewDebtItem{
		DebtorID:        req.Msg.DebtorID,
		Description:     req.Msg.Description,
		Quantity:        req.Msg.Quantity,
		UnitPrice:       req.Msg.UnitPrice,
		TransactionDate: req.Msg.TransactionDate,
	})
	if err != nil {
		return nil, s.fail(LedgerServiceCreateDebtItemProcedure, err)
	}
	return connect.NewResponse(&CreateDebtItemResponse{Item: toDebtItem(item)}), nil
}

func (s *LedgerService) DeleteDebtItem(ctx context.Context, req *connect.Request[DeleteDebtItemRequest]) (*connect.Response[DeleteDebtItemResponse], error) {
	userID, err := s.begin(ctx, LedgerServiceDeleteDebtItemProcedure, req.Msg)
	if err != nil {
		return nil, err
	}

	result, err := s.ledger.DeleteDebtItem(ctx, userID, req.Msg.ItemID)
	if err != nil {
		return nil, s.fail(LedgerServiceDeleteDebtItemProcedure, err)
	}
	return connect.NewResponse(&DeleteDebtItemResponse{
		RemovedAllocations: result.RemovedAllocations,
		AdjustedPaymentIDs: result.AdjustedPayments,
		DeletedPaymentIDs:  result.DeletedPayments,
	}), nil
}

func (s *LedgerService) AllocatePayment(ctx context.Context, req *connect.Request[AllocatePaymentRequest]) (*connect.Response[AllocatePaymentResponse], error) {
	userID, err := s.begin(ctx, LedgerServiceAllocatePaymentProcedure, req.Msg)
	if err != nil {
		return nil, err
	}

	receipt, err := s.ledger.AllocatePayment(ctx, userID, ledger.NewPayment{
		DebtorID:    req.Msg.DebtorID,
		Amount:      req.Msg.Amount,
		PaymentDate: req.Msg.PaymentDate,
	})
	if err != nil {
		return nil, s.fail(LedgerServiceAllocatePaymentProcedure, err)
	}

	resp := &AllocatePaymentResponse{
		PaymentID:   receipt.Payment.ID,
		Amount:      receipt.Payment.Amount,
		Unallocated: receipt.Unallocated,
		Allocations: make([]*AllocationLine, 0, len(receipt.Allocations)),
	}
	for _, a := range receipt.Allocations {
		resp.Allocations = append(resp.Allocations, &AllocationLine{
			DebtItemID:    a.DebtItemID,
			Amount:        a.Amount,
			BalanceBefore: a.BalanceBefore,
			BalanceAfter:  a.BalanceAfter,
		})
	}
	return connect.NewResponse(resp), nil
}

func (s *LedgerService) ListPayments(ctx context.Context, req *connect.Request[ListPaymentsRequest]) (*connect.Response[ListPaymentsResponse], error) {
	userID, err := s.begin(ctx, LedgerServiceListPaymentsProcedure, req.Msg)
	if err != nil {
		return nil, err
	}

	payments, err := s.ledger.ListPayments(ctx, userID, req.Msg.DebtorID)
	if err != nil {
		return nil, s.fail(LedgerServiceListPaymentsProcedure, err)
	}

	resp := &ListPaymentsResponse{Payments: make([]*Payment, 0, len(payments))}
	for _, p := range payments {
		resp.Payments = append(resp.Payments, toPayment(p))
	}
	return connect.NewResponse(resp), nil
}

func (s *LedgerService) DeletePayment(ctx context.Context, req *connect.Request[DeletePaymentRequest]) (*connect.Response[DeletePaymentResponse], error) {
	userID, err := s.begin(ctx, LedgerServiceDeletePaymentProcedure, req.Msg)
	if err != nil {
		return nil, err
	}

	if err := s.ledger.DeletePayment(ctx, userID, req.Msg.PaymentID); err != nil {
		return nil, s.fail(LedgerServiceDeletePaymentProcedure, err)
	}
	return connect.NewResponse(&DeletePaymentResponse{}), nil
}
