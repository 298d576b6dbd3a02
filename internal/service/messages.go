package service

import (
	"time"

	"github.com/mmynk/debtbook/internal/calculator"
	"github.com/mmynk/debtbook/internal/models"
	"github.com/mmynk/debtbook/internal/money"
)

// Wire messages of debtbook.v1. Amounts travel as decimal strings
// ("120.00"); requests also accept JSON numbers.

// User is the public view of an account.
type User struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	CreatedAt string `json:"createdAt"`
}

type RegisterRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required,max=72"`
}

type RegisterResponse struct {
	User      *User  `json:"user"`
	Token     string `json:"token"`
	ExpiresAt string `json:"expiresAt"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	User      *User  `json:"user"`
	Token     string `json:"token"`
	ExpiresAt string `json:"expiresAt"`
}

type LogoutRequest struct{}
type LogoutResponse struct{}

type GetCurrentUserRequest struct{}

type GetCurrentUserResponse struct {
	User *User `json:"user"`
}

// Debtor is a debtor with its outstanding total.
type Debtor struct {
	ID                string       `json:"id"`
	Name              string       `json:"name"`
	ContactInfo       string       `json:"contactInfo,omitempty"`
	TotalUnpaidAmount money.Amount `json:"totalUnpaidAmount"`
	CreatedAt         string       `json:"createdAt"`
	UpdatedAt         string       `json:"updatedAt"`
}

type ListDebtorsRequest struct{}

type ListDebtorsResponse struct {
	Debtors []*Debtor `json:"debtors"`
}

type CreateDebtorRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	ContactInfo string `json:"contactInfo" validate:"max=500"`
}

type CreateDebtorResponse struct {
	Debtor *Debtor `json:"debtor"`
}

type UpdateDebtorRequest struct {
	DebtorID    string `json:"debtorId" validate:"required,typeid=dbt"`
	Name        string `json:"name" validate:"required,max=100"`
	ContactInfo string `json:"contactInfo" validate:"max=500"`
}

type UpdateDebtorResponse struct {
	Debtor *Debtor `json:"debtor"`
}

type DeleteDebtorRequest struct {
	DebtorID string `json:"debtorId" validate:"required,typeid=dbt"`
}

type DeleteDebtorResponse struct{}

type GetDebtorBalanceRequest struct {
	DebtorID string `json:"debtorId" validate:"required,typeid=dbt"`
}

// ItemBalance is the paid/owed state of one item.
type ItemBalance struct {
	ItemID      string       `json:"itemId"`
	TotalAmount money.Amount `json:"totalAmount"`
	AmountPaid  money.Amount `json:"amountPaid"`
	AmountOwed  money.Amount `json:"amountOwed"`
	IsSettled   bool         `json:"isSettled"`
}

type GetDebtorBalanceResponse struct {
	DebtorID          string         `json:"debtorId"`
	TotalCharged      money.Amount   `json:"totalCharged"`
	TotalPaid         money.Amount   `json:"totalPaid"`
	TotalUnpaidAmount money.Amount   `json:"totalUnpaidAmount"`
	IsSettled         bool           `json:"isSettled"`
	Items             []*ItemBalance `json:"items"`
}

// DebtItem is a charge with its derived balance.
type DebtItem struct {
	ID              string       `json:"id"`
	DebtorID        string       `json:"debtorId"`
	Description     string       `json:"description"`
	Quantity        int64        `json:"quantity"`
	UnitPrice       money.Amount `json:"unitPrice"`
	TotalAmount     money.Amount `json:"totalAmount"`
	TransactionDate string       `json:"transactionDate"`
	CreatedAt       string       `json:"createdAt"`
	AmountPaid      money.Amount `json:"amountPaid"`
	AmountOwed      money.Amount `json:"amountOwed"`
	IsSettled       bool         `json:"isSettled"`
}

type ListDebtItemsRequest struct {
	DebtorID string `json:"debtorId" validate:"required,typeid=dbt"`
}

type ListDebtItemsResponse struct {
	Items []*DebtItem `json:"items"`
}

type CreateDebtItemRequest struct {
	DebtorID        string       `json:"debtorId" validate:"required,typeid=dbt"`
	Description     string       `json:"description" validate:"required,max=200"`
	Quantity        int64        `json:"quantity" validate:"gte=0"`
	UnitPrice       money.Amount `json:"unitPrice" validate:"gt=0"`
	TransactionDate string       `json:"transactionDate" validate:"required,isodate"`
}

type CreateDebtItemResponse struct {
	Item *DebtItem `json:"item"`
}

type DeleteDebtItemRequest struct {
	ItemID string `json:"itemId" validate:"required,typeid=item"`
}

type DeleteDebtItemResponse struct {
	RemovedAllocations int      `json:"removedAllocations"`
	AdjustedPaymentIDs []string `json:"adjustedPaymentIds,omitempty"`
	DeletedPaymentIDs  []string `json:"deletedPaymentIds,omitempty"`
}

type AllocatePaymentRequest struct {
	DebtorID    string       `json:"debtorId" validate:"required,typeid=dbt"`
	Amount      money.Amount `json:"amount" validate:"gt=0"`
	PaymentDate string       `json:"paymentDate" validate:"required,isodate"`
}

// AllocationLine is one item's share of a new payment.
type AllocationLine struct {
	DebtItemID    string       `json:"debtItemId"`
	Amount        money.Amount `json:"amount"`
	BalanceBefore money.Amount `json:"balanceBefore"`
	BalanceAfter  money.Amount `json:"balanceAfter"`
}

type AllocatePaymentResponse struct {
	PaymentID   string            `json:"paymentId"`
	Amount      money.Amount      `json:"amount"`
	Unallocated money.Amount      `json:"unallocated"`
	Allocations []*AllocationLine `json:"allocations"`
}

// PaymentAllocation is a stored allocation of a listed payment.
type PaymentAllocation struct {
	DebtItemID      string       `json:"debtItemId"`
	AmountAllocated money.Amount `json:"amountAllocated"`
}

type Payment struct {
	ID          string               `json:"id"`
	DebtorID    string               `json:"debtorId"`
	Amount      money.Amount         `json:"amount"`
	PaymentDate string               `json:"paymentDate"`
	CreatedAt   string               `json:"createdAt"`
	Allocations []*PaymentAllocation `json:"allocations"`
}

type ListPaymentsRequest struct {
	DebtorID string `json:"debtorId" validate:"required,typeid=dbt"`
}

type ListPaymentsResponse struct {
	Payments []*Payment `json:"payments"`
}

type DeletePaymentRequest struct {
	PaymentID string `json:"paymentId" validate:"required,typeid=pay"`
}

type DeletePaymentResponse struct{}

func unixTime(sec int64) string {
	return time.Unix(sec, 0).UTC().Format(time.RFC3339)
}

func unixMilliTime(ms int64) string {
	return time.UnixMilli(ms).UTC().Format(time.RFC3339Nano)
}

func toUser(u *models.User) *User {
	return &User{ID: u.ID, Username: u.Username, CreatedAt: unixTime(u.CreatedAt)}
}

func toDebtor(d *models.Debtor, unpaid money.Amount) *Debtor {
	return &Debtor{
		ID:                d.ID,
		Name:              d.Name,
		ContactInfo:       d.ContactInfo,
		TotalUnpaidAmount: unpaid,
		CreatedAt:         unixTime(d.CreatedAt),
		UpdatedAt:         unixTime(d.UpdatedAt),
	}
}

func toDebtItem(item *models.DebtItem) *DebtItem {
	return &DebtItem{
		ID:              item.ID,
		DebtorID:        item.DebtorID,
		Description:     item.Description,
		Quantity:        item.Quantity,
		UnitPrice:       item.UnitPrice,
		TotalAmount:     item.TotalAmount,
		TransactionDate: item.TransactionDate,
		CreatedAt:       unixMilliTime(item.CreatedAt),
		AmountPaid:      item.AmountPaid,
		AmountOwed:      item.AmountOwed(),
		IsSettled:       item.IsSettled(),
	}
}

func toPayment(p *models.Payment) *Payment {
	out := &Payment{
		ID:          p.ID,
		DebtorID:    p.DebtorID,
		Amount:      p.Amount,
		PaymentDate: p.PaymentDate,
		CreatedAt:   unixMilliTime(p.CreatedAt),
		Allocations: make([]*PaymentAllocation, 0, len(p.Allocations)),
	}
	for _, a := range p.Allocations {
		out.Allocations = append(out.Allocations, &PaymentAllocation{
			DebtItemID:      a.DebtItemID,
			AmountAllocated: a.AmountAllocated,
		})
	}
	return out
}

func toBalance(b calculator.DebtorBalance) *GetDebtorBalanceResponse {
	resp := &GetDebtorBalanceResponse{
		DebtorID:          b.DebtorID,
		TotalCharged:      b.TotalCharged,
		TotalPaid:         b.TotalPaid,
		TotalUnpaidAmount: b.TotalUnpaid,
		IsSettled:         b.Settled(),
		Items:             make([]*ItemBalance, 0, len(b.Items)),
	}
	for _, ib := range b.Items {
		resp.Items = append(resp.Items, &ItemBalance{
			ItemID:      ib.ItemID,
			TotalAmount: ib.TotalAmount,
			AmountPaid:  ib.AmountPaid,
			AmountOwed:  ib.AmountOwed,
			IsSettled:   ib.IsSettled,
		})
	}
	return resp
}
