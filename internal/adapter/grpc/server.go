package grpc

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/simaogato/ledger-backend/internal/domain"
	"github.com/simaogato/ledger-backend/internal/usecase/dashboard"
	"github.com/simaogato/ledger-backend/internal/usecase/ledger"
)

// Server implements the LedgerService gRPC server
type Server struct {
	LedgerService    *ledger.Service
	DashboardService *dashboard.DashboardService
	Limits           Limits
}

var _ LedgerServiceServer = (*Server)(nil)

// NewServer creates a new gRPC server instance
func NewServer(
	ledgerService *ledger.Service,
	dashboardService *dashboard.DashboardService,
	limits Limits,
) *Server {
	return &Server{
		LedgerService:    ledgerService,
		DashboardService: dashboardService,
		Limits:           limits,
	}
}

// CreateAccount handles the CreateAccount RPC
func (s *Server) CreateAccount(ctx context.Context, req *CreateAccountRequest) (*CreateAccountResponse, error) {
	if err := s.Limits.validateName(req.Name); err != nil {
		return nil, err
	}

	account, err := s.LedgerService.CreateAccount(ctx, req.Name)
	if err != nil {
		return nil, mapError(err)
	}

	return &CreateAccountResponse{Account: domainAccountToProto(account)}, nil
}

// GetAccount handles the GetAccount RPC
func (s *Server) GetAccount(ctx context.Context, req *GetAccountRequest) (*GetAccountResponse, error) {
	accountID, err := parseID("account_id", req.AccountId)
	if err != nil {
		return nil, err
	}

	account, err := s.LedgerService.GetAccount(ctx, accountID)
	if err != nil {
		return nil, mapError(err)
	}
	if account == nil {
		return nil, status.Errorf(codes.NotFound, "account with ID '%s' was not found", accountID)
	}

	return &GetAccountResponse{Account: domainAccountToProto(account)}, nil
}

// GetAccountBalance handles the GetAccountBalance RPC
func (s *Server) GetAccountBalance(ctx context.Context, req *GetAccountBalanceRequest) (*GetAccountBalanceResponse, error) {
	accountID, err := parseID("account_id", req.AccountId)
	if err != nil {
		return nil, err
	}

	balance, err := s.LedgerService.GetAccountBalance(ctx, accountID)
	if err != nil {
		return nil, mapError(err)
	}
	if balance == nil {
		return nil, status.Errorf(codes.NotFound, "account with ID '%s' was not found", accountID)
	}

	return &GetAccountBalanceResponse{
		AccountId:   balance.AccountID.String(),
		Name:        balance.Name,
		Balance:     balance.Balance.String(),
		LastUpdated: newTimestamp(balance.AsOf),
	}, nil
}

// ListAccounts handles the ListAccounts RPC
func (s *Server) ListAccounts(ctx context.Context, req *ListAccountsRequest) (*ListAccountsResponse, error) {
	accounts, err := s.LedgerService.ListAccounts(ctx)
	if err != nil {
		return nil, mapError(err)
	}

	protoAccounts := make([]*Account, 0, len(accounts))
	for _, account := range accounts {
		protoAccounts = append(protoAccounts, domainAccountToProto(account))
	}

	return &ListAccountsResponse{Accounts: protoAccounts}, nil
}

// RecordTransaction handles the RecordTransaction RPC
func (s *Server) RecordTransaction(ctx context.Context, req *RecordTransactionRequest) (*RecordTransactionResponse, error) {
	accountID, err := parseID("account_id", req.AccountId)
	if err != nil {
		return nil, err
	}

	txType, err := parseTransactionType(req.Type)
	if err != nil {
		return nil, err
	}

	amount, err := s.Limits.parseAmount(req.Amount)
	if err != nil {
		return nil, err
	}

	if err := s.Limits.validateDescription(req.Description); err != nil {
		return nil, err
	}

	tx, err := s.LedgerService.RecordTransaction(ctx, ledger.RecordTransactionInput{
		AccountID:   accountID,
		Type:        txType,
		Amount:      amount,
		Description: req.Description,
	})
	if err != nil {
		return nil, mapError(err)
	}

	return &RecordTransactionResponse{Transaction: domainTransactionToProto(tx)}, nil
}

// GetTransactionHistory handles the GetTransactionHistory RPC
func (s *Server) GetTransactionHistory(ctx context.Context, req *GetTransactionHistoryRequest) (*GetTransactionHistoryResponse, error) {
	accountID, err := parseID("account_id", req.AccountId)
	if err != nil {
		return nil, err
	}

	history, err := s.LedgerService.GetTransactionHistory(ctx, accountID)
	if err != nil {
		return nil, mapError(err)
	}

	transactions := make([]*Transaction, 0, len(history))
	for _, entry := range history {
		transactions = append(transactions, summaryToProto(req.AccountId, entry))
	}

	return &GetTransactionHistoryResponse{Transactions: transactions}, nil
}

// Transfer handles the Transfer RPC
func (s *Server) Transfer(ctx context.Context, req *TransferRequest) (*TransferResponse, error) {
	fromID, err := parseID("from_account_id", req.FromAccountId)
	if err != nil {
		return nil, err
	}

	toID, err := parseID("to_account_id", req.ToAccountId)
	if err != nil {
		return nil, err
	}

	amount, err := s.Limits.parseAmount(req.Amount)
	if err != nil {
		return nil, err
	}

	if err := s.Limits.validateDescription(req.Description); err != nil {
		return nil, err
	}

	result, err := s.LedgerService.Transfer(ctx, ledger.TransferInput{
		FromAccountID: fromID,
		ToAccountID:   toID,
		Amount:        amount,
		Description:   req.Description,
	})
	if err != nil {
		return nil, mapError(err)
	}

	return transferResultToProto(result), nil
}

// GetLedgerSummary handles the GetLedgerSummary RPC
func (s *Server) GetLedgerSummary(ctx context.Context, req *GetLedgerSummaryRequest) (*GetLedgerSummaryResponse, error) {
	result, err := s.DashboardService.GetSummary(ctx)
	if err != nil {
		return nil, mapError(err)
	}

	return ledgerSummaryToProto(result), nil
}

// mapError converts domain errors to gRPC status errors
func mapError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, domain.ErrAccountNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, domain.ErrInsufficientFunds):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, domain.ErrInvalidAmount), errors.Is(err, domain.ErrInvalidTransactionType):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
