package grpc

import (
	"context"

	"google.golang.org/grpc"
)

// ServiceName is the fully qualified gRPC service name
const ServiceName = "ledger.v1.LedgerService"

// LedgerServiceServer is the server API for LedgerService
type LedgerServiceServer interface {
	CreateAccount(context.Context, *CreateAccountRequest) (*CreateAccountResponse, error)
	GetAccount(context.Context, *GetAccountRequest) (*GetAccountResponse, error)
	GetAccountBalance(context.Context, *GetAccountBalanceRequest) (*GetAccountBalanceResponse, error)
	ListAccounts(context.Context, *ListAccountsRequest) (*ListAccountsResponse, error)
	RecordTransaction(context.Context, *RecordTransactionRequest) (*RecordTransactionResponse, error)
	GetTransactionHistory(context.Context, *GetTransactionHistoryRequest) (*GetTransactionHistoryResponse, error)
	Transfer(context.Context, *TransferRequest) (*TransferResponse, error)
	GetLedgerSummary(context.Context, *GetLedgerSummaryRequest) (*GetLedgerSummaryResponse, error)
}

// RegisterLedgerServiceServer registers srv on s
func RegisterLedgerServiceServer(s grpc.ServiceRegistrar, srv LedgerServiceServer) {
	s.RegisterService(&ledgerServiceDesc, srv)
}

var ledgerServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*LedgerServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "CreateAccount", Handler: unaryHandler("CreateAccount", LedgerServiceServer.CreateAccount)},
		{MethodName: "GetAccount", Handler: unaryHandler("GetAccount", LedgerServiceServer.GetAccount)},
		{MethodName: "GetAccountBalance", Handler: unaryHandler("GetAccountBalance", LedgerServiceServer.GetAccountBalance)},
		{MethodName: "ListAccounts", Handler: unaryHandler("ListAccounts", LedgerServiceServer.ListAccounts)},
		{MethodName: "RecordTransaction", Handler: unaryHandler("RecordTransaction", LedgerServiceServer.RecordTransaction)},
		{MethodName: "GetTransactionHistory", Handler: unaryHandler("GetTransactionHistory", LedgerServiceServer.GetTransactionHistory)},
		{MethodName: "Transfer", Handler: unaryHandler("Transfer", LedgerServiceServer.Transfer)},
		{MethodName: "GetLedgerSummary", Handler: unaryHandler("GetLedgerSummary", LedgerServiceServer.GetLedgerSummary)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "ledger/v1/ledger.proto",
}

// unaryHandler adapts a typed LedgerServiceServer method to grpc.MethodHandler
func unaryHandler[Req, Resp any](
	method string,
	call func(LedgerServiceServer, context.Context, *Req) (*Resp, error),
) grpc.MethodHandler {
	fullMethod := "/" + ServiceName + "/" + method

	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}

		server := srv.(LedgerServiceServer)
		if interceptor == nil {
			return call(server, ctx, in)
		}

		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(server, ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// Client is a LedgerService client speaking the JSON codec
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient creates a LedgerService client on top of cc
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func invoke[Resp any](ctx context.Context, c *Client, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateAccount(ctx context.Context, in *CreateAccountRequest, opts ...grpc.CallOption) (*CreateAccountResponse, error) {
	return invoke[CreateAccountResponse](ctx, c, "CreateAccount", in, opts)
}

func (c *Client) GetAccount(ctx context.Context, in *GetAccountRequest, opts ...grpc.CallOption) (*GetAccountResponse, error) {
	return invoke[GetAccountResponse](ctx, c, "GetAccount", in, opts)
}

func (c *Client) GetAccountBalance(ctx context.Context, in *GetAccountBalanceRequest, opts ...grpc.CallOption) (*GetAccountBalanceResponse, error) {
	return invoke[GetAccountBalanceResponse](ctx, c, "GetAccountBalance", in, opts)
}

func (c *Client) ListAccounts(ctx context.Context, in *ListAccountsRequest, opts ...grpc.CallOption) (*ListAccountsResponse, error) {
	return invoke[ListAccountsResponse](ctx, c, "ListAccounts", in, opts)
}

func (c *Client) RecordTransaction(ctx context.Context, in *RecordTransactionRequest, opts ...grpc.CallOption) (*RecordTransactionResponse, error) {
	return invoke[RecordTransactionResponse](ctx, c, "RecordTransaction", in, opts)
}

func (c *Client) GetTransactionHistory(ctx context.Context, in *GetTransactionHistoryRequest, opts ...grpc.CallOption) (*GetTransactionHistoryResponse, error) {
	return invoke[GetTransactionHistoryResponse](ctx, c, "GetTransactionHistory", in, opts)
}

func (c *Client) Transfer(ctx context.Context, in *TransferRequest, opts ...grpc.CallOption) (*TransferResponse, error) {
	return invoke[TransferResponse](ctx, c, "Transfer", in, opts)
}

func (c *Client) GetLedgerSummary(ctx context.Context, in *GetLedgerSummaryRequest, opts ...grpc.CallOption) (*GetLedgerSummaryResponse, error) {
	return invoke[GetLedgerSummaryResponse](ctx, c, "GetLedgerSummary", in, opts)
}
