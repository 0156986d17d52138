package apiconnect

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/pkg/api"
)

// LedgerServiceName is the fully-qualified name of the LedgerService.
const LedgerServiceName = "splitledger.v1.LedgerService"

// Procedure paths of the LedgerService.
const (
	LedgerServiceRecordPaymentProcedure     = "/splitledger.v1.LedgerService/RecordPayment"
	LedgerServiceListGroupPaymentsProcedure = "/splitledger.v1.LedgerService/ListGroupPayments"
	LedgerServiceListUserPaymentsProcedure  = "/splitledger.v1.LedgerService/ListUserPayments"
	LedgerServiceGetBalancesProcedure       = "/splitledger.v1.LedgerService/GetBalances"
	LedgerServiceSimplifyDebtsProcedure     = "/splitledger.v1.LedgerService/SimplifyDebts"
	LedgerServiceSettleUpProcedure          = "/splitledger.v1.LedgerService/SettleUp"
	LedgerServiceGetGroupSummaryProcedure   = "/splitledger.v1.LedgerService/GetGroupSummary"
)

// LedgerServiceHandler records payments and computes balances and settle-up plans.
type LedgerServiceHandler interface {
	RecordPayment(context.Context, *connect.Request[api.RecordPaymentRequest]) (*connect.Response[api.RecordPaymentResponse], error)
	ListGroupPayments(context.Context, *connect.Request[api.ListGroupPaymentsRequest]) (*connect.Response[api.ListGroupPaymentsResponse], error)
	ListUserPayments(context.Context, *connect.Request[api.ListUserPaymentsRequest]) (*connect.Response[api.ListUserPaymentsResponse], error)
	GetBalances(context.Context, *connect.Request[api.GetBalancesRequest]) (*connect.Response[api.GetBalancesResponse], error)
	SimplifyDebts(context.Context, *connect.Request[api.SimplifyDebtsRequest]) (*connect.Response[api.SimplifyDebtsResponse], error)
	SettleUp(context.Context, *connect.Request[api.SettleUpRequest]) (*connect.Response[api.SettleUpResponse], error)
	GetGroupSummary(context.Context, *connect.Request[api.GetGroupSummaryRequest]) (*connect.Response[api.GetGroupSummaryResponse], error)
}

// NewLedgerServiceHandler builds an HTTP handler from the service implementation. It returns
// the path on which to mount the handler and the handler itself.
func NewLedgerServiceHandler(svc LedgerServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	return "/" + LedgerServiceName + "/", routes{
		LedgerServiceRecordPaymentProcedure:     connect.NewUnaryHandler(LedgerServiceRecordPaymentProcedure, svc.RecordPayment, opts...),
		LedgerServiceListGroupPaymentsProcedure: connect.NewUnaryHandler(LedgerServiceListGroupPaymentsProcedure, svc.ListGroupPayments, opts...),
		LedgerServiceListUserPaymentsProcedure:  connect.NewUnaryHandler(LedgerServiceListUserPaymentsProcedure, svc.ListUserPayments, opts...),
		LedgerServiceGetBalancesProcedure:       connect.NewUnaryHandler(LedgerServiceGetBalancesProcedure, svc.GetBalances, opts...),
		LedgerServiceSimplifyDebtsProcedure:     connect.NewUnaryHandler(LedgerServiceSimplifyDebtsProcedure, svc.SimplifyDebts, opts...),
		LedgerServiceSettleUpProcedure:          connect.NewUnaryHandler(LedgerServiceSettleUpProcedure, svc.SettleUp, opts...),
		LedgerServiceGetGroupSummaryProcedure:   connect.NewUnaryHandler(LedgerServiceGetGroupSummaryProcedure, svc.GetGroupSummary, opts...),
	}
}

// UnimplementedLedgerServiceHandler returns CodeUnimplemented from all methods.
type UnimplementedLedgerServiceHandler struct{}

func (UnimplementedLedgerServiceHandler) RecordPayment(context.Context, *connect.Request[api.RecordPaymentRequest]) (*connect.Response[api.RecordPaymentResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("splitledger.v1.LedgerService.RecordPayment is not implemented"))
}

func (UnimplementedLedgerServiceHandler) ListGroupPayments(context.Context, *connect.Request[api.ListGroupPaymentsRequest]) (*connect.Response[api.ListGroupPaymentsResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("splitledger.v1.LedgerService.ListGroupPayments is not implemented"))
}

func (UnimplementedLedgerServiceHandler) ListUserPayments(context.Context, *connect.Request[api.ListUserPaymentsRequest]) (*connect.Response[api.ListUserPaymentsResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("splitledger.v1.LedgerService.ListUserPayments is not implemented"))
}

func (UnimplementedLedgerServiceHandler) GetBalances(context.Context, *connect.Request[api.GetBalancesRequest]) (*connect.Response[api.GetBalancesResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("splitledger.v1.LedgerService.GetBalances is not implemented"))
}

func (UnimplementedLedgerServiceHandler) SimplifyDebts(context.Context, *connect.Request[api.SimplifyDebtsRequest]) (*connect.Response[api.SimplifyDebtsResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("splitledger.v1.LedgerService.SimplifyDebts is not implemented"))
}

func (UnimplementedLedgerServiceHandler) SettleUp(context.Context, *connect.Request[api.SettleUpRequest]) (*connect.Response[api.SettleUpResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("splitledger.v1.LedgerService.SettleUp is not implemented"))
}

func (UnimplementedLedgerServiceHandler) GetGroupSummary(context.Context, *connect.Request[api.GetGroupSummaryRequest]) (*connect.Response[api.GetGroupSummaryResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("splitledger.v1.LedgerService.GetGroupSummary is not implemented"))
}

// LedgerServiceClient is a client for the splitledger.v1.LedgerService.
type LedgerServiceClient interface {
	RecordPayment(context.Context, *connect.Request[api.RecordPaymentRequest]) (*connect.Response[api.RecordPaymentResponse], error)
	ListGroupPayments(context.Context, *connect.Request[api.ListGroupPaymentsRequest]) (*connect.Response[api.ListGroupPaymentsResponse], error)
	ListUserPayments(context.Context, *connect.Request[api.ListUserPaymentsRequest]) (*connect.Response[api.ListUserPaymentsResponse], error)
	GetBalances(context.Context, *connect.Request[api.GetBalancesRequest]) (*connect.Response[api.GetBalancesResponse], error)
	SimplifyDebts(context.Context, *connect.Request[api.SimplifyDebtsRequest]) (*connect.Response[api.SimplifyDebtsResponse], error)
	SettleUp(context.Context, *connect.Request[api.SettleUpRequest]) (*connect.Response[api.SettleUpResponse], error)
	GetGroupSummary(context.Context, *connect.Request[api.GetGroupSummaryRequest]) (*connect.Response[api.GetGroupSummaryResponse], error)
}

// NewLedgerServiceClient constructs a client for the splitledger.v1.LedgerService. The baseURL
// is the server root, e.g. http://localhost:8080.
func NewLedgerServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) LedgerServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = clientOptions(opts)
	return &ledgerServiceClient{
		recordPayment: connect.NewClient[api.RecordPaymentRequest, api.RecordPaymentResponse](httpClient, baseURL+LedgerServiceRecordPaymentProcedure, opts...),
		listGroupPayments: connect.NewClient[api.ListGroupPaymentsRequest, api.ListGroupPaymentsResponse](httpClient, baseURL+LedgerServiceListGroupPaymentsProcedure, opts...),
		listUserPayments: connect.NewClient[api.ListUserPaymentsRequest, api.ListUserPaymentsResponse](httpClient, baseURL+LedgerServiceListUserPaymentsProcedure, opts...),
		getBalances: connect.NewClient[api.GetBalancesRequest, api.GetBalancesResponse](httpClient, baseURL+LedgerServiceGetBalancesProcedure, opts...),
		simplifyDebts: connect.NewClient[api.SimplifyDebtsRequest, api.SimplifyDebtsResponse](httpClient, baseURL+LedgerServiceSimplifyDebtsProcedure, opts...),
		settleUp: connect.NewClient[api.SettleUpRequest, api.SettleUpResponse](httpClient, baseURL+LedgerServiceSettleUpProcedure, opts...),
		getGroupSummary: connect.NewClient[api.GetGroupSummaryRequest, api.GetGroupSummaryResponse](httpClient, baseURL+LedgerServiceGetGroupSummaryProcedure, opts...),
	}
}

type ledgerServiceClient struct {
	recordPayment     *connect.Client[api.RecordPaymentRequest, api.RecordPaymentResponse]
	listGroupPayments *connect.Client[api.ListGroupPaymentsRequest, api.ListGroupPaymentsResponse]
	listUserPayments  *connect.Client[api.ListUserPaymentsRequest, api.ListUserPaymentsResponse]
	getBalances       *connect.Client[api.GetBalancesRequest, api.GetBalancesResponse]
	simplifyDebts     *connect.Client[api.SimplifyDebtsRequest, api.SimplifyDebtsResponse]
	settleUp          *connect.Client[api.SettleUpRequest, api.SettleUpResponse]
	getGroupSummary   *connect.Client[api.GetGroupSummaryRequest, api.GetGroupSummaryResponse]
}

func (c *ledgerServiceClient) RecordPayment(ctx context.Context, req *connect.Request[api.RecordPaymentRequest]) (*connect.Response[api.RecordPaymentResponse], error) {
	return c.recordPayment.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) ListGroupPayments(ctx context.Context, req *connect.Request[api.ListGroupPaymentsRequest]) (*connect.Response[api.ListGroupPaymentsResponse], error) {
	return c.listGroupPayments.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) ListUserPayments(ctx context.Context, req *connect.Request[api.ListUserPaymentsRequest]) (*connect.Response[api.ListUserPaymentsResponse], error) {
	return c.listUserPayments.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) GetBalances(ctx context.Context, req *connect.Request[api.GetBalancesRequest]) (*connect.Response[api.GetBalancesResponse], error) {
	return c.getBalances.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) SimplifyDebts(ctx context.Context, req *connect.Request[api.SimplifyDebtsRequest]) (*connect.Response[api.SimplifyDebtsResponse], error) {
	return c.simplifyDebts.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) SettleUp(ctx context.Context, req *connect.Request[api.SettleUpRequest]) (*connect.Response[api.SettleUpResponse], error) {
	return c.settleUp.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) GetGroupSummary(ctx context.Context, req *connect.Request[api.GetGroupSummaryRequest]) (*connect.Response[api.GetGroupSummaryResponse], error) {
	return c.getGroupSummary.CallUnary(ctx, req)
}
