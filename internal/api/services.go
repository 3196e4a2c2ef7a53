package api

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"
)

// Package prefix of every procedure.
const packageName = "billbuddy.v1"

// PublicProcedures can be called without a session token.
var PublicProcedures = []string{
	AuthServiceRegisterProcedure,
	AuthServiceLoginProcedure,
}

func handlerOptions(opts []connect.HandlerOption) []connect.HandlerOption {
	return append([]connect.HandlerOption{WithJSON()}, opts...)
}

func newClient[Req, Res any](httpClient connect.HTTPClient, baseURL, procedure string, opts []connect.ClientOption) *connect.Client[Req, Res] {
	opts = append([]connect.ClientOption{WithJSON()}, opts...)
	return connect.NewClient[Req, Res](httpClient, strings.TrimRight(baseURL, "/")+procedure, opts...)
}

const (
	AuthServiceName       = packageName + ".AuthService"
	RoomServiceName       = packageName + ".RoomService"
	ActivityServiceName   = packageName + ".ActivityService"
	SplitServiceName      = packageName + ".SplitService"
	SettlementServiceName = packageName + ".SettlementService"
	ProfileServiceName    = packageName + ".ProfileService"
)

// Procedure paths.
const (
	AuthServiceRegisterProcedure                = "/" + AuthServiceName + "/Register"
	AuthServiceLoginProcedure                   = "/" + AuthServiceName + "/Login"
	AuthServiceGetCurrentUserProcedure          = "/" + AuthServiceName + "/GetCurrentUser"
	RoomServiceCreateRoomProcedure              = "/" + RoomServiceName + "/CreateRoom"
	RoomServiceJoinRoomProcedure                = "/" + RoomServiceName + "/JoinRoom"
	RoomServiceGetRoomProcedure                 = "/" + RoomServiceName + "/GetRoom"
	RoomServiceListRoomsProcedure               = "/" + RoomServiceName + "/ListRooms"
	RoomServiceDeleteRoomProcedure              = "/" + RoomServiceName + "/DeleteRoom"
	RoomServiceWatchRoomProcedure               = "/" + RoomServiceName + "/WatchRoom"
	ActivityServiceCreateActivityProcedure      = "/" + ActivityServiceName + "/CreateActivity"
	ActivityServiceGetActivityProcedure         = "/" + ActivityServiceName + "/GetActivity"
	ActivityServiceListActivitiesProcedure      = "/" + ActivityServiceName + "/ListActivities"
	ActivityServiceDeleteActivityProcedure      = "/" + ActivityServiceName + "/DeleteActivity"
	ActivityServiceScanReceiptProcedure         = "/" + ActivityServiceName + "/ScanReceipt"
	SplitServiceToggleParticipantProcedure      = "/" + SplitServiceName + "/ToggleParticipant"
	SplitServiceSetParticipantsProcedure        = "/" + SplitServiceName + "/SetParticipants"
	SplitServiceSelectAllProcedure              = "/" + SplitServiceName + "/SelectAll"
	SplitServiceSetPaidProcedure                = "/" + SplitServiceName + "/SetPaid"
	SplitServiceTogglePaidProcedure             = "/" + SplitServiceName + "/TogglePaid"
	SplitServiceGetChecklistProcedure           = "/" + SplitServiceName + "/GetChecklist"
	SettlementServiceGetPairwiseDebtsProcedure  = "/" + SettlementServiceName + "/GetPairwiseDebts"
	SettlementServiceGetSettlementPlanProcedure = "/" + SettlementServiceName + "/GetSettlementPlan"
	SettlementServiceGetSummaryProcedure        = "/" + SettlementServiceName + "/GetSummary"
	ProfileServiceSetPaymentAccountProcedure    = "/" + ProfileServiceName + "/SetPaymentAccount"
	ProfileServiceListPaymentAccountsProcedure  = "/" + ProfileServiceName + "/ListPaymentAccounts"
)

// AuthServiceHandler is implemented by the server side of AuthService.
type AuthServiceHandler interface {
	Register(context.Context, *connect.Request[RegisterRequest]) (*connect.Response[AuthResponse], error)
	Login(context.Context, *connect.Request[LoginRequest]) (*connect.Response[AuthResponse], error)
	GetCurrentUser(context.Context, *connect.Request[GetCurrentUserRequest]) (*connect.Response[GetCurrentUserResponse], error)
}

// NewAuthServiceHandler builds an HTTP handler from the service implementation. It returns the path
// on which to mount the handler and the handler itself.
func NewAuthServiceHandler(svc AuthServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	mux.Handle(AuthServiceRegisterProcedure, connect.NewUnaryHandler(AuthServiceRegisterProcedure, svc.Register, opts...))
	mux.Handle(AuthServiceLoginProcedure, connect.NewUnaryHandler(AuthServiceLoginProcedure, svc.Login, opts...))
	mux.Handle(AuthServiceGetCurrentUserProcedure, connect.NewUnaryHandler(AuthServiceGetCurrentUserProcedure, svc.GetCurrentUser, opts...))
	return "/" + AuthServiceName + "/", mux
}

// AuthServiceClient is a typed client for AuthService.
type AuthServiceClient struct {
	register       *connect.Client[RegisterRequest, AuthResponse]
	login          *connect.Client[LoginRequest, AuthResponse]
	getCurrentUser *connect.Client[GetCurrentUserRequest, GetCurrentUserResponse]
}

// NewAuthServiceClient constructs a client for the service at baseURL (e.g. http://localhost:8080).
func NewAuthServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *AuthServiceClient {
	return &AuthServiceClient{
		register:       newClient[RegisterRequest, AuthResponse](httpClient, baseURL, AuthServiceRegisterProcedure, opts),
		login:          newClient[LoginRequest, AuthResponse](httpClient, baseURL, AuthServiceLoginProcedure, opts),
		getCurrentUser: newClient[GetCurrentUserRequest, GetCurrentUserResponse](httpClient, baseURL, AuthServiceGetCurrentUserProcedure, opts),
	}
}

func (c *AuthServiceClient) Register(ctx context.Context, req *connect.Request[RegisterRequest]) (*connect.Response[AuthResponse], error) {
	return c.register.CallUnary(ctx, req)
}

func (c *AuthServiceClient) Login(ctx context.Context, req *connect.Request[LoginRequest]) (*connect.Response[AuthResponse], error) {
	return c.login.CallUnary(ctx, req)
}

func (c *AuthServiceClient) GetCurrentUser(ctx context.Context, req *connect.Request[GetCurrentUserRequest]) (*connect.Response[GetCurrentUserResponse], error) {
	return c.getCurrentUser.CallUnary(ctx, req)
}

// RoomServiceHandler is implemented by the server side of RoomService.
type RoomServiceHandler interface {
	CreateRoom(context.Context, *connect.Request[CreateRoomRequest]) (*connect.Response[RoomResponse], error)
	JoinRoom(context.Context, *connect.Request[JoinRoomRequest]) (*connect.Response[RoomResponse], error)
	GetRoom(context.Context, *connect.Request[GetRoomRequest]) (*connect.Response[RoomResponse], error)
	ListRooms(context.Context, *connect.Request[ListRoomsRequest]) (*connect.Response[ListRoomsResponse], error)
	DeleteRoom(context.Context, *connect.Request[DeleteRoomRequest]) (*connect.Response[DeleteRoomResponse], error)
	WatchRoom(context.Context, *connect.Request[WatchRoomRequest], *connect.ServerStream[RoomEvent]) error
}

// NewRoomServiceHandler builds an HTTP handler from the service implementation. It returns the path
// on which to mount the handler and the handler itself.
func NewRoomServiceHandler(svc RoomServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	mux.Handle(RoomServiceCreateRoomProcedure, connect.NewUnaryHandler(RoomServiceCreateRoomProcedure, svc.CreateRoom, opts...))
	mux.Handle(RoomServiceJoinRoomProcedure, connect.NewUnaryHandler(RoomServiceJoinRoomProcedure, svc.JoinRoom, opts...))
	mux.Handle(RoomServiceGetRoomProcedure, connect.NewUnaryHandler(RoomServiceGetRoomProcedure, svc.GetRoom, opts...))
	mux.Handle(RoomServiceListRoomsProcedure, connect.NewUnaryHandler(RoomServiceListRoomsProcedure, svc.ListRooms, opts...))
	mux.Handle(RoomServiceDeleteRoomProcedure, connect.NewUnaryHandler(RoomServiceDeleteRoomProcedure, svc.DeleteRoom, opts...))
	mux.Handle(RoomServiceWatchRoomProcedure, connect.NewServerStreamHandler(RoomServiceWatchRoomProcedure, svc.WatchRoom, opts...))
	return "/" + RoomServiceName + "/", mux
}

// RoomServiceClient is a typed client for RoomService.
type RoomServiceClient struct {
	createRoom *connect.Client[CreateRoomRequest, RoomResponse]
	joinRoom   *connect.Client[JoinRoomRequest, RoomResponse]
	getRoom    *connect.Client[GetRoomRequest, RoomResponse]
	listRooms  *connect.Client[ListRoomsRequest, ListRoomsResponse]
	deleteRoom *connect.Client[DeleteRoomRequest, DeleteRoomResponse]
	watchRoom  *connect.Client[WatchRoomRequest, RoomEvent]
}

// NewRoomServiceClient constructs a client for the service at baseURL (e.g. http://localhost:8080).
func NewRoomServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *RoomServiceClient {
	return &RoomServiceClient{
		createRoom: newClient[CreateRoomRequest, RoomResponse](httpClient, baseURL, RoomServiceCreateRoomProcedure, opts),
		joinRoom:   newClient[JoinRoomRequest, RoomResponse](httpClient, baseURL, RoomServiceJoinRoomProcedure, opts),
		getRoom:    newClient[GetRoomRequest, RoomResponse](httpClient, baseURL, RoomServiceGetRoomProcedure, opts),
		listRooms:  newClient[ListRoomsRequest, ListRoomsResponse](httpClient, baseURL, RoomServiceListRoomsProcedure, opts),
		deleteRoom: newClient[DeleteRoomRequest, DeleteRoomResponse](httpClient, baseURL, RoomServiceDeleteRoomProcedure, opts),
		watchRoom:  newClient[WatchRoomRequest, RoomEvent](httpClient, baseURL, RoomServiceWatchRoomProcedure, opts),
	}
}

func (c *RoomServiceClient) CreateRoom(ctx context.Context, req *connect.Request[CreateRoomRequest]) (*connect.Response[RoomResponse], error) {
	return c.createRoom.CallUnary(ctx, req)
}

func (c *RoomServiceClient) JoinRoom(ctx context.Context, req *connect.Request[JoinRoomRequest]) (*connect.Response[RoomResponse], error) {
	return c.joinRoom.CallUnary(ctx, req)
}

func (c *RoomServiceClient) GetRoom(ctx context.Context, req *connect.Request[GetRoomRequest]) (*connect.Response[RoomResponse], error) {
	return c.getRoom.CallUnary(ctx, req)
}

func (c *RoomServiceClient) ListRooms(ctx context.Context, req *connect.Request[ListRoomsRequest]) (*connect.Response[ListRoomsResponse], error) {
	return c.listRooms.CallUnary(ctx, req)
}

func (c *RoomServiceClient) DeleteRoom(ctx context.Context, req *connect.Request[DeleteRoomRequest]) (*connect.Response[DeleteRoomResponse], error) {
	return c.deleteRoom.CallUnary(ctx, req)
}

func (c *RoomServiceClient) WatchRoom(ctx context.Context, req *connect.Request[WatchRoomRequest]) (*connect.ServerStreamForClient[RoomEvent], error) {
	return c.watchRoom.CallServerStream(ctx, req)
}

// ActivityServiceHandler is implemented by the server side of ActivityService.
type ActivityServiceHandler interface {
	CreateActivity(context.Context, *connect.Request[CreateActivityRequest]) (*connect.Response[ActivityResponse], error)
	GetActivity(context.Context, *connect.Request[GetActivityRequest]) (*connect.Response[ActivityResponse], error)
	ListActivities(context.Context, *connect.Request[ListActivitiesRequest]) (*connect.Response[ListActivitiesResponse], error)
	DeleteActivity(context.Context, *connect.Request[DeleteActivityRequest]) (*connect.Response[DeleteActivityResponse], error)
	ScanReceipt(context.Context, *connect.Request[ScanReceiptRequest]) (*connect.Response[ScanReceiptResponse], error)
}

// NewActivityServiceHandler builds an HTTP handler from the service implementation. It returns the path
// on which to mount the handler and the handler itself.
func NewActivityServiceHandler(svc ActivityServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	mux.Handle(ActivityServiceCreateActivityProcedure, connect.NewUnaryHandler(ActivityServiceCreateActivityProcedure, svc.CreateActivity, opts...))
	mux.Handle(ActivityServiceGetActivityProcedure, connect.NewUnaryHandler(ActivityServiceGetActivityProcedure, svc.GetActivity, opts...))
	mux.Handle(ActivityServiceListActivitiesProcedure, connect.NewUnaryHandler(ActivityServiceListActivitiesProcedure, svc.ListActivities, opts...))
	mux.Handle(ActivityServiceDeleteActivityProcedure, connect.NewUnaryHandler(ActivityServiceDeleteActivityProcedure, svc.DeleteActivity, opts...))
	mux.Handle(ActivityServiceScanReceiptProcedure, connect.NewUnaryHandler(ActivityServiceScanReceiptProcedure, svc.ScanReceipt, opts...))
	return "/" + ActivityServiceName + "/", mux
}

// ActivityServiceClient is a typed client for ActivityService.
type ActivityServiceClient struct {
	createActivity *connect.Client[CreateActivityRequest, ActivityResponse]
	getActivity    *connect.Client[GetActivityRequest, ActivityResponse]
	listActivities *connect.Client[ListActivitiesRequest, ListActivitiesResponse]
	deleteActivity *connect.Client[DeleteActivityRequest, DeleteActivityResponse]
	scanReceipt    *connect.Client[ScanReceiptRequest, ScanReceiptResponse]
}

// NewActivityServiceClient constructs a client for the service at baseURL (e.g. http://localhost:8080).
func NewActivityServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *ActivityServiceClient {
	return &ActivityServiceClient{
		createActivity: newClient[CreateActivityRequest, ActivityResponse](httpClient, baseURL, ActivityServiceCreateActivityProcedure, opts),
		getActivity:    newClient[GetActivityRequest, ActivityResponse](httpClient, baseURL, ActivityServiceGetActivityProcedure, opts),
		listActivities: newClient[ListActivitiesRequest, ListActivitiesResponse](httpClient, baseURL, ActivityServiceListActivitiesProcedure, opts),
		deleteActivity: newClient[DeleteActivityRequest, DeleteActivityResponse](httpClient, baseURL, ActivityServiceDeleteActivityProcedure, opts),
		scanReceipt:    newClient[ScanReceiptRequest, ScanReceiptResponse](httpClient, baseURL, ActivityServiceScanReceiptProcedure, opts),
	}
}

func (c *ActivityServiceClient) CreateActivity(ctx context.Context, req *connect.Request[CreateActivityRequest]) (*connect.Response[ActivityResponse], error) {
	return c.createActivity.CallUnary(ctx, req)
}

func (c *ActivityServiceClient) GetActivity(ctx context.Context, req *connect.Request[GetActivityRequest]) (*connect.Response[ActivityResponse], error) {
	return c.getActivity.CallUnary(ctx, req)
}

func (c *ActivityServiceClient) ListActivities(ctx context.Context, req *connect.Request[ListActivitiesRequest]) (*connect.Response[ListActivitiesResponse], error) {
	return c.listActivities.CallUnary(ctx, req)
}

func (c *ActivityServiceClient) DeleteActivity(ctx context.Context, req *connect.Request[DeleteActivityRequest]) (*connect.Response[DeleteActivityResponse], error) {
	return c.deleteActivity.CallUnary(ctx, req)
}

func (c *ActivityServiceClient) ScanReceipt(ctx context.Context, req *connect.Request[ScanReceiptRequest]) (*connect.Response[ScanReceiptResponse], error) {
	return c.scanReceipt.CallUnary(ctx, req)
}

// SplitServiceHandler is implemented by the server side of SplitService.
type SplitServiceHandler interface {
	ToggleParticipant(context.Context, *connect.Request[ToggleParticipantRequest]) (*connect.Response[ItemResponse], error)
	SetParticipants(context.Context, *connect.Request[SetParticipantsRequest]) (*connect.Response[ItemResponse], error)
	SelectAll(context.Context, *connect.Request[SelectAllRequest]) (*connect.Response[ItemResponse], error)
	SetPaid(context.Context, *connect.Request[SetPaidRequest]) (*connect.Response[SplitResponse], error)
	TogglePaid(context.Context, *connect.Request[TogglePaidRequest]) (*connect.Response[SplitResponse], error)
	GetChecklist(context.Context, *connect.Request[GetChecklistRequest]) (*connect.Response[GetChecklistResponse], error)
}

// NewSplitServiceHandler builds an HTTP handler from the service implementation. It returns the path
// on which to mount the handler and the handler itself.
func NewSplitServiceHandler(svc SplitServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	mux.Handle(SplitServiceToggleParticipantProcedure, connect.NewUnaryHandler(SplitServiceToggleParticipantProcedure, svc.ToggleParticipant, opts...))
	mux.Handle(SplitServiceSetParticipantsProcedure, connect.NewUnaryHandler(SplitServiceSetParticipantsProcedure, svc.SetParticipants, opts...))
	mux.Handle(SplitServiceSelectAllProcedure, connect.NewUnaryHandler(SplitServiceSelectAllProcedure, svc.SelectAll, opts...))
	mux.Handle(SplitServiceSetPaidProcedure, connect.NewUnaryHandler(SplitServiceSetPaidProcedure, svc.SetPaid, opts...))
	mux.Handle(SplitServiceTogglePaidProcedure, connect.NewUnaryHandler(SplitServiceTogglePaidProcedure, svc.TogglePaid, opts...))
	mux.Handle(SplitServiceGetChecklistProcedure, connect.NewUnaryHandler(SplitServiceGetChecklistProcedure, svc.GetChecklist, opts...))
	return "/" + SplitServiceName + "/", mux
}

// SplitServiceClient is a typed client for SplitService.
type SplitServiceClient struct {
	toggleParticipant *connect.Client[ToggleParticipantRequest, ItemResponse]
	setParticipants   *connect.Client[SetParticipantsRequest, ItemResponse]
	selectAll         *connect.Client[SelectAllRequest, ItemResponse]
	setPaid           *connect.Client[SetPaidRequest, SplitResponse]
	togglePaid        *connect.Client[TogglePaidRequest, SplitResponse]
	getChecklist      *connect.Client[GetChecklistRequest, GetChecklistResponse]
}

// NewSplitServiceClient constructs a client for the service at baseURL (e.g. http://localhost:8080).
func NewSplitServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *SplitServiceClient {
	return &SplitServiceClient{
		toggleParticipant: newClient[ToggleParticipantRequest, ItemResponse](httpClient, baseURL, SplitServiceToggleParticipantProcedure, opts),
		setParticipants:   newClient[SetParticipantsRequest, ItemResponse](httpClient, baseURL, SplitServiceSetParticipantsProcedure, opts),
		selectAll:         newClient[SelectAllRequest, ItemResponse](httpClient, baseURL, SplitServiceSelectAllProcedure, opts),
		setPaid:           newClient[SetPaidRequest, SplitResponse](httpClient, baseURL, SplitServiceSetPaidProcedure, opts),
		togglePaid:        newClient[TogglePaidRequest, SplitResponse](httpClient, baseURL, SplitServiceTogglePaidProcedure, opts),
		getChecklist:      newClient[GetChecklistRequest, GetChecklistResponse](httpClient, baseURL, SplitServiceGetChecklistProcedure, opts),
	}
}

func (c *SplitServiceClient) ToggleParticipant(ctx context.Context, req *connect.Request[ToggleParticipantRequest]) (*connect.Response[ItemResponse], error) {
	return c.toggleParticipant.CallUnary(ctx, req)
}

func (c *SplitServiceClient) SetParticipants(ctx context.Context, req *connect.Request[SetParticipantsRequest]) (*connect.Response[ItemResponse], error) {
	return c.setParticipants.CallUnary(ctx, req)
}

func (c *SplitServiceClient) SelectAll(ctx context.Context, req *connect.Request[SelectAllRequest]) (*connect.Response[ItemResponse], error) {
	return c.selectAll.CallUnary(ctx, req)
}

func (c *SplitServiceClient) SetPaid(ctx context.Context, req *connect.Request[SetPaidRequest]) (*connect.Response[SplitResponse], error) {
	return c.setPaid.CallUnary(ctx, req)
}

func (c *SplitServiceClient) TogglePaid(ctx context.Context, req *connect.Request[TogglePaidRequest]) (*connect.Response[SplitResponse], error) {
	return c.togglePaid.CallUnary(ctx, req)
}

func (c *SplitServiceClient) GetChecklist(ctx context.Context, req *connect.Request[GetChecklistRequest]) (*connect.Response[GetChecklistResponse], error) {
	return c.getChecklist.CallUnary(ctx, req)
}

// SettlementServiceHandler is implemented by the server side of SettlementService.
type SettlementServiceHandler interface {
	GetPairwiseDebts(context.Context, *connect.Request[GetPairwiseDebtsRequest]) (*connect.Response[GetPairwiseDebtsResponse], error)
	GetSettlementPlan(context.Context, *connect.Request[GetSettlementPlanRequest]) (*connect.Response[GetSettlementPlanResponse], error)
	GetSummary(context.Context, *connect.Request[GetSummaryRequest]) (*connect.Response[GetSummaryResponse], error)
}

// NewSettlementServiceHandler builds an HTTP handler from the service implementation. It returns the path
// on which to mount the handler and the handler itself.
func NewSettlementServiceHandler(svc SettlementServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	mux.Handle(SettlementServiceGetPairwiseDebtsProcedure, connect.NewUnaryHandler(SettlementServiceGetPairwiseDebtsProcedure, svc.GetPairwiseDebts, opts...))
	mux.Handle(SettlementServiceGetSettlementPlanProcedure, connect.NewUnaryHandler(SettlementServiceGetSettlementPlanProcedure, svc.GetSettlementPlan, opts...))
	mux.Handle(SettlementServiceGetSummaryProcedure, connect.NewUnaryHandler(SettlementServiceGetSummaryProcedure, svc.GetSummary, opts...))
	return "/" + SettlementServiceName + "/", mux
}

// SettlementServiceClient is a typed client for SettlementService.
type SettlementServiceClient struct {
	getPairwiseDebts  *connect.Client[GetPairwiseDebtsRequest, GetPairwiseDebtsResponse]
	getSettlementPlan *connect.Client[GetSettlementPlanRequest, GetSettlementPlanResponse]
	getSummary        *connect.Client[GetSummaryRequest, GetSummaryResponse]
}

// NewSettlementServiceClient constructs a client for the service at baseURL (e.g. http://localhost:8080).
func NewSettlementServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *SettlementServiceClient {
	return &SettlementServiceClient{
		getPairwiseDebts:  newClient[GetPairwiseDebtsRequest, GetPairwiseDebtsResponse](httpClient, baseURL, SettlementServiceGetPairwiseDebtsProcedure, opts),
		getSettlementPlan: newClient[GetSettlementPlanRequest, GetSettlementPlanResponse](httpClient, baseURL, SettlementServiceGetSettlementPlanProcedure, opts),
		getSummary:        newClient[GetSummaryRequest, GetSummaryResponse](httpClient, baseURL, SettlementServiceGetSummaryProcedure, opts),
	}
}

func (c *SettlementServiceClient) GetPairwiseDebts(ctx context.Context, req *connect.Request[GetPairwiseDebtsRequest]) (*connect.Response[GetPairwiseDebtsResponse], error) {
	return c.getPairwiseDebts.CallUnary(ctx, req)
}

func (c *SettlementServiceClient) GetSettlementPlan(ctx context.Context, req *connect.Request[GetSettlementPlanRequest]) (*connect.Response[GetSettlementPlanResponse], error) {
	return c.getSettlementPlan.CallUnary(ctx, req)
}

func (c *SettlementServiceClient) GetSummary(ctx context.Context, req *connect.Request[GetSummaryRequest]) (*connect.Response[GetSummaryResponse], error) {
	return c.getSummary.CallUnary(ctx, req)
}

// ProfileServiceHandler is implemented by the server side of ProfileService.
type ProfileServiceHandler interface {
	SetPaymentAccount(context.Context, *connect.Request[SetPaymentAccountRequest]) (*connect.Response[PaymentAccountResponse], error)
	ListPaymentAccounts(context.Context, *connect.Request[ListPaymentAccountsRequest]) (*connect.Response[ListPaymentAccountsResponse], error)
}

// NewProfileServiceHandler builds an HTTP handler from the service implementation. It returns the path
// on which to mount the handler and the handler itself.
func NewProfileServiceHandler(svc ProfileServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	mux.Handle(ProfileServiceSetPaymentAccountProcedure, connect.NewUnaryHandler(ProfileServiceSetPaymentAccountProcedure, svc.SetPaymentAccount, opts...))
	mux.Handle(ProfileServiceListPaymentAccountsProcedure, connect.NewUnaryHandler(ProfileServiceListPaymentAccountsProcedure, svc.ListPaymentAccounts, opts...))
	return "/" + ProfileServiceName + "/", mux
}

// ProfileServiceClient is a typed client for ProfileService.
type ProfileServiceClient struct {
	setPaymentAccount   *connect.Client[SetPaymentAccountRequest, PaymentAccountResponse]
	listPaymentAccounts *connect.Client[ListPaymentAccountsRequest, ListPaymentAccountsResponse]
}

// NewProfileServiceClient constructs a client for the service at baseURL (e.g. http://localhost:8080).
func NewProfileServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *ProfileServiceClient {
	return &ProfileServiceClient{
		setPaymentAccount:   newClient[SetPaymentAccountRequest, PaymentAccountResponse](httpClient, baseURL, ProfileServiceSetPaymentAccountProcedure, opts),
		listPaymentAccounts: newClient[ListPaymentAccountsRequest, ListPaymentAccountsResponse](httpClient, baseURL, ProfileServiceListPaymentAccountsProcedure, opts),
	}
}

func (c *ProfileServiceClient) SetPaymentAccount(ctx context.Context, req *connect.Request[SetPaymentAccountRequest]) (*connect.Response[PaymentAccountResponse], error) {
	return c.setPaymentAccount.CallUnary(ctx, req)
}

func (c *ProfileServiceClient) ListPaymentAccounts(ctx context.Context, req *connect.Request[ListPaymentAccountsRequest]) (*connect.Response[ListPaymentAccountsResponse], error) {
	return c.listPaymentAccounts.CallUnary(ctx, req)
}
