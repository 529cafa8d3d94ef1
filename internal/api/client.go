package api

import (
	"strings"

	"connectrpc.com/connect"
)

// Client bundles one Connect client per procedure.
type Client struct {
	Register       *connect.Client[RegisterRequest, AuthResponse]
	Login          *connect.Client[LoginRequest, AuthResponse]
	GetCurrentUser *connect.Client[GetCurrentUserRequest, GetCurrentUserResponse]

	ListLists  *connect.Client[ListListsRequest, ListListsResponse]
	CreateList *connect.Client[CreateListRequest, ListResponse]
	RenameList *connect.Client[RenameListRequest, ListResponse]
	DeleteList *connect.Client[DeleteListRequest, DeleteListResponse]

	ListAthletes   *connect.Client[ListAthletesRequest, ListAthletesResponse]
	AddAthlete     *connect.Client[AddAthleteRequest, AthleteResponse]
	RenameAthlete  *connect.Client[RenameAthleteRequest, AthleteResponse]
	DeleteAthlete  *connect.Client[DeleteAthleteRequest, DeleteAthleteResponse]
	UpdatePayments *connect.Client[UpdatePaymentsRequest, AthleteResponse]
	TogglePayment  *connect.Client[TogglePaymentRequest, AthleteResponse]

	Interpret *connect.Client[InterpretRequest, InterpretResponse]
	Apply     *connect.Client[ApplyCommandRequest, ApplyCommandResponse]

	Subscribe *connect.Client[SubscribeRequest, RosterEvent]
}

// NewClient creates clients for every procedure served at baseURL.
func NewClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *Client {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{WithCodec()}, opts...)

	return &Client{
		Register:       connect.NewClient[RegisterRequest, AuthResponse](httpClient, baseURL+AuthServiceRegisterProcedure, opts...),
		Login:          connect.NewClient[LoginRequest, AuthResponse](httpClient, baseURL+AuthServiceLoginProcedure, opts...),
		GetCurrentUser: connect.NewClient[GetCurrentUserRequest, GetCurrentUserResponse](httpClient, baseURL+AuthServiceGetCurrentUserProcedure, opts...),

		ListLists:  connect.NewClient[ListListsRequest, ListListsResponse](httpClient, baseURL+ListServiceListListsProcedure, opts...),
		CreateList: connect.NewClient[CreateListRequest, ListResponse](httpClient, baseURL+ListServiceCreateListProcedure, opts...),
		RenameList: connect.NewClient[RenameListRequest, ListResponse](httpClient, baseURL+ListServiceRenameListProcedure, opts...),
		DeleteList: connect.NewClient[DeleteListRequest, DeleteListResponse](httpClient, baseURL+ListServiceDeleteListProcedure, opts...),

		ListAthletes:   connect.NewClient[ListAthletesRequest, ListAthletesResponse](httpClient, baseURL+AthleteServiceListAthletesProcedure, opts...),
		AddAthlete:     connect.NewClient[AddAthleteRequest, AthleteResponse](httpClient, baseURL+AthleteServiceAddAthleteProcedure, opts...),
		RenameAthlete:  connect.NewClient[RenameAthleteRequest, AthleteResponse](httpClient, baseURL+AthleteServiceRenameAthleteProcedure, opts...),
		DeleteAthlete:  connect.NewClient[DeleteAthleteRequest, DeleteAthleteResponse](httpClient, baseURL+AthleteServiceDeleteAthleteProcedure, opts...),
		UpdatePayments: connect.NewClient[UpdatePaymentsRequest, AthleteResponse](httpClient, baseURL+AthleteServiceUpdatePaymentsProcedure, opts...),
		TogglePayment:  connect.NewClient[TogglePaymentRequest, AthleteResponse](httpClient, baseURL+AthleteServiceTogglePaymentProcedure, opts...),

		Interpret: connect.NewClient[InterpretRequest, InterpretResponse](httpClient, baseURL+CommandServiceInterpretProcedure, opts...),
		Apply:     connect.NewClient[ApplyCommandRequest, ApplyCommandResponse](httpClient, baseURL+CommandServiceApplyProcedure, opts...),

		Subscribe: connect.NewClient[SubscribeRequest, RosterEvent](httpClient, baseURL+RosterServiceSubscribeProcedure, opts...),
	}
}
