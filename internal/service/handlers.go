package service

import (
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/odemetakip/internal/api"
)

func handlerOptions(opts []connect.HandlerOption) []connect.HandlerOption {
	return append([]connect.HandlerOption{api.WithCodec()}, opts...)
}

// NewAuthServiceHandler returns the mount path and handler for svc.
func NewAuthServiceHandler(svc *AuthService, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	mux.Handle(api.AuthServiceRegisterProcedure, connect.NewUnaryHandler(api.AuthServiceRegisterProcedure, svc.Register, opts...))
	mux.Handle(api.AuthServiceLoginProcedure, connect.NewUnaryHandler(api.AuthServiceLoginProcedure, svc.Login, opts...))
	mux.Handle(api.AuthServiceGetCurrentUserProcedure, connect.NewUnaryHandler(api.AuthServiceGetCurrentUserProcedure, svc.GetCurrentUser, opts...))
	return "/" + api.AuthServiceName + "/", mux
}

// NewListServiceHandler returns the mount path and handler for svc.
func NewListServiceHandler(svc *ListService, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	mux.Handle(api.ListServiceListListsProcedure, connect.NewUnaryHandler(api.ListServiceListListsProcedure, svc.ListLists, opts...))
	mux.Handle(api.ListServiceCreateListProcedure, connect.NewUnaryHandler(api.ListServiceCreateListProcedure, svc.CreateList, opts...))
	mux.Handle(api.ListServiceRenameListProcedure, connect.NewUnaryHandler(api.ListServiceRenameListProcedure, svc.RenameList, opts...))
	mux.Handle(api.ListServiceDeleteListProcedure, connect.NewUnaryHandler(api.ListServiceDeleteListProcedure, svc.DeleteList, opts...))
	return "/" + api.ListServiceName + "/", mux
}

// NewAthleteServiceHandler returns the mount path and handler for svc.
func NewAthleteServiceHandler(svc *AthleteService, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	mux.Handle(api.AthleteServiceListAthletesProcedure, connect.NewUnaryHandler(api.AthleteServiceListAthletesProcedure, svc.ListAthletes, opts...))
	mux.Handle(api.AthleteServiceAddAthleteProcedure, connect.NewUnaryHandler(api.AthleteServiceAddAthleteProcedure, svc.AddAthlete, opts...))
	mux.Handle(api.AthleteServiceRenameAthleteProcedure, connect.NewUnaryHandler(api.AthleteServiceRenameAthleteProcedure, svc.RenameAthlete, opts...))
	mux.Handle(api.AthleteServiceDeleteAthleteProcedure, connect.NewUnaryHandler(api.AthleteServiceDeleteAthleteProcedure, svc.DeleteAthlete, opts...))
	mux.Handle(api.AthleteServiceUpdatePaymentsProcedure, connect.NewUnaryHandler(api.AthleteServiceUpdatePaymentsProcedure, svc.UpdatePayments, opts...))
	mux.Handle(api.AthleteServiceTogglePaymentProcedure, connect.NewUnaryHandler(api.AthleteServiceTogglePaymentProcedure, svc.TogglePayment, opts...))
	return "/" + api.AthleteServiceName + "/", mux
}

// NewCommandServiceHandler returns the mount path and handler for svc.
func NewCommandServiceHandler(svc *CommandService, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	mux.Handle(api.CommandServiceInterpretProcedure, connect.NewUnaryHandler(api.CommandServiceInterpretProcedure, svc.Interpret, opts...))
	mux.Handle(api.CommandServiceApplyProcedure, connect.NewUnaryHandler(api.CommandServiceApplyProcedure, svc.Apply, opts...))
	return "/" + api.CommandServiceName + "/", mux
}

// NewRosterServiceHandler returns the mount path and handler for svc.
func NewRosterServiceHandler(svc *RosterService, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	mux.Handle(api.RosterServiceSubscribeProcedure, connect.NewServerStreamHandler(api.RosterServiceSubscribeProcedure, svc.Subscribe, opts...))
	return "/" + api.RosterServiceName + "/", mux
}
