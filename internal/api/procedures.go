package api

// Service names.
const (
	AuthServiceName    = "odemetakip.v1.AuthService"
	ListServiceName    = "odemetakip.v1.ListService"
	AthleteServiceName = "odemetakip.v1.AthleteService"
	CommandServiceName = "odemetakip.v1.CommandService"
	RosterServiceName  = "odemetakip.v1.RosterService"
)

// Procedure paths, as mounted on the HTTP mux.
const (
	AuthServiceRegisterProcedure       = "/" + AuthServiceName + "/Register"
	AuthServiceLoginProcedure          = "/" + AuthServiceName + "/Login"
	AuthServiceGetCurrentUserProcedure = "/" + AuthServiceName + "/GetCurrentUser"

	ListServiceListListsProcedure  = "/" + ListServiceName + "/ListLists"
	ListServiceCreateListProcedure = "/" + ListServiceName + "/CreateList"
	ListServiceRenameListProcedure = "/" + ListServiceName + "/RenameList"
	ListServiceDeleteListProcedure = "/" + ListServiceName + "/DeleteList"

	AthleteServiceListAthletesProcedure   = "/" + AthleteServiceName + "/ListAthletes"
	AthleteServiceAddAthleteProcedure     = "/" + AthleteServiceName + "/AddAthlete"
	AthleteServiceRenameAthleteProcedure  = "/" + AthleteServiceName + "/RenameAthlete"
	AthleteServiceDeleteAthleteProcedure  = "/" + AthleteServiceName + "/DeleteAthlete"
	AthleteServiceUpdatePaymentsProcedure = "/" + AthleteServiceName + "/UpdatePayments"
	AthleteServiceTogglePaymentProcedure  = "/" + AthleteServiceName + "/TogglePayment"

	CommandServiceInterpretProcedure = "/" + CommandServiceName + "/Interpret"
	CommandServiceApplyProcedure     = "/" + CommandServiceName + "/Apply"

	RosterServiceSubscribeProcedure = "/" + RosterServiceName + "/Subscribe"
)

// PublicProcedures can be called without a session token.
var PublicProcedures = []string{
	AuthServiceRegisterProcedure,
	AuthServiceLoginProcedure,
	CommandServiceInterpretProcedure,
}
