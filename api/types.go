package api

// routeHandlers contains all the handlers for different route types
type routeHandlers struct {
	submissions    []submissionRoute
	records        []recordRoute
	publicHandler  publicHandler
	authHandler    authHandler
	blogHandler    postHandler
	eventHandler   postHandler
	programHandler programHandler
	healthHandler  healthHandler
}
