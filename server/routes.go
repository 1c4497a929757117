package server

func (s *Server) initRoutes() {
	s.RegisterRouteFunc("GET "+RouteHealth, s.HealthHandler())

	// Handshake API
	s.RegisterRouteHandler("POST "+RouteAPIAuth, ChainMiddleware(s.AuthHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAPIAgreement, ChainMiddleware(s.AgreementHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAPIValidate, ChainMiddleware(s.ValidateHandler(), s.APIMiddleware()...))

	// CORS preflight for every API route; CorsMiddleware answers it
	s.RegisterRouteHandler("OPTIONS "+RouteAPIPreflight, ChainMiddleware(s.PreflightHandler(), s.APIMiddleware()...))
}
