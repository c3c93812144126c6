package mockapi

func (s *Server) registerRoutes(prefix string) {
	g := s.echo.Group(prefix)
	g.POST("/auth/login", s.handleLogin)
	g.POST("/auth/logout", s.handleLogout, s.requireAuth)
	g.GET("/me", s.handleMe, s.requireAuth)
	g.Any("/fail/:status", s.handleFail)
}
