package towns

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the registry API on rg, typically /api/v1.
//
//	GET    /towns              ?order=name|distance|none, ?name=
//	POST   /towns
//	GET    /towns/extrema
//	GET    /towns/nth/:n
//	GET    /towns/near         ?x=&y=
//	GET    /towns/:id
//	PATCH  /towns/:id
//	DELETE /towns/:id
//	GET    /towns/:id/path
//	GET    /towns/:id/deepest
//	GET    /towns/:id/vassals
//	GET    /towns/:id/tax
//	POST   /vassalships
//	GET    /stats
func RegisterRoutes(rg *gin.RouterGroup, h *Handlers) {
	towns := rg.Group("/towns")
	{
		towns.GET("", h.HandleList)
		towns.POST("", h.HandleRegister)
		towns.GET("/extrema", h.HandleExtrema)
		towns.GET("/nth/:n", h.HandleNth)
		towns.GET("/near", h.HandleNear)
		towns.GET("/:id", h.HandleGet)
		towns.PATCH("/:id", h.HandleRename)
		towns.DELETE("/:id", h.HandleRemove)
		towns.GET("/:id/path", h.HandleAncestorPath)
		towns.GET("/:id/deepest", h.HandleDeepest)
		towns.GET("/:id/vassals", h.HandleVassals)
		towns.GET("/:id/tax", h.HandleTax)
	}
	rg.POST("/vassalships", h.HandleLink)
	rg.GET("/stats", h.HandleStats)
}

// NewRouter builds a gin engine with recovery, the given middleware and the
// API under /api/v1. Middleware must be passed here: gin binds it to routes
// at registration time.
func NewRouter(h *Handlers, middleware ...gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware...)
	RegisterRoutes(router.Group("/api/v1"), h)
	return router
}
