package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/alumni-portal/internal/middleware"
	"github.com/noah-isme/alumni-portal/internal/permission"
)

// Routes groups every handler served under the API prefix. Nil handlers
// leave their routes unregistered.
type Routes struct {
	Sessions     middleware.SessionResolver
	Registration *RegistrationHandler
	Media        *MediaHandler
	Profiles     *ProfileHandler
	Directory    *DirectoryHandler
	Posts        *PostHandler
	Gallery      *GalleryHandler
	Events       *EventHandler
	Audit        *AuditHandler
	Live         *LiveHandler
}

// Register mounts the routes on api.
func (r Routes) Register(api gin.IRouter) {
	if r.Registration != nil {
		api.POST("/register/step1", r.Registration.StepOne)
		api.POST("/register/step2", r.Registration.StepTwo)
	}
	if r.Media != nil {
		api.GET("/media/:token", r.Media.Serve)
	}

	secured := api.Group("")
	secured.Use(middleware.Session(r.Sessions))

	if r.Media != nil {
		secured.POST("/media/images", r.Media.Upload)
	}
	if r.Profiles != nil {
		secured.GET("/me", r.Profiles.Me)
		secured.GET("/users/:id/profile", r.Profiles.Get)
		secured.PUT("/users/:id/profile", r.Profiles.Update)
	}
	if r.Gallery != nil {
		secured.GET("/gallery", r.Gallery.List)
		secured.GET("/gallery/:id", r.Gallery.Get)
		secured.POST("/gallery", middleware.RequirePermission(permission.UploadGallery), r.Gallery.Create)
	}
	if r.Posts != nil {
		secured.GET("/posts", r.Posts.List)
		secured.POST("/posts/:id/actions", middleware.RequirePermission(permission.ModeratePosts), r.Posts.Act)
	}
	if r.Events != nil {
		secured.GET("/events", r.Events.List)
	}

	admin := secured.Group("/admin")
	admin.Use(middleware.RequirePermission(permission.ManageUsers))
	if r.Directory != nil {
		admin.GET("/users", r.Directory.List)
		admin.GET("/users/export", r.Directory.Export)
		admin.GET("/users/:id", r.Directory.Get)
		admin.POST("/users/:id/actions", r.Directory.Act)
	}
	if r.Audit != nil {
		admin.GET("/audit", r.Audit.List)
	}

	if r.Live != nil {
		ws := api.Group("/live")
		ws.Use(middleware.QuerySession(r.Sessions))
		ws.GET("/users", middleware.RequirePermission(permission.ManageUsers), r.Live.Users)
		ws.GET("/posts", r.Live.Posts)
		ws.GET("/gallery", r.Live.Gallery)
	}
}
