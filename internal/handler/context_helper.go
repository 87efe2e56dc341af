package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/alumni-portal/internal/listing"
	"github.com/noah-isme/alumni-portal/internal/middleware"
	"github.com/noah-isme/alumni-portal/internal/models"
)

func sessionFromContext(c *gin.Context) *models.Session {
	sess, ok := middleware.SessionFrom(c)
	if !ok {
		return nil
	}
	return sess
}

func descriptorFromQuery(c *gin.Context, limits listing.Limits) (listing.Descriptor, error) {
	return listing.ParseDescriptor(c.Request.URL.Query(), limits)
}
