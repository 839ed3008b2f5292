package server

import (
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/rentledger/internal/orgcontext"
)

const (
	HeaderOrg  = "X-Org-ID"
	HeaderUser = "X-User-ID"

	contextOrgIDKey  = "org_id"
	contextUserIDKey = "user_id"
)

// OrgContext resolves the caller organization and actor from request headers
// and stores them in the request context for the services.
func OrgContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		orgID, err := snowflake.ParseString(strings.TrimSpace(c.GetHeader(HeaderOrg)))
		if err != nil || orgID == 0 {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		ctx := orgcontext.WithOrgID(c.Request.Context(), orgID)
		c.Set(contextOrgIDKey, orgID.String())
		if userID := strings.TrimSpace(c.GetHeader(HeaderUser)); userID != "" {
			ctx = orgcontext.WithActorID(ctx, userID)
			c.Set(contextUserIDKey, userID)
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
