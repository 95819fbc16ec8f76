package user

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	domainuser "github.com/alanyang/repair-desk/internal/domain/user"
	usersvc "github.com/alanyang/repair-desk/internal/service/user"
)

// Register mounts the admin user routes. The group must already require the admin role.
func Register(rg *gin.RouterGroup, svc *usersvc.Service) {
	rg.POST("", addUser(svc))
	rg.GET("", listUsers(svc))
	rg.GET("/:id", getUser(svc))
	rg.DELETE("/:id", deleteUser(svc))
}

// RegisterAuth mounts the public login route.
func RegisterAuth(rg *gin.RouterGroup, svc *usersvc.Service) {
	rg.POST("/login", login(svc))
}

type addUserReq struct {
	Name     string          `json:"name"`
	Email    string          `json:"email"`
	Image    string          `json:"image"`
	Role     domainuser.Role `json:"role"`
	Password string          `json:"password"`
}

func addUser(svc *usersvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req addUserReq
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		u, err := svc.Add(c.Request.Context(), usersvc.AddInput{
			Name:     req.Name,
			Email:    req.Email,
			Image:    req.Image,
			Role:     req.Role,
			Password: req.Password,
		})
		if err != nil {
			c.JSON(errorCode(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, u)
	}
}

func listUsers(svc *usersvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var filters domainuser.ListFilters
		if v := c.Query("role"); v != "" {
			role := domainuser.Role(v)
			if !role.Valid() {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid role"})
				return
			}
			filters.Role = &role
		}

		users, err := svc.List(c.Request.Context(), filters)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, users)
	}
}

func getUser(svc *usersvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}

		u, err := svc.GetByID(c.Request.Context(), id)
		if err != nil {
			c.JSON(errorCode(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, u)
	}
}

func deleteUser(svc *usersvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}

		if err := svc.Delete(c.Request.Context(), id); err != nil {
			c.JSON(errorCode(err), gin.H{"error": err.Error()})
			return
		}
		c.Status(http.StatusNoContent)
	}
}

type loginReq struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginResp struct {
	Token string          `json:"token"`
	User  domainuser.User `json:"user"`
}

func login(svc *usersvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginReq
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		token, u, err := svc.Login(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			c.JSON(errorCode(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, loginResp{Token: token, User: u})
	}
}

func errorCode(err error) int {
	switch {
	case errors.Is(err, usersvc.ErrInvalidUser):
		return http.StatusBadRequest
	case errors.Is(err, usersvc.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, domainuser.ErrEmailTaken):
		return http.StatusConflict
	case errors.Is(err, domainuser.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
