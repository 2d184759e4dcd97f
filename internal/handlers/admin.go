package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/storeratings/ratehub/db"
	"github.com/storeratings/ratehub/internal/apperr"
	"github.com/storeratings/ratehub/internal/authz"
	"github.com/storeratings/ratehub/internal/integrity"
	"github.com/storeratings/ratehub/internal/logger"
	"github.com/storeratings/ratehub/internal/middleware"
	"github.com/storeratings/ratehub/internal/models"
	"github.com/storeratings/ratehub/internal/stores"
)

type CreateUserRequest struct {
	Name     string `json:"name" binding:"required,min=20,max=60"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Address  string `json:"address" binding:"required,max=400"`
	Role     string `json:"role" binding:"required,oneof=admin user store_owner"`
}

type CreateStoreRequest struct {
	Name    string `json:"name" binding:"required,min=1,max=100"`
	Email   string `json:"email" binding:"required,email"`
	Address string `json:"address" binding:"required,max=400"`
	OwnerID *uint  `json:"owner_id"`
}

type UpdateRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=admin user store_owner"`
}

type Pagination struct {
	CurrentPage  int   `json:"current_page"`
	TotalPages   int   `json:"total_pages"`
	TotalItems   int64 `json:"total_items"`
	ItemsPerPage int   `json:"items_per_page"`
}

func paginationFrom(ctx *gin.Context) (page, limit int) {
	page, _ = strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(ctx.DefaultQuery("limit", "20"))

	if page < 1 {
		page = 1
	}

	if limit < 1 || limit > 100 {
		limit = 20
	}

	return page, limit
}

func buildPagination(page, limit int, total int64) Pagination {
	totalPages := int((total + int64(limit) - 1) / int64(limit))

	return Pagination{
		CurrentPage:  page,
		TotalPages:   totalPages,
		TotalItems:   total,
		ItemsPerPage: limit,
	}
}

type roleCount struct {
	Role  string `json:"role"`
	Count int64  `json:"count"`
}

type recentRating struct {
	Score     int       `json:"rating"`
	CreatedAt time.Time `json:"created_at"`
	UserName  string    `json:"user_name"`
	StoreName string    `json:"store_name"`
}

func AdminDashboard(ctx *gin.Context) {
	var totalUsers, totalStores, totalRatings int64

	if err := db.DB.Model(&models.User{}).Count(&totalUsers).Error; err != nil {
		respondError(ctx, err)
		return
	}

	if err := db.DB.Model(&models.Store{}).Count(&totalStores).Error; err != nil {
		respondError(ctx, err)
		return
	}

	if err := db.DB.Model(&models.Rating{}).Count(&totalRatings).Error; err != nil {
		respondError(ctx, err)
		return
	}

	var usersByRole []roleCount

	err := db.DB.Model(&models.User{}).
		Select("role, COUNT(*) AS count").
		Group("role").
		Scan(&usersByRole).Error

	if err != nil {
		respondError(ctx, err)
		return
	}

	var recent []recentRating

	err = db.DB.Table("ratings").
		Select(`ratings.score, ratings.created_at,
	users.name AS user_name, stores.name AS store_name`).
		Joins("JOIN users ON users.id = ratings.user_id").
		Joins("JOIN stores ON stores.id = ratings.store_id").
		Order("ratings.created_at DESC").
		Limit(10).
		Scan(&recent).Error

	if err != nil {
		respondError(ctx, err)
		return
	}

	if recent == nil {
		recent = []recentRating{}
	}

	ctx.JSON(http.StatusOK, gin.H{
		"statistics": gin.H{
			"total_users":   totalUsers,
			"total_stores":  totalStores,
			"total_ratings": totalRatings,
			"users_by_role": usersByRole,
		},
		"recent_activity": recent,
	})
}

type AdminUser struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Address     string    `json:"address"`
	Role        string    `json:"role"`
	CreatedAt   time.Time `json:"created_at"`
	StoreRating *float64  `json:"store_rating"`
}

var userSortColumns = map[string]string{
	"name":       "users.name",
	"email":      "users.email",
	"address":    "users.address",
	"role":       "users.role",
	"created_at": "users.created_at",
}

func userOrderClause(sortBy, sortOrder string) string {
	column, ok := userSortColumns[sortBy]

	if !ok {
		column = "users.name"
	}

	direction := "ASC"

	if sortOrder == "desc" || sortOrder == "DESC" {
		direction = "DESC"
	}

	return column + " " + direction
}

func AdminListUsers(ctx *gin.Context) {
	search := ctx.Query("search")
	role := ctx.Query("role")
	page, limit := paginationFrom(ctx)

	base := db.DB.Model(&models.User{})

	if search != "" {
		pattern := "%" + search + "%"
		base = base.Where("users.name LIKE ? OR users.email LIKE ? OR users.address LIKE ?", pattern, pattern, pattern)
	}

	if role != "" {
		if !authz.ValidRole(role) {
			respondError(ctx, apperr.Validation("role", "must be admin, user, or store_owner"))
			return
		}
		base = base.Where("users.role = ?", role)
	}

	var total int64

	if err := base.Count(&total).Error; err != nil {
		respondError(ctx, err)
		return
	}

	query := db.DB.Table("users").
		Select(`users.id, users.name, users.email, users.address, users.role, users.created_at,
	CASE WHEN users.role = 'store_owner' THEN (
		SELECT COALESCE(AVG(r.score), 0)
		FROM stores s
		LEFT JOIN ratings r ON r.store_id = s.id
		WHERE s.owner_id = users.id
	) ELSE NULL END AS store_rating`)

	if search != "" {
		pattern := "%" + search + "%"
		query = query.Where("users.name LIKE ? OR users.email LIKE ? OR users.address LIKE ?", pattern, pattern, pattern)
	}

	if role != "" {
		query = query.Where("users.role = ?", role)
	}

	var users []AdminUser

	err := query.Order(userOrderClause(ctx.DefaultQuery("sortBy", "name"), ctx.DefaultQuery("sortOrder", "asc"))).
		Limit(limit).
		Offset((page - 1) * limit).
		Scan(&users).Error

	if err != nil {
		respondError(ctx, err)
		return
	}

	if users == nil {
		users = []AdminUser{}
	}

	ctx.JSON(http.StatusOK, gin.H{
		"users":      users,
		"pagination": buildPagination(page, limit, total),
	})
}

func AdminCreateUser(ctx *gin.Context) {
	var req CreateUserRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := validatePassword(req.Password); err != nil {
		respondError(ctx, err)
		return
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)

	if err != nil {
		respondError(ctx, err)
		return
	}

	newUser := models.User{
		Name:         req.Name,
		Email:        normalizeEmail(req.Email),
		PasswordHash: string(passwordHash),
		Address:      req.Address,
		Role:         req.Role,
	}

	if err := db.DB.Create(&newUser).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			respondError(ctx, apperr.DuplicateEmail())
			return
		}
		respondError(ctx, err)
		return
	}

	logger.Info("user created by admin", "user_id", newUser.ID, "role", newUser.Role)

	ctx.JSON(http.StatusCreated, gin.H{
		"message": "User created successfully",
		"user_id": newUser.ID,
	})
}

func AdminUpdateUserRole(ctx *gin.Context) {
	userID, err := parseIDParam(ctx, "id")

	if err != nil {
		respondError(ctx, err)
		return
	}

	var req UpdateRoleRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User

	if err := db.DB.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(ctx, apperr.NotFound("user not found"))
			return
		}
		respondError(ctx, err)
		return
	}

	if err := db.DB.Model(&user).Update("role", req.Role).Error; err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "User role updated successfully"})
}

func AdminDeleteUser(ctx *gin.Context) {
	currentUser, err := middleware.CurrentUser(ctx)

	if err != nil {
		respondError(ctx, apperr.MissingToken())
		return
	}

	userID, err := parseIDParam(ctx, "id")

	if err != nil {
		respondError(ctx, err)
		return
	}

	caller := authz.Caller{ID: currentUser.ID, Role: currentUser.Role}
	resource := &authz.Resource{TargetUserID: userID}

	if err := authz.Authorize(caller, authz.PermDeleteUser, resource); err != nil {
		respondError(ctx, err)
		return
	}

	if err := integrity.NewManager(db.DB).DeleteUser(userID); err != nil {
		respondError(ctx, err)
		return
	}

	logger.Info("user deleted", "user_id", userID, "admin_id", currentUser.ID)

	ctx.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
}

func AdminListStores(ctx *gin.Context) {
	page, limit := paginationFrom(ctx)

	params := stores.ListParams{
		Search:    ctx.Query("search"),
		SortBy:    ctx.DefaultQuery("sortBy", "name"),
		SortOrder: ctx.DefaultQuery("sortOrder", "asc"),
	}

	summaries, total, err := stores.NewResolver(db.DB).AdminList(params, page, limit)

	if err != nil {
		respondError(ctx, err)
		return
	}

	if summaries == nil {
		summaries = []stores.Summary{}
	}

	ctx.JSON(http.StatusOK, gin.H{
		"stores":     summaries,
		"pagination": buildPagination(page, limit, total),
	})
}

func AdminCreateStore(ctx *gin.Context) {
	var req CreateStoreRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// An assigned owner must be an existing user holding the store_owner role.
	if req.OwnerID != nil {
		var owner models.User

		if err := db.DB.First(&owner, *req.OwnerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				respondError(ctx, apperr.Validation("owner_id", "no such user"))
				return
			}
			respondError(ctx, err)
			return
		}

		if owner.Role != string(authz.RoleStoreOwner) {
			respondError(ctx, apperr.Validation("owner_id", "owner must have store_owner role"))
			return
		}
	}

	store := models.Store{
		Name:    req.Name,
		Email:   normalizeEmail(req.Email),
		Address: req.Address,
		OwnerID: req.OwnerID,
	}

	if err := db.DB.Create(&store).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			respondError(ctx, apperr.DuplicateEmail())
			return
		}
		respondError(ctx, err)
		return
	}

	logger.Info("store created", "store_id", store.ID)

	ctx.JSON(http.StatusCreated, gin.H{
		"message":  "Store created successfully",
		"store_id": store.ID,
	})
}

func AdminDeleteStore(ctx *gin.Context) {
	storeID, err := parseIDParam(ctx, "id")

	if err != nil {
		respondError(ctx, err)
		return
	}

	if err := integrity.NewManager(db.DB).DeleteStore(storeID); err != nil {
		respondError(ctx, err)
		return
	}

	logger.Info("store deleted", "store_id", storeID)

	ctx.JSON(http.StatusOK, gin.H{"message": "Store deleted successfully"})
}
