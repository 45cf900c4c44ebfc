// ===============================
// FILE: internal/handlers/api/v1/achievements/achievements_controller.go
// ===============================

package achievements

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/logicaltomy/CONDOR-BACK-TS/internal/contextutils"
	"github.com/logicaltomy/CONDOR-BACK-TS/internal/models"
	"github.com/logicaltomy/CONDOR-BACK-TS/internal/response"
	"github.com/logicaltomy/CONDOR-BACK-TS/internal/services"
)

// maxBodyBytes bounds request bodies; icons arrive base64 encoded
const maxBodyBytes = 2 << 20

// AchievementController serves the achievement catalog, condition
// administration and the earn attempt endpoint
type AchievementController struct {
	serviceCollection *services.ServiceCollection
	logger            *zap.Logger
	responseBuilder   *response.Builder
}

// NewAchievementController creates a new achievement controller
func NewAchievementController(
	serviceCollection *services.ServiceCollection,
	logger *zap.Logger,
	responseBuilder *response.Builder,
) *AchievementController {
	return &AchievementController{
		serviceCollection: serviceCollection,
		logger:            logger,
		responseBuilder:   responseBuilder,
	}
}

// RegisterRoutes mounts the controller on a subrouter rooted at /achievements.
// Numeric id patterns keep /conditions and /condition-types from matching /{id}.
func (c *AchievementController) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", c.ListAchievements).Methods(http.MethodGet)
	r.HandleFunc("", c.CreateAchievement).Methods(http.MethodPost)
	r.HandleFunc("/attempt/{userId:[0-9]+}", c.TryEarn).Methods(http.MethodPost)
	r.HandleFunc("/awards/user/{userId:[0-9]+}", c.ListUserAwards).Methods(http.MethodGet)

	r.HandleFunc("/conditions", c.ListConditions).Methods(http.MethodGet)
	r.HandleFunc("/conditions", c.CreateCondition).Methods(http.MethodPost)
	r.HandleFunc("/conditions/{id:[0-9]+}", c.GetCondition).Methods(http.MethodGet)
	r.HandleFunc("/conditions/{id:[0-9]+}/threshold", c.UpdateThreshold).Methods(http.MethodPatch)
	r.HandleFunc("/conditions/{id:[0-9]+}/type", c.UpdateConditionType).Methods(http.MethodPatch)

	r.HandleFunc("/condition-types", c.ListConditionTypes).Methods(http.MethodGet)
	r.HandleFunc("/condition-types/{id:[0-9]+}", c.GetConditionType).Methods(http.MethodGet)

	r.HandleFunc("/{id:[0-9]+}", c.GetAchievement).Methods(http.MethodGet)
	r.HandleFunc("/{id:[0-9]+}/name", c.UpdateName).Methods(http.MethodPatch)
	r.HandleFunc("/{id:[0-9]+}/description", c.UpdateDescription).Methods(http.MethodPatch)
	r.HandleFunc("/{id:[0-9]+}/status", c.UpdateStatus).Methods(http.MethodPatch)
	r.HandleFunc("/{id:[0-9]+}/icon", c.UpdateIcon).Methods(http.MethodPatch)
	r.HandleFunc("/{id:[0-9]+}/awards/count", c.CountAwards).Methods(http.MethodGet)
}

// ===============================
// EARN ATTEMPT
// ===============================

// TryEarnResponse is the payload of a successful earn attempt
type TryEarnResponse struct {
	Achievement *models.Achievement `json:"achievement"`
	Award       *models.Award       `json:"award"`
	Metrics     models.UserMetrics  `json:"metrics"`
}

// TryEarn handles POST /api/v1/achievements/attempt/{userId}
// @Summary Attempt to earn an achievement
// @Description Evaluates achievements in ascending id order and grants the first one whose condition the user meets. At most one award per call.
// @Tags Achievements
// @Produce json
// @Param userId path int true "User ID"
// @Success 200 {object} response.APIResponse{data=TryEarnResponse} "Achievement granted"
// @Failure 400 {object} response.APIResponse "Invalid user id"
// @Failure 403 {object} response.APIResponse "User does not qualify for any new achievement"
// @Failure 500 {object} response.APIResponse "Catalog inconsistency"
// @Failure 503 {object} response.APIResponse "A collaborator service is unavailable"
// @Router /achievements/attempt/{userId} [post]
func (c *AchievementController) TryEarn(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	result, err := c.serviceCollection.Evaluator.TryEarn(r.Context(), userID)
	if err != nil {
		c.handleServiceError(w, r, err, "try earn")
		return
	}

	if !result.Granted() {
		c.responseBuilder.WriteError(w, r, services.NewNotQualifiedError(userID))
		return
	}

	c.responseBuilder.WriteSuccess(w, r, &TryEarnResponse{
		Achievement: result.Achievement,
		Award:       result.Award,
		Metrics:     result.Metrics,
	})
}

// ===============================
// ACHIEVEMENT CATALOG
// ===============================

// ListAchievements handles GET /api/v1/achievements
// @Summary List achievements
// @Tags Achievements
// @Produce json
// @Success 200 {object} response.APIResponse{data=[]models.Achievement} "Achievements"
// @Success 204 "No achievements"
// @Router /achievements [get]
func (c *AchievementController) ListAchievements(w http.ResponseWriter, r *http.Request) {
	list, err := c.serviceCollection.Achievements.ListAchievements(r.Context())
	if err != nil {
		c.handleServiceError(w, r, err, "list achievements")
		return
	}
	writeList(c.responseBuilder, w, r, list)
}

// GetAchievement handles GET /api/v1/achievements/{id}
// @Summary Get achievement
// @Tags Achievements
// @Produce json
// @Param id path int true "Achievement ID"
// @Success 200 {object} response.APIResponse{data=models.Achievement} "Achievement"
// @Failure 404 {object} response.APIResponse "Not found"
// @Router /achievements/{id} [get]
func (c *AchievementController) GetAchievement(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	achievement, err := c.serviceCollection.Achievements.GetAchievement(r.Context(), id)
	if err != nil {
		c.handleServiceError(w, r, err, "get achievement")
		return
	}
	c.responseBuilder.WriteSuccess(w, r, achievement)
}

// CreateAchievement handles POST /api/v1/achievements
// @Summary Create achievement
// @Tags Achievements
// @Accept json
// @Produce json
// @Param request body services.CreateAchievementRequest true "Request body"
// @Success 201 {object} response.APIResponse{data=models.Achievement} "Created"
// @Failure 400 {object} response.APIResponse "Validation error"
// @Failure 404 {object} response.APIResponse "Condition or status not found"
// @Failure 503 {object} response.APIResponse "Status catalog unavailable"
// @Router /achievements [post]
func (c *AchievementController) CreateAchievement(w http.ResponseWriter, r *http.Request) {
	var req services.CreateAchievementRequest
	if !c.decode(w, r, &req) {
		return
	}

	achievement, err := c.serviceCollection.Achievements.CreateAchievement(r.Context(), &req)
	if err != nil {
		c.handleServiceError(w, r, err, "create achievement")
		return
	}

	c.responseBuilder.WriteCreated(w, r, achievement)
}

// UpdateName handles PATCH /api/v1/achievements/{id}/name
// @Summary Update achievement name
// @Tags Achievements
// @Accept json
// @Produce json
// @Param id path int true "Achievement ID"
// @Param request body services.UpdateNameRequest true "Request body"
// @Success 200 {object} response.APIResponse{data=models.Achievement} "Updated"
// @Failure 400 {object} response.APIResponse "Validation error"
// @Failure 404 {object} response.APIResponse "Not found"
// @Router /achievements/{id}/name [patch]
func (c *AchievementController) UpdateName(w http.ResponseWriter, r *http.Request) {
	var req services.UpdateNameRequest
	if !c.decodeWithID(w, r, &req, &req.AchievementID) {
		return
	}
	c.writeAchievement(w, r, "update name")(c.serviceCollection.Achievements.UpdateName(r.Context(), &req))
}

// UpdateDescription handles PATCH /api/v1/achievements/{id}/description
// @Summary Update achievement description
// @Tags Achievements
// @Accept json
// @Produce json
// @Param id path int true "Achievement ID"
// @Param request body services.UpdateDescriptionRequest true "Request body"
// @Success 200 {object} response.APIResponse{data=models.Achievement} "Updated"
// @Failure 400 {object} response.APIResponse "Validation error"
// @Failure 404 {object} response.APIResponse "Not found"
// @Router /achievements/{id}/description [patch]
func (c *AchievementController) UpdateDescription(w http.ResponseWriter, r *http.Request) {
	var req services.UpdateDescriptionRequest
	if !c.decodeWithID(w, r, &req, &req.AchievementID) {
		return
	}
	c.writeAchievement(w, r, "update description")(c.serviceCollection.Achievements.UpdateDescription(r.Context(), &req))
}

// UpdateStatus handles PATCH /api/v1/achievements/{id}/status
// @Summary Update achievement status
// @Tags Achievements
// @Accept json
// @Produce json
// @Param id path int true "Achievement ID"
// @Param request body services.UpdateStatusRequest true "Request body"
// @Success 200 {object} response.APIResponse{data=models.Achievement} "Updated"
// @Failure 400 {object} response.APIResponse "Validation error"
// @Failure 404 {object} response.APIResponse "Not found"
// @Router /achievements/{id}/status [patch]
func (c *AchievementController) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req services.UpdateStatusRequest
	if !c.decodeWithID(w, r, &req, &req.AchievementID) {
		return
	}
	c.writeAchievement(w, r, "update status")(c.serviceCollection.Achievements.UpdateStatus(r.Context(), &req))
}

// UpdateIcon handles PATCH /api/v1/achievements/{id}/icon
// @Summary Update achievement icon
// @Tags Achievements
// @Accept json
// @Produce json
// @Param id path int true "Achievement ID"
// @Param request body services.UpdateIconRequest true "Request body"
// @Success 200 {object} response.APIResponse{data=models.Achievement} "Updated"
// @Failure 400 {object} response.APIResponse "Validation error"
// @Failure 404 {object} response.APIResponse "Not found"
// @Router /achievements/{id}/icon [patch]
func (c *AchievementController) UpdateIcon(w http.ResponseWriter, r *http.Request) {
	var req services.UpdateIconRequest
	if !c.decodeWithID(w, r, &req, &req.AchievementID) {
		return
	}
	c.writeAchievement(w, r, "update icon")(c.serviceCollection.Achievements.UpdateIcon(r.Context(), &req))
}

func (c *AchievementController) writeAchievement(w http.ResponseWriter, r *http.Request, operation string) func(*models.Achievement, error) {
	return func(achievement *models.Achievement, err error) {
		if err != nil {
			c.handleServiceError(w, r, err, operation)
			return
		}
		c.responseBuilder.WriteSuccess(w, r, achievement)
	}
}

// ===============================
// AWARDS
// ===============================

// ListUserAwards handles GET /api/v1/achievements/awards/user/{userId}
// @Summary List awards of a user
// @Tags Awards
// @Produce json
// @Param userId path int true "User ID"
// @Success 200 {object} response.APIResponse{data=[]models.Award} "Awards"
// @Success 204 "No awards"
// @Router /achievements/awards/user/{userId} [get]
func (c *AchievementController) ListUserAwards(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	awards, err := c.serviceCollection.Awards.ListAwardsForUser(r.Context(), userID)
	if err != nil {
		c.handleServiceError(w, r, err, "list user awards")
		return
	}
	writeList(c.responseBuilder, w, r, awards)
}

// CountAwards handles GET /api/v1/achievements/{id}/awards/count
// @Summary Count awards of an achievement
// @Tags Awards
// @Produce json
// @Param id path int true "Achievement ID"
// @Success 200 {object} response.APIResponse{data=models.AwardCount} "Count"
// @Failure 404 {object} response.APIResponse "Not found"
// @Router /achievements/{id}/awards/count [get]
func (c *AchievementController) CountAwards(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	count, err := c.serviceCollection.Awards.CountAwards(r.Context(), id)
	if err != nil {
		c.handleServiceError(w, r, err, "count awards")
		return
	}
	c.responseBuilder.WriteSuccess(w, r, count)
}

// ===============================
// HELPERS
// ===============================

// handleServiceError logs server side failures and writes the error envelope.
// Client errors are logged by the response builder at debug level.
func (c *AchievementController) handleServiceError(w http.ResponseWriter, r *http.Request, err error, operation string) {
	if serviceErr := services.GetServiceError(err); response.IsServerError(serviceErr.GetStatusCode()) {
		contextutils.GetLogger(r.Context(), c.logger).Error("Achievement service error",
			zap.Error(err),
			zap.String("operation", operation),
			zap.String("error_type", serviceErr.Type),
		)
	}
	c.responseBuilder.WriteError(w, r, err)
}

// decode reads a JSON body into dst, writing a 400 on failure
func (c *AchievementController) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		message := "Invalid request body format"
		if errors.As(err, &maxErr) {
			message = fmt.Sprintf("Request body exceeds %d bytes", maxErr.Limit)
		}
		c.responseBuilder.WriteError(w, r, services.NewValidationError(message, err))
		return false
	}
	return true
}

// decodeWithID decodes the body and then fills the path id
func (c *AchievementController) decodeWithID(w http.ResponseWriter, r *http.Request, dst interface{}, id *int64) bool {
	parsed, err := pathID(r, "id")
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return false
	}
	if !c.decode(w, r, dst) {
		return false
	}
	*id = parsed
	return true
}

// pathID parses a positive integer path variable
func pathID(r *http.Request, name string) (int64, error) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, services.InvalidInputError(name, "must be a positive integer")
	}
	return id, nil
}

// writeList answers 204 for an empty collection
func writeList[T any](b *response.Builder, w http.ResponseWriter, r *http.Request, items []T) {
	if len(items) == 0 {
		b.WriteNoContent(w, r)
		return
	}
	b.WriteSuccess(w, r, items)
}
