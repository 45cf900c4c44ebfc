package achievements

import (
	"net/http"

	"github.com/logicaltomy/CONDOR-BACK-TS/internal/models"
	"github.com/logicaltomy/CONDOR-BACK-TS/internal/services"
)

// ===============================
// CONDITIONS
// ===============================

// ListConditions handles GET /api/v1/achievements/conditions
// @Summary List conditions
// @Tags Conditions
// @Produce json
// @Success 200 {object} response.APIResponse{data=[]models.Condition} "Conditions"
// @Success 204 "No conditions"
// @Router /achievements/conditions [get]
func (c *AchievementController) ListConditions(w http.ResponseWriter, r *http.Request) {
	conditions, err := c.serviceCollection.Conditions.ListConditions(r.Context())
	if err != nil {
		c.handleServiceError(w, r, err, "list conditions")
		return
	}
	writeList(c.responseBuilder, w, r, conditions)
}

// GetCondition handles GET /api/v1/achievements/conditions/{id}
// @Summary Get condition
// @Tags Conditions
// @Produce json
// @Param id path int true "Condition ID"
// @Success 200 {object} response.APIResponse{data=models.Condition} "Condition"
// @Failure 404 {object} response.APIResponse "Not found"
// @Router /achievements/conditions/{id} [get]
func (c *AchievementController) GetCondition(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.writeCondition(w, r, "get condition")(c.serviceCollection.Conditions.GetCondition(r.Context(), id))
}

// CreateCondition handles POST /api/v1/achievements/conditions
// @Summary Create condition
// @Description Creates a condition. The description is derived from type and threshold.
// @Tags Conditions
// @Accept json
// @Produce json
// @Param request body services.CreateConditionRequest true "Request body"
// @Success 201 {object} response.APIResponse{data=models.Condition} "Created"
// @Failure 400 {object} response.APIResponse "Validation error"
// @Router /achievements/conditions [post]
func (c *AchievementController) CreateCondition(w http.ResponseWriter, r *http.Request) {
	var req services.CreateConditionRequest
	if !c.decode(w, r, &req) {
		return
	}

	condition, err := c.serviceCollection.Conditions.CreateCondition(r.Context(), &req)
	if err != nil {
		c.handleServiceError(w, r, err, "create condition")
		return
	}

	c.responseBuilder.WriteCreated(w, r, condition)
}

// UpdateThreshold handles PATCH /api/v1/achievements/conditions/{id}/threshold
// @Summary Update condition threshold
// @Tags Conditions
// @Accept json
// @Produce json
// @Param id path int true "Condition ID"
// @Param request body services.UpdateThresholdRequest true "Request body"
// @Success 200 {object} response.APIResponse{data=models.Condition} "Updated"
// @Failure 400 {object} response.APIResponse "Validation error"
// @Failure 404 {object} response.APIResponse "Not found"
// @Router /achievements/conditions/{id}/threshold [patch]
func (c *AchievementController) UpdateThreshold(w http.ResponseWriter, r *http.Request) {
	var req services.UpdateThresholdRequest
	if !c.decodeWithID(w, r, &req, &req.ConditionID) {
		return
	}
	c.writeCondition(w, r, "update threshold")(c.serviceCollection.Conditions.UpdateThreshold(r.Context(), &req))
}

// UpdateConditionType handles PATCH /api/v1/achievements/conditions/{id}/type
// @Summary Update condition type
// @Tags Conditions
// @Accept json
// @Produce json
// @Param id path int true "Condition ID"
// @Param request body services.UpdateConditionTypeRequest true "Request body"
// @Success 200 {object} response.APIResponse{data=models.Condition} "Updated"
// @Failure 400 {object} response.APIResponse "Validation error"
// @Failure 404 {object} response.APIResponse "Not found"
// @Router /achievements/conditions/{id}/type [patch]
func (c *AchievementController) UpdateConditionType(w http.ResponseWriter, r *http.Request) {
	var req services.UpdateConditionTypeRequest
	if !c.decodeWithID(w, r, &req, &req.ConditionID) {
		return
	}
	c.writeCondition(w, r, "update condition type")(c.serviceCollection.Conditions.UpdateType(r.Context(), &req))
}

func (c *AchievementController) writeCondition(w http.ResponseWriter, r *http.Request, operation string) func(*models.Condition, error) {
	return func(condition *models.Condition, err error) {
		if err != nil {
			c.handleServiceError(w, r, err, operation)
			return
		}
		c.responseBuilder.WriteSuccess(w, r, condition)
	}
}

// ===============================
// CONDITION TYPES
// ===============================

// ListConditionTypes handles GET /api/v1/achievements/condition-types
// @Summary List condition types
// @Tags Conditions
// @Produce json
// @Success 200 {object} response.APIResponse{data=[]models.ConditionTypeInfo} "Condition types"
// @Router /achievements/condition-types [get]
func (c *AchievementController) ListConditionTypes(w http.ResponseWriter, r *http.Request) {
	types, err := c.serviceCollection.Conditions.ListConditionTypes(r.Context())
	if err != nil {
		c.handleServiceError(w, r, err, "list condition types")
		return
	}
	writeList(c.responseBuilder, w, r, types)
}

// GetConditionType handles GET /api/v1/achievements/condition-types/{id}
// @Summary Get condition type
// @Tags Conditions
// @Produce json
// @Param id path int true "Condition type ID"
// @Success 200 {object} response.APIResponse{data=models.ConditionTypeInfo} "Condition type"
// @Failure 404 {object} response.APIResponse "Not found"
// @Router /achievements/condition-types/{id} [get]
func (c *AchievementController) GetConditionType(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	conditionType, err := c.serviceCollection.Conditions.GetConditionType(r.Context(), id)
	if err != nil {
		c.handleServiceError(w, r, err, "get condition type")
		return
	}
	c.responseBuilder.WriteSuccess(w, r, conditionType)
}
