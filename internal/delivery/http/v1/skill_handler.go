package v1

import (
	"net/http"

	"fursa-backend/internal/delivery/http/response"
	"fursa-backend/internal/domain"
	"fursa-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type SkillHandler struct {
	skillUC domain.SkillUsecase
}

func NewSkillHandler(public *gin.RouterGroup, protected *gin.RouterGroup, skillUC domain.SkillUsecase) {
	handler := &SkillHandler{skillUC: skillUC}

	publicSkills := public.Group("/skills")
	{
		publicSkills.GET("/", handler.List)
		publicSkills.GET("/:id/", handler.Get)
	}

	protectedSkills := protected.Group("/skills")
	{
		protectedSkills.POST("/", handler.Create)
		protectedSkills.PUT("/:id/", handler.Update)
		protectedSkills.PATCH("/:id/", handler.Update)
		protectedSkills.DELETE("/:id/", handler.Delete)
	}
}

// List godoc
// @Summary      List skills
// @Tags         skills
// @Produce      json
// @Success      200  {object}  response.Response{data=[]domain.Skill}
// @Router       /skills/ [get]
func (h *SkillHandler) List(c *gin.Context) {
	skills, err := h.skillUC.List(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Skills retrieved", skills)
}

// Get godoc
// @Summary      Get a skill
// @Tags         skills
// @Produce      json
// @Param        id   path      int  true  "Skill ID"
// @Success      200  {object}  response.Response{data=domain.Skill}
// @Failure      404  {object}  response.Response
// @Router       /skills/{id}/ [get]
func (h *SkillHandler) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	skill, err := h.skillUC.Get(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Skill retrieved", skill)
}

// Create godoc
// @Summary      Create a skill
// @Tags         skills
// @Accept       json
// @Produce      json
// @Param        body  body      domain.SkillInput  true  "Skill"
// @Success      201   {object}  response.Response{data=domain.Skill}
// @Failure      400   {object}  response.Response
// @Failure      401   {object}  response.Response
// @Router       /skills/ [post]
// @Security     BearerAuth
func (h *SkillHandler) Create(c *gin.Context) {
	var req domain.SkillInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest("Invalid request body"))
		return
	}

	skill, err := h.skillUC.Create(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, "Skill created", skill)
}

// Update godoc
// @Summary      Rename a skill
// @Tags         skills
// @Accept       json
// @Produce      json
// @Param        id    path      int                true  "Skill ID"
// @Param        body  body      domain.SkillInput  true  "Skill"
// @Success      200   {object}  response.Response{data=domain.Skill}
// @Failure      400   {object}  response.Response
// @Failure      401   {object}  response.Response
// @Failure      404   {object}  response.Response
// @Router       /skills/{id}/ [put]
// @Security     BearerAuth
func (h *SkillHandler) Update(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req domain.SkillInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest("Invalid request body"))
		return
	}

	skill, err := h.skillUC.Update(c.Request.Context(), id, req)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Skill updated", skill)
}

// Delete godoc
// @Summary      Delete a skill
// @Description  Detaches the skill from every profile
// @Tags         skills
// @Param        id   path  int  true  "Skill ID"
// @Success      204
// @Failure      401  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /skills/{id}/ [delete]
// @Security     BearerAuth
func (h *SkillHandler) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := h.skillUC.Delete(c.Request.Context(), id); err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}
