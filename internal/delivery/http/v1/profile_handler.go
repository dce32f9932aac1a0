package v1

import (
	"mime/multipart"
	"net/http"
	"strings"

	"fursa-backend/internal/delivery/http/response"
	"fursa-backend/internal/domain"
	"fursa-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type ProfileHandler struct {
	profileUC domain.ProfileUsecase
}

func NewProfileHandler(protected *gin.RouterGroup, profileUC domain.ProfileUsecase) {
	handler := &ProfileHandler{profileUC: profileUC}

	profiles := protected.Group("/profiles")
	{
		profiles.GET("/", handler.List)
		profiles.POST("/upload/", handler.UploadImage)
		profiles.GET("/:id/", handler.Get)
		profiles.PUT("/:id/", handler.Replace)
		profiles.PATCH("/:id/", handler.Patch)
	}
}

// ProfileRequest is the JSON form of a profile update. Files require multipart.
type ProfileRequest struct {
	Name   *string   `json:"name"`
	Bio    *string   `json:"bio"`
	Skills *[]string `json:"skills"`
}

type UploadImageResponse struct {
	ProfileImage string `json:"profile_image"`
}

// List godoc
// @Summary      List own profile
// @Description  Returns a one-element list with the caller's profile
// @Tags         profiles
// @Produce      json
// @Success      200  {object}  response.Response{data=[]domain.Profile}
// @Failure      401  {object}  response.Response
// @Router       /profiles/ [get]
// @Security     BearerAuth
func (h *ProfileHandler) List(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	profiles, err := h.profileUC.ListOwn(c.Request.Context(), userID)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Profiles retrieved", profiles)
}

// Get godoc
// @Summary      Get own profile
// @Tags         profiles
// @Produce      json
// @Param        id   path      int  true  "Profile ID"
// @Success      200  {object}  response.Response{data=domain.Profile}
// @Failure      401  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /profiles/{id}/ [get]
// @Security     BearerAuth
func (h *ProfileHandler) Get(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	profile, err := h.profileUC.GetOwn(c.Request.Context(), userID, id)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Profile retrieved", profile)
}

// Replace godoc
// @Summary      Update own profile
// @Description  Full update; name is required. Accepts JSON or multipart (profile_image, resume files)
// @Tags         profiles
// @Accept       json,mpfd
// @Produce      json
// @Param        id    path      int             true  "Profile ID"
// @Param        body  body      ProfileRequest  true  "Profile fields"
// @Success      200   {object}  response.Response{data=domain.Profile}
// @Failure      400   {object}  response.Response
// @Failure      401   {object}  response.Response
// @Failure      404   {object}  response.Response
// @Router       /profiles/{id}/ [put]
// @Security     BearerAuth
func (h *ProfileHandler) Replace(c *gin.Context) {
	h.update(c, true)
}

// Patch godoc
// @Summary      Partially update own profile
// @Description  Only supplied fields change. Skills, when supplied, replace the whole set
// @Tags         profiles
// @Accept       json,mpfd
// @Produce      json
// @Param        id    path      int             true  "Profile ID"
// @Param        body  body      ProfileRequest  true  "Profile fields"
// @Success      200   {object}  response.Response{data=domain.Profile}
// @Failure      400   {object}  response.Response
// @Failure      401   {object}  response.Response
// @Failure      404   {object}  response.Response
// @Router       /profiles/{id}/ [patch]
// @Security     BearerAuth
func (h *ProfileHandler) Patch(c *gin.Context) {
	h.update(c, false)
}

func (h *ProfileHandler) update(c *gin.Context, full bool) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	in, err := bindProfileUpdate(c)
	if err != nil {
		c.Error(err)
		return
	}

	profile, err := h.profileUC.Update(c.Request.Context(), userID, id, in, full)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Profile updated", profile)
}

func bindProfileUpdate(c *gin.Context) (domain.ProfileUpdate, error) {
	var in domain.ProfileUpdate

	if !isMultipart(c) {
		var req ProfileRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			return in, apperror.BadRequest("Invalid request body")
		}
		in.Name, in.Bio, in.Skills = req.Name, req.Bio, req.Skills
		return in, nil
	}

	in.Name = formValue(c, "name")
	in.Bio = formValue(c, "bio")
	if values, ok := c.GetPostFormArray("skills"); ok {
		skills := splitSkills(values)
		in.Skills = &skills
	}

	var err error
	if in.ProfileImage, err = formFile(c, "profile_image"); err != nil {
		return in, err
	}
	if in.Resume, err = formFile(c, "resume"); err != nil {
		return in, err
	}
	return in, nil
}

// splitSkills accepts repeated form fields as well as one comma separated value.
func splitSkills(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

// UploadImage godoc
// @Summary      Upload profile image
// @Description  Stores the image (compressed to JPEG) and replaces the current one
// @Tags         profiles
// @Accept       mpfd
// @Produce      json
// @Param        profileImage  formData  file  true  "Image file"
// @Success      200  {object}  response.Response{data=UploadImageResponse}
// @Failure      400  {object}  response.Response
// @Failure      401  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Failure      429  {object}  response.Response
// @Router       /profiles/upload/ [post]
// @Security     BearerAuth
func (h *ProfileHandler) UploadImage(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var fh *multipart.FileHeader
	if isMultipart(c) {
		var err error
		if fh, err = formFile(c, "profileImage"); err != nil {
			c.Error(err)
			return
		}
	}

	ref, err := h.profileUC.UploadImage(c.Request.Context(), userID, fh)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Profile image uploaded successfully.", UploadImageResponse{ProfileImage: ref})
}
