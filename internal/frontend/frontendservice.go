package frontend

import (
	"html/template"
	"log/slog"
	"net/http"

	"github.com/jo-hoe/gallery/internal/backend/database"
	"github.com/jo-hoe/gallery/internal/common"
	"github.com/jo-hoe/gallery/internal/core"
	"github.com/labstack/echo/v4"
)

const (
	MainPageName = "index.html"
	GalleryRoute = "/gallery"
)

type FrontendService struct {
	coreService *core.CoreService
}

type indexPage struct {
	Images []*database.Image
}

type uploadForm struct {
	Title string `form:"title" validate:"max=200"`
}

func NewFrontendService(coreService *core.CoreService) *FrontendService {
	return &FrontendService{
		coreService: coreService,
	}
}

func (service *FrontendService) SetRoutes(e *echo.Echo) {
	// Create template renderer
	e.Renderer = &Template{
		templates: template.Must(template.New("").ParseFS(templateFS, viewsPattern)),
	}

	e.GET(GalleryRoute, service.indexHandler)
	e.POST(GalleryRoute+"/upload", service.uploadImageHandler)
}

func (service *FrontendService) indexHandler(ctx echo.Context) error {
	images, err := service.coreService.ListImages(ctx.Request().Context())
	if err != nil {
		slog.Error("indexHandler: failed to list images",
			"status", http.StatusInternalServerError, "kind", common.KindOf(err), "error", err)
		return ctx.String(http.StatusInternalServerError, "Failed to list images")
	}

	// Prevent caching so the latest images are always shown
	service.setNoCache(ctx)

	return ctx.Render(http.StatusOK, MainPageName, indexPage{Images: images})
}

func (service *FrontendService) uploadImageHandler(ctx echo.Context) error {
	var form uploadForm
	if err := ctx.Bind(&form); err != nil {
		slog.Warn("uploadImageHandler: failed to parse form", "status", http.StatusBadRequest, "error", err)
		return ctx.String(http.StatusBadRequest, "Invalid form data")
	}
	if err := ctx.Validate(&form); err != nil {
		slog.Warn("uploadImageHandler: invalid form", "status", http.StatusBadRequest, "error", err)
		return ctx.String(http.StatusBadRequest, "Title must be at most 200 characters")
	}

	// Get uploaded file
	file, err := ctx.FormFile("file")
	if err != nil {
		slog.Warn("uploadImageHandler: failed to get uploaded file",
			"status", http.StatusBadRequest, "error", err)
		return ctx.String(http.StatusBadRequest, "No file uploaded")
	}

	data, err := common.ReadUpload(file)
	if err != nil {
		slog.Error("uploadImageHandler: failed to read uploaded file",
			"status", http.StatusBadRequest, "kind", common.KindOf(err), "error", err, "filename", file.Filename)
		return ctx.String(http.StatusBadRequest, "Invalid form data")
	}

	if _, err := service.coreService.AddImage(ctx.Request().Context(), form.Title, file.Filename, data); err != nil {
		slog.Error("uploadImageHandler: failed to store uploaded image",
			"status", http.StatusBadRequest, "kind", common.KindOf(err), "error", err, "filename", file.Filename)
		return ctx.String(http.StatusBadRequest, "Invalid form data")
	}

	return ctx.Redirect(http.StatusSeeOther, GalleryRoute)
}

func (service *FrontendService) setNoCache(ctx echo.Context) {
	ctx.Response().Header().Set("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
	ctx.Response().Header().Set("Pragma", "no-cache")
	ctx.Response().Header().Set("Expires", "0")
}
