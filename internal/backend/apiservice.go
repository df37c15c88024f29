package backend

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jo-hoe/gallery/internal/common"
	"github.com/jo-hoe/gallery/internal/core"
	"github.com/labstack/echo/v4"
)

const (
	ProbeMessage = "Hello Hono!"

	msgImageNotFound   = "Image not found"
	msgNoFileUploaded  = "No file uploaded"
	msgInvalidFormData = "Invalid form data"
	msgInternalError   = "Internal server error"

	mimeOctetStream = "application/octet-stream"
)

// uploadContentTypes maps served upload extensions to content types; anything else is octet-stream.
var uploadContentTypes = map[string]string{
	".html": "text/html; charset=utf-8",
	".js":   "application/javascript",
	".css":  "text/css",
	".json": "application/json",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
}

type errorResponse struct {
	Error string `json:"error"`
}

type APIService struct {
	coreService *core.CoreService
	uploadRoot  string
}

func NewAPIService(coreService *core.CoreService, uploadRoot string) *APIService {
	return &APIService{
		coreService: coreService,
		uploadRoot:  uploadRoot,
	}
}

func (s *APIService) SetRoutes(e *echo.Echo) {
	// Set probe route
	e.GET("/", s.probeHandler)

	e.GET("/images", s.listImagesHandler)
	e.GET("/images/:id", s.getImageHandler)
	e.POST("/images", s.createImageHandler)

	e.GET("/upload/*", s.uploadedFileHandler)
}

func (s *APIService) probeHandler(ctx echo.Context) error {
	return ctx.String(http.StatusOK, ProbeMessage)
}

func (s *APIService) listImagesHandler(ctx echo.Context) error {
	images, err := s.coreService.ListImages(ctx.Request().Context())
	if err != nil {
		slog.Error("listImagesHandler: failed to list images",
			"status", http.StatusInternalServerError, "kind", common.KindOf(err), "error", err,
			"request_id", requestID(ctx))
		return ctx.JSON(http.StatusInternalServerError, errorResponse{Error: msgInternalError})
	}
	return ctx.JSON(http.StatusOK, images)
}

func (s *APIService) getImageHandler(ctx echo.Context) error {
	// a non-numeric id can never match a row, so it is answered like any other miss
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		return ctx.String(http.StatusNotFound, msgImageNotFound)
	}

	image, err := s.coreService.GetImageByID(ctx.Request().Context(), id)
	if err != nil {
		slog.Error("getImageHandler: failed to get image",
			"status", http.StatusInternalServerError, "kind", common.KindOf(err), "error", err,
			"image_id", id, "request_id", requestID(ctx))
		return ctx.JSON(http.StatusInternalServerError, errorResponse{Error: msgInternalError})
	}
	if image == nil {
		return ctx.String(http.StatusNotFound, msgImageNotFound)
	}
	return ctx.JSON(http.StatusOK, image)
}

// createImageHandler answers every failure after the file check with the same client-facing body;
// the cause and its kind only go to the log.
func (s *APIService) createImageHandler(ctx echo.Context) error {
	form, err := ctx.MultipartForm()
	// bodies that are not multipart at all (urlencoded, empty, json) carry no file part
	if errors.Is(err, http.ErrNotMultipart) || errors.Is(err, http.ErrMissingBoundary) {
		return s.noFileUploaded(ctx, ctx.FormValue("title"))
	}
	if err != nil {
		return s.invalidFormData(ctx, common.E(common.KindMalformedRequest, "parse multipart form", err), "")
	}

	title := ""
	if values := form.Value["title"]; len(values) > 0 {
		title = values[0]
	}

	files := form.File["file"]
	if len(files) == 0 {
		return s.noFileUploaded(ctx, title)
	}
	file := files[0]

	data, err := common.ReadUpload(file)
	if err != nil {
		return s.invalidFormData(ctx, err, file.Filename)
	}

	image, err := s.coreService.AddImage(ctx.Request().Context(), title, file.Filename, data)
	if err != nil {
		return s.invalidFormData(ctx, err, file.Filename)
	}
	return ctx.JSON(http.StatusOK, image)
}

func (s *APIService) noFileUploaded(ctx echo.Context, title string) error {
	slog.Warn("createImageHandler: no file uploaded",
		"status", http.StatusBadRequest, "kind", common.KindValidation, "title", title, "request_id", requestID(ctx))
	return ctx.JSON(http.StatusBadRequest, errorResponse{Error: msgNoFileUploaded})
}

// invalidFormData logs client-side parse failures as warnings and everything else as errors.
func (s *APIService) invalidFormData(ctx echo.Context, err error, filename string) error {
	level := slog.LevelError
	if common.IsKind(err, common.KindMalformedRequest) {
		level = slog.LevelWarn
	}
	slog.Log(ctx.Request().Context(), level, "createImageHandler: failed to create image",
		"status", http.StatusBadRequest, "kind", common.KindOf(err), "error", err,
		"filename", filename, "request_id", requestID(ctx))
	return ctx.JSON(http.StatusBadRequest, errorResponse{Error: msgInvalidFormData})
}

func (s *APIService) uploadedFileHandler(ctx echo.Context) error {
	// the router matches on the decoded path unless the request needed a raw one
	name := ctx.Param("*")
	if ctx.Request().URL.RawPath != "" {
		unescaped, err := url.PathUnescape(name)
		if err != nil {
			return echo.ErrNotFound
		}
		name = unescaped
	}
	// Clean against "/" so the result can never climb out of the upload root
	filePath := filepath.Join(s.uploadRoot, filepath.FromSlash(path.Clean("/"+name)))

	file, err := os.Open(filePath)
	if err != nil {
		return echo.ErrNotFound
	}
	defer func() {
		_ = file.Close()
	}()

	info, err := file.Stat()
	if err != nil || info.IsDir() {
		return echo.ErrNotFound
	}

	ctx.Response().Header().Set(echo.HeaderContentType, contentTypeFor(info.Name()))
	http.ServeContent(ctx.Response(), ctx.Request(), info.Name(), info.ModTime(), file)
	return nil
}

func contentTypeFor(filename string) string {
	if contentType, ok := uploadContentTypes[strings.ToLower(filepath.Ext(filename))]; ok {
		return contentType
	}
	return mimeOctetStream
}

func requestID(ctx echo.Context) string {
	return ctx.Response().Header().Get(echo.HeaderXRequestID)
}
