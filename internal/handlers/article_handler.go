package handlers

import (
	"log"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/newswire/backend/internal/broadcast"
	"github.com/newswire/backend/internal/middleware"
	"github.com/newswire/backend/internal/models"
	"github.com/newswire/backend/internal/repositories"
	"github.com/newswire/backend/internal/storage"
)

// ArticleHandler handles HTTP requests related to articles
type ArticleHandler struct {
	articleRepository repositories.ArticleRepository
	userRepository    repositories.UserRepository
	publisher         broadcast.Publisher
	uploads           *storage.UploadStore
}

// NewArticleHandler creates a new ArticleHandler
func NewArticleHandler(articleRepo repositories.ArticleRepository, userRepo repositories.UserRepository, publisher broadcast.Publisher, uploads *storage.UploadStore) *ArticleHandler {
	return &ArticleHandler{
		articleRepository: articleRepo,
		userRepository:    userRepo,
		publisher:         publisher,
		uploads:           uploads,
	}
}

// RegisterPublicRoutes registers the unauthenticated read routes
func (h *ArticleHandler) RegisterPublicRoutes(g *echo.Group) {
	g.GET("/news", h.GetArticles)
	g.GET("/news/:id", h.GetArticle)
}

// RegisterProtectedRoutes registers the mutation routes (bearer token required)
func (h *ArticleHandler) RegisterProtectedRoutes(g *echo.Group) {
	g.POST("/news", h.CreateArticle)
	g.PUT("/news/:id", h.UpdateArticle)
	g.DELETE("/news/:id", h.DeleteArticle)
}

// CreateArticle creates a new article owned by the caller and broadcasts a
// newsCreated event.
func (h *ArticleHandler) CreateArticle(c echo.Context) error {
	userID := middleware.UserIDFromContext(c)
	if userID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	patch, err := h.bindPatch(c)
	if err != nil {
		return err
	}

	if patch.Title == "" || patch.Content == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Title and content are required")
	}

	article := &models.Article{
		Title:    patch.Title,
		Content:  patch.Content,
		AuthorID: userID,
		Image:    patch.Image,
		Files:    patch.NewFiles,
	}
	if article.Files == nil {
		article.Files = []string{}
	}
	if patch.IsPublished != nil {
		article.IsPublished = *patch.IsPublished
	}

	if err := h.articleRepository.CreateArticle(c.Request().Context(), article); err != nil {
		h.removeSavedUploads(patch)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create article")
	}

	h.publisher.Publish(models.Event{
		Kind:      models.EventNewsCreated,
		ArticleID: article.ID.Hex(),
		Title:     article.Title,
		Timestamp: time.Now(),
	})

	return c.JSON(http.StatusCreated, article)
}

// UpdateArticle applies a partial update to an article the caller owns and
// broadcasts a newsUpdated event. Empty title or content means "leave the
// stored value", not "clear it".
func (h *ArticleHandler) UpdateArticle(c echo.Context) error {
	userID := middleware.UserIDFromContext(c)
	if userID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	article, err := h.articleRepository.GetArticleByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		if err == repositories.ErrArticleNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Article not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load article")
	}
	if article.AuthorID != userID {
		return echo.NewHTTPError(http.StatusForbidden, "You are not the author of this article")
	}

	patch, err := h.bindPatch(c)
	if err != nil {
		return err
	}

	if patch.Title != "" {
		article.Title = patch.Title
	}
	if patch.Content != "" {
		article.Content = patch.Content
	}
	if patch.IsPublished != nil {
		article.IsPublished = *patch.IsPublished
	}
	if patch.Image != nil {
		article.Image = patch.Image
	}
	// The final attachment list is the retained references plus the new
	// uploads; a request that never mentions files leaves the list alone.
	if patch.HasFiles {
		files := append([]string{}, patch.ExistingFiles...)
		files = append(files, patch.NewFiles...)
		article.Files = files
	}

	if err := h.articleRepository.UpdateArticle(c.Request().Context(), c.Param("id"), article); err != nil {
		h.removeSavedUploads(patch)
		if err == repositories.ErrArticleNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Article not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update article")
	}

	h.publisher.Publish(models.Event{
		Kind:      models.EventNewsUpdated,
		ArticleID: article.ID.Hex(),
		Title:     article.Title,
		Timestamp: time.Now(),
	})

	return c.JSON(http.StatusOK, article)
}

// DeleteArticle removes an article the caller owns and broadcasts a
// newsDeleted event carrying only the id.
func (h *ArticleHandler) DeleteArticle(c echo.Context) error {
	userID := middleware.UserIDFromContext(c)
	if userID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	article, err := h.articleRepository.GetArticleByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		if err == repositories.ErrArticleNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Article not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load article")
	}
	if article.AuthorID != userID {
		return echo.NewHTTPError(http.StatusForbidden, "You are not the author of this article")
	}

	if err := h.articleRepository.DeleteArticle(c.Request().Context(), c.Param("id")); err != nil {
		if err == repositories.ErrArticleNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Article not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete article")
	}

	h.publisher.Publish(models.Event{
		Kind:      models.EventNewsDeleted,
		ArticleID: article.ID.Hex(),
		Timestamp: time.Now(),
	})

	return c.JSON(http.StatusOK, echo.Map{"message": "Article deleted"})
}

// GetArticles returns all articles with their authors resolved
func (h *ArticleHandler) GetArticles(c echo.Context) error {
	articles, err := h.articleRepository.GetAllArticles(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load articles")
	}

	return c.JSON(http.StatusOK, h.resolveAuthors(articles))
}

// GetArticle returns a single article with its author resolved
func (h *ArticleHandler) GetArticle(c echo.Context) error {
	article, err := h.articleRepository.GetArticleByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		if err == repositories.ErrArticleNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Article not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load article")
	}

	resolved := h.resolveAuthors([]models.Article{*article})
	return c.JSON(http.StatusOK, resolved[0])
}

// removeSavedUploads deletes the files a failed mutation already wrote, so a
// store failure does not orphan them on disk.
func (h *ArticleHandler) removeSavedUploads(patch *models.ArticlePatch) {
	h.uploads.Remove(patch.NewFiles...)
	if patch.Image != nil {
		h.uploads.Remove(*patch.Image)
	}
}

// resolveAuthors attaches the public author projection to each article,
// caching user lookups per request.
func (h *ArticleHandler) resolveAuthors(articles []models.Article) []models.ArticleResponse {
	resolved := make([]models.ArticleResponse, len(articles))
	userCache := make(map[uint]models.UserCompact)

	for i, a := range articles {
		resolved[i] = models.ArticleResponse{Article: a}
		if author, ok := userCache[a.AuthorID]; ok {
			resolved[i].Author = author
			continue
		}
		user, err := h.userRepository.GetUserByID(a.AuthorID)
		if err != nil {
			log.Printf("Failed to resolve author %d for article %s: %v", a.AuthorID, a.ID.Hex(), err)
			continue
		}
		compact := user.ToCompact()
		userCache[a.AuthorID] = compact
		resolved[i].Author = compact
	}
	return resolved
}

// createArticleJSON is the JSON body shape for mutations without uploads.
// Pointer fields distinguish "absent" from the zero value.
type createArticleJSON struct {
	Title         string    `json:"title"`
	Content       string    `json:"content"`
	IsPublished   *bool     `json:"isPublished"`
	ExistingFiles *[]string `json:"existingFiles"`
}

// bindPatch extracts an ArticlePatch from a multipart or JSON request. All
// uploads are validated before any byte is written, so a rejected request
// never leaves partial files behind.
func (h *ArticleHandler) bindPatch(c echo.Context) (*models.ArticlePatch, error) {
	contentType := c.Request().Header.Get(echo.HeaderContentType)
	if strings.HasPrefix(contentType, echo.MIMEMultipartForm) {
		return h.bindMultipartPatch(c)
	}

	var req createArticleJSON
	if err := c.Bind(&req); err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	patch := &models.ArticlePatch{
		Title:       req.Title,
		Content:     req.Content,
		IsPublished: req.IsPublished,
	}
	if req.ExistingFiles != nil {
		patch.ExistingFiles = *req.ExistingFiles
		patch.HasFiles = true
	}
	return patch, nil
}

func (h *ArticleHandler) bindMultipartPatch(c echo.Context) (*models.ArticlePatch, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "Invalid multipart form")
	}

	patch := &models.ArticlePatch{
		Title:   c.FormValue("title"),
		Content: c.FormValue("content"),
	}

	if values, ok := form.Value["isPublished"]; ok && len(values) > 0 {
		published := values[0] == "true"
		patch.IsPublished = &published
	}
	if retained, ok := form.Value["existingFiles"]; ok {
		patch.ExistingFiles = retained
		patch.HasFiles = true
	}

	var image *multipart.FileHeader
	if headers, ok := form.File["image"]; ok && len(headers) > 0 {
		image = headers[0]
	}
	attachments := form.File["files"]

	if err := h.uploads.Validate(image, attachments); err != nil {
		switch err {
		case storage.ErrFileTooLarge:
			return nil, echo.NewHTTPError(http.StatusRequestEntityTooLarge, "File exceeds the maximum allowed size")
		default:
			return nil, echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}

	if image != nil {
		path, err := h.uploads.Save(image)
		if err != nil {
			return nil, echo.NewHTTPError(http.StatusInternalServerError, "Failed to store image")
		}
		patch.Image = &path
	}
	if len(attachments) > 0 {
		paths, err := h.uploads.SaveAll(attachments)
		if err != nil {
			return nil, echo.NewHTTPError(http.StatusInternalServerError, "Failed to store attachments")
		}
		patch.NewFiles = paths
		patch.HasFiles = true
	}

	return patch, nil
}
