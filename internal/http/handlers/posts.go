package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/geocoder89/blogspace/internal/authz"
	"github.com/geocoder89/blogspace/internal/domain/post"
	"github.com/geocoder89/blogspace/internal/http/middlewares"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type PostsRepository interface {
	List(ctx context.Context) ([]post.Summary, error)
	Search(ctx context.Context, term string) ([]post.Summary, error)
	GetByID(ctx context.Context, id string) (post.Post, error)
	Create(ctx context.Context, in post.CreateInput) (post.Post, error)
	Update(ctx context.Context, id string, fields post.UpdateFields) (post.Post, error)
	Delete(ctx context.Context, id string) (bool, error)
}

type PostsHandler struct {
	repo PostsRepository
}

func NewPostsHandler(repo PostsRepository) *PostsHandler {
	return &PostsHandler{repo: repo}
}

const storeTimeout = 3 * time.Second

func (h *PostsHandler) ListPosts(ctx *gin.Context) {
	cctx, cancel := context.WithTimeout(ctx.Request.Context(), storeTimeout)
	defer cancel()

	var (
		items []post.Summary
		err   error
	)

	if term := strings.TrimSpace(ctx.Query("search")); term != "" {
		items, err = h.repo.Search(cctx, term)
	} else {
		items, err = h.repo.List(cctx)
	}

	if err != nil {
		RespondInternal(ctx, "Could not list posts", err)
		return
	}

	// an empty feed is [] rather than null
	if items == nil {
		items = []post.Summary{}
	}

	RespondJSONWithETag(ctx, http.StatusOK, items)
}

func (h *PostsHandler) CreatePost(ctx *gin.Context) {
	var req post.CreatePostRequest

	if !BindJSON(ctx, &req) {
		return
	}

	caller, ok := middlewares.IdentityFromContext(ctx)
	if !ok {
		RespondUnauthorized(ctx, "unauthorized", "Sign in to create a post")
		return
	}

	if !ValidateStruct(ctx, &req) {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), storeTimeout)
	defer cancel()

	created, err := h.repo.Create(cctx, req.ToCreateInput(caller.ID, caller.Name))
	if err != nil {
		RespondInternal(ctx, "Could not create post", err)
		return
	}

	ctx.JSON(http.StatusCreated, created)
}

func (h *PostsHandler) GetPost(ctx *gin.Context) {
	id, ok := postIDParam(ctx)
	if !ok {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), storeTimeout)
	defer cancel()

	p, err := h.repo.GetByID(cctx, id)
	if err != nil {
		h.respondLookupError(ctx, err, "Could not fetch post")
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, p)
}

func (h *PostsHandler) UpdatePost(ctx *gin.Context) {
	id, ok := postIDParam(ctx)
	if !ok {
		return
	}

	var req post.UpdatePostRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), storeTimeout)
	defer cancel()

	if _, ok := h.authorizeMutation(cctx, ctx, id, "edit"); !ok {
		return
	}

	if !ValidateStruct(ctx, &req) {
		return
	}

	fields := req.ToUpdateFields()
	if fields.Empty() {
		RespondBadRequest(ctx, "Nothing to update", gin.H{"fields": []string{"title", "content", "image"}})
		return
	}

	updated, err := h.repo.Update(cctx, id, fields)
	if err != nil {
		h.respondLookupError(ctx, err, "Could not update post")
		return
	}

	ctx.JSON(http.StatusOK, updated)
}

func (h *PostsHandler) DeletePost(ctx *gin.Context) {
	id, ok := postIDParam(ctx)
	if !ok {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), storeTimeout)
	defer cancel()

	if _, ok := h.authorizeMutation(cctx, ctx, id, "delete"); !ok {
		return
	}

	if _, err := h.repo.Delete(cctx, id); err != nil {
		h.respondLookupError(ctx, err, "Could not delete post")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Post deleted successfully"})
}

// authorizeMutation loads the post and checks the caller owns it. It writes
// the 401/403/404 response itself.
func (h *PostsHandler) authorizeMutation(cctx context.Context, ctx *gin.Context, id, verb string) (post.Post, bool) {
	caller, ok := middlewares.IdentityFromContext(ctx)
	if !ok {
		RespondUnauthorized(ctx, "unauthorized", "Sign in to "+verb+" a post")
		return post.Post{}, false
	}

	existing, err := h.repo.GetByID(cctx, id)
	if err != nil {
		h.respondLookupError(ctx, err, "Could not fetch post")
		return post.Post{}, false
	}

	if !authz.CanMutate(existing, caller) {
		RespondForbidden(ctx, "You can only "+verb+" your own posts")
		return post.Post{}, false
	}

	return existing, true
}

func (h *PostsHandler) respondLookupError(ctx *gin.Context, err error, message string) {
	switch {
	case errors.Is(err, post.ErrNotFound):
		RespondNotFound(ctx, "Post not found")
	case errors.Is(err, post.ErrInvalidID):
		RespondInvalidID(ctx, "Post id must be a UUID")
	default:
		RespondInternal(ctx, message, err)
	}
}

// RequirePostID answers 400 for a malformed :id before later middleware
// (content type, body size) gets a say.
func RequirePostID(ctx *gin.Context) {
	if _, ok := postIDParam(ctx); !ok {
		ctx.Abort()
		return
	}
	ctx.Next()
}

func postIDParam(ctx *gin.Context) (string, bool) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		RespondInvalidID(ctx, "Post id must be a UUID")
		return "", false
	}
	return id.String(), true
}

