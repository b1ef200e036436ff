// File: internal/handlers/post_handler.go
package handlers

import (
	"net/http"

	"github.com/iyunix/go-linksports/internal/domain"
	"github.com/iyunix/go-linksports/internal/dtos"
	"github.com/iyunix/go-linksports/internal/repository"
	"github.com/iyunix/go-linksports/internal/services/social_services"
)

type PostHandler struct {
	posts  *social_services.PostService
	logger Logger
}

func NewPostHandler(posts *social_services.PostService, logger Logger) *PostHandler {
	return &PostHandler{posts: posts, logger: logger}
}

func (h *PostHandler) Feed(w http.ResponseWriter, r *http.Request) {
	page, perPage := pageParams(r)
	views, total, err := h.posts.Feed(r.Context(), currentUser(r).ID, page, perPage)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	perPage, _ = repository.Page(page, perPage, social_services.DefaultPerPage, social_services.MaxPerPage)
	respondPaged(w, dtos.FromPostViews(views), page, perPage, total)
}

func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dtos.CreatePostRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	view, err := h.posts.Create(r.Context(), currentUser(r).ID, req.Content, domain.PostVisibility(req.Visibility))
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondSuccess(w, http.StatusCreated, dtos.FromPostView(*view), "Post created")
}

func (h *PostHandler) Show(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	view, err := h.posts.Get(r.Context(), currentUser(r).ID, id)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondSuccess(w, http.StatusOK, dtos.FromPostView(*view), "")
}

func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	if err := h.posts.Delete(r.Context(), currentUser(r).ID, id); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondSuccess(w, http.StatusOK, nil, "Post deleted")
}

func (h *PostHandler) Like(w http.ResponseWriter, r *http.Request) {
	h.toggleLike(w, r, true)
}

func (h *PostHandler) Unlike(w http.ResponseWriter, r *http.Request) {
	h.toggleLike(w, r, false)
}

func (h *PostHandler) toggleLike(w http.ResponseWriter, r *http.Request, like bool) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	viewer := currentUser(r).ID
	var count int
	if like {
		count, err = h.posts.Like(r.Context(), viewer, id)
	} else {
		count, err = h.posts.Unlike(r.Context(), viewer, id)
	}
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondSuccess(w, http.StatusOK, dtos.LikeResponse{PostID: id, LikesCount: count, Liked: like}, "")
}

func (h *PostHandler) Comments(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	page, perPage := pageParams(r)
	comments, total, err := h.posts.ListComments(r.Context(), currentUser(r).ID, id, page, perPage)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	perPage, _ = repository.Page(page, perPage, social_services.DefaultPerPage, social_services.MaxPerPage)
	respondPaged(w, dtos.FromComments(comments), page, perPage, total)
}

func (h *PostHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	var req dtos.CreateCommentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	comment, err := h.posts.AddComment(r.Context(), currentUser(r).ID, id, req.Content)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondSuccess(w, http.StatusCreated, dtos.FromComment(*comment), "Comment added")
}
