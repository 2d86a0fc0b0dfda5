package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/agriclinic/agri-clinic-hub/internal/domain"
	"github.com/agriclinic/agri-clinic-hub/internal/http/middleware"
	"github.com/agriclinic/agri-clinic-hub/internal/http/response"
	"github.com/agriclinic/agri-clinic-hub/internal/service"
)

type ArticlesHandler struct {
	articles service.ArticleService
}

func NewArticlesHandler(articles service.ArticleService) *ArticlesHandler {
	return &ArticlesHandler{articles: articles}
}

// Routes serves reads without authentication; writing is an officer
// capability, so the write group carries its own JWT gate.
func (h *ArticlesHandler) Routes(jwtSecret string) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireJWT(jwtSecret))
		r.Use(middleware.RequireRole(domain.RoleOfficer))
		r.Post("/", h.create)
		r.Put("/{id}", h.update)
		r.Delete("/{id}", h.delete)
	})
	return r
}

func (h *ArticlesHandler) list(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)

	articles, err := h.articles.ListArticles(r.Context(), limit, offset)
	if err != nil {
		response.FromError(w, err)
		return
	}
	if articles == nil {
		articles = []domain.ArticleView{}
	}

	response.WriteJSON(w, http.StatusOK, articles)
}

func (h *ArticlesHandler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(chi.URLParam(r, "id"))
	if !ok {
		response.BadRequest(w, "invalid article id")
		return
	}

	article, err := h.articles.GetArticle(r.Context(), id)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, article)
}

func (h *ArticlesHandler) create(w http.ResponseWriter, r *http.Request) {
	claims := middleware.Claims(r)

	var req domain.CreateArticleRequest
	if !decodeJSON(r, &req) {
		badBody(w)
		return
	}

	article, err := h.articles.CreateArticle(r.Context(), claims.Sub, &req)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusCreated, article)
}

func (h *ArticlesHandler) update(w http.ResponseWriter, r *http.Request) {
	claims := middleware.Claims(r)

	id, ok := parseID(chi.URLParam(r, "id"))
	if !ok {
		response.BadRequest(w, "invalid article id")
		return
	}

	var req domain.UpdateArticleRequest
	if !decodeJSON(r, &req) {
		badBody(w)
		return
	}

	article, err := h.articles.UpdateArticle(r.Context(), claims.Sub, id, &req)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, article)
}

func (h *ArticlesHandler) delete(w http.ResponseWriter, r *http.Request) {
	claims := middleware.Claims(r)

	id, ok := parseID(chi.URLParam(r, "id"))
	if !ok {
		response.BadRequest(w, "invalid article id")
		return
	}

	if err := h.articles.DeleteArticle(r.Context(), claims.Sub, id); err != nil {
		response.FromError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, map[string]string{"message": "article deleted"})
}
