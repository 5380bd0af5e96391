package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"timeclock/models"
	"timeclock/validation"
)

// ListCategories accepts an optional ?type=role|employer|location filter.
func (h *Handler) ListCategories(c *gin.Context) {
	typ := strings.TrimSpace(c.Query("type"))
	if typ != "" && typ != models.CategoryRole && typ != models.CategoryEmployer && typ != models.CategoryLocation {
		respondValidation(c, validation.Errors{"type": {"must be one of role, employer, location"}})
		return
	}

	ctx, cancel := dbContext(c)
	defer cancel()

	categories, err := h.Store.Categories.List(ctx, typ)
	if err != nil {
		respondError(c, "list categories", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

func (h *Handler) GetCategory(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	ctx, cancel := dbContext(c)
	defer cancel()

	category, err := h.Store.Categories.FindByID(ctx, id)
	if err != nil {
		respondError(c, "get category", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"category": category})
}

func (h *Handler) CreateCategory(c *gin.Context) {
	var input validation.CategoryCreateInput
	if !bindJSON(c, &input) {
		return
	}
	category, errs := validation.CategoryCreate(input)
	if errs != nil {
		respondValidation(c, errs)
		return
	}

	ctx, cancel := dbContext(c)
	defer cancel()

	if err := h.Store.Categories.Create(ctx, &category); err != nil {
		respondError(c, "create category", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"category": category})
}

func (h *Handler) UpdateCategory(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var input validation.CategoryUpdateInput
	if !bindJSON(c, &input) {
		return
	}
	upd, errs := validation.CategoryUpdate(input)
	if errs != nil {
		respondValidation(c, errs)
		return
	}

	ctx, cancel := dbContext(c)
	defer cancel()

	category, err := h.Store.Categories.Update(ctx, id, upd)
	if err != nil {
		respondError(c, "update category", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"category": category})
}

func (h *Handler) DeleteCategory(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	ctx, cancel := dbContext(c)
	defer cancel()

	if err := h.Store.Categories.Delete(ctx, id); err != nil {
		respondError(c, "delete category", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
