package handlers

import (
	"net/http"
	"strings"

	"github.com/LovationAdmin/quote-api/models"
	"github.com/LovationAdmin/quote-api/services"

	"github.com/gin-gonic/gin"
)

// GetRequiredFields returns the form fields the selected categories need.
// GET /forms/required-fields?categories=dental,cancer
func GetRequiredFields(c *gin.Context) {
	var categories []models.ProductLine
	for _, raw := range c.QueryArray("categories") {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			product := models.ProductLine(part)
			if !product.Valid() {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown category: " + part})
				return
			}
			categories = append(categories, product)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"categories": categories,
		"fields":     services.RequiredFields(categories),
	})
}

// GetRating returns the star/color/label view of an AM Best grade.
func GetRating(c *gin.Context) {
	c.JSON(http.StatusOK, services.ClassifyAMBest(c.Param("grade")))
}

type classifyRequest struct {
	Benefits []services.BenefitDescription `json:"benefits" binding:"required"`
}

type classifiedBenefit struct {
	Status models.CoverageStatus `json:"status"`
	Reason string                `json:"reason"`
}

// ClassifyBenefits labels each posted benefit description.
func ClassifyBenefits(c *gin.Context) {
	var req classifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	out := make([]classifiedBenefit, len(req.Benefits))
	for i, desc := range req.Benefits {
		status, reason := services.ExplainBenefitStatus(desc)
		out[i] = classifiedBenefit{Status: status, Reason: reason}
	}
	c.JSON(http.StatusOK, gin.H{"results": out})
}
