package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAMBestToStars(t *testing.T) {
	tests := []struct {
		rating string
		want   float64
	}{
		{"A++", 5},
		{"A+", 4.5},
		{"A", 4.5},
		{"A-", 4},
		{"B++", 4},
		{"B+", 4},
		{"B", 3.5},
		{"B-", 3.5},
		{"C++", 3},
		{"C+", 3},
		{"C", 2},
		{"C-", 2},
		{"D", 1},
		{"E", 0.5},
		{"F", 0.5},
		{" a+ ", 4.5},
		{"b++", 4},
		{"", 0},
		{"N/A", 0},
		{"NR", 0},
		{"AAA", 0},
	}
	for _, tt := range tests {
		t.Run(tt.rating, func(t *testing.T) {
			got := AMBestToStars(tt.rating)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, AMBestToStars(tt.rating), "repeated calls must agree")
		})
	}
}

func TestAMBestColor(t *testing.T) {
	assert.Equal(t, "green", AMBestColor("A++"))
	assert.Equal(t, "green", AMBestColor("A"))
	assert.Equal(t, "blue", AMBestColor("A-"))
	assert.Equal(t, "blue", AMBestColor("B+"))
	assert.Equal(t, "yellow", AMBestColor("B"))
	assert.Equal(t, "yellow", AMBestColor("C+"))
	assert.Equal(t, "red", AMBestColor("C"))
	assert.Equal(t, "red", AMBestColor("F"))
	assert.Equal(t, "gray", AMBestColor(""))
	assert.Equal(t, "gray", AMBestColor("N/A"))
}

func TestAMBestLabel(t *testing.T) {
	assert.Equal(t, "Superior", AMBestLabel("a++"))
	assert.Equal(t, "Excellent", AMBestLabel("A-"))
	assert.Equal(t, "Good", AMBestLabel("B++"))
	assert.Equal(t, "Fair", AMBestLabel("B-"))
	assert.Equal(t, "Marginal", AMBestLabel("C++"))
	assert.Equal(t, "Weak", AMBestLabel("C"))
	assert.Equal(t, "Poor", AMBestLabel("D"))
	assert.Equal(t, "Under Regulatory Supervision", AMBestLabel("E"))
	assert.Equal(t, "In Liquidation", AMBestLabel("F"))
	assert.Equal(t, "No Rating", AMBestLabel("N/A"))
	assert.Equal(t, "No Rating", AMBestLabel(""))
}

func TestClassifyAMBest(t *testing.T) {
	assert.Equal(t, AMBestGrade{Rating: "A+", Stars: 4.5, Color: "green", Label: "Superior"}, ClassifyAMBest(" a+"))
	assert.Equal(t, AMBestGrade{Rating: "", Stars: 0, Color: "gray", Label: "No Rating"}, ClassifyAMBest("not rated"))
}
