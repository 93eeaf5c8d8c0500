package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeIdent(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"OrderID", "orderid"},
		{"order_id", "orderid"},
		{"order-id", "orderid"},
		{"orderId", "orderid"},
		{"ORDERID", "orderid"},
		{"XMLParser", "xmlparser"},
		{"getHTTPResponse", "gethttpresponse"},
		{"Price_Cents", "pricecents"},
		{"", ""},
		{"A", "a"},
		{"order_item-ID", "orderitemid"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := NormalizeIdent(tt.input); got != tt.expected {
				t.Errorf("NormalizeIdent(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNormalizeIdentWithSuffixStrip(t *testing.T) {
	assert.Equal(t, "order", NormalizeIdentWithSuffixStrip("OrderID"))
	assert.Equal(t, "created", NormalizeIdentWithSuffixStrip("CreatedAt"))
	assert.Equal(t, "id", NormalizeIdentWithSuffixStrip("ID"))
}

func TestTokenizeIdent(t *testing.T) {
	assert.Equal(t, []string{"order", "id"}, TokenizeIdent("OrderID"))
	assert.Equal(t, []string{"xml", "parser"}, TokenizeIdent("XMLParser"))
	assert.Equal(t, []string{"full", "name"}, TokenizeIdent("full_name"))
	assert.Nil(t, TokenizeIdent(""))
}

func TestMode_Equal(t *testing.T) {
	assert.True(t, Exact.Equal("FullName", "FullName"))
	assert.False(t, Exact.Equal("FullName", "full_name"))
	assert.True(t, Normalized.Equal("FullName", "full_name"))
	assert.False(t, Normalized.Equal("FullName", "Name"))
	assert.Equal(t, "normalized", Normalized.String())
}
