package csvio

import (
	"bytes"
	"strings"
	"testing"

	"github.com/abgdnv/kasir/internal/product/form"
	"github.com/abgdnv/kasir/internal/product/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_ExportImport(t *testing.T) {
	// given
	products := []model.Product{
		{ID: 1, Name: "Pensil", Cost: decimal.NewFromInt(1500), Price: decimal.NewFromInt(2500), Stock: 40, Category: "Alat Tulis"},
		{ID: 2, Name: "Kopi, Sachet", Cost: decimal.RequireFromString("1200.5"), Price: decimal.NewFromInt(2000), Stock: 0, Barcode: "899123"},
	}
	var buf bytes.Buffer

	// when
	require.NoError(t, Export(&buf, products))
	res, err := Import(&buf, form.NewValidator())

	// then
	require.NoError(t, err)
	assert.Empty(t, res.Errors)
	require.Len(t, res.Products, 2)
	for i, p := range res.Products {
		assert.Zero(t, p.ID)
		assert.Equal(t, products[i].Name, p.Name)
		assert.True(t, products[i].Cost.Equal(p.Cost))
		assert.True(t, products[i].Price.Equal(p.Price))
		assert.Equal(t, products[i].Stock, p.Stock)
		assert.Equal(t, products[i].Category, p.Category)
		assert.Equal(t, products[i].Barcode, p.Barcode)
	}
}

func Test_Export_Header(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, Export(&buf, nil))

	assert.Equal(t, "name,cost,price,stock,category,image_url,barcode", strings.TrimSpace(buf.String()))
}

func Test_Import_LineErrors(t *testing.T) {
	// given
	input := strings.Join([]string{
		"name,cost,price,stock,category,image_url,barcode",
		"Pensil,1500,2500,40,Alat Tulis,,",
		",1500,2500,40,,,",
		"Buku,abc,5000,3,,,",
		"Tas,90000,150000,-1,,,",
	}, "\n")

	// when
	res, err := Import(strings.NewReader(input), form.NewValidator())

	// then
	require.NoError(t, err)
	require.Len(t, res.Products, 1)
	assert.Equal(t, "Pensil", res.Products[0].Name)
	assert.Equal(t, []LineError{
		{Line: 3, Field: form.FieldName, Message: "product name is required"},
		{Line: 4, Field: form.FieldCost, Message: "cost must be a valid number"},
		{Line: 5, Field: form.FieldStock, Message: "stock must not be negative"},
	}, res.Errors)
	assert.Equal(t, "line 3: product name is required", res.Errors[0].Error())
}

func Test_Import_LineErrorsAfterMultilineField(t *testing.T) {
	// given
	input := strings.Join([]string{
		"name,cost,price,stock,category,image_url,barcode",
		`"Buku Tulis`,
		`isi 58",3000,5000,3,Buku,,`,
		"",
		"Tas,90000,150000,-1,,,",
	}, "\n")

	// when
	res, err := Import(strings.NewReader(input), form.NewValidator())

	// then
	require.NoError(t, err)
	require.Len(t, res.Products, 1)
	assert.Equal(t, "Buku Tulis\nisi 58", res.Products[0].Name)
	assert.Equal(t, []LineError{
		{Line: 5, Field: form.FieldStock, Message: "stock must not be negative"},
	}, res.Errors)
}

func Test_Import_Malformed(t *testing.T) {
	_, err := Import(strings.NewReader(""), form.NewValidator())

	assert.Error(t, err)
}
