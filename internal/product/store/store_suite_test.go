package store

import (
	"context"
	"database/sql"

	perrors "github.com/abgdnv/kasir/internal/product/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// ProductStoreSuite holds the behaviour every ProductStore implementation must share.
// Concrete suites embed it and provide the store and a per-test reset.
type ProductStoreSuite struct {
	suite.Suite
	ctx   context.Context
	store ProductStore
	reset func()
}

// SetupTest empties the store before each test.
func (s *ProductStoreSuite) SetupTest() {
	if s.reset != nil {
		s.reset()
	}
}

func pensil() Row {
	return Row{
		Name:     "Pensil",
		Price:    decimal.NewFromInt(2000),
		Cost:     decimal.NewFromInt(1000),
		Stock:    2,
		Category: "Alat Tulis",
	}
}

// insertTestProduct is a helper function to insert a product for testing purposes.
func (s *ProductStoreSuite) insertTestProduct(row Row) Row {
	s.T().Helper()
	id, err := s.store.Insert(s.ctx, row)
	require.NoError(s.T(), err, "insertTestProduct helper failed to insert product")
	row.ID = id
	return row
}

func (s *ProductStoreSuite) requireSameRow(expected Row, actual *Row) {
	s.T().Helper()
	require.NotNil(s.T(), actual)
	require.Equal(s.T(), expected.ID, actual.ID)
	require.Equal(s.T(), expected.Name, actual.Name)
	require.True(s.T(), expected.Price.Equal(actual.Price), "price %s != %s", expected.Price, actual.Price)
	require.True(s.T(), expected.Cost.Equal(actual.Cost), "cost %s != %s", expected.Cost, actual.Cost)
	require.Equal(s.T(), expected.Stock, actual.Stock)
	require.Equal(s.T(), expected.Category, actual.Category)
	require.Equal(s.T(), expected.ImageURL, actual.ImageURL)
	require.Equal(s.T(), expected.Barcode, actual.Barcode)
}

func (s *ProductStoreSuite) TestInsertAndFindByID() {
	// 1. Insert a new product
	created := s.insertTestProduct(pensil())
	require.NotZero(s.T(), created.ID, "Inserted product ID should not be zero")

	// 2. Fetch the product by ID
	fetched, err := s.store.FindByID(s.ctx, created.ID)

	// 3. Check that the fetched product matches the inserted product
	require.NoError(s.T(), err, "FindByID should not return an error")
	s.requireSameRow(created, fetched)
}

func (s *ProductStoreSuite) TestInsert_KeepsOptionalColumns() {
	row := pensil()
	row.ImageURL = sql.NullString{String: "https://img.example/pensil.png", Valid: true}
	row.Barcode = sql.NullString{String: "8991234567890", Valid: true}
	row.Price = decimal.RequireFromString("2500.75")

	created := s.insertTestProduct(row)

	fetched, err := s.store.FindByID(s.ctx, created.ID)
	require.NoError(s.T(), err)
	s.requireSameRow(created, fetched)
}

func (s *ProductStoreSuite) TestInsert_AssignsUniqueIDs() {
	a := s.insertTestProduct(pensil())
	b := s.insertTestProduct(pensil())

	require.NotEqual(s.T(), a.ID, b.ID)
}

func (s *ProductStoreSuite) TestInsertAll() {
	buku := pensil()
	buku.Name = "Buku Tulis"

	ids, err := s.store.InsertAll(s.ctx, []Row{pensil(), buku})

	require.NoError(s.T(), err)
	require.Len(s.T(), ids, 2)
	require.Less(s.T(), ids[0], ids[1])
	fetched, err := s.store.FindByID(s.ctx, ids[1])
	require.NoError(s.T(), err)
	require.Equal(s.T(), "Buku Tulis", fetched.Name)
}

func (s *ProductStoreSuite) TestInsertAll_CancelledStoresNothing() {
	ctx, cancel := context.WithCancel(s.ctx)
	cancel()

	ids, err := s.store.InsertAll(ctx, []Row{pensil(), pensil()})

	require.Error(s.T(), err)
	require.Empty(s.T(), ids)
	products, err := s.store.FindAll(s.ctx)
	require.NoError(s.T(), err)
	require.Empty(s.T(), products)
}

func (s *ProductStoreSuite) TestFindByID_NotFound() {
	_, err := s.store.FindByID(s.ctx, 424242)
	require.ErrorIs(s.T(), err, perrors.ErrProductNotFound, "Expected ErrProductNotFound for non-existent product")
}

func (s *ProductStoreSuite) TestFindAll() {
	first := s.insertTestProduct(pensil())
	buku := pensil()
	buku.Name = "Buku Tulis"
	buku.Stock = 0
	second := s.insertTestProduct(buku)

	products, err := s.store.FindAll(s.ctx)

	require.NoError(s.T(), err)
	require.Len(s.T(), products, 2, "Should retrieve 2 products")
	s.requireSameRow(first, &products[0])
	s.requireSameRow(second, &products[1])
}

func (s *ProductStoreSuite) TestFindAll_Empty() {
	products, err := s.store.FindAll(s.ctx)

	require.NoError(s.T(), err)
	require.NotNil(s.T(), products)
	require.Empty(s.T(), products)
}

func (s *ProductStoreSuite) TestUpdate_ChangesOnlyGivenFields() {
	row := pensil()
	row.Price = decimal.NewFromInt(5000)
	created := s.insertTestProduct(row)

	edited := created
	edited.Price = decimal.NewFromInt(7000)
	require.NoError(s.T(), s.store.Update(s.ctx, edited))

	fetched, err := s.store.FindByID(s.ctx, created.ID)
	require.NoError(s.T(), err)
	s.requireSameRow(edited, fetched)
}

func (s *ProductStoreSuite) TestUpdate_ClearsOptionalColumns() {
	row := pensil()
	row.Barcode = sql.NullString{String: "123", Valid: true}
	created := s.insertTestProduct(row)

	created.Barcode = sql.NullString{}
	require.NoError(s.T(), s.store.Update(s.ctx, created))

	fetched, err := s.store.FindByID(s.ctx, created.ID)
	require.NoError(s.T(), err)
	require.False(s.T(), fetched.Barcode.Valid)
}

func (s *ProductStoreSuite) TestUpdate_NotFound() {
	row := pensil()
	row.ID = 999
	err := s.store.Update(s.ctx, row)
	require.ErrorIs(s.T(), err, perrors.ErrProductNotFound, "Expected ErrProductNotFound for non-existent product")
}

func (s *ProductStoreSuite) TestDelete() {
	created := s.insertTestProduct(pensil())

	err := s.store.Delete(s.ctx, created.ID)
	require.NoError(s.T(), err, "Delete should not return an error")

	_, err = s.store.FindByID(s.ctx, created.ID)
	require.ErrorIs(s.T(), err, perrors.ErrProductNotFound, "Expected ErrProductNotFound for deleted product")
}

func (s *ProductStoreSuite) TestDelete_Absent() {
	err := s.store.Delete(s.ctx, 999)
	require.NoError(s.T(), err, "Deleting an absent product is a no-op")
}
