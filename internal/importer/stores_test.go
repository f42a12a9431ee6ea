package importer

import (
	"bytes"
	"errors"
	"testing"

	"github.com/ratethestore/ratethestore-backend/internal/app/model"
	"github.com/ratethestore/ratethestore-backend/internal/app/repository"
	"github.com/ratethestore/ratethestore-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func workbook(t *testing.T, rows [][]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestReadStoreRows(t *testing.T) {
	buf := workbook(t, [][]interface{}{
		{"Name", "Email", "Address", "Owner Email"},
		{" Corner Bakery ", "bake@corner.example", "5 Corner Street, Springfield", "owner@example.com"},
		{"", "", "", ""},
		{"Florist", "flowers@shop.example", "9 Petal Lane, Springfield"},
	})

	rows, err := ReadStoreRows(buf)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, StoreRow{
		Line:       2,
		Name:       "Corner Bakery",
		Email:      "bake@corner.example",
		Address:    "5 Corner Street, Springfield",
		OwnerEmail: "owner@example.com",
	}, rows[0])
	assert.Equal(t, 4, rows[1].Line)
	assert.Empty(t, rows[1].OwnerEmail)
}

func TestReadStoreRows_MissingColumn(t *testing.T) {
	buf := workbook(t, [][]interface{}{
		{"Name", "Address"},
		{"Corner Bakery", "5 Corner Street"},
	})

	_, err := ReadStoreRows(buf)
	assert.ErrorContains(t, err, `"email"`)
}

func TestImporter_PlanAndImport(t *testing.T) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	defer db.CleanupTestDB(testDB)

	users := repository.NewUserRepository(testDB)
	stores := repository.NewStoreRepository(testDB)

	owner := &model.User{Name: "Olive Owner", Email: "owner@example.com", PasswordHash: "x", Address: "Somewhere", Role: model.RoleStoreOwner}
	plain := &model.User{Name: "Paul Plain", Email: "paul@example.com", PasswordHash: "x", Address: "Somewhere", Role: model.RoleNormalUser}
	require.NoError(t, users.Create(owner))
	require.NoError(t, users.Create(plain))

	im := NewImporter(users, stores, 2)
	planned, skipped, err := im.Plan([]StoreRow{
		{Line: 2, Name: "Corner Bakery", Email: "BAKE@corner.example", Address: "5 Corner Street", OwnerEmail: "owner@example.com"},
		{Line: 3, Name: "Florist", Email: "flowers@shop.example", Address: "9 Petal Lane"},
		{Line: 4, Name: "corner bakery", Email: "bake@corner.example", Address: "5 Corner Street"},
		{Line: 5, Name: "Ok", Email: "short@shop.example", Address: "9 Petal Lane"},
		{Line: 6, Name: "Paul's Place", Email: "paul@shop.example", Address: "1 Paul Avenue", OwnerEmail: "paul@example.com"},
		{Line: 7, Name: "Nowhere", Email: "not-an-email", Address: "1 Paul Avenue"},
		{Line: 8, Name: "Ghost Shop", Email: "ghost@shop.example", Address: "1 Ghost Avenue", OwnerEmail: "ghost@example.com"},
	})
	require.NoError(t, err)

	require.Len(t, planned, 2)
	assert.Equal(t, "bake@corner.example", planned[0].Email)
	if assert.NotNil(t, planned[0].OwnerID) {
		assert.Equal(t, owner.ID, *planned[0].OwnerID)
	}
	assert.Nil(t, planned[1].OwnerID)

	lines := make([]int, 0, len(skipped))
	for _, e := range skipped {
		lines = append(lines, e.Line)
	}
	assert.Equal(t, []int{4, 5, 6, 7, 8}, lines)
	assert.Contains(t, skipped[0].Error(), "duplicate of row 2")

	require.NoError(t, im.Import(planned))
	count, err := stores.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

type failingUsers struct {
	repository.UserRepository
	err error
}

func (f failingUsers) FindByEmail(string) (*model.User, error) {
	return nil, f.err
}

func TestImporter_PlanFailsOnOwnerLookupError(t *testing.T) {
	lookupErr := errors.New("connection reset by peer")
	im := NewImporter(failingUsers{err: lookupErr}, nil, 0)

	planned, skipped, err := im.Plan([]StoreRow{
		{Line: 2, Name: "Florist", Email: "flowers@shop.example", Address: "9 Petal Lane"},
		{Line: 3, Name: "Corner Bakery", Email: "bake@corner.example", Address: "5 Corner Street", OwnerEmail: "owner@example.com"},
	})

	assert.ErrorIs(t, err, lookupErr)
	assert.ErrorContains(t, err, "row 3")
	assert.Nil(t, planned)
	assert.Nil(t, skipped)
}
