// Package importer loads stores from an XLSX sheet exported by operators.
package importer

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ratethestore/ratethestore-backend/internal/app/model"
	"github.com/ratethestore/ratethestore-backend/internal/app/repository"
	"github.com/ratethestore/ratethestore-backend/pkg/logger"
	"github.com/ratethestore/ratethestore-backend/pkg/util"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

const DefaultBatchSize = 500

// Column headers, matched case-insensitively. owner_email is optional.
const (
	ColumnName       = "name"
	ColumnEmail      = "email"
	ColumnAddress    = "address"
	ColumnOwnerEmail = "owner_email"
)

// StoreRow is one data row of the sheet. Line is the 1-based sheet row.
type StoreRow struct {
	Line       int
	Name       string
	Email      string
	Address    string
	OwnerEmail string
}

// RowError explains why a row was skipped.
type RowError struct {
	Line   int
	Reason string
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %s", e.Line, e.Reason)
}

// ReadStoreRows parses the first sheet of an XLSX workbook. The first row
// must be a header naming at least the name, email and address columns.
func ReadStoreRows(r io.Reader) ([]StoreRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("no sheets found in XLSX")
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q is empty", sheet)
	}

	columns := make(map[string]int)
	for i, header := range rows[0] {
		key := strings.ToLower(strings.TrimSpace(header))
		key = strings.ReplaceAll(key, " ", "_")
		columns[key] = i
	}
	for _, required := range []string{ColumnName, ColumnEmail, ColumnAddress} {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("missing %q column", required)
		}
	}

	cell := func(row []string, column string) string {
		i, ok := columns[column]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var result []StoreRow
	for i, row := range rows[1:] {
		parsed := StoreRow{
			Line:       i + 2,
			Name:       cell(row, ColumnName),
			Email:      cell(row, ColumnEmail),
			Address:    cell(row, ColumnAddress),
			OwnerEmail: cell(row, ColumnOwnerEmail),
		}
		if parsed == (StoreRow{Line: parsed.Line}) {
			continue // blank line
		}
		result = append(result, parsed)
	}
	return result, nil
}

type Importer struct {
	users     repository.UserRepository
	stores    repository.StoreRepository
	batchSize int
}

func NewImporter(users repository.UserRepository, stores repository.StoreRepository, batchSize int) *Importer {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Importer{
		users:     users,
		stores:    stores,
		batchSize: batchSize,
	}
}

// Plan validates rows and resolves owner emails. Rows that fail are
// reported and left out; duplicates of an earlier row (same name and
// email) are skipped. A failed owner lookup aborts the plan.
func (im *Importer) Plan(rows []StoreRow) ([]model.Store, []RowError, error) {
	var (
		stores  []model.Store
		skipped []RowError
	)
	seen := make(map[string]int)
	owners := make(map[string]*uint)

	for _, row := range rows {
		store := model.Store{
			Name:    row.Name,
			Email:   util.NormalizeEmail(row.Email),
			Address: row.Address,
		}
		if reason := validateRow(store); reason != "" {
			skipped = append(skipped, RowError{Line: row.Line, Reason: reason})
			continue
		}

		key := strings.ToLower(store.Name) + "|" + store.Email
		if first, dup := seen[key]; dup {
			skipped = append(skipped, RowError{Line: row.Line, Reason: fmt.Sprintf("duplicate of row %d", first)})
			continue
		}

		if row.OwnerEmail != "" {
			ownerEmail := util.NormalizeEmail(row.OwnerEmail)
			ownerID, ok := owners[ownerEmail]
			if !ok {
				var err error
				ownerID, err = im.resolveOwner(ownerEmail)
				if err != nil {
					return nil, nil, fmt.Errorf("row %d: failed to look up owner %s: %w", row.Line, ownerEmail, err)
				}
				owners[ownerEmail] = ownerID
			}
			if ownerID == nil {
				skipped = append(skipped, RowError{Line: row.Line, Reason: "owner " + ownerEmail + " is not a store owner"})
				continue
			}
			store.OwnerID = ownerID
		}

		seen[key] = row.Line
		stores = append(stores, store)
	}

	return stores, skipped, nil
}

// resolveOwner returns nil when email does not belong to a store owner.
func (im *Importer) resolveOwner(email string) (*uint, error) {
	user, err := im.users.FindByEmail(email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if user.Role != model.RoleStoreOwner {
		return nil, nil
	}
	id := user.ID
	return &id, nil
}

// Import writes the planned stores.
func (im *Importer) Import(stores []model.Store) error {
	if err := im.stores.BulkCreate(stores, im.batchSize); err != nil {
		return err
	}
	logger.Info("Stores imported", map[string]interface{}{
		"count": len(stores),
	})
	return nil
}

func validateRow(store model.Store) string {
	switch {
	case !util.LengthBetween(store.Name, util.StoreNameMinLength, util.NameMaxLength):
		return fmt.Sprintf("name must be %d-%d characters", util.StoreNameMinLength, util.NameMaxLength)
	case !util.IsValidEmail(store.Email):
		return "email is invalid"
	case !util.LengthBetween(store.Address, util.StoreAddrMinLength, util.AddressMaxLength):
		return fmt.Sprintf("address must be %d-%d characters", util.StoreAddrMinLength, util.AddressMaxLength)
	default:
		return ""
	}
}
