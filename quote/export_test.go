package quote

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/princinho/climaquote/models"
)

func TestExportXLSX(t *testing.T) {
	signed := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	quotes := []models.Quote{
		{
			ID:            bson.NewObjectID(),
			Brand:         "Daikin",
			Model:         "Sensira",
			Option:        models.QuoteLine{Name: "3.5 kW"},
			Extras:        []models.QuoteLine{{Name: "Soporte", Quantity: 2}, {Name: "Bomba", Quantity: 1}},
			Price:         1310,
			FinancingText: "Pago al contado",
			Client:        models.ClientData{Name: "Ana", Surname: "Ruiz", Email: "ana@example.com"},
			Status:        models.QuoteStatusSigned,
			SignedAt:      &signed,
			CreatedAt:     signed,
		},
		{ID: bson.NewObjectID(), Brand: "Mitsubishi", Status: models.QuoteStatusPending},
	}

	var buf bytes.Buffer
	require.NoError(t, ExportXLSX(&buf, quotes))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Quotes")
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "ID", rows[0][0])
	assert.Equal(t, quotes[0].ID.Hex(), rows[1][0])
	assert.Equal(t, "signed", rows[1][2])
	assert.Equal(t, "2 × Soporte; 1 × Bomba", rows[1][8])
	assert.Equal(t, "1310", rows[1][9])
	assert.Equal(t, "Ana Ruiz", rows[1][12])
	assert.Equal(t, "pending", rows[2][2])
}

func TestExportXLSXEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ExportXLSX(&buf, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Quotes")
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestExportFilename(t *testing.T) {
	day := time.Date(2024, 6, 3, 9, 30, 0, 0, time.UTC)
	assert.Equal(t, "frio-y-calor-sl-quotes-20240603.xlsx", ExportFilename("Frío y Calor SL", day))
	assert.Equal(t, "climaquote-quotes-20240603.xlsx", ExportFilename("", day))
}
