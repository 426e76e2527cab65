package sales

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/inventario-ventas/internal/domain/repository"
)

// ErrInvalidCursor cursor de paginación corrupto o mal formado.
var ErrInvalidCursor = errors.New("cursor inválido")

// reportCursor forma serializada del cursor opaco: la última (sale_date, id)
// vista. base64(JSON) para que el cliente lo trate como un token.
type reportCursor struct {
	SaleDate time.Time `json:"d"`
	ID       string    `json:"id"`
}

func encodeReportCursor(key repository.ReportCursorKey) string {
	raw, _ := json.Marshal(reportCursor{SaleDate: key.SaleDate, ID: key.ID})
	return base64.RawURLEncoding.EncodeToString(raw)
}

// decodeReportCursor devuelve nil para el cursor vacío (primera página).
func decodeReportCursor(s string) (*repository.ReportCursorKey, error) {
	if s == "" {
		return nil, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}
	var c reportCursor
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}
	if c.ID == "" {
		return nil, ErrInvalidCursor
	}
	return &repository.ReportCursorKey{SaleDate: c.SaleDate, ID: c.ID}, nil
}
