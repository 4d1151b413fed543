package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/heladeria-pos/api/internal/database"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/xuri/excelize/v2"
)

const maxImportSize = 10 << 20 // 10 MiB

// ImportStore defines the database methods needed by the XLSX import.
// Satisfied by *database.Queries; narrow interface for testability.
type ImportStore interface {
	UpsertProductoByNombre(ctx context.Context, arg database.UpsertProductoByNombreParams) (database.Producto, error)
	GetCategoriaByNombre(ctx context.Context, nombre string) (database.Categoria, error)
}

// ImportHandler handles the bulk product import endpoint.
type ImportHandler struct {
	store ImportStore
}

// NewImportHandler creates a new ImportHandler.
func NewImportHandler(store ImportStore) *ImportHandler {
	return &ImportHandler{store: store}
}

// RegisterRoutes registers the import endpoint on the given Chi router.
func (h *ImportHandler) RegisterRoutes(r chi.Router) {
	r.Post("/import", h.Import)
}

type importResultResponse struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}

// Import reads an uploaded XLSX file and upserts products by name.
// Expected columns on the first sheet: nombre, precio, num_sabores,
// categoria (optional, matched by name). A header row is detected by a
// non-numeric precio cell and skipped.
func (h *ImportHandler) Import(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxImportSize); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid multipart form"})
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "file is required"})
		return
	}
	defer file.Close()

	xlsx, err := excelize.OpenReader(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid xlsx file"})
		return
	}
	defer xlsx.Close()

	sheets := xlsx.GetSheetList()
	if len(sheets) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "xlsx has no sheets"})
		return
	}

	rows, err := xlsx.GetRows(sheets[0])
	if err != nil {
		log.Printf("ERROR: read xlsx rows: %v", err)
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "could not read sheet"})
		return
	}

	result := importResultResponse{}
	for i, row := range rows {
		if len(row) < 2 || strings.TrimSpace(row[0]) == "" {
			result.Skipped++
			continue
		}

		nombre := strings.TrimSpace(row[0])
		precio, err := parseBasePrice(strings.TrimSpace(row[1]))
		if err != nil {
			// Header row or malformed line.
			result.Skipped++
			continue
		}

		var numSabores int32
		if len(row) > 2 && strings.TrimSpace(row[2]) != "" {
			n, err := strconv.ParseInt(strings.TrimSpace(row[2]), 10, 32)
			if err != nil || n < 0 {
				result.Errors = append(result.Errors, "row "+strconv.Itoa(i+1)+": invalid num_sabores")
				result.Skipped++
				continue
			}
			numSabores = int32(n)
		}

		categoriaID := pgtype.UUID{}
		if len(row) > 3 && strings.TrimSpace(row[3]) != "" {
			categoria, err := h.store.GetCategoriaByNombre(r.Context(), strings.TrimSpace(row[3]))
			if err != nil {
				if !errors.Is(err, pgx.ErrNoRows) {
					log.Printf("ERROR: lookup categoria: %v", err)
				}
				result.Errors = append(result.Errors, "row "+strconv.Itoa(i+1)+": unknown categoria")
				result.Skipped++
				continue
			}
			categoriaID = pgtype.UUID{Bytes: categoria.ID, Valid: true}
		}

		if _, err := h.store.UpsertProductoByNombre(r.Context(), database.UpsertProductoByNombreParams{
			Nombre:      nombre,
			Precio:      precio,
			NumSabores:  numSabores,
			CategoriaID: categoriaID,
		}); err != nil {
			log.Printf("ERROR: upsert producto %q: %v", nombre, err)
			result.Errors = append(result.Errors, "row "+strconv.Itoa(i+1)+": could not save")
			result.Skipped++
			continue
		}
		result.Imported++
	}

	writeJSON(w, http.StatusOK, result)
}
