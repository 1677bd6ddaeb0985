// seed_catalog genera un script SQL para poblar categorías, tiendas y productos a partir de un CSV
// exportado desde la hoja de cálculo del catálogo.
//
// Uso: go run ./cmd/seed_catalog [catalogo.csv] [salida.sql]
// Por defecto lee catalogo.csv y escribe internal/infrastructure/postgres/seed_catalog.sql.
//
// Formato (sin encabezado, una fila por registro):
//
//	category,<uuid>,<código>,<nombre>,<orden>
//	store,<uuid>,<nombre>,<dirección>
//	product,<uuid>,<sku>,<nombre>,<uuid categoría o vacío>,<stock de seguridad>
//
// Los CSV exportados desde Excel suelen venir en Windows-1252; si el archivo no es UTF-8 válido se convierte.
package main

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

type categoryRow struct {
	id, code, name string
	sortOrder      int
}

type storeRow struct {
	id, name, address string
}

type productRow struct {
	id, sku, name, categoryID string
	safetyStock               int64
}

type catalog struct {
	categories []categoryRow
	stores     []storeRow
	products   []productRow
}

func main() {
	csvPath := "catalogo.csv"
	if len(os.Args) > 1 {
		csvPath = os.Args[1]
	}
	outPath := filepath.Join("internal", "infrastructure", "postgres", "seed_catalog.sql")
	if len(os.Args) > 2 {
		outPath = os.Args[2]
	}

	raw, err := os.ReadFile(csvPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir CSV: %v\n", err)
		os.Exit(1)
	}
	cat, err := parseCatalog(decodeText(raw))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer catálogo: %v\n", err)
		os.Exit(1)
	}

	var buf bytes.Buffer
	writeSQL(&buf, cat)
	if err := os.WriteFile(outPath, buf.Bytes(), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Escribir SQL: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Generado %s: %d categorías, %d tiendas, %d productos\n",
		outPath, len(cat.categories), len(cat.stores), len(cat.products))
}

// decodeText devuelve el contenido como lector UTF-8, convirtiendo desde Windows-1252 si hace falta.
func decodeText(raw []byte) io.Reader {
	if utf8.Valid(raw) {
		return bytes.NewReader(raw)
	}
	return transform.NewReader(bytes.NewReader(raw), charmap.Windows1252.NewDecoder())
}

func parseCatalog(r io.Reader) (catalog, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var cat catalog
	line := 0
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return catalog{}, fmt.Errorf("línea %d: %w", line, err)
		}
		if len(rec) == 0 || strings.HasPrefix(strings.TrimSpace(rec[0]), "#") {
			continue
		}
		switch strings.ToLower(strings.TrimSpace(rec[0])) {
		case "category":
			if len(rec) < 4 {
				return catalog{}, fmt.Errorf("línea %d: categoría incompleta", line)
			}
			c := categoryRow{
				id:   strings.TrimSpace(rec[1]),
				code: strings.ToUpper(strings.TrimSpace(rec[2])),
				name: strings.TrimSpace(rec[3]),
			}
			if _, err := uuid.Parse(c.id); err != nil {
				return catalog{}, fmt.Errorf("línea %d: id de categoría inválido %q", line, c.id)
			}
			if c.code == "" || utf8.RuneCountInString(c.code) > 10 || c.name == "" || utf8.RuneCountInString(c.name) > 50 {
				return catalog{}, fmt.Errorf("línea %d: código o nombre de categoría inválido", line)
			}
			if len(rec) > 4 && strings.TrimSpace(rec[4]) != "" {
				n, err := strconv.Atoi(strings.TrimSpace(rec[4]))
				if err != nil || n < 0 {
					return catalog{}, fmt.Errorf("línea %d: orden inválido %q", line, rec[4])
				}
				c.sortOrder = n
			}
			cat.categories = append(cat.categories, c)
		case "store":
			if len(rec) < 3 {
				return catalog{}, fmt.Errorf("línea %d: tienda incompleta", line)
			}
			s := storeRow{id: strings.TrimSpace(rec[1]), name: strings.TrimSpace(rec[2])}
			if len(rec) > 3 {
				s.address = strings.TrimSpace(rec[3])
			}
			if _, err := uuid.Parse(s.id); err != nil {
				return catalog{}, fmt.Errorf("línea %d: id de tienda inválido %q", line, s.id)
			}
			cat.stores = append(cat.stores, s)
		case "product":
			if len(rec) < 6 {
				return catalog{}, fmt.Errorf("línea %d: producto incompleto", line)
			}
			p := productRow{
				id:         strings.TrimSpace(rec[1]),
				sku:        strings.TrimSpace(rec[2]),
				name:       strings.TrimSpace(rec[3]),
				categoryID: strings.TrimSpace(rec[4]),
			}
			if _, err := uuid.Parse(p.id); err != nil {
				return catalog{}, fmt.Errorf("línea %d: id de producto inválido %q", line, p.id)
			}
			if p.categoryID != "" {
				if _, err := uuid.Parse(p.categoryID); err != nil {
					return catalog{}, fmt.Errorf("línea %d: categoría inválida %q", line, p.categoryID)
				}
			}
			n, err := strconv.ParseInt(strings.TrimSpace(rec[5]), 10, 64)
			if err != nil || n < 0 {
				return catalog{}, fmt.Errorf("línea %d: stock de seguridad inválido %q", line, rec[5])
			}
			p.safetyStock = n
			cat.products = append(cat.products, p)
		default:
			return catalog{}, fmt.Errorf("línea %d: tipo de registro desconocido %q", line, rec[0])
		}
	}
	sort.Slice(cat.categories, func(i, j int) bool { return cat.categories[i].id < cat.categories[j].id })
	sort.Slice(cat.stores, func(i, j int) bool { return cat.stores[i].id < cat.stores[j].id })
	sort.Slice(cat.products, func(i, j int) bool { return cat.products[i].sku < cat.products[j].sku })
	return cat, nil
}

func writeSQL(w io.Writer, cat catalog) {
	fmt.Fprintln(w, "-- Generado por cmd/seed_catalog. No editar a mano.")
	fmt.Fprintln(w, "BEGIN;")
	for _, c := range cat.categories {
		fmt.Fprintf(w, "INSERT INTO categories (id, code, name, sort_order) VALUES ('%s', '%s', '%s', %d)\n"+
			"  ON CONFLICT (id) DO UPDATE SET code = EXCLUDED.code, name = EXCLUDED.name,"+
			" sort_order = EXCLUDED.sort_order, updated_at = now();\n",
			c.id, escapeSQL(c.code), escapeSQL(c.name), c.sortOrder)
	}
	for _, s := range cat.stores {
		fmt.Fprintf(w, "INSERT INTO stores (id, name, address) VALUES ('%s', '%s', '%s')\n"+
			"  ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, address = EXCLUDED.address, updated_at = now();\n",
			s.id, escapeSQL(s.name), escapeSQL(s.address))
	}
	for _, p := range cat.products {
		category := "NULL"
		if p.categoryID != "" {
			category = "'" + p.categoryID + "'"
		}
		fmt.Fprintf(w, "INSERT INTO products (id, sku, name, category_id, safety_stock) VALUES ('%s', '%s', '%s', %s, %d)\n"+
			"  ON CONFLICT (id) DO UPDATE SET sku = EXCLUDED.sku, name = EXCLUDED.name, category_id = EXCLUDED.category_id,"+
			" safety_stock = EXCLUDED.safety_stock, updated_at = now();\n",
			p.id, escapeSQL(p.sku), escapeSQL(p.name), category, p.safetyStock)
	}
	fmt.Fprintln(w, "COMMIT;")
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
