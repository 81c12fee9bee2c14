// internal/output/excel.go
package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/valpere/RecipeScrapexter/internal/normalize"
	"github.com/valpere/RecipeScrapexter/pkg/types"
)

// Sheet names of the Excel workbook.
const (
	SheetRecipes      = "Recipes"
	SheetIngredients  = "Ingredients"
	SheetInstructions = "Instructions"
)

var (
	recipeHeaders = []interface{}{
		"Title", "Description", "Source URL", "Image URL", "Prep Time", "Cook Time", "Total Time",
		"Servings", "Cuisine", "Categories", "Tags", "Calories", "Protein", "Carbs", "Fat", "Fiber", "Sugar", "Sodium",
	}
	ingredientHeaders  = []interface{}{"Recipe", "Position", "Quantity", "Unit", "Name", "Notes"}
	instructionHeaders = []interface{}{"Recipe", "Step", "Text"}
)

// ExcelWriter writes a workbook with a recipe sheet, an ingredient sheet and
// an instruction sheet.
type ExcelWriter struct {
	w    io.Writer
	file *excelize.File
}

// NewExcelWriter creates a new Excel writer
func NewExcelWriter(w io.Writer) *ExcelWriter {
	return &ExcelWriter{w: w, file: excelize.NewFile()}
}

// Write fills the workbook and writes it out
func (w *ExcelWriter) Write(recipes []*types.Recipe) error {
	if err := w.file.SetSheetName("Sheet1", SheetRecipes); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	for _, name := range []string{SheetIngredients, SheetInstructions} {
		if _, err := w.file.NewSheet(name); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", name, err)
		}
	}

	headerStyle, err := w.file.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	for sheet, headers := range map[string][]interface{}{
		SheetRecipes:      recipeHeaders,
		SheetIngredients:  ingredientHeaders,
		SheetInstructions: instructionHeaders,
	} {
		if err := w.setRow(sheet, 1, headers); err != nil {
			return err
		}
		lastCell, _ := excelize.CoordinatesToCellName(len(headers), 1)
		if err := w.file.SetCellStyle(sheet, "A1", lastCell, headerStyle); err != nil {
			return err
		}
		if err := w.file.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
			return err
		}
	}

	ingRow, stepRow := 2, 2
	for i, recipe := range recipes {
		if err := w.setRow(SheetRecipes, i+2, recipeRow(recipe)); err != nil {
			return err
		}
		for pos, ing := range recipe.Ingredients {
			row := []interface{}{recipe.Title, pos + 1, floatCell(ing.Quantity), ing.Unit, ing.Name, ing.Notes}
			if err := w.setRow(SheetIngredients, ingRow, row); err != nil {
				return err
			}
			ingRow++
		}
		for step, inst := range recipe.Instructions {
			if err := w.setRow(SheetInstructions, stepRow, []interface{}{recipe.Title, step + 1, inst.Text}); err != nil {
				return err
			}
			stepRow++
		}
	}

	w.file.SetActiveSheet(0)
	if _, err := w.file.WriteTo(w.w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func (w *ExcelWriter) setRow(sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := w.file.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write %s row %d: %w", sheet, row, err)
	}
	return nil
}

func recipeRow(r *types.Recipe) []interface{} {
	n := r.Nutrition
	if n == nil {
		n = &types.NutritionFacts{}
	}
	return []interface{}{
		r.Title, r.Description, r.SourceURL, r.ImageURL,
		durationCell(r.PrepTime), durationCell(r.CookTime), durationCell(r.EffectiveTotalTime()),
		intCell(r.Servings), r.Cuisine, strings.Join(r.CategoryNames, ", "), strings.Join(r.TagNames, ", "),
		floatCell(n.Calories), floatCell(n.Protein), floatCell(n.Carbs), floatCell(n.Fat),
		floatCell(n.Fiber), floatCell(n.Sugar), floatCell(n.Sodium),
	}
}

// Empty cells stay empty instead of showing 0.
func floatCell(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func intCell(v *int) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func durationCell(v *int) interface{} {
	if v == nil {
		return nil
	}
	return normalize.FormatDuration(*v)
}

// Close releases the workbook
func (w *ExcelWriter) Close() error {
	return w.file.Close()
}
