// Package export renders task lists in formats meant for other programs or for printing.
package export

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"github.com/nicolagi/tasks"
	"gopkg.in/yaml.v3"
)

// ErrUnknownFormat is returned by ParseFormat and Write.
var ErrUnknownFormat = errors.New("unknown export format")

type Format string

const (
	JSON Format = "json"
	YAML Format = "yaml"
	CSV  Format = "csv"
	PDF  Format = "pdf"
)

// Formats lists the supported formats.
var Formats = []Format{JSON, YAML, CSV, PDF}

func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case JSON, YAML, CSV, PDF:
		return f, nil
	case "yml":
		return YAML, nil
	default:
		return "", fmt.Errorf("%q: %w", s, ErrUnknownFormat)
	}
}

// record fixes the exported field names independently of how tasks are persisted.
type record struct {
	ID        string `json:"id" yaml:"id"`
	Text      string `json:"text" yaml:"text"`
	Completed bool   `json:"completed" yaml:"completed"`
	Priority  string `json:"priority" yaml:"priority"`
}

func records(list []tasks.Task) []record {
	rs := make([]record, 0, len(list))
	for _, t := range list {
		rs = append(rs, record{
			ID:        string(t.ID),
			Text:      t.Text,
			Completed: t.Completed,
			Priority:  string(t.Priority),
		})
	}
	return rs
}

// Write renders list to w in the given format. The title is only used by formats that have room for one (PDF).
func Write(w io.Writer, list []tasks.Task, f Format, title string) error {
	switch f {
	case JSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(records(list))
	case YAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(records(list)); err != nil {
			return err
		}
		return enc.Close()
	case CSV:
		cw := csv.NewWriter(w)
		_ = cw.Write([]string{"id", "text", "completed", "priority"})
		for _, r := range records(list) {
			_ = cw.Write([]string{r.ID, r.Text, strconv.FormatBool(r.Completed), r.Priority})
		}
		cw.Flush()
		return cw.Error()
	case PDF:
		return writePDF(w, list, title)
	default:
		return fmt.Errorf("%q: %w", string(f), ErrUnknownFormat)
	}
}

func writePDF(w io.Writer, list []tasks.Task, title string) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(40, 10, tr(title))
	pdf.Ln(12)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(12, 7, "Done", "1", 0, "C", false, 0, "")
	pdf.CellFormat(22, 7, "Priority", "1", 0, "L", false, 0, "")
	pdf.CellFormat(0, 7, "Task", "1", 1, "L", false, 0, "")

	pdf.SetFont("Arial", "", 10)
	for _, t := range list {
		done := ""
		if t.Completed {
			done = "x"
		}
		pdf.CellFormat(12, 7, done, "1", 0, "C", false, 0, "")
		pdf.CellFormat(22, 7, string(t.Priority), "1", 0, "L", false, 0, "")
		pdf.CellFormat(0, 7, tr(t.Text), "1", 1, "L", false, 0, "")
	}
	if len(list) == 0 {
		pdf.SetFont("Arial", "I", 10)
		pdf.MultiCell(0, 7, "Nothing to export.", "0", "L", false)
	}
	return pdf.Output(w)
}
