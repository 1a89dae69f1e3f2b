package exporter

import (
	"context"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/ventes/internal/core"
)

const (
	spreadsheetTitle = "Ventes d'Appartements - Lotissement AL BASSATINE"
	printTitle       = "Liste des Ventes d'Appartements"
	printFooter      = "Système de Gestion Immobilière"
)

// Excel reads the x: block to name the sheet and freeze the header row.
const spreadsheetHead = `<!DOCTYPE html>
<html xmlns:o="urn:schemas-microsoft-com:office:office" xmlns:x="urn:schemas-microsoft-com:office:excel" xmlns="http://www.w3.org/TR/REC-html40">
<head>
<meta charset="UTF-8">
<meta name="ProgId" content="Excel.Sheet">
<!--[if gte mso 9]><xml><x:ExcelWorkbook><x:ExcelWorksheets><x:ExcelWorksheet>
<x:Name>Ventes</x:Name>
<x:WorksheetOptions><x:Selected/><x:FreezePanes/><x:SplitHorizontal>1</x:SplitHorizontal><x:TopRowBottomPane>1</x:TopRowBottomPane></x:WorksheetOptions>
</x:ExcelWorksheet></x:ExcelWorksheets></x:ExcelWorkbook></xml><![endif]-->
<style>
table { border-collapse: collapse; width: 100%; }
th { background-color: #DC2626; color: white; font-weight: bold; padding: 10px; text-align: left; border: 1px solid #000; mso-pattern: #DC2626 solid; }
td { padding: 8px; border: 1px solid #ccc; mso-number-format: "\@"; }
tr:nth-child(even) { background-color: #f9f9f9; }
.header-info { margin-bottom: 15px; font-size: 12px; color: #666; }
</style>
</head>
`

const printStyle = `<style>
@page { margin: 2cm; }
body { font-family: Arial, sans-serif; font-size: 12px; color: #000; }
.header { text-align: center; margin-bottom: 30px; border-bottom: 3px solid #DC2626; padding-bottom: 15px; }
.header h1 { margin: 0; color: #DC2626; font-size: 24px; }
.header p { margin: 5px 0; color: #666; }
table { width: 100%; border-collapse: collapse; margin-top: 20px; }
th { background-color: #DC2626; color: white; padding: 10px; text-align: left; font-weight: bold; border: 1px solid #DC2626; }
td { padding: 8px; border: 1px solid #ddd; }
tr:nth-child(even) { background-color: #f9f9f9; }
.footer { margin-top: 30px; text-align: center; font-size: 10px; color: #666; border-top: 1px solid #ddd; padding-top: 10px; }
</style>
`

func spreadsheetDocument(sales []core.Sale, now time.Time) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(spreadsheetHead)
		b.WriteString("<body>\n<div class=\"header-info\">\n")
		b.WriteString("<h2>" + templ.EscapeString(spreadsheetTitle) + "</h2>\n")
		writeSummary(&b, len(sales), now, true)
		b.WriteString("</div>\n")
		writeTable(&b, sales)
		b.WriteString("</body>\n</html>\n")

		_, err := io.WriteString(w, b.String())
		return err
	})
}

func printDocument(sales []core.Sale, now time.Time) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString("<!DOCTYPE html>\n<html lang=\"fr\">\n<head>\n<meta charset=\"UTF-8\">\n")
		b.WriteString("<title>" + templ.EscapeString(printTitle) + "</title>\n")
		b.WriteString(printStyle)
		b.WriteString("</head>\n<body>\n<div class=\"header\">\n")
		b.WriteString("<h1>" + templ.EscapeString(printTitle) + "</h1>\n")
		writeSummary(&b, len(sales), now, false)
		b.WriteString("</div>\n")
		writeTable(&b, sales)
		b.WriteString("<div class=\"footer\">\n<p>")
		b.WriteString(templ.EscapeString("Généré le " + now.Format(core.DisplayDate) + " - " + printFooter))
		b.WriteString("</p>\n</div>\n</body>\n</html>\n")

		_, err := io.WriteString(w, b.String())
		return err
	})
}

func writeSummary(b *strings.Builder, total int, now time.Time, bold bool) {
	label := func(s string) string {
		if bold {
			return "<strong>" + templ.EscapeString(s) + "</strong>"
		}
		return templ.EscapeString(s)
	}
	b.WriteString("<p>" + label("Date d'export :") + " " + now.Format(core.DisplayDate) + "</p>\n")
	b.WriteString("<p>" + label("Total :") + " " + strconv.Itoa(total) + " vente(s)</p>\n")
}

func writeTable(b *strings.Builder, sales []core.Sale) {
	b.WriteString("<table>\n<thead>\n<tr>")
	for _, h := range core.Headers {
		b.WriteString("<th>" + templ.EscapeString(h) + "</th>")
	}
	b.WriteString("</tr>\n</thead>\n<tbody>\n")
	for _, s := range sales {
		b.WriteString("<tr>")
		for _, v := range s.DisplayRow() {
			b.WriteString("<td>" + templ.EscapeString(v) + "</td>")
		}
		b.WriteString("</tr>\n")
	}
	b.WriteString("</tbody>\n</table>\n")
}
