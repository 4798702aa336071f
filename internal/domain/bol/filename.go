package bol

import "strings"

var fileNameReplacer = strings.NewReplacer("/", "-", "\\", "-", "\x00", "")

// FileName returns BOL_{PO}_{SKU8}_{WH2}_{SCAC}.pdf. The SKU is cut to its
// first 8 characters and the warehouse code to 2; path separators in any
// part are replaced with "-".
func FileName(po, sku, warehouseCode, scac string) string {
	parts := []string{
		"BOL",
		clean(po),
		clean(prefix(sku, 8)),
		clean(prefix(strings.ToUpper(warehouseCode), 2)),
		clean(scac),
	}
	return strings.Join(parts, "_") + ".pdf"
}

func clean(s string) string {
	return fileNameReplacer.Replace(strings.TrimSpace(s))
}

func prefix(s string, n int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
