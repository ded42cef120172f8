package vouchers

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// amountFormatter renders thousands-grouped amounts in the document
// language. Persian output uses Persian digit shapes and separators.
type amountFormatter struct {
	printer *message.Printer
}

func newAmountFormatter(lang string) amountFormatter {
	tag := language.English
	if lang == "fa" {
		tag = language.Persian
	}
	return amountFormatter{printer: message.NewPrinter(tag)}
}

func (f amountFormatter) Format(v int64) string {
	return f.printer.Sprint(number.Decimal(v))
}
