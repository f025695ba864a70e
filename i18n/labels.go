package i18n

import "github.com/princinho/climaquote/models"

var labels = map[string]models.LocalizedText{
	"quote.title":          {"es": "Presupuesto", "en": "Quote", "ca": "Pressupost"},
	"quote.number":         {"es": "Nº de presupuesto", "en": "Quote no.", "ca": "Núm. de pressupost"},
	"quote.date":           {"es": "Fecha", "en": "Date", "ca": "Data"},
	"quote.client":         {"es": "Datos del cliente", "en": "Client details", "ca": "Dades del client"},
	"quote.product":        {"es": "Equipo", "en": "Unit", "ca": "Equip"},
	"quote.option":         {"es": "Modelo", "en": "Model option", "ca": "Model"},
	"quote.kit":            {"es": "Instalación", "en": "Installation", "ca": "Instal·lació"},
	"quote.extras":         {"es": "Extras", "en": "Extras", "ca": "Extres"},
	"quote.quantity":       {"es": "Cant.", "en": "Qty", "ca": "Quant."},
	"quote.amount":         {"es": "Importe", "en": "Amount", "ca": "Import"},
	"quote.total":          {"es": "Total (IVA incluido)", "en": "Total (VAT included)", "ca": "Total (IVA inclòs)"},
	"quote.financing":      {"es": "Financiación", "en": "Financing", "ca": "Finançament"},
	"quote.financed_total": {"es": "Total financiado", "en": "Financed total", "ca": "Total finançat"},
	"quote.pay_in_full":    {"es": "Pago al contado", "en": "Pay in full", "ca": "Pagament al comptat"},
	"quote.installments":   {"es": "cuotas de", "en": "installments of", "ca": "quotes de"},
	"quote.signature":      {"es": "Firma del cliente", "en": "Client signature", "ca": "Signatura del client"},
	"quote.terms":          {"es": "Condiciones", "en": "Terms and conditions", "ca": "Condicions"},
	"quote.work_order":     {"es": "Orden de trabajo", "en": "Work order", "ca": "Ordre de treball"},
	"quote.page":           {"es": "Página", "en": "Page", "ca": "Pàgina"},
	"client.name":          {"es": "Nombre", "en": "Name", "ca": "Nom"},
	"client.email":         {"es": "Email", "en": "Email", "ca": "Email"},
	"client.phone":         {"es": "Teléfono", "en": "Phone", "ca": "Telèfon"},
	"client.address":       {"es": "Dirección", "en": "Address", "ca": "Adreça"},
	"mail.subject":         {"es": "Tu presupuesto", "en": "Your quote", "ca": "El teu pressupost"},
}

// Label returns the document label for key in lang, falling back like
// Resolve. Unknown keys are returned unchanged.
func Label(key, lang string) string {
	t, ok := labels[key]
	if !ok {
		return key
	}
	return Resolve(t, lang)
}
