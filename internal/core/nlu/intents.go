package nlu

import "github.com/KadaVoice/pos-service/internal/core/catalog"

// Intent is the fixed vocabulary of actions an utterance can request.
type Intent string

const (
	IntentBillingAdd      Intent = "billing.add"
	IntentBillingRemove   Intent = "billing.remove"
	IntentBillingTotal    Intent = "billing.total"
	IntentBillingComplete Intent = "billing.complete"
	IntentPaymentUPI      Intent = "payment.upi"
	IntentPaymentCash     Intent = "payment.cash"
	IntentInventoryCheck  Intent = "inventory.check"
	IntentInventoryLow    Intent = "inventory.low_stock"
	IntentReportSales     Intent = "report.sales"
	IntentReportToday     Intent = "report.today"
	IntentConfirm         Intent = "confirm"
	IntentCancel          Intent = "cancel"
	IntentHelp            Intent = "help"
	IntentGreeting        Intent = "greeting"
	IntentFallback        Intent = "fallback"
)

// Intents lists the full taxonomy in a stable order.
var Intents = []Intent{
	IntentBillingAdd,
	IntentBillingRemove,
	IntentBillingTotal,
	IntentBillingComplete,
	IntentPaymentUPI,
	IntentPaymentCash,
	IntentInventoryCheck,
	IntentInventoryLow,
	IntentReportSales,
	IntentReportToday,
	IntentConfirm,
	IntentCancel,
	IntentHelp,
	IntentGreeting,
	IntentFallback,
}

// Entities is the sparse entity bag attached to a classified intent.
type Entities struct {
	Product   string       `json:"product,omitempty"`
	ProductMl string       `json:"product_ml,omitempty"`
	Quantity  *float64     `json:"quantity,omitempty"`
	Unit      catalog.Unit `json:"unit,omitempty"`
	Price     *float64     `json:"price,omitempty"`
}

// HasProduct reports whether a product entity was extracted.
func (e Entities) HasProduct() bool {
	return e.Product != ""
}

// ClassifiedIntent is the per-utterance classification result. The shape is
// compatible with what the cloud NLU collaborator returns, so callers can
// use either source interchangeably.
type ClassifiedIntent struct {
	Intent          Intent   `json:"intent"`
	Confidence      float64  `json:"confidence"`
	Entities        Entities `json:"entities"`
	FulfillmentText string   `json:"fulfillment_text,omitempty"`
	Source          string   `json:"source,omitempty"`
}
